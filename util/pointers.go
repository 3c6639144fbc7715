package util

// Ptr returns a pointer to v. Optional config fields such as
// IteratorConfig.RaiseOnError are set through it.
func Ptr[T any](v T) *T {
	return &v
}

// Deref returns the value pointed to by p, or fallback if p is nil.
func Deref[T any](p *T, fallback T) T {
	if p != nil {
		return *p
	}
	return fallback
}
