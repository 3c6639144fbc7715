package timeout

// kind tags what an item carries through the buffer.
type kind uint8

const (
	kindValue kind = iota
	kindTerminal
	kindError
)

func (k kind) String() string {
	switch k {
	case kindValue:
		return "value"
	case kindTerminal:
		return "terminal"
	case kindError:
		return "error"
	default:
		return "unknown"
	}
}

// item is the unit exchanged between pump and façade. At most one
// terminal or error item is ever enqueued per buffer and it is always last.
type item[T any] struct {
	kind kind
	val  T
	err  error
}

func valueItem[T any](v T) item[T] { return item[T]{kind: kindValue, val: v} }

func terminalItem[T any]() item[T] { return item[T]{kind: kindTerminal} }

func errorItem[T any](err error) item[T] { return item[T]{kind: kindError, err: err} }
