package timeout

import (
	"fmt"
	"runtime/debug"
	"time"

	apperrors "github.com/kbukum/lookahead/errors"
)

// SourceError is what a sequence returns when its source failed. It
// unwraps to the source's original error.
type SourceError struct {
	// Err is the error the source returned, or a description of its panic.
	Err error
	// Tag identifies the stream the pump belonged to.
	Tag string
	// Stack is the pump goroutine's stack captured where the failure was seen.
	Stack string
	// Panic holds the recovered value when the source panicked.
	Panic any
}

func newSourceError(err error, tag string) *SourceError {
	return &SourceError{Err: err, Tag: tag, Stack: string(debug.Stack())}
}

func newPanicError(r any, tag string) *SourceError {
	err, ok := r.(error)
	if !ok {
		err = fmt.Errorf("%v", r)
	}
	return &SourceError{
		Err:   fmt.Errorf("source panicked: %w", err),
		Tag:   tag,
		Stack: string(debug.Stack()),
		Panic: r,
	}
}

func (e *SourceError) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("lookahead: source %s failed: %v", e.Tag, e.Err)
	}
	return fmt.Sprintf("lookahead: source failed: %v", e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, errors.SourceFailed(...)) match any SourceError.
func (e *SourceError) Is(target error) bool {
	return apperrors.HasCode(target, apperrors.ErrCodeSourceFailed)
}

// AppError converts e into the module's structured error.
func (e *SourceError) AppError() *apperrors.AppError {
	return apperrors.SourceFailed(e.Tag, e.Err)
}

func validateTimeout(d time.Duration) error {
	if d < 0 {
		return apperrors.InvalidTimeout(d)
	}
	return nil
}
