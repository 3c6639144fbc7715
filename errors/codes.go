package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Sequence lifecycle
const (
	// ErrCodeExhausted indicates the sequence has ended normally.
	ErrCodeExhausted ErrorCode = "EXHAUSTED"
	// ErrCodeClosed indicates the sequence was closed by its consumer.
	ErrCodeClosed ErrorCode = "CLOSED"
)

// Production errors
const (
	// ErrCodeSourceFailed indicates the wrapped source raised during production.
	ErrCodeSourceFailed ErrorCode = "SOURCE_FAILED"
)

// Configuration errors
const (
	// ErrCodeInvalidTimeout indicates a negative timeout was requested.
	ErrCodeInvalidTimeout ErrorCode = "INVALID_TIMEOUT"
	// ErrCodeInvalidConfig indicates a configuration struct failed validation.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected internal failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var terminalCodes = map[ErrorCode]bool{
	ErrCodeExhausted:    true,
	ErrCodeClosed:       true,
	ErrCodeSourceFailed: true,
}

// IsTerminalCode reports whether an error with this code ends a sequence.
func IsTerminalCode(code ErrorCode) bool {
	return terminalCodes[code]
}
