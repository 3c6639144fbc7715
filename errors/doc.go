// Package errors provides the structured error type used across lookahead.
// An AppError carries a machine-readable code, a human-readable message,
// optional details and an underlying cause that errors.Is/As can reach.
package errors
