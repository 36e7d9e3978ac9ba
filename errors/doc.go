// Package errors provides the error taxonomy for delivery calls.
//
// Every failure surfaced to a caller is an *AppError carrying a
// machine-readable code. None of the delivery codes are retryable: a failed
// call is terminal and a new call must be issued explicitly.
package errors
