// Package errors provides unified error handling for dikit.
// It implements structured error types with error codes, HTTP status mapping,
// and retryable detection following RFC 7807 and Google AIP-193.
//
// Container failures (duplicate keys, missing registrations, bad factories)
// are reported as *AppError values with dedicated codes so callers can branch
// on HasCode instead of matching message text.
package errors
