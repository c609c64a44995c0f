// Package errors provides unified error handling for beankit.
// It implements structured error types with error codes, HTTP status mapping,
// and retryable detection following RFC 7807 and Google AIP-193.
//
// Container failures (duplicate definitions, missing beans, cycles, scope
// misuse) are reported as *AppError values with dedicated codes; use the
// standard errors.Is with a sentinel carrying the same code to test for them.
package errors
