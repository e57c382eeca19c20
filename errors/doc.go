// Package errors defines the service's structured error type: a coded,
// HTTP-mapped error with a retryability hint, plus the JSON envelope it
// renders to for clients.
package errors
