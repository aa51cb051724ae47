package model

import "github.com/m-mizutani/goerr/v2"

// Error tags classify failures for the HTTP layer and for propagation policy.
// provider: remote embedding/generation failure, retryable.
// validation: bad user input, surfaces immediately as 4xx.
// not_found: unknown conversation/file ID.
var (
	ErrTagProvider   = goerr.NewTag("provider")
	ErrTagValidation = goerr.NewTag("validation")
	ErrTagNotFound   = goerr.NewTag("not_found")
)

var (
	// ErrDimensionMismatch indicates two vectors of different length were
	// compared. This is a programmer error if the store invariant holds.
	ErrDimensionMismatch = goerr.New("embedding dimension mismatch")
)
