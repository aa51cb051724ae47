package chat

import (
	"context"
	"errors"

	"google.golang.org/genai"
)

// FailureKind distinguishes generation failure causes where determinable,
// so the caller can show a more specific retry message.
type FailureKind string

const (
	FailureTimeout  FailureKind = "timeout"
	FailureQuota    FailureKind = "quota"
	FailureUpstream FailureKind = "upstream"
	FailureUnknown  FailureKind = "unknown"
)

// ClassifyFailure inspects a generation error chain
func ClassifyFailure(err error) FailureKind {
	if err == nil {
		return FailureUnknown
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 429:
			return FailureQuota
		case apiErr.Code >= 500:
			return FailureUpstream
		}
	}

	return FailureUnknown
}

// FailureMessage is the single apologetic user-facing message for a failed
// generation, varied only by cause. The request can be retried verbatim.
func FailureMessage(kind FailureKind) string {
	switch kind {
	case FailureTimeout:
		return "Sorry, the tutor took too long to answer. Please try again."
	case FailureQuota:
		return "Sorry, the tutor is over capacity right now. Please try again in a moment."
	case FailureUpstream:
		return "Sorry, the tutoring service hit an upstream error. Please try again."
	default:
		return "Sorry, something went wrong while generating a response. Please try again."
	}
}
