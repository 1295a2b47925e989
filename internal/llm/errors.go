package llm

import "fmt"

// ProviderErrorKind is the closed set of ways a provider call can fail.
type ProviderErrorKind int

const (
	KindRateLimited ProviderErrorKind = iota
	KindTimeout
	KindTransportFailure
	KindBadRequest
	KindParse
)

func (k ProviderErrorKind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindTimeout:
		return "timeout"
	case KindTransportFailure:
		return "transport_failure"
	case KindBadRequest:
		return "bad_request"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// DrivesFallback reports whether this error kind should advance the
// dispatcher to the next provider in the chain.
func (k ProviderErrorKind) DrivesFallback() bool {
	switch k {
	case KindRateLimited, KindTimeout, KindTransportFailure:
		return true
	default:
		return false
	}
}

// ProviderError is the structured error every Provider implementation
// should return on failure.
type ProviderError struct {
	Kind     ProviderErrorKind
	Provider string
	Message  string
	Cause    error
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Cause.Error())
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Kind)
}

func (e *ProviderError) Unwrap() error { return e.Cause }

// AsProviderError classifies any error into a ProviderError, defaulting to
// KindTransportFailure for unrecognized errors so the fallback chain always
// has somewhere to go rather than short-circuiting on an unknown failure.
func AsProviderError(provider string, err error) *ProviderError {
	if err == nil {
		return nil
	}
	if pe, ok := err.(*ProviderError); ok {
		return pe
	}
	return &ProviderError{Kind: KindTransportFailure, Provider: provider, Cause: err}
}
