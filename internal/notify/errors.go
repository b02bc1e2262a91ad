package notify

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies a dispatch failure for retry policy.
type Kind int

const (
	// KindTransient covers network errors and 5xx responses; retried
	// with exponential backoff up to the attempt cap.
	KindTransient Kind = iota
	// KindRateLimited is a transient failure carrying the pause the
	// transport asked for.
	KindRateLimited
	// KindPermanent covers bad requests, auth failures and unknown
	// channels; never retried.
	KindPermanent
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindRateLimited:
		return "rate-limited"
	case KindPermanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// DispatchError is a send failure with its retry classification.
type DispatchError struct {
	Kind       Kind
	RetryAfter time.Duration
	Err        error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch (%s): %v", e.Kind, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }

// KindOf extracts the failure kind from an error chain, defaulting to
// transient for unclassified errors.
func KindOf(err error) Kind {
	var de *DispatchError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindTransient
}
