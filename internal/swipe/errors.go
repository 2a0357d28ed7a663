// internal/swipe/errors.go

package swipe

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidLike  = errors.New("you cannot like yourself")
	ErrUserBlocked  = errors.New("cannot match with a blocked user")
)

// SwipeLimitError is returned when a daily quota is exhausted. Nothing
// was recorded when it is returned.
type SwipeLimitError struct {
	Type     string
	ResetsAt time.Time
}

func (e *SwipeLimitError) Error() string {
	return fmt.Sprintf("daily %s limit reached", e.Type)
}

// TransientError wraps a store failure the caller may retry
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

func transient(op string, err error) error {
	return &TransientError{Op: op, Err: err}
}

// ErrorKind is the closed set of failure classes callers switch on
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindUserNotFound
	KindInvalidLike
	KindSwipeLimitReached
	KindUserBlocked
	KindTransient
	KindUnknown
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindUserNotFound:
		return "user_not_found"
	case KindInvalidLike:
		return "invalid_like"
	case KindSwipeLimitReached:
		return "swipe_limit_reached"
	case KindUserBlocked:
		return "user_blocked"
	case KindTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// KindOf classifies err, looking through wrapping
func KindOf(err error) ErrorKind {
	var limitErr *SwipeLimitError
	var transientErr *TransientError

	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrUserNotFound):
		return KindUserNotFound
	case errors.Is(err, ErrInvalidLike):
		return KindInvalidLike
	case errors.As(err, &limitErr):
		return KindSwipeLimitReached
	case errors.Is(err, ErrUserBlocked):
		return KindUserBlocked
	case errors.As(err, &transientErr):
		return KindTransient
	default:
		return KindUnknown
	}
}
