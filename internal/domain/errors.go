package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAccountNotFound         = errors.New("account not found")
	ErrClientNotFound          = errors.New("client not found")
	ErrProfileNotFound         = errors.New("profile not found")
	ErrSecretNotFound          = errors.New("secret not found")
	ErrSecretReadOnly          = errors.New("secret store is read-only")
	ErrInvalidSecretRef        = errors.New("invalid secret ref")
	ErrInvalidClientID         = errors.New("invalid client id")
	ErrInvalidMemberID         = errors.New("invalid member id")
	ErrSessionDeadlineExceeded = errors.New("session deadline exceeded")
	ErrSessionClosed           = errors.New("session closed")
	ErrUnknownEvent            = errors.New("unknown event")
	ErrInternalEvent           = errors.New("event is internal to the session")
)

// FatalError aborts a whole session. Stage names the step that failed.
type FatalError struct {
	Stage string
	Err   error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("session aborted during %s: %v", e.Stage, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

func Fatal(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Stage: stage, Err: err}
}

func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}
