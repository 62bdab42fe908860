package session

import "errors"

var (
	// ErrAuthenticationFailed is returned when a login is rejected.
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrRegistrationFailed is returned when a registration is rejected.
	ErrRegistrationFailed = errors.New("registration failed")
)

// userMessenger is implemented by errors that carry a message meant for
// the person at the keyboard, such as the API's {"error": "..."} body.
type userMessenger interface {
	UserMessage() string
}

// CredentialError is a failed login or registration. Message is safe to
// show inline on the form.
type CredentialError struct {
	Kind    error
	Message string
	Err     error
}

func (e *CredentialError) Error() string {
	if e.Err != nil {
		return e.Kind.Error() + ": " + e.Err.Error()
	}
	return e.Kind.Error() + ": " + e.Message
}

func (e *CredentialError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newCredentialError(kind error, fallback string, err error) *CredentialError {
	msg := fallback
	var um userMessenger
	if errors.As(err, &um) && um.UserMessage() != "" {
		msg = um.UserMessage()
	}
	return &CredentialError{Kind: kind, Message: msg, Err: err}
}
