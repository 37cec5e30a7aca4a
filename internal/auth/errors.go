package auth

// ErrorKind classifies credential failures.
type ErrorKind int

const (
	KindMissingToken ErrorKind = iota + 1
	KindInvalidToken
)

// AuthError is returned when a presented credential cannot be turned into an Identity.
// Its message is stable so clients can match on it.
type AuthError struct {
	Kind ErrorKind
	Err  error
}

var (
	ErrMissingToken = &AuthError{Kind: KindMissingToken}
	ErrInvalidToken = &AuthError{Kind: KindInvalidToken}
)

func (e *AuthError) Error() string {
	if e.Kind == KindMissingToken {
		return "Authentication error: Token not provided"
	}
	return "Authentication error: Invalid token"
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Is matches any AuthError of the same kind.
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Kind == e.Kind
}

func invalid(err error) error {
	return &AuthError{Kind: KindInvalidToken, Err: err}
}
