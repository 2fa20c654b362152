package runtime

import (
	"errors"

	"github.com/fcruzel/tlox/pkg/token"
)

// Error is a runtime failure raised while evaluating a program. Token locates
// the failure for diagnostics.
type Error struct {
	Token   token.Token
	Message string
}

func NewError(tok token.Token, message string) *Error {
	return &Error{Token: tok, Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

// AsError extracts a *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var rtErr *Error
	if errors.As(err, &rtErr) {
		return rtErr, true
	}
	return nil, false
}
