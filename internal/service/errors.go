package service

import "errors"

// ErrInvalidCredentials is returned by Login when the email is unknown or the
// password does not match. Callers cannot tell the two cases apart.
// The API layer maps it to 400.
var ErrInvalidCredentials = errors.New("unable to login")
