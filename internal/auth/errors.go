package auth

import "errors"

var (
	ErrUsernamePasswordRequired = errors.New("Username and password are required")
	ErrNotAuthenticated         = errors.New("Not authenticated")
)
