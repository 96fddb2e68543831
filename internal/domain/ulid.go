package domain

import "github.com/oklog/ulid/v2"

// NewAuthorizationCode generates a fresh opaque authorization code
func NewAuthorizationCode() string {
	return ulid.Make().String()
}
