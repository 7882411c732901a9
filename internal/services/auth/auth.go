// Package auth stores Extility API passwords in the OS keychain.
package auth

import (
	"errors"

	"nathanbeddoewebdev/flexctl/internal/util"
)

const ServiceName = "flexctl"

var ErrPasswordNotFound = errors.New("api password not found")

// Store holds one password per API user.
type Store interface {
	SetPassword(apiUser string, password string) error
	GetPassword(apiUser string) (string, error)
	DeletePassword(apiUser string) error
}

// DefaultStore returns the standard auth store backed by the OS keychain.
func DefaultStore() Store {
	return NewKeyringStore(ServiceName)
}

// NormalizeUser normalizes an API user for consistent key lookup.
func NormalizeUser(apiUser string) string {
	return util.NormalizeKey(apiUser)
}
