package auth

import (
	"errors"

	"github.com/zalando/go-keyring"
)

type KeyringStore struct {
	serviceName string
}

func NewKeyringStore(serviceName string) *KeyringStore {
	if serviceName == "" {
		serviceName = ServiceName
	}
	return &KeyringStore{serviceName: serviceName}
}

func (k *KeyringStore) SetPassword(apiUser string, password string) error {
	return keyring.Set(k.serviceName, NormalizeUser(apiUser), password)
}

func (k *KeyringStore) GetPassword(apiUser string) (string, error) {
	password, err := keyring.Get(k.serviceName, NormalizeUser(apiUser))
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrPasswordNotFound
	}
	return password, err
}

func (k *KeyringStore) DeletePassword(apiUser string) error {
	err := keyring.Delete(k.serviceName, NormalizeUser(apiUser))
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrPasswordNotFound
	}
	return err
}
