package auth

// MockStore is an in-memory auth store for testing.
type MockStore struct {
	passwords map[string]string
}

func NewMockStore() *MockStore {
	return &MockStore{passwords: make(map[string]string)}
}

func (m *MockStore) SetPassword(apiUser string, password string) error {
	m.passwords[NormalizeUser(apiUser)] = password
	return nil
}

func (m *MockStore) GetPassword(apiUser string) (string, error) {
	password, ok := m.passwords[NormalizeUser(apiUser)]
	if !ok {
		return "", ErrPasswordNotFound
	}
	return password, nil
}

func (m *MockStore) DeletePassword(apiUser string) error {
	key := NormalizeUser(apiUser)
	if _, ok := m.passwords[key]; !ok {
		return ErrPasswordNotFound
	}
	delete(m.passwords, key)
	return nil
}
