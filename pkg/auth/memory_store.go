package auth

import (
	"sync"
)

// MemoryStore keeps accounts in memory. Tests use it with the error
// fields to simulate failing backends.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]Account

	StoreError  error
	ListError   error
	DeleteError error
}

// NewMemoryStore creates an empty memory store
func NewMemoryStore(accounts ...*Account) *MemoryStore {
	m := &MemoryStore{accounts: make(map[string]Account)}
	for _, account := range accounts {
		m.accounts[account.Username] = *account
	}
	return m
}

// NewMemoryManager creates a Manager backed by a single memory store
func NewMemoryManager() (*Manager, *MemoryStore) {
	store := NewMemoryStore()
	return NewManagerWithStores(store), store
}

// Store saves a copy of account
func (m *MemoryStore) Store(account *Account) error {
	if m.StoreError != nil {
		return m.StoreError
	}
	if account == nil || account.Username == "" {
		return ErrInvalidCredentials
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.Username] = *account
	return nil
}

// Retrieve returns a copy of the stored account
func (m *MemoryStore) Retrieve(username string) (*Account, error) {
	if username == "" {
		return nil, ErrInvalidCredentials
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	account, ok := m.accounts[username]
	if !ok {
		return nil, ErrCredentialsNotFound
	}
	return &account, nil
}

// List returns copies of all accounts
func (m *MemoryStore) List() ([]*Account, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	accounts := make([]*Account, 0, len(m.accounts))
	for _, account := range m.accounts {
		accounts = append(accounts, &account)
	}
	return accounts, nil
}

// Delete removes an account
func (m *MemoryStore) Delete(username string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	if username == "" {
		return ErrInvalidCredentials
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[username]; !ok {
		return ErrCredentialsNotFound
	}
	delete(m.accounts, username)
	return nil
}

// Exists reports whether username is stored
func (m *MemoryStore) Exists(username string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.accounts[username]
	return ok
}

// Len returns the number of stored accounts
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.accounts)
}
