package auth

import (
	"os"
	"time"
)

// EnvironmentStore reads a single read-only account from
// IGANALYTICS_ACCESS_TOKEN (or ACCESS_TOKEN) and IGANALYTICS_USERNAME
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

// Retrieve returns the environment account. An empty username matches it;
// otherwise the username must match IGANALYTICS_USERNAME.
func (e *EnvironmentStore) Retrieve(username string) (*Account, error) {
	token := environmentToken()
	if token == "" {
		return nil, ErrCredentialsNotFound
	}

	name := environmentUsername()
	if username != "" && username != name {
		return nil, ErrCredentialsNotFound
	}

	return &Account{
		Username:     name,
		AccessToken:  token,
		LastModified: time.Now(),
	}, nil
}

// List returns a single account if a token is set
func (e *EnvironmentStore) List() ([]*Account, error) {
	account, err := e.Retrieve("")
	if err != nil {
		return []*Account{}, nil
	}
	return []*Account{account}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(username string) error {
	return ErrStoreUnavailable
}

// Exists checks if an environment token exists for username
func (e *EnvironmentStore) Exists(username string) bool {
	_, err := e.Retrieve(username)
	return err == nil
}

func environmentToken() string {
	if token := os.Getenv("IGANALYTICS_ACCESS_TOKEN"); token != "" {
		return token
	}
	return os.Getenv("ACCESS_TOKEN")
}

func environmentUsername() string {
	if name := os.Getenv("IGANALYTICS_USERNAME"); name != "" {
		return name
	}
	return "default"
}
