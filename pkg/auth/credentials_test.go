package auth

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func clearTokenEnv(t *testing.T) {
	t.Helper()
	t.Setenv("IGANALYTICS_ACCESS_TOKEN", "")
	t.Setenv("ACCESS_TOKEN", "")
	t.Setenv("IGANALYTICS_USERNAME", "")
}

func TestCredentialManager(t *testing.T) {
	manager, store := NewMemoryManager()

	account := &Account{
		Username:    "testuser",
		UserID:      "17841400000000001",
		AccessToken: "IGQVJtest_access_token_12345",
	}

	require.NoError(t, manager.Store(account))
	assert.False(t, account.LastModified.IsZero(), "Store stamps LastModified")

	retrieved, err := manager.Retrieve("testuser")
	require.NoError(t, err)
	assert.Equal(t, account.Username, retrieved.Username)
	assert.Equal(t, account.AccessToken, retrieved.AccessToken)
	assert.Equal(t, account.UserID, retrieved.UserID)

	accounts, err := manager.List()
	require.NoError(t, err)
	assert.Len(t, accounts, 1)

	sanitized := SanitizeAccount(account)
	assert.Equal(t, "IGQV...2345", sanitized.AccessToken)
	assert.Equal(t, account.Username, sanitized.Username)
	assert.Equal(t, "IGQVJtest_access_token_12345", account.AccessToken, "original is untouched")
	assert.Nil(t, SanitizeAccount(nil))

	require.NoError(t, manager.Delete("testuser"))
	_, err = manager.Retrieve("testuser")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
	assert.Zero(t, store.Len())
}

func TestManagerStoreValidation(t *testing.T) {
	manager, _ := NewMemoryManager()

	err := manager.Store(&Account{AccessToken: "token"})
	assert.EqualError(t, err, "username is required")

	err = manager.Store(&Account{Username: "someone"})
	assert.EqualError(t, err, "access token is required")
}

func TestManagerStoreFallsBack(t *testing.T) {
	broken := NewMemoryStore()
	broken.StoreError = errors.New("keychain locked")
	fallback := NewMemoryStore()
	manager := NewManagerWithStores(broken, fallback)

	require.NoError(t, manager.Store(&Account{Username: "a", AccessToken: "token-a"}))
	assert.Zero(t, broken.Len())
	assert.True(t, fallback.Exists("a"))

	fallback.StoreError = errors.New("disk full")
	err := manager.Store(&Account{Username: "b", AccessToken: "token-b"})
	assert.ErrorContains(t, err, "disk full")
}

func TestManagerListMergesStores(t *testing.T) {
	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := old.Add(24 * time.Hour)

	first := NewMemoryStore(
		&Account{Username: "zoe", AccessToken: "old-token", LastModified: old},
		&Account{Username: "adam", AccessToken: "adam-token", LastModified: old},
	)
	second := NewMemoryStore(&Account{Username: "zoe", AccessToken: "new-token", LastModified: recent})
	failing := NewMemoryStore()
	failing.ListError = errors.New("unavailable")

	manager := NewManagerWithStores(first, failing, second)
	accounts, err := manager.List()
	require.NoError(t, err)
	require.Len(t, accounts, 2)

	assert.Equal(t, "adam", accounts[0].Username)
	assert.Equal(t, "zoe", accounts[1].Username)
	assert.Equal(t, "new-token", accounts[1].AccessToken)
}

func TestRetrieveDefault(t *testing.T) {
	clearTokenEnv(t)

	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStore(
		&Account{Username: "older", AccessToken: "t1", LastModified: old},
		&Account{Username: "newer", AccessToken: "t2", LastModified: old.Add(time.Hour)},
	)
	manager := NewManagerWithStores(store, NewEnvironmentStore())

	account, err := manager.RetrieveDefault()
	require.NoError(t, err)
	assert.Equal(t, "newer", account.Username)

	t.Setenv("ACCESS_TOKEN", "env-token")
	account, err = manager.RetrieveDefault()
	require.NoError(t, err)
	assert.Equal(t, "default", account.Username)
	assert.Equal(t, "env-token", account.AccessToken)

	empty, _ := NewMemoryManager()
	_, err = empty.RetrieveDefault()
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}

func TestResolve(t *testing.T) {
	clearTokenEnv(t)
	manager, _ := NewMemoryManager()
	require.NoError(t, manager.Store(&Account{Username: "main", AccessToken: "main-token"}))
	require.NoError(t, manager.Store(&Account{Username: "alt", AccessToken: "alt-token"}))

	account, err := manager.Resolve("alt")
	require.NoError(t, err)
	assert.Equal(t, "alt-token", account.AccessToken)

	account, err = manager.Resolve("")
	require.NoError(t, err)
	assert.NotEmpty(t, account.AccessToken)

	_, err = manager.Resolve("missing")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}

func TestManagerDelete(t *testing.T) {
	clearTokenEnv(t)
	manager := NewManagerWithStores(NewMemoryStore(), NewEnvironmentStore())

	err := manager.Delete("nobody")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)

	broken := NewMemoryStore(&Account{Username: "x", AccessToken: "t"})
	broken.DeleteError = errors.New("permission denied")
	manager = NewManagerWithStores(broken)
	assert.ErrorContains(t, manager.Delete("x"), "permission denied")
}

func TestManagerDeleteAll(t *testing.T) {
	clearTokenEnv(t)
	store := NewMemoryStore(
		&Account{Username: "a", AccessToken: "1"},
		&Account{Username: "b", AccessToken: "2"},
	)
	manager := NewManagerWithStores(store, NewEnvironmentStore())

	require.NoError(t, manager.DeleteAll())
	assert.Zero(t, store.Len())
}

func TestEncryptedFileStore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "credentials.enc")
	t.Setenv("IGANALYTICS_PASSPHRASE", "test_passphrase_123")

	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)

	_, err = store.Retrieve("encrypted_user")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
	accounts, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, accounts)

	account := &Account{Username: "encrypted_user", AccessToken: "IGQVJsecret_token_value"}
	require.NoError(t, store.Store(account))
	require.NoError(t, store.Store(&Account{Username: "second", AccessToken: "IGQVJother_token"}))

	retrieved, err := store.Retrieve("encrypted_user")
	require.NoError(t, err)
	assert.Equal(t, account.AccessToken, retrieved.AccessToken)
	assert.True(t, store.Exists("second"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "IGQVJsecret_token_value")
	assert.NotContains(t, string(content), "encrypted_user")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	t.Run("wrong passphrase cannot decrypt", func(t *testing.T) {
		t.Setenv("IGANALYTICS_PASSPHRASE", "another_passphrase")
		other, err := NewEncryptedFileStore(path)
		require.NoError(t, err)
		_, err = other.Retrieve("encrypted_user")
		assert.ErrorContains(t, err, "failed to decrypt")
	})

	require.NoError(t, store.Delete("second"))
	assert.FileExists(t, path)
	require.NoError(t, store.Delete("encrypted_user"))
	assert.NoFileExists(t, path, "file is removed with the last account")

	assert.ErrorIs(t, store.Delete("encrypted_user"), ErrCredentialsNotFound)
	assert.ErrorIs(t, store.Store(&Account{}), ErrInvalidCredentials)
}

func TestEncryptedFileStoreGeneratesPassphrase(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("IGANALYTICS_PASSPHRASE", "")

	store, err := NewEncryptedFileStore(filepath.Join(dir, "credentials.enc"))
	require.NoError(t, err)
	require.NoError(t, store.Store(&Account{Username: "u", AccessToken: "token"}))

	passphrase, err := os.ReadFile(filepath.Join(dir, ".passphrase"))
	require.NoError(t, err)
	assert.NotEmpty(t, passphrase)

	reopened, err := NewEncryptedFileStore(filepath.Join(dir, "credentials.enc"))
	require.NoError(t, err)
	account, err := reopened.Retrieve("u")
	require.NoError(t, err)
	assert.Equal(t, "token", account.AccessToken)
}

func TestEnvironmentStore(t *testing.T) {
	clearTokenEnv(t)
	store := NewEnvironmentStore()

	_, err := store.Retrieve("")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
	accounts, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, accounts)

	t.Setenv("ACCESS_TOKEN", "plain-token")
	account, err := store.Retrieve("")
	require.NoError(t, err)
	assert.Equal(t, "plain-token", account.AccessToken)
	assert.Equal(t, "default", account.Username)

	t.Setenv("IGANALYTICS_ACCESS_TOKEN", "prefixed-token")
	t.Setenv("IGANALYTICS_USERNAME", "brand")
	account, err = store.Retrieve("brand")
	require.NoError(t, err)
	assert.Equal(t, "prefixed-token", account.AccessToken)
	assert.True(t, store.Exists("brand"))
	assert.False(t, store.Exists("someone_else"))

	assert.ErrorIs(t, store.Store(&Account{}), ErrStoreUnavailable)
	assert.ErrorIs(t, store.Delete("brand"), ErrStoreUnavailable)
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()

	store, err := NewKeyringStore()
	require.NoError(t, err)

	accounts, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, accounts)

	require.NoError(t, store.Store(&Account{Username: "beta", AccessToken: "token-b"}))
	require.NoError(t, store.Store(&Account{Username: "alpha", AccessToken: "token-a"}))
	require.NoError(t, store.Store(&Account{Username: "beta", AccessToken: "token-b2"}))

	accounts, err = store.List()
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "alpha", accounts[0].Username)
	assert.Equal(t, "token-b2", accounts[1].AccessToken)

	assert.True(t, store.Exists("alpha"))
	assert.False(t, store.Exists(""))

	require.NoError(t, store.Delete("alpha"))
	assert.ErrorIs(t, store.Delete("alpha"), ErrCredentialsNotFound)
	_, err = store.Retrieve("alpha")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)

	require.NoError(t, store.Delete("beta"))
	accounts, err = store.List()
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestKeyringStoreUnavailable(t *testing.T) {
	keyring.MockInitWithError(errors.New("no secret service"))
	t.Cleanup(keyring.MockInit)

	_, err := NewKeyringStore()
	assert.ErrorContains(t, err, "keyring not available")
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	accounts, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, accounts)

	require.NoError(t, store.Store(&Account{Username: "mockuser", AccessToken: "mock_token"}))
	assert.Equal(t, 1, store.Len())
	assert.True(t, store.Exists("mockuser"))

	store.ListError = errors.New("injected error")
	_, err = store.List()
	assert.EqualError(t, err, "injected error")

	assert.ErrorIs(t, store.Store(nil), ErrInvalidCredentials)
	_, err = store.Retrieve("")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestShowTokenGuide(t *testing.T) {
	var buf bytes.Buffer
	ShowTokenGuide(&buf)
	assert.Contains(t, buf.String(), "INSTAGRAM ACCESS TOKEN GUIDE")
	assert.Contains(t, buf.String(), "ACCESS_TOKEN")

	buf.Reset()
	ShowQuickTokenGuide(&buf)
	assert.Contains(t, buf.String(), "Generate access tokens")
}
