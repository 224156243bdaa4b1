// Package keyring stores the cookie database master key in the operating
// system keyring, falling back to a key file in the config directory.
package keyring

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/spf13/afero"
	"github.com/zalando/go-keyring"
)

// KeySize is the size of the master key in bytes.
const KeySize = 32

// Provider loads and creates master keys.
type Provider interface {
	GetKey() ([]byte, error)
	SetKey() ([]byte, error)
}

// Warner receives fallback warnings.
type Warner interface {
	Warning(format string, args ...interface{})
}

// Keyring stores the key in the system keyring (Secret Service, macOS
// Keychain, Windows Credential Manager).
type Keyring struct {
	AppName  string
	KeyField string
}

var (
	keyringSet    = keyring.Set
	keyringGet    = keyring.Get
	keyringDelete = keyring.Delete
	randRead      = rand.Read
)

// NewKeyring returns a Keyring for the given service name.
func NewKeyring(appName string) *Keyring {
	return &Keyring{
		AppName:  appName,
		KeyField: "master",
	}
}

// SetKey generates a new random key and stores it hex encoded.
func (k *Keyring) SetKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := randRead(key); err != nil {
		return nil, err
	}
	if err := keyringSet(k.AppName, k.KeyField, hex.EncodeToString(key)); err != nil {
		return nil, err
	}
	return key, nil
}

// GetKey loads the key stored by SetKey.
func (k *Keyring) GetKey() ([]byte, error) {
	v, err := keyringGet(k.AppName, k.KeyField)
	if err != nil {
		return nil, err
	}
	return decodeKey(v)
}

// DeleteKey removes the key from the keyring.
func (k *Keyring) DeleteKey() error {
	return keyringDelete(k.AppName, k.KeyField)
}

func decodeKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid key format: %w", err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("invalid key length: expected %d, got %d", KeySize, len(key))
	}
	return key, nil
}

// fallbackProvider tries the system keyring first and uses the file store
// when the keyring is unavailable (headless Linux, CI).
type fallbackProvider struct {
	primary  Provider
	fallback Provider
	w        Warner
}

// NewWithFallback returns a Provider backed by the system keyring with a
// key file in configDir as fallback.
func NewWithFallback(appName, configDir string, fs afero.Fs, w Warner) Provider {
	return &fallbackProvider{
		primary:  NewKeyring(appName),
		fallback: NewFileKeyStore(fs, configDir),
		w:        w,
	}
}

func (f *fallbackProvider) GetKey() ([]byte, error) {
	key, err := f.primary.GetKey()
	if err == nil {
		return key, nil
	}
	return f.fallback.GetKey()
}

func (f *fallbackProvider) SetKey() ([]byte, error) {
	key, err := f.primary.SetKey()
	if err == nil {
		return key, nil
	}
	if f.w != nil {
		f.w.Warning("system keyring unavailable (%v), using key file", err)
	}
	return f.fallback.SetKey()
}

// LoadOrCreate returns the existing key or creates a new one.
func LoadOrCreate(p Provider) ([]byte, error) {
	key, err := p.GetKey()
	if err == nil {
		return key, nil
	}
	return p.SetKey()
}
