// Package secrets keeps LLM provider keys out of the plain-text config file.
// Keys live in a 0600 JSON file under the user config dir, sealed with
// AES-GCM under a per-user derived key. This is obfuscation, not a keychain.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

const fileName = "keys.json"

var (
	// ErrKeyNotFound is returned when no key is stored for a provider.
	ErrKeyNotFound = errors.New("secrets: key not found")
	// ErrEmpty is returned for a blank provider name or key.
	ErrEmpty = errors.New("secrets: provider and key are required")
)

// keyFile is the on-disk shape: provider -> base64(nonce|ciphertext).
type keyFile struct {
	Keys map[string]string `json:"keys"`
}

// Store holds provider keys under Dir.
type Store struct {
	Dir string
}

// DefaultStore uses the per-user config directory.
func DefaultStore() (Store, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return Store{}, fmt.Errorf("user config dir: %w", err)
	}
	return Store{Dir: filepath.Join(dir, "budregistry")}, nil
}

// Put seals and stores key for provider, replacing any previous key.
func (s Store) Put(provider, key string) error {
	provider, key = canonical(provider), strings.TrimSpace(key)
	if provider == "" || key == "" {
		return ErrEmpty
	}
	kf, err := s.read()
	if err != nil {
		return err
	}
	sealed, err := seal([]byte(key))
	if err != nil {
		return fmt.Errorf("seal %s key: %w", provider, err)
	}
	kf.Keys[provider] = base64.StdEncoding.EncodeToString(sealed)
	return s.write(kf)
}

// Get returns the stored key for provider.
func (s Store) Get(provider string) (string, error) {
	provider = canonical(provider)
	if provider == "" {
		return "", ErrEmpty
	}
	kf, err := s.read()
	if err != nil {
		return "", err
	}
	enc, ok := kf.Keys[provider]
	if !ok {
		return "", ErrKeyNotFound
	}
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", fmt.Errorf("decode %s key: %w", provider, err)
	}
	plain, err := open(raw)
	if err != nil {
		return "", fmt.Errorf("open %s key: %w", provider, err)
	}
	return string(plain), nil
}

// Delete removes the key for provider.
func (s Store) Delete(provider string) error {
	provider = canonical(provider)
	if provider == "" {
		return ErrEmpty
	}
	kf, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := kf.Keys[provider]; !ok {
		return ErrKeyNotFound
	}
	delete(kf.Keys, provider)
	return s.write(kf)
}

// Providers lists the providers that have a stored key, sorted.
func (s Store) Providers() ([]string, error) {
	kf, err := s.read()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(kf.Keys))
	for p := range kf.Keys {
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

func (s Store) path() string { return filepath.Join(s.Dir, fileName) }

// read loads the key file; a missing file is an empty store.
func (s Store) read() (keyFile, error) {
	kf := keyFile{Keys: map[string]string{}}
	data, err := os.ReadFile(s.path())
	if errors.Is(err, os.ErrNotExist) {
		return kf, nil
	}
	if err != nil {
		return kf, fmt.Errorf("read key file: %w", err)
	}
	if err := json.Unmarshal(data, &kf); err != nil {
		return kf, fmt.Errorf("parse key file: %w", err)
	}
	if kf.Keys == nil {
		kf.Keys = map[string]string{}
	}
	return kf, nil
}

// write replaces the key file atomically.
func (s Store) write(kf keyFile) error {
	if err := os.MkdirAll(s.Dir, 0o700); err != nil {
		return fmt.Errorf("mkdir key dir: %w", err)
	}
	data, err := json.MarshalIndent(kf, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write key file: %w", err)
	}
	return os.Rename(tmp, s.path())
}

func canonical(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func aead() (cipher.AEAD, error) {
	sum := sha256.Sum256([]byte("budregistry:" + runtime.GOOS + ":" + os.Getenv("USER")))
	block, err := aes.NewCipher(sum[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func seal(plain []byte) ([]byte, error) {
	gcm, err := aead()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func open(sealed []byte) ([]byte, error) {
	gcm, err := aead()
	if err != nil {
		return nil, err
	}
	n := gcm.NonceSize()
	if len(sealed) < n {
		return nil, errors.New("sealed key too short")
	}
	return gcm.Open(nil, sealed[:n], sealed[n:], nil)
}
