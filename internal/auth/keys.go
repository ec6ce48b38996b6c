// Package auth provides authentication and authorization functionality.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const keyFileName = "auth.key"

// LoadOrGenerateKey returns the server's PASETO symmetric key, creating
// and persisting one on first run. The key lives hex-encoded in
// <dataPath>/auth.key with owner-only permissions, so tokens survive
// restarts.
func LoadOrGenerateKey(dataPath string) ([]byte, error) {
	keyPath := filepath.Join(dataPath, keyFileName)

	//#nosec G304 -- Auth key path is derived from validated data path
	raw, err := os.ReadFile(keyPath)
	if err == nil {
		return decodeKeyFile(raw)
	}
	return generateKey(dataPath, keyPath)
}

func decodeKeyFile(raw []byte) ([]byte, error) {
	keyHex := strings.TrimSpace(string(raw))
	if len(keyHex) != symmetricKeyHex {
		return nil, fmt.Errorf("invalid auth key length: expected %d hex chars, got %d", symmetricKeyHex, len(keyHex))
	}
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid auth key format: not valid hex: %w", err)
	}
	return key, nil
}

func generateKey(dataPath, keyPath string) ([]byte, error) {
	key := make([]byte, symmetricKeyBytes)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate auth key: %w", err)
	}

	if err := os.MkdirAll(dataPath, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.WriteFile(keyPath, []byte(hex.EncodeToString(key)), 0o600); err != nil {
		return nil, fmt.Errorf("failed to save auth key: %w", err)
	}
	return key, nil
}
