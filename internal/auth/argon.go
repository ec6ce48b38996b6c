package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for interactive logins on a small self-hosted
// instance. Verification reads the parameters back out of the stored
// hash, so these can be raised later without invalidating old hashes.
const (
	hashMemoryKiB   uint32 = 64 * 1024
	hashIterations  uint32 = 3
	hashParallelism uint8  = 4
	hashSaltBytes          = 16
	hashKeyBytes    uint32 = 32

	// Hashing cost scales with input size; cap it well above any real password.
	maxPasswordBytes = 1024
)

var errBadHashFormat = errors.New("malformed password hash")

// HashPassword derives an argon2id hash of the password and returns it
// in PHC string format ($argon2id$v=19$m=...,t=...,p=...$salt$hash).
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	if len(password) > maxPasswordBytes {
		return "", errors.New("password exceeds maximum length")
	}

	salt := make([]byte, hashSaltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, hashIterations, hashMemoryKiB, hashParallelism, hashKeyBytes)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		hashMemoryKiB, hashIterations, hashParallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// VerifyPassword reports whether password matches the stored PHC hash.
// Malformed hashes verify as false rather than erroring, so callers
// can't tell a corrupt record from a wrong password.
func VerifyPassword(encodedHash, password string) (bool, error) {
	if len(password) > maxPasswordBytes {
		return false, nil
	}

	salt, key, memory, iterations, parallelism, err := parsePHC(encodedHash)
	if err != nil {
		return false, nil
	}

	candidate := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(key)))

	return subtle.ConstantTimeCompare(key, candidate) == 1, nil
}

// parsePHC unpacks a $argon2id$ PHC string into its salt, derived key,
// and cost parameters.
func parsePHC(encoded string) (salt, key []byte, memory, iterations uint32, parallelism uint8, err error) {
	fail := func(e error) ([]byte, []byte, uint32, uint32, uint8, error) {
		return nil, nil, 0, 0, 0, e
	}

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return fail(errBadHashFormat)
	}
	if parts[1] != "argon2id" {
		return fail(fmt.Errorf("unsupported algorithm %q", parts[1]))
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return fail(errBadHashFormat)
	}
	if version != argon2.Version {
		return fail(fmt.Errorf("incompatible argon2 version %d", version))
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return fail(errBadHashFormat)
	}

	if salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return fail(errBadHashFormat)
	}
	if key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return fail(errBadHashFormat)
	}

	return salt, key, memory, iterations, parallelism, nil
}
