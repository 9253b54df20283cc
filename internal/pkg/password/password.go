// Package password hashes and verifies credentials with Argon2id.
//
// The stored form is self-describing so cost parameters can be raised without
// invalidating existing hashes:
//
//	$argon2id$v=19$m=65536,t=4,p=1$<base64 salt>$<base64 digest>
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	saltSize    = 16    // 128-bit salt
	keySize     = 32    // 256-bit digest
	iterations  = 4     // OWASP recommends 3-4
	memoryKiB   = 65536 // 64 MiB
	parallelism = 1
)

var ErrEmptyPassword = errors.New("password cannot be empty")

// Hash derives an Argon2id digest of password with a fresh random salt and
// returns the encoded self-describing string. Empty or whitespace-only
// passwords are rejected.
func Hash(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	digest := argon2.IDKey([]byte(password), salt, iterations, memoryKiB, parallelism, keySize)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, memoryKiB, iterations, parallelism,
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(digest),
	), nil
}

// Verify reports whether password matches the encoded hash. Any malformed
// input yields false, never an error: verification failure must not leak why
// it failed. The digest comparison runs in constant time.
func Verify(password, encoded string) bool {
	if strings.TrimSpace(password) == "" || strings.TrimSpace(encoded) == "" {
		return false
	}

	version, memory, time, threads, salt, digest, err := decode(encoded)
	if err != nil {
		return false
	}
	if version != argon2.Version {
		return false
	}

	// Recompute with the stored parameters so hashes written under older
	// cost settings remain verifiable.
	computed := argon2.IDKey([]byte(password), salt, time, memory, threads, uint32(len(digest)))

	return subtle.ConstantTimeCompare(computed, digest) == 1
}

// decode parses the encoded representation, validating field count, algorithm
// tag, version, and cost parameters before touching any byte of the digest.
func decode(encoded string) (version int, memory uint32, time uint32, threads uint8, salt, digest []byte, err error) {
	parts := strings.Split(encoded, "$")
	// Leading "$" produces an empty first element: ["", "argon2id", "v=19", "m=...,t=...,p=...", salt, digest]
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return 0, 0, 0, 0, nil, nil, errors.New("malformed hash")
	}

	if _, err = fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return 0, 0, 0, 0, nil, nil, errors.New("malformed version")
	}
	if _, err = fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return 0, 0, 0, 0, nil, nil, errors.New("malformed parameters")
	}

	salt, err = base64.StdEncoding.DecodeString(parts[4])
	if err != nil {
		return 0, 0, 0, 0, nil, nil, errors.New("malformed salt")
	}
	digest, err = base64.StdEncoding.DecodeString(parts[5])
	if err != nil || len(digest) == 0 {
		return 0, 0, 0, 0, nil, nil, errors.New("malformed digest")
	}

	return version, memory, time, threads, salt, digest, nil
}
