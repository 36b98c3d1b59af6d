package crypto

import (
	"encoding/hex"
	"os"
	"strings"

	"github.com/iov-one/gasless/errors"
	"golang.org/x/crypto/ed25519"
)

// SaveKey writes the hex encoded seed of the key to path. The file is only
// readable by the owner and must not exist yet.
func SaveKey(path string, key *PrivateKey) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "create key file: %s", err)
	}
	defer f.Close()
	if _, err := f.WriteString(hex.EncodeToString(key.Seed()) + "\n"); err != nil {
		return errors.Wrapf(errors.ErrInput, "write key file: %s", err)
	}
	return nil
}

// LoadKey reads a key written by SaveKey.
func LoadKey(path string) (*PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "read key file: %s", err)
	}
	return ParseKey(strings.TrimSpace(string(raw)))
}

// ParseKey decodes a hex encoded ed25519 seed.
func ParseKey(enc string) (*PrivateKey, error) {
	seed, err := hex.DecodeString(enc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, "key is not hex encoded")
	}
	if len(seed) != ed25519.SeedSize {
		return nil, errors.Wrapf(errors.ErrInput, "key seed must be %d bytes", ed25519.SeedSize)
	}
	return PrivKeyEd25519FromSeed(seed), nil
}
