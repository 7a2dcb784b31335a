package signing

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip39"
)

const hardenedIndexStart = 0x80000000

// DefaultEd25519DerivationPath is the derivation path of the first ed25519 account
const DefaultEd25519DerivationPath = "m/44'/784'/0'/0'/0'"

// ErrInvalidMnemonic indicates a mnemonic that fails its bip39 checksum
var ErrInvalidMnemonic = errors.New("invalid mnemonic")

// CreateMnemonic returns a new 24-word mnemonic
func CreateMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", errors.Wrap(err, "error generating entropy")
	}
	return bip39.NewMnemonic(entropy)
}

// Ed25519KeyFromMnemonic derives an ed25519 key from mnemonic along path
// using SLIP-10. Every path segment must be hardened.
func Ed25519KeyFromMnemonic(mnemonic string, path string) (*Ed25519PrivateKey, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}
	indexes, err := parseHardenedPath(path)
	if err != nil {
		return nil, err
	}

	seed := bip39.NewSeed(mnemonic, "")
	key, chainCode := slip10Step([]byte("ed25519 seed"), seed)
	for _, index := range indexes {
		data := make([]byte, 0, 1+len(key)+4)
		data = append(data, 0)
		data = append(data, key...)
		data = binary.BigEndian.AppendUint32(data, index)
		key, chainCode = slip10Step(chainCode, data)
	}
	return NewEd25519PrivateKey(key)
}

func slip10Step(hmacKey, data []byte) (key, chainCode []byte) {
	mac := hmac.New(sha512.New, hmacKey)
	mac.Write(data)
	I := mac.Sum(nil)
	return I[:32], I[32:]
}

func parseHardenedPath(path string) ([]uint32, error) {
	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[0] != "m" {
		return nil, errors.Errorf("derivation path %s must start with m/", path)
	}
	indexes := make([]uint32, 0, len(parts)-1)
	for _, part := range parts[1:] {
		if !strings.HasSuffix(part, "'") {
			return nil, errors.Errorf("derivation path segment %s must be hardened", part)
		}
		index, err := strconv.ParseUint(strings.TrimSuffix(part, "'"), 10, 31)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid derivation path segment %s", part)
		}
		indexes = append(indexes, uint32(index)+hardenedIndexStart)
	}
	return indexes, nil
}
