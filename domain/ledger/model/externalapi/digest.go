package externalapi

import (
	"github.com/btcsuite/btcutil/base58"
	"github.com/pkg/errors"
)

// DigestLength is the length in bytes of a digest
const DigestLength = 32

// Digest is a 32-byte hash identifying a transaction, a transaction's effects
// or an object's content. Its text form is base58.
type Digest [DigestLength]byte

// ErrInvalidDigest indicates that a digest string could not be parsed
var ErrInvalidDigest = errors.New("invalid digest")

// DigestFromBase58 parses a digest from its base58 form
func DigestFromBase58(s string) (Digest, error) {
	var digest Digest
	decoded := base58.Decode(s)
	if len(decoded) != DigestLength {
		return digest, errors.Wrapf(ErrInvalidDigest, "'%s' decodes to %d bytes", s, len(decoded))
	}
	copy(digest[:], decoded)
	return digest, nil
}

// String returns the base58 form of the digest
func (d Digest) String() string {
	return base58.Encode(d[:])
}

// IsZero returns whether the digest is all zeros
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// MarshalText implements encoding.TextMarshaler
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Digest) UnmarshalText(text []byte) error {
	parsed, err := DigestFromBase58(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
