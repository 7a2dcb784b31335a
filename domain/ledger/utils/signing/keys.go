package signing

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"

	"github.com/kaspanet/go-secp256k1"
	"github.com/pkg/errors"
	"github.com/poolforge/poolcreator/domain/ledger/model/externalapi"
	"golang.org/x/crypto/blake2b"
)

// SignatureScheme is the flag byte identifying a key and signature scheme
type SignatureScheme uint8

// Supported signature schemes
const (
	SchemeEd25519   SignatureScheme = 0x00
	SchemeSecp256k1 SignatureScheme = 0x01
)

func (scheme SignatureScheme) String() string {
	switch scheme {
	case SchemeEd25519:
		return "ed25519"
	case SchemeSecp256k1:
		return "secp256k1"
	}
	return "unknown"
}

// DigestSize is the size of the digests signed by every scheme
const DigestSize = blake2b.Size256

// PrivateKeySize is the size of a serialized private key, excluding the scheme flag
const PrivateKeySize = 32

// ErrInvalidKey indicates malformed key material
var ErrInvalidKey = errors.New("invalid key")

// PrivateKey is a signing key of one of the supported schemes
type PrivateKey interface {
	Scheme() SignatureScheme
	PublicKey() []byte
	Sign(digest [DigestSize]byte) (*Signature, error)

	// Serialize returns the scheme flag followed by the private key bytes
	Serialize() []byte
}

// Ed25519PrivateKey is an ed25519 signing key
type Ed25519PrivateKey struct {
	key ed25519.PrivateKey
}

// NewEd25519PrivateKey creates an ed25519 key from its 32-byte seed
func NewEd25519PrivateKey(seed []byte) (*Ed25519PrivateKey, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, errors.Wrapf(ErrInvalidKey, "ed25519 seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return &Ed25519PrivateKey{key: ed25519.NewKeyFromSeed(seed)}, nil
}

// GenerateEd25519PrivateKey creates a random ed25519 key
func GenerateEd25519PrivateKey() (*Ed25519PrivateKey, error) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, errors.Wrap(err, "error generating ed25519 key")
	}
	return &Ed25519PrivateKey{key: key}, nil
}

// Scheme implements PrivateKey
func (k *Ed25519PrivateKey) Scheme() SignatureScheme {
	return SchemeEd25519
}

// PublicKey implements PrivateKey
func (k *Ed25519PrivateKey) PublicKey() []byte {
	return k.key.Public().(ed25519.PublicKey)
}

// Sign implements PrivateKey
func (k *Ed25519PrivateKey) Sign(digest [DigestSize]byte) (*Signature, error) {
	return &Signature{
		Scheme:    SchemeEd25519,
		Signature: ed25519.Sign(k.key, digest[:]),
		PublicKey: k.PublicKey(),
	}, nil
}

// Serialize implements PrivateKey
func (k *Ed25519PrivateKey) Serialize() []byte {
	return append([]byte{byte(SchemeEd25519)}, k.key.Seed()...)
}

// Secp256k1PrivateKey is a secp256k1 ECDSA signing key
type Secp256k1PrivateKey struct {
	key       *secp256k1.ECDSAPrivateKey
	publicKey []byte
}

// NewSecp256k1PrivateKey creates a secp256k1 key from its 32-byte scalar
func NewSecp256k1PrivateKey(data []byte) (*Secp256k1PrivateKey, error) {
	key, err := secp256k1.DeserializeECDSAPrivateKeyFromSlice(data)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidKey, "secp256k1: %s", err)
	}
	return newSecp256k1PrivateKey(key)
}

// GenerateSecp256k1PrivateKey creates a random secp256k1 key
func GenerateSecp256k1PrivateKey() (*Secp256k1PrivateKey, error) {
	for {
		data := make([]byte, PrivateKeySize)
		_, err := rand.Read(data)
		if err != nil {
			return nil, errors.Wrap(err, "error generating secp256k1 key")
		}
		key, err := secp256k1.DeserializeECDSAPrivateKeyFromSlice(data)
		if err != nil {
			// The scalar is out of range, which is astronomically unlikely. Draw again.
			continue
		}
		return newSecp256k1PrivateKey(key)
	}
}

func newSecp256k1PrivateKey(key *secp256k1.ECDSAPrivateKey) (*Secp256k1PrivateKey, error) {
	publicKey, err := key.ECDSAPublicKey()
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidKey, "secp256k1: %s", err)
	}
	serializedPublicKey, err := publicKey.Serialize()
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidKey, "secp256k1: %s", err)
	}
	return &Secp256k1PrivateKey{key: key, publicKey: serializedPublicKey[:]}, nil
}

// Scheme implements PrivateKey
func (k *Secp256k1PrivateKey) Scheme() SignatureScheme {
	return SchemeSecp256k1
}

// PublicKey implements PrivateKey. The key is in its 33-byte compressed form.
func (k *Secp256k1PrivateKey) PublicKey() []byte {
	return k.publicKey
}

// Sign implements PrivateKey. The ECDSA signature is computed over
// sha256(digest).
func (k *Secp256k1PrivateKey) Sign(digest [DigestSize]byte) (*Signature, error) {
	hash := secp256k1.Hash(sha256.Sum256(digest[:]))
	signature, err := k.key.ECDSASign(&hash)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot sign digest")
	}
	return &Signature{
		Scheme:    SchemeSecp256k1,
		Signature: signature.Serialize()[:],
		PublicKey: k.PublicKey(),
	}, nil
}

// Serialize implements PrivateKey
func (k *Secp256k1PrivateKey) Serialize() []byte {
	return append([]byte{byte(SchemeSecp256k1)}, k.key.Serialize()[:]...)
}

// ParsePrivateKey parses a private key serialized as its scheme flag
// followed by the private key bytes
func ParsePrivateKey(serialized []byte) (PrivateKey, error) {
	if len(serialized) != 1+PrivateKeySize {
		return nil, errors.Wrapf(ErrInvalidKey, "serialized private key must be %d bytes, got %d",
			1+PrivateKeySize, len(serialized))
	}
	switch SignatureScheme(serialized[0]) {
	case SchemeEd25519:
		return NewEd25519PrivateKey(serialized[1:])
	case SchemeSecp256k1:
		return NewSecp256k1PrivateKey(serialized[1:])
	}
	return nil, errors.Wrapf(ErrInvalidKey, "unsupported signature scheme flag 0x%02x", serialized[0])
}

// AddressFromPublicKey derives the account address owned by the given public key
func AddressFromPublicKey(scheme SignatureScheme, publicKey []byte) externalapi.Address {
	return externalapi.Address(blake2b.Sum256(append([]byte{byte(scheme)}, publicKey...)))
}

// AddressOf returns the account address owned by key
func AddressOf(key PrivateKey) externalapi.Address {
	return AddressFromPublicKey(key.Scheme(), key.PublicKey())
}
