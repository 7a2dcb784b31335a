package signing

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"

	"github.com/kaspanet/go-secp256k1"
	"github.com/pkg/errors"
)

// ErrInvalidSignature indicates a malformed serialized signature
var ErrInvalidSignature = errors.New("invalid signature")

// Signature is a signature over a signing digest together with the scheme
// and public key needed to verify it
type Signature struct {
	Scheme    SignatureScheme
	Signature []byte
	PublicKey []byte
}

func signatureLayout(scheme SignatureScheme) (signatureSize, publicKeySize int, err error) {
	switch scheme {
	case SchemeEd25519:
		return ed25519.SignatureSize, ed25519.PublicKeySize, nil
	case SchemeSecp256k1:
		return secp256k1.SerializedECDSASignatureSize, 33, nil
	}
	return 0, 0, errors.Wrapf(ErrInvalidSignature, "unsupported signature scheme flag 0x%02x", byte(scheme))
}

// Serialize returns flag || signature || public key
func (s *Signature) Serialize() []byte {
	serialized := make([]byte, 0, 1+len(s.Signature)+len(s.PublicKey))
	serialized = append(serialized, byte(s.Scheme))
	serialized = append(serialized, s.Signature...)
	return append(serialized, s.PublicKey...)
}

// Base64 returns the serialized signature in the base64 form the network expects
func (s *Signature) Base64() string {
	return base64.StdEncoding.EncodeToString(s.Serialize())
}

// ParseSignature parses a signature serialized as flag || signature || public key
func ParseSignature(serialized []byte) (*Signature, error) {
	if len(serialized) == 0 {
		return nil, errors.Wrapf(ErrInvalidSignature, "empty signature")
	}
	scheme := SignatureScheme(serialized[0])
	signatureSize, publicKeySize, err := signatureLayout(scheme)
	if err != nil {
		return nil, err
	}
	if len(serialized) != 1+signatureSize+publicKeySize {
		return nil, errors.Wrapf(ErrInvalidSignature, "%s signature must be %d bytes, got %d",
			scheme, 1+signatureSize+publicKeySize, len(serialized))
	}
	return &Signature{
		Scheme:    scheme,
		Signature: append([]byte{}, serialized[1:1+signatureSize]...),
		PublicKey: append([]byte{}, serialized[1+signatureSize:]...),
	}, nil
}

// ParseBase64Signature parses a base64 serialized signature
func ParseBase64Signature(encoded string) (*Signature, error) {
	serialized, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidSignature, "base64: %s", err)
	}
	return ParseSignature(serialized)
}

// Verify reports whether s is a valid signature over digest by s.PublicKey
func (s *Signature) Verify(digest [DigestSize]byte) bool {
	switch s.Scheme {
	case SchemeEd25519:
		if len(s.PublicKey) != ed25519.PublicKeySize {
			return false
		}
		return ed25519.Verify(s.PublicKey, digest[:], s.Signature)
	case SchemeSecp256k1:
		publicKey, err := secp256k1.DeserializeECDSAPubKey(s.PublicKey)
		if err != nil {
			return false
		}
		signature, err := secp256k1.DeserializeECDSASignatureFromSlice(s.Signature)
		if err != nil {
			return false
		}
		hash := secp256k1.Hash(sha256.Sum256(digest[:]))
		return publicKey.ECDSAVerify(&hash, signature)
	}
	return false
}

// VerifySignature reports whether signature is valid over digest
func VerifySignature(signature *Signature, digest [DigestSize]byte) bool {
	return signature != nil && signature.Verify(digest)
}
