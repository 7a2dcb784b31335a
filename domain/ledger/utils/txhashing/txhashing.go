package txhashing

import (
	"github.com/pkg/errors"
	"github.com/poolforge/poolcreator/domain/ledger/model/externalapi"
	"github.com/poolforge/poolcreator/domain/ledger/utils/serialization"
	"golang.org/x/crypto/blake2b"
)

// IntentScope names the kind of message a signature is scoped to
type IntentScope uint8

// Intent scopes
const (
	IntentScopeTransactionData IntentScope = iota
	IntentScopeTransactionEffects
	IntentScopeCheckpointSummary
	IntentScopePersonalMessage
)

// IntentVersion is the version of the intent format
type IntentVersion uint8

// IntentVersionV0 is the only intent version
const IntentVersionV0 IntentVersion = 0

// AppID names the application domain a signature is scoped to
type AppID uint8

// Application domains
const (
	AppIDSui AppID = iota
	AppIDNarwhal
	AppIDConsensus
)

// Intent is the domain-separation tag prepended to every signed message
type Intent struct {
	Scope   IntentScope
	Version IntentVersion
	AppID   AppID
}

// TransactionIntent returns the intent used to sign transaction data
func TransactionIntent() Intent {
	return Intent{Scope: IntentScopeTransactionData, Version: IntentVersionV0, AppID: AppIDSui}
}

// Bytes returns the three-byte serialized intent
func (intent Intent) Bytes() []byte {
	return []byte{byte(intent.Scope), byte(intent.Version), byte(intent.AppID)}
}

// SigningDigest returns blake2b-256(intent || message). This is the value
// that signature schemes sign.
func SigningDigest(intent Intent, message []byte) [blake2b.Size256]byte {
	return blake2b.Sum256(append(intent.Bytes(), message...))
}

// TransactionSigningDigest returns the signing digest of data under intent
func TransactionSigningDigest(intent Intent, data *externalapi.TransactionData) ([blake2b.Size256]byte, error) {
	serialized, err := serialization.SerializeTransactionData(data)
	if err != nil {
		return [blake2b.Size256]byte{}, errors.Wrapf(err, "could not serialize transaction data")
	}
	return SigningDigest(intent, serialized), nil
}

const (
	transactionDataTypeName    = "TransactionData::"
	transactionEffectsTypeName = "TransactionEffects::"
)

func typedDigest(typeName string, serialized []byte) externalapi.Digest {
	return externalapi.Digest(blake2b.Sum256(append([]byte(typeName), serialized...)))
}

// TransactionDigestFromBytes returns the digest identifying serialized
// transaction data on the network
func TransactionDigestFromBytes(serialized []byte) externalapi.Digest {
	return typedDigest(transactionDataTypeName, serialized)
}

// TransactionDigest returns the digest identifying data on the network
func TransactionDigest(data *externalapi.TransactionData) (externalapi.Digest, error) {
	serialized, err := serialization.SerializeTransactionData(data)
	if err != nil {
		return externalapi.Digest{}, errors.Wrapf(err, "could not serialize transaction data")
	}
	return TransactionDigestFromBytes(serialized), nil
}

// EffectsDigest returns the digest of serialized transaction effects
func EffectsDigest(rawEffects []byte) externalapi.Digest {
	return typedDigest(transactionEffectsTypeName, rawEffects)
}
