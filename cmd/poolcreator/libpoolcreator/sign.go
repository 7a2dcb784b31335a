package libpoolcreator

import (
	"encoding/base64"

	"github.com/pkg/errors"
	"github.com/poolforge/poolcreator/cmd/poolcreator/keys"
	"github.com/poolforge/poolcreator/domain/ledger/model/externalapi"
	"github.com/poolforge/poolcreator/domain/ledger/utils/serialization"
	"github.com/poolforge/poolcreator/domain/ledger/utils/signing"
	"github.com/poolforge/poolcreator/domain/ledger/utils/txhashing"
)

// SignedTransaction is transaction data together with the signature of its
// sender
type SignedTransaction struct {
	Data       *externalapi.TransactionData
	TxBytes    []byte
	Signatures []*signing.Signature
	Digest     externalapi.Digest
}

// Sign signs data on behalf of its sender with the transaction intent
func Sign(keystore keys.Keystore, data *externalapi.TransactionData) (*SignedTransaction, error) {
	txBytes, err := serialization.SerializeTransactionData(data)
	if err != nil {
		return nil, errors.Wrapf(err, "error serializing the transaction data")
	}
	signature, err := keystore.SignSecure(data.Sender, data, txhashing.TransactionIntent())
	if err != nil {
		return nil, errors.Wrapf(err, "error signing the transaction of %s", data.Sender)
	}
	return &SignedTransaction{
		Data:       data,
		TxBytes:    txBytes,
		Signatures: []*signing.Signature{signature},
		Digest:     txhashing.TransactionDigestFromBytes(txBytes),
	}, nil
}

// TxBytesBase64 returns the serialized transaction data in base64
func (s *SignedTransaction) TxBytesBase64() string {
	return base64.StdEncoding.EncodeToString(s.TxBytes)
}

// SignaturesBase64 returns every signature in its serialized base64 form
func (s *SignedTransaction) SignaturesBase64() []string {
	encoded := make([]string, len(s.Signatures))
	for i, signature := range s.Signatures {
		encoded[i] = signature.Base64()
	}
	return encoded
}

// Verify reports whether every signature is valid over the transaction
// signing digest and belongs to the sender
func (s *SignedTransaction) Verify() bool {
	digest := txhashing.SigningDigest(txhashing.TransactionIntent(), s.TxBytes)
	if len(s.Signatures) == 0 {
		return false
	}
	for _, signature := range s.Signatures {
		if !signing.VerifySignature(signature, digest) {
			return false
		}
		if signing.AddressFromPublicKey(signature.Scheme, signature.PublicKey) != s.Data.Sender {
			return false
		}
	}
	return true
}
