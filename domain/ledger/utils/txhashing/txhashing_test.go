package txhashing

import (
	"bytes"
	"testing"

	"github.com/poolforge/poolcreator/domain/ledger/model/externalapi"
	"golang.org/x/crypto/blake2b"
)

func TestTransactionIntentBytes(t *testing.T) {
	if !bytes.Equal(TransactionIntent().Bytes(), []byte{0, 0, 0}) {
		t.Fatalf("unexpected transaction intent %x", TransactionIntent().Bytes())
	}
	personal := Intent{Scope: IntentScopePersonalMessage}
	if !bytes.Equal(personal.Bytes(), []byte{3, 0, 0}) {
		t.Fatalf("unexpected personal message intent %x", personal.Bytes())
	}
}

func TestSigningDigestIsDomainSeparated(t *testing.T) {
	message := []byte("transaction bytes")
	transactionDigest := SigningDigest(TransactionIntent(), message)
	personalDigest := SigningDigest(Intent{Scope: IntentScopePersonalMessage}, message)
	if transactionDigest == personalDigest {
		t.Fatalf("digests of different intents must differ")
	}
	expected := blake2b.Sum256(append([]byte{0, 0, 0}, message...))
	if transactionDigest != expected {
		t.Fatalf("unexpected signing digest %x", transactionDigest)
	}
}

func TestTransactionDigest(t *testing.T) {
	data, err := externalapi.NewProgrammableTransactionData(externalapi.Address{1},
		[]externalapi.ObjectRef{{ObjectID: externalapi.ObjectID{2}, Version: 3}},
		&externalapi.ProgrammableTransaction{}, 1000, 1)
	if err != nil {
		t.Fatalf("NewProgrammableTransactionData: %+v", err)
	}
	digest, err := TransactionDigest(data)
	if err != nil {
		t.Fatalf("TransactionDigest: %+v", err)
	}
	if digest.IsZero() {
		t.Fatalf("unexpected zero digest")
	}

	data.GasData.Budget++
	otherDigest, err := TransactionDigest(data)
	if err != nil {
		t.Fatalf("TransactionDigest: %+v", err)
	}
	if digest == otherDigest {
		t.Fatalf("digest must depend on the gas budget")
	}

	if EffectsDigest([]byte{1}) == TransactionDigestFromBytes([]byte{1}) {
		t.Fatalf("effects and transaction digests must be domain separated")
	}
}
