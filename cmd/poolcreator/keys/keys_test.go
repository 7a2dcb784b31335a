package keys

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/poolforge/poolcreator/domain/ledger/model/externalapi"
	"github.com/poolforge/poolcreator/domain/ledger/utils/signing"
	"github.com/poolforge/poolcreator/domain/ledger/utils/txhashing"
)

func testTransactionData(t *testing.T, sender externalapi.Address) *externalapi.TransactionData {
	transaction := &externalapi.ProgrammableTransaction{
		Inputs: []*externalapi.InputSlot{{Kind: externalapi.InputSlotPure, Pure: []byte{1}}},
		Commands: []*externalapi.Command{{
			Kind: externalapi.CommandMoveCall,
			MoveCall: &externalapi.MoveCall{
				Module:    "pool_creator",
				Function:  "create_pool_v2",
				Arguments: []externalapi.Argument{externalapi.Input(0)},
			},
		}},
	}
	gasPayment := []externalapi.ObjectRef{{ObjectID: externalapi.ObjectID{1}, Version: 1}}
	data, err := externalapi.NewProgrammableTransactionData(sender, gasPayment, transaction, 10_000_000, 1000)
	if err != nil {
		t.Fatalf("NewProgrammableTransactionData: %+v", err)
	}
	return data
}

func generateKeys(t *testing.T) []signing.PrivateKey {
	ed25519Key, err := signing.GenerateEd25519PrivateKey()
	if err != nil {
		t.Fatalf("GenerateEd25519PrivateKey: %+v", err)
	}
	secp256k1Key, err := signing.GenerateSecp256k1PrivateKey()
	if err != nil {
		t.Fatalf("GenerateSecp256k1PrivateKey: %+v", err)
	}
	return []signing.PrivateKey{ed25519Key, secp256k1Key}
}

func checkKeystoreSigns(t *testing.T, name string, keystore Keystore, privateKeys []signing.PrivateKey) {
	if len(keystore.Addresses()) != len(privateKeys) {
		t.Fatalf("%s: expected %d addresses, got %d", name, len(privateKeys), len(keystore.Addresses()))
	}
	for _, privateKey := range privateKeys {
		address := signing.AddressOf(privateKey)
		data := testTransactionData(t, address)
		signature, err := keystore.SignSecure(address, data, txhashing.TransactionIntent())
		if err != nil {
			t.Fatalf("%s: SignSecure: %+v", name, err)
		}
		digest, err := txhashing.TransactionSigningDigest(txhashing.TransactionIntent(), data)
		if err != nil {
			t.Fatalf("%s: TransactionSigningDigest: %+v", name, err)
		}
		if !signing.VerifySignature(signature, digest) {
			t.Fatalf("%s: the %s signature does not verify", name, privateKey.Scheme())
		}
		if signing.AddressFromPublicKey(signature.Scheme, signature.PublicKey) != address {
			t.Fatalf("%s: the signature carries the public key of another address", name)
		}
	}

	_, err := keystore.SignSecure(externalapi.Address{0xff}, testTransactionData(t, externalapi.Address{0xff}),
		txhashing.TransactionIntent())
	if !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("%s: expected ErrKeyNotFound, got %+v", name, err)
	}
}

func TestMemoryKeystore(t *testing.T) {
	privateKeys := generateKeys(t)
	checkKeystoreSigns(t, "memory", NewMemoryKeystore(privateKeys...), privateKeys)
}

func TestFileKeystore(t *testing.T) {
	privateKeys := generateKeys(t)
	path := filepath.Join(t.TempDir(), "sui_config", "sui.keystore")
	err := WriteFileKeystore(path, privateKeys)
	if err != nil {
		t.Fatalf("WriteFileKeystore: %+v", err)
	}

	keystore, err := OpenFileKeystore(path)
	if err != nil {
		t.Fatalf("OpenFileKeystore: %+v", err)
	}
	checkKeystoreSigns(t, "file", keystore, privateKeys)
}

func TestFileKeystoreAccessErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := OpenFileKeystore(filepath.Join(dir, "missing.keystore"))
	if !errors.Is(err, ErrKeystoreAccess) {
		t.Fatalf("expected ErrKeystoreAccess for a missing file, got %+v", err)
	}

	tests := map[string]string{
		"not json":    `{`,
		"not base64":  `["***"]`,
		"bad key":     `["AAE="]`,
		"wrong shape": `{"keys": []}`,
	}
	for name, content := range tests {
		path := filepath.Join(dir, name+".keystore")
		err := os.WriteFile(path, []byte(content), 0600)
		if err != nil {
			t.Fatalf("WriteFile: %+v", err)
		}
		_, err = OpenFileKeystore(path)
		if !errors.Is(err, ErrKeystoreAccess) {
			t.Fatalf("%s: expected ErrKeystoreAccess, got %+v", name, err)
		}
	}
}

func TestEncryptedKeystore(t *testing.T) {
	privateKeys := generateKeys(t)
	password := []byte("correct horse")
	path := filepath.Join(t.TempDir(), "testnet", "keys.json")

	err := AddKeys(path, password, privateKeys[0])
	if err != nil {
		t.Fatalf("AddKeys: %+v", err)
	}
	err = AddKeys(path, password, privateKeys...)
	if err != nil {
		t.Fatalf("AddKeys: %+v", err)
	}

	addresses, err := ReadAddresses(path)
	if err != nil {
		t.Fatalf("ReadAddresses: %+v", err)
	}
	if len(addresses) != len(privateKeys) {
		t.Fatalf("expected %d addresses without duplicates, got %d", len(privateKeys), len(addresses))
	}

	keystore, err := OpenEncryptedKeystore(path, password)
	if err != nil {
		t.Fatalf("OpenEncryptedKeystore: %+v", err)
	}
	checkKeystoreSigns(t, "encrypted", keystore, privateKeys)

	_, err = OpenEncryptedKeystore(path, []byte("wrong password"))
	if !errors.Is(err, ErrKeystoreAccess) {
		t.Fatalf("expected ErrKeystoreAccess for a wrong password, got %+v", err)
	}
}

func TestBech32PrivateKey(t *testing.T) {
	for _, privateKey := range generateKeys(t) {
		encoded, err := EncodeBech32PrivateKey(privateKey)
		if err != nil {
			t.Fatalf("EncodeBech32PrivateKey: %+v", err)
		}
		imported, err := ImportPrivateKey(encoded, "")
		if err != nil {
			t.Fatalf("ImportPrivateKey: %+v", err)
		}
		if signing.AddressOf(imported) != signing.AddressOf(privateKey) {
			t.Fatalf("imported %s key differs from the original", privateKey.Scheme())
		}
	}

	_, err := ParseBech32PrivateKey("bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4")
	if !errors.Is(err, signing.ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey for a foreign prefix, got %+v", err)
	}
}

func TestImportMnemonic(t *testing.T) {
	mnemonic, err := signing.CreateMnemonic()
	if err != nil {
		t.Fatalf("CreateMnemonic: %+v", err)
	}
	imported, err := ImportPrivateKey("  "+mnemonic+"\n", "")
	if err != nil {
		t.Fatalf("ImportPrivateKey: %+v", err)
	}
	derived, err := signing.Ed25519KeyFromMnemonic(mnemonic, signing.DefaultEd25519DerivationPath)
	if err != nil {
		t.Fatalf("Ed25519KeyFromMnemonic: %+v", err)
	}
	if signing.AddressOf(imported) != signing.AddressOf(derived) {
		t.Fatalf("imported mnemonic derived another key")
	}
}
