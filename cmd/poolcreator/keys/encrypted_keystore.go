package keys

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
	"github.com/poolforge/poolcreator/domain/ledger/model/externalapi"
	"github.com/poolforge/poolcreator/domain/ledger/utils/signing"
	"github.com/poolforge/poolcreator/domain/ledger/utils/txhashing"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// DefaultEncryptedKeystorePath returns the default path of the encrypted
// keystore of the given network
func DefaultEncryptedKeystorePath(appDir, networkName string) string {
	return filepath.Join(appDir, networkName, "keys.json")
}

type encryptedPrivateKeyJSON struct {
	Address string `json:"address"`
	Cipher  string `json:"cipher"`
	Salt    string `json:"salt"`
}

type keysFileJSON struct {
	EncryptedPrivateKeys []*encryptedPrivateKeyJSON `json:"encryptedPrivateKeys"`
}

// EncryptedPrivateKey represents an encrypted private key
type EncryptedPrivateKey struct {
	address externalapi.Address
	cipher  []byte
	salt    []byte
}

// EncryptedKeystore is a keystore file whose keys are encrypted with a password
type EncryptedKeystore struct {
	path string
	ring *keyRing
}

// OpenEncryptedKeystore reads the keystore file at path and decrypts every
// key with password
func OpenEncryptedKeystore(path string, password []byte) (*EncryptedKeystore, error) {
	encryptedPrivateKeys, err := readKeysFile(path)
	if err != nil {
		return nil, err
	}

	privateKeys := make([]signing.PrivateKey, len(encryptedPrivateKeys))
	for i, encryptedPrivateKey := range encryptedPrivateKeys {
		privateKeys[i], err = decryptPrivateKey(encryptedPrivateKey, password)
		if err != nil {
			return nil, errors.Wrapf(ErrKeystoreAccess, "error decrypting the key of %s: %s",
				encryptedPrivateKey.address, err)
		}
	}

	log.Debugf("Decrypted %d keys from %s", len(privateKeys), path)
	return &EncryptedKeystore{path: path, ring: newKeyRing(privateKeys)}, nil
}

// AddKeys encrypts privateKeys with password and appends them to the
// keystore file at path, creating it if needed. Keys of addresses already in
// the file are skipped.
func AddKeys(path string, password []byte, privateKeys ...signing.PrivateKey) error {
	exists, err := pathExists(path)
	if err != nil {
		return err
	}

	var encryptedPrivateKeys []*EncryptedPrivateKey
	if exists {
		encryptedPrivateKeys, err = readKeysFile(path)
		if err != nil {
			return err
		}
	}

	known := make(map[externalapi.Address]struct{}, len(encryptedPrivateKeys))
	for _, encryptedPrivateKey := range encryptedPrivateKeys {
		known[encryptedPrivateKey.address] = struct{}{}
	}

	for _, privateKey := range privateKeys {
		address := signing.AddressOf(privateKey)
		if _, ok := known[address]; ok {
			log.Infof("The key of %s is already in %s", address, path)
			continue
		}
		encryptedPrivateKey, err := encryptPrivateKey(privateKey, password)
		if err != nil {
			return err
		}
		encryptedPrivateKeys = append(encryptedPrivateKeys, encryptedPrivateKey)
		known[address] = struct{}{}
	}

	return writeKeysFile(path, encryptedPrivateKeys)
}

// Path returns the path the keystore was read from
func (ks *EncryptedKeystore) Path() string {
	return ks.path
}

// SignSecure implements Keystore
func (ks *EncryptedKeystore) SignSecure(address externalapi.Address, data *externalapi.TransactionData,
	intent txhashing.Intent) (*signing.Signature, error) {

	return ks.ring.signSecure(address, data, intent)
}

// Addresses implements Keystore
func (ks *EncryptedKeystore) Addresses() []externalapi.Address {
	return ks.ring.addresses()
}

// ReadAddresses returns the addresses of the keystore file at path without
// decrypting it
func ReadAddresses(path string) ([]externalapi.Address, error) {
	encryptedPrivateKeys, err := readKeysFile(path)
	if err != nil {
		return nil, err
	}
	addresses := make([]externalapi.Address, len(encryptedPrivateKeys))
	for i, encryptedPrivateKey := range encryptedPrivateKeys {
		addresses[i] = encryptedPrivateKey.address
	}
	return addresses, nil
}

func readKeysFile(path string) ([]*EncryptedPrivateKey, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(ErrKeystoreAccess, "error opening %s: %s", path, err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	decoder.DisallowUnknownFields()
	decodedFile := &keysFileJSON{}
	err = decoder.Decode(&decodedFile)
	if err != nil {
		return nil, errors.Wrapf(ErrKeystoreAccess, "error parsing %s: %s", path, err)
	}

	encryptedPrivateKeys := make([]*EncryptedPrivateKey, len(decodedFile.EncryptedPrivateKeys))
	for i, encryptedPrivateKeyJSON := range decodedFile.EncryptedPrivateKeys {
		address, err := externalapi.AddressFromHex(encryptedPrivateKeyJSON.Address)
		if err != nil {
			return nil, errors.Wrapf(ErrKeystoreAccess, "key #%d of %s: %s", i, path, err)
		}

		cipher, err := hex.DecodeString(encryptedPrivateKeyJSON.Cipher)
		if err != nil {
			return nil, errors.Wrapf(ErrKeystoreAccess, "key #%d of %s: %s", i, path, err)
		}

		salt, err := hex.DecodeString(encryptedPrivateKeyJSON.Salt)
		if err != nil {
			return nil, errors.Wrapf(ErrKeystoreAccess, "key #%d of %s: %s", i, path, err)
		}

		encryptedPrivateKeys[i] = &EncryptedPrivateKey{
			address: address,
			cipher:  cipher,
			salt:    salt,
		}
	}

	return encryptedPrivateKeys, nil
}

func writeKeysFile(path string, encryptedPrivateKeys []*EncryptedPrivateKey) error {
	err := createFileDirectoryIfDoesntExist(path)
	if err != nil {
		return err
	}

	encryptedPrivateKeysJSON := make([]*encryptedPrivateKeyJSON, len(encryptedPrivateKeys))
	for i, encryptedPrivateKey := range encryptedPrivateKeys {
		encryptedPrivateKeysJSON[i] = &encryptedPrivateKeyJSON{
			Address: encryptedPrivateKey.address.String(),
			Cipher:  hex.EncodeToString(encryptedPrivateKey.cipher),
			Salt:    hex.EncodeToString(encryptedPrivateKey.salt),
		}
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	return encoder.Encode(&keysFileJSON{EncryptedPrivateKeys: encryptedPrivateKeysJSON})
}

func generateSalt() ([]byte, error) {
	salt := make([]byte, 16)
	_, err := rand.Read(salt)
	if err != nil {
		return nil, err
	}

	return salt, nil
}

func encryptPrivateKey(privateKey signing.PrivateKey, password []byte) (*EncryptedPrivateKey, error) {
	salt, err := generateSalt()
	if err != nil {
		return nil, err
	}

	aead, err := getAEAD(password, salt)
	if err != nil {
		return nil, err
	}

	// Select a random nonce, and leave capacity for the ciphertext.
	serialized := privateKey.Serialize()
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(serialized)+aead.Overhead())
	_, err = rand.Read(nonce)
	if err != nil {
		return nil, err
	}

	return &EncryptedPrivateKey{
		address: signing.AddressOf(privateKey),
		cipher:  aead.Seal(nonce, nonce, serialized, nil),
		salt:    salt,
	}, nil
}

func getAEAD(password, salt []byte) (cipher.AEAD, error) {
	key := argon2.IDKey(password, salt, 1, 64*1024, uint8(runtime.NumCPU()), 32)
	return chacha20poly1305.NewX(key)
}

func decryptPrivateKey(encryptedPrivateKey *EncryptedPrivateKey, password []byte) (signing.PrivateKey, error) {
	aead, err := getAEAD(password, encryptedPrivateKey.salt)
	if err != nil {
		return nil, err
	}

	if len(encryptedPrivateKey.cipher) < aead.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	// Split nonce and ciphertext.
	nonce, ciphertext := encryptedPrivateKey.cipher[:aead.NonceSize()], encryptedPrivateKey.cipher[aead.NonceSize():]

	// Decrypt the message and check it wasn't tampered with.
	decrypted, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, err
	}

	privateKey, err := signing.ParsePrivateKey(decrypted)
	if err != nil {
		return nil, err
	}
	if signing.AddressOf(privateKey) != encryptedPrivateKey.address {
		return nil, errors.Errorf("decrypted key does not belong to %s", encryptedPrivateKey.address)
	}
	return privateKey, nil
}
