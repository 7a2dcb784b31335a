package keys

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/poolforge/poolcreator/domain/ledger/model/externalapi"
	"github.com/poolforge/poolcreator/domain/ledger/utils/signing"
	"github.com/poolforge/poolcreator/domain/ledger/utils/txhashing"
)

// DefaultFileKeystorePath returns the path of the keystore written by the
// ledger's own command line client
func DefaultFileKeystorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".sui", "sui_config", "sui.keystore")
	}
	return filepath.Join(home, ".sui", "sui_config", "sui.keystore")
}

// FileKeystore is a plaintext keystore file holding a JSON array of base64
// encoded flag || private key strings
type FileKeystore struct {
	path string
	ring *keyRing
}

// OpenFileKeystore reads the keystore file at path
func OpenFileKeystore(path string) (*FileKeystore, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrKeystoreAccess, "error reading %s: %s", path, err)
	}

	var encodedKeys []string
	err = json.Unmarshal(content, &encodedKeys)
	if err != nil {
		return nil, errors.Wrapf(ErrKeystoreAccess, "error parsing %s: %s", path, err)
	}

	privateKeys := make([]signing.PrivateKey, len(encodedKeys))
	for i, encodedKey := range encodedKeys {
		serialized, err := base64.StdEncoding.DecodeString(encodedKey)
		if err != nil {
			return nil, errors.Wrapf(ErrKeystoreAccess, "key #%d of %s is not base64: %s", i, path, err)
		}
		privateKeys[i], err = signing.ParsePrivateKey(serialized)
		if err != nil {
			return nil, errors.Wrapf(ErrKeystoreAccess, "key #%d of %s: %s", i, path, err)
		}
	}

	log.Debugf("Loaded %d keys from %s", len(privateKeys), path)
	return &FileKeystore{path: path, ring: newKeyRing(privateKeys)}, nil
}

// WriteFileKeystore writes privateKeys to path in the plaintext keystore format
func WriteFileKeystore(path string, privateKeys []signing.PrivateKey) error {
	encodedKeys := make([]string, len(privateKeys))
	for i, privateKey := range privateKeys {
		encodedKeys[i] = base64.StdEncoding.EncodeToString(privateKey.Serialize())
	}
	content, err := json.MarshalIndent(encodedKeys, "", "  ")
	if err != nil {
		return err
	}
	err = createFileDirectoryIfDoesntExist(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, content, 0600)
}

// Path returns the path the keystore was read from
func (ks *FileKeystore) Path() string {
	return ks.path
}

// SignSecure implements Keystore
func (ks *FileKeystore) SignSecure(address externalapi.Address, data *externalapi.TransactionData,
	intent txhashing.Intent) (*signing.Signature, error) {

	return ks.ring.signSecure(address, data, intent)
}

// Addresses implements Keystore
func (ks *FileKeystore) Addresses() []externalapi.Address {
	return ks.ring.addresses()
}

func createFileDirectoryIfDoesntExist(path string) error {
	dir := filepath.Dir(path)
	exists, err := pathExists(dir)
	if err != nil {
		return err
	}

	if exists {
		return nil
	}

	return os.MkdirAll(dir, 0700)
}

func pathExists(path string) (bool, error) {
	_, err := os.Stat(path)

	if err == nil {
		return true, nil
	}

	if os.IsNotExist(err) {
		return false, nil

	}

	return false, err
}
