package keys

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/poolforge/poolcreator/domain/ledger/model/externalapi"
	"github.com/poolforge/poolcreator/domain/ledger/utils/signing"
	"github.com/poolforge/poolcreator/domain/ledger/utils/txhashing"
)

var (
	// ErrKeyNotFound indicates that the keystore holds no key for an address
	ErrKeyNotFound = errors.New("key not found")

	// ErrKeystoreAccess indicates that the keystore could not be opened,
	// parsed or decrypted
	ErrKeystoreAccess = errors.New("keystore access failed")
)

// Keystore signs transaction data on behalf of the addresses whose keys it holds
type Keystore interface {
	SignSecure(address externalapi.Address, data *externalapi.TransactionData,
		intent txhashing.Intent) (*signing.Signature, error)
	Addresses() []externalapi.Address
}

// keyRing is the in-memory key set every keystore implementation signs with
type keyRing struct {
	keys map[externalapi.Address]signing.PrivateKey
}

func newKeyRing(privateKeys []signing.PrivateKey) *keyRing {
	ring := &keyRing{keys: make(map[externalapi.Address]signing.PrivateKey, len(privateKeys))}
	for _, privateKey := range privateKeys {
		ring.keys[signing.AddressOf(privateKey)] = privateKey
	}
	return ring
}

func (r *keyRing) signSecure(address externalapi.Address, data *externalapi.TransactionData,
	intent txhashing.Intent) (*signing.Signature, error) {

	privateKey, ok := r.keys[address]
	if !ok {
		return nil, errors.Wrapf(ErrKeyNotFound, "no key for address %s", address)
	}
	digest, err := txhashing.TransactionSigningDigest(intent, data)
	if err != nil {
		return nil, err
	}
	signature, err := privateKey.Sign(digest)
	if err != nil {
		return nil, errors.Wrapf(err, "error signing for address %s", address)
	}
	log.Debugf("Signed transaction data with the %s key of %s", privateKey.Scheme(), address)
	return signature, nil
}

func (r *keyRing) addresses() []externalapi.Address {
	addresses := make([]externalapi.Address, 0, len(r.keys))
	for address := range r.keys {
		addresses = append(addresses, address)
	}
	sort.Slice(addresses, func(i, j int) bool {
		return addresses[i].String() < addresses[j].String()
	})
	return addresses
}

// MemoryKeystore is a keystore held only in memory
type MemoryKeystore struct {
	ring *keyRing
}

// NewMemoryKeystore returns a keystore holding privateKeys
func NewMemoryKeystore(privateKeys ...signing.PrivateKey) *MemoryKeystore {
	return &MemoryKeystore{ring: newKeyRing(privateKeys)}
}

// SignSecure implements Keystore
func (ks *MemoryKeystore) SignSecure(address externalapi.Address, data *externalapi.TransactionData,
	intent txhashing.Intent) (*signing.Signature, error) {

	return ks.ring.signSecure(address, data, intent)
}

// Addresses implements Keystore
func (ks *MemoryKeystore) Addresses() []externalapi.Address {
	return ks.ring.addresses()
}
