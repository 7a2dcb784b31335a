package externalapi

import (
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
)

// AddressLength is the length in bytes of an address and of an object ID
const AddressLength = 32

// Address is the identity of an account on the ledger
type Address [AddressLength]byte

// ObjectID is the identity of an object on the ledger. Object IDs and
// addresses share the same space.
type ObjectID [AddressLength]byte

// PackageID is the ObjectID of a published Move package
type PackageID = ObjectID

// ClockObjectID is the ObjectID of the shared system clock
var ClockObjectID = ObjectID{AddressLength - 1: 0x6}

// ErrInvalidAddress indicates that an address or object ID string could not be parsed
var ErrInvalidAddress = errors.New("invalid address")

func parseHexID(s string) ([AddressLength]byte, error) {
	var id [AddressLength]byte
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(trimmed) == 0 || len(trimmed) > AddressLength*2 {
		return id, errors.Wrapf(ErrInvalidAddress, "'%s' has an invalid length", s)
	}
	if len(trimmed)%2 == 1 {
		trimmed = "0" + trimmed
	}
	decoded, err := hex.DecodeString(trimmed)
	if err != nil {
		return id, errors.Wrapf(ErrInvalidAddress, "'%s': %s", s, err)
	}
	copy(id[AddressLength-len(decoded):], decoded)
	return id, nil
}

// AddressFromHex parses an address from its hex form. Short forms such as
// 0x2 are left-padded with zeros.
func AddressFromHex(s string) (Address, error) {
	id, err := parseHexID(s)
	return Address(id), err
}

// ObjectIDFromHex parses an object ID from its hex form. Short forms such as
// 0x6 are left-padded with zeros.
func ObjectIDFromHex(s string) (ObjectID, error) {
	id, err := parseHexID(s)
	return ObjectID(id), err
}

// String returns the 0x-prefixed hex form of the address
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// String returns the 0x-prefixed hex form of the object ID
func (id ObjectID) String() string {
	return "0x" + hex.EncodeToString(id[:])
}

// MarshalText implements encoding.TextMarshaler
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := AddressFromHex(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (id ObjectID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (id *ObjectID) UnmarshalText(text []byte) error {
	parsed, err := ObjectIDFromHex(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
