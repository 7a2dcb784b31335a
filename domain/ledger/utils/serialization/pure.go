package serialization

import (
	"math/big"
	"unicode/utf8"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/poolforge/poolcreator/domain/ledger/model/externalapi"
)

// Value is a typed value that can be passed to a call as a pure input
type Value interface {
	encode(w *Writer) error
}

// DecodableValue is the target of DecodePure. Every pointer to a Value type
// in this package is a DecodableValue.
type DecodableValue interface {
	Value
	decode(r *Reader) error
}

// U8 is an unsigned 8-bit integer
type U8 uint8

// U16 is an unsigned 16-bit integer
type U16 uint16

// U32 is an unsigned 32-bit integer
type U32 uint32

// U64 is an unsigned 64-bit integer
type U64 uint64

// U128 is an unsigned 128-bit integer
type U128 uint256.Int

// U256 is an unsigned 256-bit integer
type U256 uint256.Int

// Bool is a boolean
type Bool bool

// String is a UTF-8 string
type String string

// Bytes is a vector of bytes
type Bytes []byte

// Address is an account address or an object ID passed by value
type Address externalapi.Address

// Vector is a homogeneous sequence of values
type Vector struct {
	Elements []Value

	// NewElement creates the target of each element when decoding
	NewElement func() DecodableValue
}

// Option is an optional value. A nil Value is None.
type Option struct {
	Value Value

	// NewValue creates the target of the contained value when decoding
	NewValue func() DecodableValue
}

// Struct is a record whose fields are encoded in declaration order
type Struct struct {
	Fields []Value
}

// Clock is the shared clock record: the clock's object identity followed by
// a millisecond timestamp
type Clock struct {
	ID          externalapi.ObjectID
	TimestampMs uint64
}

// NewClock returns the record of the system clock object at timestampMs
func NewClock(timestampMs uint64) *Clock {
	return &Clock{ID: externalapi.ClockObjectID, TimestampMs: timestampMs}
}

// CoinMetadata is the record describing a coin type
type CoinMetadata struct {
	Decimals    uint8
	Name        string
	Symbol      string
	Description string
	IconURL     *string
	ID          *externalapi.ObjectID
}

// NewU128FromUint64 returns x as a U128
func NewU128FromUint64(x uint64) *U128 {
	return (*U128)(uint256.NewInt(x))
}

// NewU128FromBig returns x as a U128, failing if x is negative or wider than
// 128 bits
func NewU128FromBig(x *big.Int) (*U128, error) {
	value, err := fromBig(x, 128)
	if err != nil {
		return nil, err
	}
	return (*U128)(value), nil
}

// NewU256FromBig returns x as a U256, failing if x is negative or wider than
// 256 bits
func NewU256FromBig(x *big.Int) (*U256, error) {
	value, err := fromBig(x, 256)
	if err != nil {
		return nil, err
	}
	return (*U256)(value), nil
}

func fromBig(x *big.Int, bits int) (*uint256.Int, error) {
	if x.Sign() < 0 {
		return nil, errors.Wrapf(ErrEncoding, "negative integer %s", x)
	}
	if x.BitLen() > bits {
		return nil, errors.Wrapf(ErrEncoding, "integer %s does not fit in %d bits", x, bits)
	}
	value, overflow := uint256.FromBig(x)
	if overflow {
		return nil, errors.Wrapf(ErrEncoding, "integer %s does not fit in 256 bits", x)
	}
	return value, nil
}

// Big returns the value as a big.Int
func (v *U128) Big() *big.Int {
	return (*uint256.Int)(v).ToBig()
}

// Big returns the value as a big.Int
func (v *U256) Big() *big.Int {
	return (*uint256.Int)(v).ToBig()
}

// EncodePure returns the canonical binary encoding of v
func EncodePure(v Value) ([]byte, error) {
	if v == nil {
		return nil, errors.Wrapf(ErrEncoding, "cannot encode a nil value")
	}
	w := &Writer{}
	err := v.encode(w)
	if err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// NewValue maps a native Go value into a Value. Signed integers, floating
// point numbers, integers wider than 256 bits and unknown types are rejected
// with ErrEncoding.
func NewValue(goValue interface{}) (Value, error) {
	switch v := goValue.(type) {
	case Value:
		return v, nil
	case uint8:
		return U8(v), nil
	case uint16:
		return U16(v), nil
	case uint32:
		return U32(v), nil
	case uint64:
		return U64(v), nil
	case uint:
		return U64(v), nil
	case bool:
		return Bool(v), nil
	case string:
		return String(v), nil
	case []byte:
		return Bytes(v), nil
	case externalapi.Address:
		return Address(v), nil
	case externalapi.ObjectID:
		return Address(v), nil
	case *big.Int:
		if v == nil {
			return nil, errors.Wrapf(ErrEncoding, "nil integer")
		}
		if v.Sign() >= 0 && v.BitLen() <= 128 {
			return NewU128FromBig(v)
		}
		return NewU256FromBig(v)
	case *uint256.Int:
		if v == nil {
			return nil, errors.Wrapf(ErrEncoding, "nil integer")
		}
		return (*U256)(v), nil
	case float32, float64:
		return nil, errors.Wrapf(ErrEncoding, "floating point value %v is not supported", v)
	case int, int8, int16, int32, int64:
		return nil, errors.Wrapf(ErrEncoding, "signed integer %v is not supported", v)
	}
	return nil, errors.Wrapf(ErrEncoding, "unsupported value of type %T", goValue)
}

func (v U8) encode(w *Writer) error   { return w.writeBCS(uint8(v)) }
func (v U16) encode(w *Writer) error  { return w.writeBCS(uint16(v)) }
func (v U32) encode(w *Writer) error  { return w.writeBCS(uint32(v)) }
func (v U64) encode(w *Writer) error  { return w.writeBCS(uint64(v)) }
func (v Bool) encode(w *Writer) error { return w.writeBCS(bool(v)) }

func (v String) encode(w *Writer) error {
	if !utf8.ValidString(string(v)) {
		return errors.Wrapf(ErrEncoding, "string %q is not valid UTF-8", string(v))
	}
	return w.writeBCS(string(v))
}

func (v Bytes) encode(w *Writer) error {
	return w.writeBCS([]byte(v))
}

func (v U128) encode(w *Writer) error {
	if v[2] != 0 || v[3] != 0 {
		return errors.Wrapf(ErrEncoding, "integer does not fit in 128 bits")
	}
	w.WriteU64(v[0])
	w.WriteU64(v[1])
	return nil
}

func (v U256) encode(w *Writer) error {
	for _, limb := range v {
		w.WriteU64(limb)
	}
	return nil
}

func (v Address) encode(w *Writer) error {
	w.WriteFixedBytes(v[:])
	return nil
}

func (v Vector) encode(w *Writer) error {
	w.WriteULEB128(uint32(len(v.Elements)))
	for i, element := range v.Elements {
		if element == nil {
			return errors.Wrapf(ErrEncoding, "vector element %d is nil", i)
		}
		err := element.encode(w)
		if err != nil {
			return errors.Wrapf(err, "vector element %d", i)
		}
	}
	return nil
}

func (v Option) encode(w *Writer) error {
	if v.Value == nil {
		w.WriteU8(0)
		return nil
	}
	w.WriteU8(1)
	return v.Value.encode(w)
}

func (v Struct) encode(w *Writer) error {
	for i, field := range v.Fields {
		if field == nil {
			return errors.Wrapf(ErrEncoding, "field %d is nil", i)
		}
		err := field.encode(w)
		if err != nil {
			return errors.Wrapf(err, "field %d", i)
		}
	}
	return nil
}

func (v Clock) encode(w *Writer) error {
	w.WriteFixedBytes(v.ID[:])
	return w.writeBCS(v.TimestampMs)
}

func (v CoinMetadata) encode(w *Writer) error {
	iconURL := Option{}
	if v.IconURL != nil {
		iconURL.Value = String(*v.IconURL)
	}
	id := Option{}
	if v.ID != nil {
		id.Value = Address(*v.ID)
	}
	return Struct{Fields: []Value{
		U8(v.Decimals),
		String(v.Name),
		String(v.Symbol),
		String(v.Description),
		iconURL,
		id,
	}}.encode(w)
}
