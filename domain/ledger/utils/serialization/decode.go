package serialization

import (
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/poolforge/poolcreator/domain/ledger/model/externalapi"
)

// DecodePure decodes data into target. Composite targets (Vector, Option,
// Struct) describe the expected shape: Struct fields must be DecodableValues,
// and Vector/Option targets must set their element constructors. Trailing
// bytes are an error.
func DecodePure(data []byte, target DecodableValue) error {
	r := NewReader(data)
	err := target.decode(r)
	if err != nil {
		return err
	}
	if r.Remaining() != 0 {
		return errors.Wrapf(ErrDecoding, "%d trailing bytes", r.Remaining())
	}
	return nil
}

func (v *U8) decode(r *Reader) error {
	var value uint8
	err := r.readBCS(&value, 1)
	*v = U8(value)
	return err
}

func (v *U16) decode(r *Reader) error {
	var value uint16
	err := r.readBCS(&value, 2)
	*v = U16(value)
	return err
}

func (v *U32) decode(r *Reader) error {
	var value uint32
	err := r.readBCS(&value, 4)
	*v = U32(value)
	return err
}

func (v *U64) decode(r *Reader) error {
	var value uint64
	err := r.readBCS(&value, 8)
	*v = U64(value)
	return err
}

func (v *Bool) decode(r *Reader) error {
	b, err := r.ReadU8()
	if err != nil {
		return err
	}
	switch b {
	case 0:
		*v = false
	case 1:
		*v = true
	default:
		return errors.Wrapf(ErrDecoding, "invalid boolean byte %d", b)
	}
	return nil
}

func (v *String) decode(r *Reader) error {
	var value string
	err := r.readLengthPrefixedBCS(&value)
	if err != nil {
		return err
	}
	if !utf8.ValidString(value) {
		return errors.Wrapf(ErrDecoding, "string is not valid UTF-8")
	}
	*v = String(value)
	return nil
}

func (v *Bytes) decode(r *Reader) error {
	length, err := r.ReadULEB128()
	if err != nil {
		return err
	}
	value, err := r.ReadFixedBytes(int(length))
	if err != nil {
		return err
	}
	*v = append(Bytes{}, value...)
	return nil
}

func (v *U128) decode(r *Reader) error {
	low, err := r.ReadU64()
	if err != nil {
		return err
	}
	high, err := r.ReadU64()
	if err != nil {
		return err
	}
	*v = U128{low, high, 0, 0}
	return nil
}

func (v *U256) decode(r *Reader) error {
	for i := range v {
		limb, err := r.ReadU64()
		if err != nil {
			return err
		}
		v[i] = limb
	}
	return nil
}

func (v *Address) decode(r *Reader) error {
	data, err := r.ReadFixedBytes(externalapi.AddressLength)
	if err != nil {
		return err
	}
	copy(v[:], data)
	return nil
}

func (v *Vector) decode(r *Reader) error {
	if v.NewElement == nil {
		return errors.Wrapf(ErrDecoding, "vector target has no element constructor")
	}
	length, err := r.ReadULEB128()
	if err != nil {
		return err
	}
	if int(length) > r.Remaining() {
		return errors.Wrapf(ErrDecoding, "vector length %d exceeds the %d remaining bytes", length, r.Remaining())
	}
	v.Elements = make([]Value, length)
	for i := range v.Elements {
		element := v.NewElement()
		err := element.decode(r)
		if err != nil {
			return errors.Wrapf(err, "vector element %d", i)
		}
		v.Elements[i] = element
	}
	return nil
}

func (v *Option) decode(r *Reader) error {
	tag, err := r.ReadU8()
	if err != nil {
		return err
	}
	switch tag {
	case 0:
		v.Value = nil
		return nil
	case 1:
		if v.NewValue == nil {
			return errors.Wrapf(ErrDecoding, "option target has no value constructor")
		}
		value := v.NewValue()
		err := value.decode(r)
		if err != nil {
			return err
		}
		v.Value = value
		return nil
	}
	return errors.Wrapf(ErrDecoding, "invalid option tag %d", tag)
}

func (v *Struct) decode(r *Reader) error {
	for i, field := range v.Fields {
		decodable, ok := field.(DecodableValue)
		if !ok {
			return errors.Wrapf(ErrDecoding, "field %d of type %T is not a decoding target", i, field)
		}
		err := decodable.decode(r)
		if err != nil {
			return errors.Wrapf(err, "field %d", i)
		}
	}
	return nil
}

func (v *Clock) decode(r *Reader) error {
	id, err := r.ReadFixedBytes(externalapi.AddressLength)
	if err != nil {
		return err
	}
	copy(v.ID[:], id)
	v.TimestampMs, err = r.ReadU64()
	return err
}

func (v *CoinMetadata) decode(r *Reader) error {
	var decimals U8
	var name, symbol, description String
	iconURL := Option{NewValue: func() DecodableValue { return new(String) }}
	id := Option{NewValue: func() DecodableValue { return new(Address) }}
	err := (&Struct{Fields: []Value{&decimals, &name, &symbol, &description, &iconURL, &id}}).decode(r)
	if err != nil {
		return err
	}

	*v = CoinMetadata{
		Decimals:    uint8(decimals),
		Name:        string(name),
		Symbol:      string(symbol),
		Description: string(description),
	}
	if iconURL.Value != nil {
		url := string(*iconURL.Value.(*String))
		v.IconURL = &url
	}
	if id.Value != nil {
		objectID := externalapi.ObjectID(*id.Value.(*Address))
		v.ID = &objectID
	}
	return nil
}
