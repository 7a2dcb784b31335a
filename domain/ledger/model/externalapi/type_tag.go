package externalapi

import (
	"strings"

	"github.com/pkg/errors"
)

// TypeTagKind is the kind of a TypeTag. Its value is the variant index
// used by the wire encoding.
type TypeTagKind uint8

// TypeTag kinds
const (
	TypeTagBool TypeTagKind = iota
	TypeTagU8
	TypeTagU64
	TypeTagU128
	TypeTagAddress
	TypeTagSigner
	TypeTagVector
	TypeTagStruct
	TypeTagU16
	TypeTagU32
	TypeTagU256
)

var primitiveTypeTagNames = map[string]TypeTagKind{
	"bool":    TypeTagBool,
	"u8":      TypeTagU8,
	"u16":     TypeTagU16,
	"u32":     TypeTagU32,
	"u64":     TypeTagU64,
	"u128":    TypeTagU128,
	"u256":    TypeTagU256,
	"address": TypeTagAddress,
	"signer":  TypeTagSigner,
}

// TypeTag is a Move type used as a type argument of a call
type TypeTag struct {
	Kind     TypeTagKind
	VectorOf *TypeTag
	Struct   *StructTag
}

// StructTag is a fully qualified Move struct type
type StructTag struct {
	Address    Address
	Module     string
	Name       string
	TypeParams []*TypeTag
}

// ErrInvalidTypeTag indicates that a type string could not be parsed
var ErrInvalidTypeTag = errors.New("invalid type tag")

// ParseTypeTag parses a Move type such as `u64`, `vector<u8>` or
// `0x2::coin::Coin<0x2::sui::SUI>`
func ParseTypeTag(s string) (*TypeTag, error) {
	parser := &typeTagParser{input: strings.ReplaceAll(s, " ", "")}
	tag, err := parser.parse()
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse type '%s'", s)
	}
	if parser.position != len(parser.input) {
		return nil, errors.Wrapf(ErrInvalidTypeTag, "unexpected trailing characters in '%s'", s)
	}
	return tag, nil
}

// ParseStructTag parses a Move struct type such as `0x2::sui::SUI`
func ParseStructTag(s string) (*StructTag, error) {
	tag, err := ParseTypeTag(s)
	if err != nil {
		return nil, err
	}
	if tag.Kind != TypeTagStruct {
		return nil, errors.Wrapf(ErrInvalidTypeTag, "'%s' is not a struct type", s)
	}
	return tag.Struct, nil
}

// CanonicalStructTag returns s with every address in its full-length form,
// so that `0x2::sui::SUI` and its padded spelling compare equal
func CanonicalStructTag(s string) (string, error) {
	tag, err := ParseStructTag(s)
	if err != nil {
		return "", err
	}
	return tag.String(), nil
}

type typeTagParser struct {
	input    string
	position int
}

func (p *typeTagParser) parse() (*TypeTag, error) {
	token := p.nextToken()
	if token == "" {
		return nil, errors.Wrapf(ErrInvalidTypeTag, "expected a type at position %d", p.position)
	}
	if kind, ok := primitiveTypeTagNames[token]; ok {
		return &TypeTag{Kind: kind}, nil
	}
	if token == "vector" {
		params, err := p.parseTypeParams()
		if err != nil {
			return nil, err
		}
		if len(params) != 1 {
			return nil, errors.Wrapf(ErrInvalidTypeTag, "vector expects exactly one type parameter, got %d", len(params))
		}
		return &TypeTag{Kind: TypeTagVector, VectorOf: params[0]}, nil
	}

	parts := strings.Split(token, "::")
	if len(parts) != 3 {
		return nil, errors.Wrapf(ErrInvalidTypeTag, "'%s' is not of the form address::module::name", token)
	}
	address, err := AddressFromHex(parts[0])
	if err != nil {
		return nil, err
	}
	if !IsValidIdentifier(parts[1]) || !IsValidIdentifier(parts[2]) {
		return nil, errors.Wrapf(ErrInvalidTypeTag, "'%s' contains an invalid identifier", token)
	}
	params, err := p.parseTypeParams()
	if err != nil {
		return nil, err
	}
	return &TypeTag{
		Kind: TypeTagStruct,
		Struct: &StructTag{
			Address:    address,
			Module:     parts[1],
			Name:       parts[2],
			TypeParams: params,
		},
	}, nil
}

func (p *typeTagParser) nextToken() string {
	start := p.position
	for p.position < len(p.input) {
		switch p.input[p.position] {
		case '<', '>', ',':
			return p.input[start:p.position]
		}
		p.position++
	}
	return p.input[start:p.position]
}

func (p *typeTagParser) parseTypeParams() ([]*TypeTag, error) {
	if p.position >= len(p.input) || p.input[p.position] != '<' {
		return nil, nil
	}
	p.position++
	var params []*TypeTag
	for {
		param, err := p.parse()
		if err != nil {
			return nil, err
		}
		params = append(params, param)
		if p.position >= len(p.input) {
			return nil, errors.Wrapf(ErrInvalidTypeTag, "unterminated type parameter list")
		}
		switch p.input[p.position] {
		case ',':
			p.position++
		case '>':
			p.position++
			return params, nil
		default:
			return nil, errors.Wrapf(ErrInvalidTypeTag, "unexpected '%c' at position %d", p.input[p.position], p.position)
		}
	}
}

// Clone returns a deep copy of the type. Cloning nil returns nil.
func (t *TypeTag) Clone() *TypeTag {
	if t == nil {
		return nil
	}
	clone := &TypeTag{Kind: t.Kind, VectorOf: t.VectorOf.Clone()}
	if t.Struct != nil {
		clone.Struct = &StructTag{
			Address: t.Struct.Address,
			Module:  t.Struct.Module,
			Name:    t.Struct.Name,
		}
		for _, param := range t.Struct.TypeParams {
			clone.Struct.TypeParams = append(clone.Struct.TypeParams, param.Clone())
		}
	}
	return clone
}

// String returns the canonical string form of the type
func (t *TypeTag) String() string {
	switch t.Kind {
	case TypeTagVector:
		return "vector<" + t.VectorOf.String() + ">"
	case TypeTagStruct:
		return t.Struct.String()
	}
	for name, kind := range primitiveTypeTagNames {
		if kind == t.Kind {
			return name
		}
	}
	return "unknown"
}

// String returns the canonical string form of the struct type
func (s *StructTag) String() string {
	var builder strings.Builder
	builder.WriteString(s.Address.String())
	builder.WriteString("::")
	builder.WriteString(s.Module)
	builder.WriteString("::")
	builder.WriteString(s.Name)
	if len(s.TypeParams) > 0 {
		builder.WriteByte('<')
		for i, param := range s.TypeParams {
			if i > 0 {
				builder.WriteString(", ")
			}
			builder.WriteString(param.String())
		}
		builder.WriteByte('>')
	}
	return builder.String()
}

// IsValidIdentifier returns whether s is a valid Move identifier
func IsValidIdentifier(s string) bool {
	if s == "" || s == "_" {
		return false
	}
	for i, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if i == 0 && !isLetter && r != '_' {
			return false
		}
		if !isLetter && !isDigit && r != '_' {
			return false
		}
	}
	return true
}
