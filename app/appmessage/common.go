package appmessage

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
)

// RPCError represents an error arriving from the RPC
type RPCError struct {
	Code    int
	Message string
}

func (err RPCError) Error() string {
	return fmt.Sprintf("%s (code %d)", err.Message, err.Code)
}

// RPCErrorf formats according to a format specifier and returns the string
// as an RPCError.
func RPCErrorf(code int, format string, args ...interface{}) *RPCError {
	return &RPCError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// BigInt is an unsigned 64-bit integer that travels as a decimal string
type BigInt uint64

// MarshalJSON implements json.Marshaler
func (b BigInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatUint(uint64(b), 10))
}

// UnmarshalJSON implements json.Unmarshaler. A bare JSON number is accepted
// as well.
func (b *BigInt) UnmarshalJSON(data []byte) error {
	var text string
	if len(data) > 0 && data[0] == '"' {
		err := json.Unmarshal(data, &text)
		if err != nil {
			return err
		}
	} else {
		text = string(data)
	}
	value, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return errors.Wrapf(err, "invalid unsigned integer %s", data)
	}
	*b = BigInt(value)
	return nil
}

// RawBytes is a byte string that travels as an array of numbers. A base64
// string is accepted as well.
type RawBytes []byte

// MarshalJSON implements json.Marshaler
func (r RawBytes) MarshalJSON() ([]byte, error) {
	numbers := make([]uint16, len(r))
	for i, b := range r {
		numbers[i] = uint16(b)
	}
	return json.Marshal(numbers)
}

// UnmarshalJSON implements json.Unmarshaler
func (r *RawBytes) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var encoded string
		err := json.Unmarshal(data, &encoded)
		if err != nil {
			return err
		}
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return errors.Wrapf(err, "invalid base64 bytes")
		}
		*r = decoded
		return nil
	}

	var numbers []uint16
	err := json.Unmarshal(data, &numbers)
	if err != nil {
		return err
	}
	bytes := make([]byte, len(numbers))
	for i, number := range numbers {
		if number > 0xff {
			return errors.Errorf("byte value %d out of range", number)
		}
		bytes[i] = byte(number)
	}
	*r = bytes
	return nil
}
