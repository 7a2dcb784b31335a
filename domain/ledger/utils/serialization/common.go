package serialization

import (
	"bytes"
	"encoding/binary"

	"github.com/fardream/go-bcs/bcs"
	"github.com/pkg/errors"
)

// ErrEncoding indicates a value outside of the encodable universe
var ErrEncoding = errors.New("encoding error")

// ErrDecoding indicates malformed input while decoding
var ErrDecoding = errors.New("decoding error")

// maxULEB128Length is the maximum number of bytes of a ULEB128-encoded uint32
const maxULEB128Length = 5

// Writer accumulates the canonical binary encoding of a sequence of values
type Writer struct {
	buffer bytes.Buffer
}

// Bytes returns the bytes written so far
func (w *Writer) Bytes() []byte {
	return w.buffer.Bytes()
}

// WriteULEB128 writes a length or variant index in ULEB128 form
func (w *Writer) WriteULEB128(value uint32) {
	for value >= 0x80 {
		w.buffer.WriteByte(byte(value&0x7f) | 0x80)
		value >>= 7
	}
	w.buffer.WriteByte(byte(value))
}

// WriteU8 writes a single byte
func (w *Writer) WriteU8(value uint8) {
	w.buffer.WriteByte(value)
}

// WriteU16 writes a little-endian uint16
func (w *Writer) WriteU16(value uint16) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], value)
	w.buffer.Write(buf[:])
}

// WriteU64 writes a little-endian uint64
func (w *Writer) WriteU64(value uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], value)
	w.buffer.Write(buf[:])
}

// WriteBool writes a boolean as a single 0 or 1 byte
func (w *Writer) WriteBool(value bool) {
	if value {
		w.buffer.WriteByte(1)
		return
	}
	w.buffer.WriteByte(0)
}

// WriteFixedBytes writes data with no length prefix
func (w *Writer) WriteFixedBytes(data []byte) {
	w.buffer.Write(data)
}

// WriteBytes writes data prefixed by its ULEB128 length
func (w *Writer) WriteBytes(data []byte) {
	w.WriteULEB128(uint32(len(data)))
	w.buffer.Write(data)
}

// WriteString writes s as length-prefixed UTF-8 bytes
func (w *Writer) WriteString(s string) {
	w.WriteBytes([]byte(s))
}

func (w *Writer) writeBCS(value interface{}) error {
	encoded, err := bcs.Marshal(value)
	if err != nil {
		return errors.Wrapf(ErrEncoding, "%T: %s", value, err)
	}
	w.buffer.Write(encoded)
	return nil
}

// Reader consumes the canonical binary encoding of a sequence of values
type Reader struct {
	data     []byte
	position int
}

// NewReader returns a reader over data
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Remaining returns the number of unread bytes
func (r *Reader) Remaining() int {
	return len(r.data) - r.position
}

// ReadULEB128 reads a ULEB128-encoded length or variant index
func (r *Reader) ReadULEB128() (uint32, error) {
	var value uint64
	for i := 0; i < maxULEB128Length; i++ {
		b, err := r.ReadU8()
		if err != nil {
			return 0, err
		}
		value |= uint64(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			if i > 0 && b == 0 {
				return 0, errors.Wrapf(ErrDecoding, "non-canonical ULEB128 encoding")
			}
			if value > uint64(^uint32(0)) {
				return 0, errors.Wrapf(ErrDecoding, "ULEB128 value %d overflows uint32", value)
			}
			return uint32(value), nil
		}
	}
	return 0, errors.Wrapf(ErrDecoding, "ULEB128 value is longer than %d bytes", maxULEB128Length)
}

// ReadU8 reads a single byte
func (r *Reader) ReadU8() (uint8, error) {
	data, err := r.ReadFixedBytes(1)
	if err != nil {
		return 0, err
	}
	return data[0], nil
}

// ReadU64 reads a little-endian uint64
func (r *Reader) ReadU64() (uint64, error) {
	data, err := r.ReadFixedBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(data), nil
}

// ReadFixedBytes reads exactly length bytes
func (r *Reader) ReadFixedBytes(length int) ([]byte, error) {
	if r.Remaining() < length {
		return nil, errors.Wrapf(ErrDecoding, "expected %d bytes but only %d remain", length, r.Remaining())
	}
	data := r.data[r.position : r.position+length]
	r.position += length
	return data, nil
}

// readBCS decodes the next size bytes into target
func (r *Reader) readBCS(target interface{}, size int) error {
	data, err := r.ReadFixedBytes(size)
	if err != nil {
		return err
	}
	consumed, err := bcs.Unmarshal(data, target)
	if err != nil {
		return errors.Wrapf(ErrDecoding, "%T: %s", target, err)
	}
	if consumed != size {
		return errors.Wrapf(ErrDecoding, "%T: consumed %d bytes out of %d", target, consumed, size)
	}
	return nil
}

// readLengthPrefixedBCS decodes a length-prefixed value (string or byte
// vector) into target
func (r *Reader) readLengthPrefixedBCS(target interface{}) error {
	start := r.position
	length, err := r.ReadULEB128()
	if err != nil {
		return err
	}
	prefixLength := r.position - start
	if int(length) > r.Remaining() {
		return errors.Wrapf(ErrDecoding, "length %d exceeds the %d remaining bytes", length, r.Remaining())
	}
	r.position = start
	return r.readBCS(target, prefixLength+int(length))
}
