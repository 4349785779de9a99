package binaryserializer

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// maxItems is the number of buffers to keep in the free
// list to use for binary serialization and deserialization.
const maxItems = 1024

// MaxVarBytesLength caps length-prefixed fields so that a corrupt length
// cannot trigger a huge allocation.
const MaxVarBytesLength = 1 << 20

// Borrow returns a byte slice from the free list with a length of 8. A new
// buffer is allocated if there are not any available on the free list.
func Borrow() []byte {
	var buf []byte
	select {
	case buf = <-binaryFreeList:
	default:
		buf = make([]byte, 8)
	}
	return buf[:8]
}

// Return puts the provided byte slice back on the free list. The buffer MUST
// have been obtained via the Borrow function and therefore have a cap of 8.
func Return(buf []byte) {
	select {
	case binaryFreeList <- buf:
	default:
		// Let it go to the garbage collector.
	}
}

func readInto(r io.Reader, size int) ([]byte, error) {
	buf := Borrow()[:size]
	if _, err := io.ReadFull(r, buf); err != nil {
		Return(buf)
		return nil, errors.WithStack(err)
	}
	return buf, nil
}

// Uint8 reads a single byte from the provided reader.
func Uint8(r io.Reader) (uint8, error) {
	buf, err := readInto(r, 1)
	if err != nil {
		return 0, err
	}
	rv := buf[0]
	Return(buf)
	return rv, nil
}

// Uint32 reads four little-endian bytes from the provided reader.
func Uint32(r io.Reader) (uint32, error) {
	buf, err := readInto(r, 4)
	if err != nil {
		return 0, err
	}
	rv := binary.LittleEndian.Uint32(buf)
	Return(buf)
	return rv, nil
}

// Uint64 reads eight little-endian bytes from the provided reader.
func Uint64(r io.Reader) (uint64, error) {
	buf, err := readInto(r, 8)
	if err != nil {
		return 0, err
	}
	rv := binary.LittleEndian.Uint64(buf)
	Return(buf)
	return rv, nil
}

// Int64 reads eight little-endian bytes from the provided reader as a signed
// integer.
func Int64(r io.Reader) (int64, error) {
	rv, err := Uint64(r)
	return int64(rv), err
}

// VarBytes reads a uint32 length prefix followed by that many bytes.
func VarBytes(r io.Reader) ([]byte, error) {
	length, err := Uint32(r)
	if err != nil {
		return nil, err
	}
	if length > MaxVarBytesLength {
		return nil, errors.Errorf("variable length field of %d bytes exceeds the maximum of %d",
			length, MaxVarBytesLength)
	}
	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, errors.WithStack(err)
	}
	return data, nil
}

// PutUint8 writes a single byte to the given writer.
func PutUint8(w io.Writer, val uint8) error {
	buf := Borrow()[:1]
	buf[0] = val
	_, err := w.Write(buf)
	Return(buf)
	return errors.WithStack(err)
}

// PutUint32 writes val as four little-endian bytes.
func PutUint32(w io.Writer, val uint32) error {
	buf := Borrow()[:4]
	binary.LittleEndian.PutUint32(buf, val)
	_, err := w.Write(buf)
	Return(buf)
	return errors.WithStack(err)
}

// PutUint64 writes val as eight little-endian bytes.
func PutUint64(w io.Writer, val uint64) error {
	buf := Borrow()[:8]
	binary.LittleEndian.PutUint64(buf, val)
	_, err := w.Write(buf)
	Return(buf)
	return errors.WithStack(err)
}

// PutInt64 writes val as eight little-endian bytes.
func PutInt64(w io.Writer, val int64) error {
	return PutUint64(w, uint64(val))
}

// PutVarBytes writes a uint32 length prefix followed by data.
func PutVarBytes(w io.Writer, data []byte) error {
	if len(data) > MaxVarBytesLength {
		return errors.Errorf("variable length field of %d bytes exceeds the maximum of %d",
			len(data), MaxVarBytesLength)
	}
	err := PutUint32(w, uint32(len(data)))
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return errors.WithStack(err)
}

// binaryFreeList provides a concurrent safe free list of byte slices with a
// cap of 8, used as temporary buffers when encoding and decoding primitive
// integers.
var binaryFreeList = make(chan []byte, maxItems)
