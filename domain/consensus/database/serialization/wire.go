package serialization

import (
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// fieldHandler consumes the value of a single field from b and returns the
// number of bytes it consumed. Unknown fields are skipped by the caller when
// the handler returns skipField.
type fieldHandler func(number protowire.Number, wireType protowire.Type, b []byte) (int, error)

const skipField = -1

func consumeMessage(b []byte, handler fieldHandler) error {
	for len(b) > 0 {
		number, wireType, n := protowire.ConsumeTag(b)
		if n < 0 {
			return errors.Wrap(protowire.ParseError(n), "malformed field tag")
		}
		b = b[n:]

		n, err := handler(number, wireType, b)
		if err != nil {
			return errors.Wrapf(err, "field %d", number)
		}
		if n == skipField {
			n = protowire.ConsumeFieldValue(number, wireType, b)
		}
		if n < 0 {
			return errors.Wrapf(protowire.ParseError(n), "field %d", number)
		}
		b = b[n:]
	}
	return nil
}

func consumeVarint(wireType protowire.Type, b []byte, out *uint64) (int, error) {
	if wireType != protowire.VarintType {
		return 0, errors.Errorf("expected a varint, found wire type %d", wireType)
	}
	value, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	*out = value
	return n, nil
}

func consumeFixed64(wireType protowire.Type, b []byte, out *uint64) (int, error) {
	if wireType != protowire.Fixed64Type {
		return 0, errors.Errorf("expected a fixed64, found wire type %d", wireType)
	}
	value, n := protowire.ConsumeFixed64(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	*out = value
	return n, nil
}

// consumeBytes copies the value out of b, so the result does not alias the
// buffer handed out by the database.
func consumeBytes(wireType protowire.Type, b []byte, out *[]byte) (int, error) {
	if wireType != protowire.BytesType {
		return 0, errors.Errorf("expected length-delimited bytes, found wire type %d", wireType)
	}
	value, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	*out = append([]byte{}, value...)
	return n, nil
}

func appendBytesField(b []byte, number protowire.Number, value []byte) []byte {
	if len(value) == 0 {
		return b
	}
	b = protowire.AppendTag(b, number, protowire.BytesType)
	return protowire.AppendBytes(b, value)
}

func appendVarintField(b []byte, number protowire.Number, value uint64) []byte {
	if value == 0 {
		return b
	}
	b = protowire.AppendTag(b, number, protowire.VarintType)
	return protowire.AppendVarint(b, value)
}

type marshaler interface {
	Marshal() []byte
}

func appendMessageField(b []byte, number protowire.Number, message marshaler) []byte {
	b = protowire.AppendTag(b, number, protowire.BytesType)
	return protowire.AppendBytes(b, message.Marshal())
}
