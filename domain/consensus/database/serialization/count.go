package serialization

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// DbBlockCount is the serialized form of the number of stored blocks
type DbBlockCount struct {
	Count uint64
}

// Marshal encodes the count in protobuf wire format
func (x *DbBlockCount) Marshal() []byte {
	return appendVarintField(nil, 1, x.Count)
}

// Unmarshal decodes a count previously encoded with Marshal
func (x *DbBlockCount) Unmarshal(b []byte) error {
	return consumeMessage(b, func(number protowire.Number, wireType protowire.Type, b []byte) (int, error) {
		if number == 1 {
			return consumeVarint(wireType, b, &x.Count)
		}
		return skipField, nil
	})
}
