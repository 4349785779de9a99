package binaryserializer

import (
	"bytes"
	"io"
	"testing"

	"github.com/pkg/errors"
)

func TestPrimitives(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := PutUint8(buf, 7); err != nil {
		t.Fatalf("PutUint8: %s", err)
	}
	if err := PutUint32(buf, 0xdeadbeef); err != nil {
		t.Fatalf("PutUint32: %s", err)
	}
	if err := PutInt64(buf, -42); err != nil {
		t.Fatalf("PutInt64: %s", err)
	}
	if err := PutVarBytes(buf, []byte("ledger")); err != nil {
		t.Fatalf("PutVarBytes: %s", err)
	}

	u8, err := Uint8(buf)
	if err != nil || u8 != 7 {
		t.Fatalf("Uint8: Expected 7, found %d (%v)", u8, err)
	}
	u32, err := Uint32(buf)
	if err != nil || u32 != 0xdeadbeef {
		t.Fatalf("Uint32: Expected 0xdeadbeef, found %x (%v)", u32, err)
	}
	i64, err := Int64(buf)
	if err != nil || i64 != -42 {
		t.Fatalf("Int64: Expected -42, found %d (%v)", i64, err)
	}
	data, err := VarBytes(buf)
	if err != nil || string(data) != "ledger" {
		t.Fatalf("VarBytes: Expected ledger, found %q (%v)", data, err)
	}

	_, err = Uint64(buf)
	if !errors.Is(err, io.EOF) {
		t.Fatalf("Uint64: Expected io.EOF on empty reader, found %v", err)
	}
}

func TestVarBytesRejectsHugeLength(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := PutUint32(buf, MaxVarBytesLength+1); err != nil {
		t.Fatalf("PutUint32: %s", err)
	}
	_, err := VarBytes(buf)
	if err == nil {
		t.Fatalf("VarBytes: expected an error for an oversized length prefix")
	}
}
