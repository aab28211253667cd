package backend

import (
	"strings"
	"testing"
	"time"
)

func TestBindValueAccessors(t *testing.T) {
	if v := Null(); !v.IsNull() {
		t.Error("Null().IsNull() = false")
	}
	if v, ok := Int64(42).Int64(); !ok || v != 42 {
		t.Errorf("Int64(42).Int64() = %d, %v", v, ok)
	}
	if _, ok := Int64(42).Uint64(); ok {
		t.Error("Int64(42).Uint64() ok = true, want false")
	}
	if s, ok := String("hi").Str(); !ok || s != "hi" {
		t.Errorf("String(hi).Str() = %q, %v", s, ok)
	}
}

func TestBindValueNativeDrainsBlob(t *testing.T) {
	v := Blob(strings.NewReader("payload"))
	native, err := v.Native()
	if err != nil {
		t.Fatalf("Native: %v", err)
	}
	b, ok := native.([]byte)
	if !ok || string(b) != "payload" {
		t.Errorf("Native() = %v, want []byte(\"payload\")", native)
	}
}

func TestBindValueSerialize(t *testing.T) {
	if got := Null().Serialize(); got != "(NULL)" {
		t.Errorf("Serialize(Null) = %q", got)
	}
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	if got := Time(ts).Serialize(); got != "2026-01-02 03:04:05" {
		t.Errorf("Serialize(Time) = %q", got)
	}
	if got := Int64(7).Serialize(); got != "7" {
		t.Errorf("Serialize(Int64) = %q", got)
	}
}

func TestDrainBlobHelper(t *testing.T) {
	b, err := DrainBlob(Blob(strings.NewReader("xyz")))
	if err != nil {
		t.Fatalf("DrainBlob: %v", err)
	}
	if string(b) != "xyz" {
		t.Errorf("DrainBlob() = %q", b)
	}
	b, err = DrainBlob(Int64(1))
	if err != nil || b != nil {
		t.Errorf("DrainBlob(non-blob) = %v, %v, want nil, nil", b, err)
	}
}
