package backend

import (
	"fmt"
	"io"
	"time"
)

// Kind tags the single active member of a BindValue.
type Kind int

const (
	KindNull Kind = iota
	KindInt64
	KindUint64
	KindFloat64
	KindString
	KindTime
	KindBlob
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt64:
		return "int64"
	case KindUint64:
		return "uint64"
	case KindFloat64:
		return "float64"
	case KindString:
		return "string"
	case KindTime:
		return "time"
	case KindBlob:
		return "blob"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// BindValue is the closed tagged union of everything a caller may bind to
// a statement placeholder: null, signed/unsigned integers, floats,
// strings, broken-down time, or a binary stream. At most one member is
// active, selected by Kind.
//
// BindValue is deliberately a plain struct rather than an interface{} —
// the point of the closed sum (spec §4.3) is that adapters switch on Kind
// once and never need a type-assertion fallback chain.
type BindValue struct {
	kind Kind
	i    int64
	u    uint64
	f    float64
	s    string
	t    time.Time
	blob io.Reader
}

func Null() BindValue                 { return BindValue{kind: KindNull} }
func Int64(v int64) BindValue         { return BindValue{kind: KindInt64, i: v} }
func Uint64(v uint64) BindValue       { return BindValue{kind: KindUint64, u: v} }
func Float64(v float64) BindValue     { return BindValue{kind: KindFloat64, f: v} }
func String(v string) BindValue       { return BindValue{kind: KindString, s: v} }
func Time(v time.Time) BindValue      { return BindValue{kind: KindTime, t: v} }
func Blob(v io.Reader) BindValue      { return BindValue{kind: KindBlob, blob: v} }

func (v BindValue) Kind() Kind { return v.kind }
func (v BindValue) IsNull() bool { return v.kind == KindNull }

// Int64 returns the int64 member; ok is false if Kind() != KindInt64.
func (v BindValue) Int64() (int64, bool) { return v.i, v.kind == KindInt64 }

// Uint64 returns the uint64 member; ok is false if Kind() != KindUint64.
func (v BindValue) Uint64() (uint64, bool) { return v.u, v.kind == KindUint64 }

// Float64 returns the float64 member; ok is false if Kind() != KindFloat64.
func (v BindValue) Float64() (float64, bool) { return v.f, v.kind == KindFloat64 }

// Str returns the string member; ok is false if Kind() != KindString.
func (v BindValue) Str() (string, bool) { return v.s, v.kind == KindString }

// Time returns the time member; ok is false if Kind() != KindTime.
func (v BindValue) Time() (time.Time, bool) { return v.t, v.kind == KindTime }

// BlobReader returns the stream member; ok is false if Kind() != KindBlob.
func (v BindValue) BlobReader() (io.Reader, bool) { return v.blob, v.kind == KindBlob }

// Native converts v to the closest database/sql-friendly Go value, for
// adapters built on top of database/sql (see drivers/sqlbase). Blob
// streams are drained into a []byte — binding a blob this way consumes
// the stream; re-executing the statement requires re-binding.
func (v BindValue) Native() (interface{}, error) {
	switch v.kind {
	case KindNull:
		return nil, nil
	case KindInt64:
		return v.i, nil
	case KindUint64:
		return v.u, nil
	case KindFloat64:
		return v.f, nil
	case KindString:
		return v.s, nil
	case KindTime:
		return v.t, nil
	case KindBlob:
		b, err := io.ReadAll(v.blob)
		if err != nil {
			return nil, fmt.Errorf("edba: reading blob bind value: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("edba: unhandled bind kind %v", v.kind)
	}
}

// Serialize renders v the way a statement monitor expects to see it in
// serialized bindings: blobs as "(BLOB)", nulls as "(NULL)", timestamps in
// canonical "YYYY-MM-DD HH:MM:SS" form, everything else via fmt.Sprint.
func (v BindValue) Serialize() string {
	switch v.kind {
	case KindNull:
		return "(NULL)"
	case KindBlob:
		return "(BLOB)"
	case KindTime:
		return v.t.Format("2006-01-02 15:04:05")
	case KindString:
		return v.s
	case KindInt64:
		return fmt.Sprintf("%d", v.i)
	case KindUint64:
		return fmt.Sprintf("%d", v.u)
	case KindFloat64:
		return fmt.Sprintf("%g", v.f)
	default:
		return ""
	}
}
