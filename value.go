package edba

import (
	"io"
	"time"

	"github.com/caohanyu/edba/backend"
)

// BindValue is the bind-variant closed sum from spec §4.3, re-exported
// from the backend package so callers never need to import it directly.
type BindValue = backend.BindValue

func Null() BindValue             { return backend.Null() }
func Int64(v int64) BindValue     { return backend.Int64(v) }
func Uint64(v uint64) BindValue   { return backend.Uint64(v) }
func Float64(v float64) BindValue { return backend.Float64(v) }
func StringValue(v string) BindValue { return backend.String(v) }
func TimeValue(v time.Time) BindValue { return backend.Time(v) }
func BlobValue(v io.Reader) BindValue { return backend.Blob(v) }

// BindConverter is the bind_conversion<T> extension point (spec §4.3): a
// user type implementing it can be passed directly to Statement.Bind.
type BindConverter interface {
	BindConvert() (BindValue, error)
}

// FetchConverter is the fetch_conversion<T> extension point: a user type
// implementing it can be passed directly to Row.Fetch / Rowset[T].
type FetchConverter interface {
	FetchConvert(row *Row, col int) error
}

// toBindValue converts a Go value bound by the caller into the backend
// closed sum, consulting BindConverter for user types. Unsupported types
// are a programming error, reported as ErrBadValueCast — the frontend
// equivalent of the original's "default fails to compile" (Go has no
// compile-time trait dispatch, so this is the closest analogue: fail
// fast, at the first use, rather than silently coercing).
func toBindValue(v interface{}) (BindValue, error) {
	switch t := v.(type) {
	case nil:
		return Null(), nil
	case BindValue:
		return t, nil
	case BindConverter:
		return t.BindConvert()
	case int:
		return Int64(int64(t)), nil
	case int8:
		return Int64(int64(t)), nil
	case int16:
		return Int64(int64(t)), nil
	case int32:
		return Int64(int64(t)), nil
	case int64:
		return Int64(t), nil
	case uint:
		return Uint64(uint64(t)), nil
	case uint8:
		return Uint64(uint64(t)), nil
	case uint16:
		return Uint64(uint64(t)), nil
	case uint32:
		return Uint64(uint64(t)), nil
	case uint64:
		return Uint64(t), nil
	case float32:
		return Float64(float64(t)), nil
	case float64:
		return Float64(t), nil
	case string:
		return StringValue(t), nil
	case []byte:
		return StringValue(string(t)), nil
	case time.Time:
		return TimeValue(t), nil
	case io.Reader:
		return BlobValue(t), nil
	default:
		return BindValue{}, ErrBadValueCast
	}
}
