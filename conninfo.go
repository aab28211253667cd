package edba

import (
	"strconv"
	"strings"

	"github.com/caohanyu/edba/backend"
)

// KV is one key/value pair parsed out of a connection string, preserved
// in source order so ConnString() can reconstruct a stable option list.
type KV struct {
	Key   string
	Value string
}

// ConnInfo is a parsed connection descriptor: a driver name plus an
// ordered key/value option set, grounded on edba::conn_info. Keys
// beginning with '@' are edba-private and are excluded from ConnString().
//
// Grammar (spec §6):
//
//	uri      := driver ':' opt_list
//	opt_list := opt (';' opt)*
//	opt      := key '=' value | key '=' | key
type ConnInfo struct {
	driverName string
	options    []KV
}

// ParseConnInfo parses a "driver:key=value;key=value;..." connection URI.
// Driver name must appear before the first ':'; an empty driver name
// yields ErrInvalidConnectionString.
func ParseConnInfo(uri string) (*ConnInfo, error) {
	colon := strings.IndexByte(uri, ':')
	if colon <= 0 {
		return nil, ErrInvalidConnectionString
	}

	ci := &ConnInfo{driverName: uri[:colon]}

	rest := uri[colon+1:]
	for _, part := range strings.Split(rest, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		eq := strings.IndexByte(part, '=')
		var key, value string
		if eq < 0 {
			key = part
		} else {
			key = part[:eq]
			value = part[eq+1:]
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" {
			continue
		}
		ci.options = append(ci.options, KV{Key: key, Value: value})
	}

	return ci, nil
}

// DriverName is the prefix of the connection URI before the first ':'.
func (ci *ConnInfo) DriverName() string { return ci.driverName }

// Has reports whether key was present in the connection string.
func (ci *ConnInfo) Has(key string) bool {
	_, ok := ci.lookup(key)
	return ok
}

func (ci *ConnInfo) lookup(key string) (string, bool) {
	want := backend.StringRef(key)
	for _, kv := range ci.options {
		if backend.StringRef(kv.Key).EqualFold(want) {
			return kv.Value, true
		}
	}
	return "", false
}

// String returns the value for key, or def if key is absent.
func (ci *ConnInfo) String(key, def string) string {
	if v, ok := ci.lookup(key); ok {
		return v
	}
	return def
}

// Int returns the value for key parsed as an integer, or def if key is
// absent or not a valid integer.
func (ci *ConnInfo) Int(key string, def int) int {
	v, ok := ci.lookup(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Bool returns the value for key parsed as a boolean ("on"/"off",
// "true"/"false", "1"/"0"), or def if key is absent or unparseable.
func (ci *ConnInfo) Bool(key string, def bool) bool {
	v, ok := ci.lookup(key)
	if !ok {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true
	case "off", "false", "0", "no":
		return false
	default:
		return def
	}
}

// ConnString reconstructs a "key=value; " option list suitable for
// passing to the underlying driver, excluding edba-private ('@'-prefixed)
// keys.
func (ci *ConnInfo) ConnString() string {
	var b strings.Builder
	for _, kv := range ci.options {
		if strings.HasPrefix(kv.Key, "@") {
			continue
		}
		b.WriteString(kv.Key)
		b.WriteByte('=')
		b.WriteString(kv.Value)
		b.WriteString("; ")
	}
	return b.String()
}

// PgConnString reconstructs the option list using PostgreSQL's
// key='escaped value' quoting rules, excluding edba-private keys.
func (ci *ConnInfo) PgConnString() string {
	var b strings.Builder
	for _, kv := range ci.options {
		if strings.HasPrefix(kv.Key, "@") {
			continue
		}
		b.WriteString(kv.Key)
		b.WriteString("='")
		for i := 0; i < len(kv.Value); i++ {
			c := kv.Value[i]
			if c == '\\' {
				b.WriteString(`\\`)
			} else if c == '\'' {
				b.WriteString(`\'`)
			} else {
				b.WriteByte(c)
			}
		}
		b.WriteString("' ")
	}
	return b.String()
}
