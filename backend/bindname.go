package backend

import (
	"fmt"
	"sort"
	"strings"
)

// PlaceholderFunc writes the backend's positional marker for the n-th
// (1-based) placeholder: "?" for MySQL/SQLite, "$N" for PostgreSQL.
type PlaceholderFunc func(pos int) string

// QuestionMarker is the PlaceholderFunc for backends using "?" markers.
func QuestionMarker(int) string { return "?" }

// DollarMarker is the PlaceholderFunc for backends using "$N" markers.
func DollarMarker(pos int) string { return fmt.Sprintf("$%d", pos) }

type nameEntry struct {
	name string
	pos  int
}

// NameBinder preprocesses SQL containing ":name" placeholders into a
// backend's native positional form, recording a name→position multimap.
// It is a single left-to-right pass, grounded directly on edba's
// bind_by_name_helper: on ':name' it assigns the next 1-based index and
// writes the backend's marker in its place. A name may repeat; all of
// its positions are recorded and must be bound together.
//
// String literals are not parsed — every ":ident" outside a "--" or
// "/* */" comment is treated as a placeholder. Callers who need a
// literal colon inside a string escape it as "::" in the source SQL.
type NameBinder struct {
	patched string
	names   []nameEntry // sorted by name for IndicesFor's binary search
}

// NewNameBinder scans sql and builds the patched query plus name→position
// table, using print to render each backend-native placeholder marker.
func NewNameBinder(sql string, print PlaceholderFunc) *NameBinder {
	var out strings.Builder
	var names []nameEntry

	idx := 1
	i := 0
	n := len(sql)
	inLineComment := false
	inBlockComment := false

	for i < n {
		c := sql[i]

		if inLineComment {
			out.WriteByte(c)
			if c == '\n' {
				inLineComment = false
			}
			i++
			continue
		}
		if inBlockComment {
			out.WriteByte(c)
			if c == '*' && i+1 < n && sql[i+1] == '/' {
				out.WriteByte('/')
				i += 2
				inBlockComment = false
				continue
			}
			i++
			continue
		}
		if c == '-' && i+1 < n && sql[i+1] == '-' {
			inLineComment = true
			out.WriteByte(c)
			i++
			continue
		}
		if c == '/' && i+1 < n && sql[i+1] == '*' {
			inBlockComment = true
			out.WriteByte(c)
			i++
			continue
		}
		if c == ':' {
			// "::" escapes to a literal single colon.
			if i+1 < n && sql[i+1] == ':' {
				out.WriteByte(':')
				i += 2
				continue
			}
			j := i + 1
			for j < n && isNameChar(sql[j]) {
				j++
			}
			if j > i+1 {
				name := sql[i+1 : j]
				names = append(names, nameEntry{name: name, pos: idx})
				out.WriteString(print(idx))
				idx++
				i = j
				continue
			}
		}
		out.WriteByte(c)
		i++
	}

	sort.SliceStable(names, func(a, b int) bool { return names[a].name < names[b].name })

	return &NameBinder{patched: out.String(), names: names}
}

func isNameChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// PatchedQuery returns the rewritten SQL. Safe to call repeatedly; it
// always returns the same bytes.
func (b *NameBinder) PatchedQuery() string { return b.patched }

// BindingsCount returns the total number of placeholder occurrences
// (positions), which may exceed the number of distinct names.
func (b *NameBinder) BindingsCount() int { return len(b.names) }

// IndicesFor returns every 1-based position bound to name, in the order
// they appeared in the source SQL. Returns ErrInvalidPlaceholder if name
// never occurred.
func (b *NameBinder) IndicesFor(name string) ([]int, error) {
	ref := StringRef(name)
	lo := sort.Search(len(b.names), func(i int) bool { return b.names[i].name >= name })
	hi := lo
	for hi < len(b.names) && StringRef(b.names[hi].name).Equal(ref) {
		hi++
	}
	if lo == hi {
		return nil, ErrInvalidPlaceholder
	}
	out := make([]int, 0, hi-lo)
	for _, e := range b.names[lo:hi] {
		out = append(out, e.pos)
	}
	sort.Ints(out)
	return out, nil
}
