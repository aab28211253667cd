package backend

import "strings"

// StringRef is a non-owning view over a byte range, the Go analogue of
// edba::string_ref. Go strings already share their backing array without
// copying, so StringRef exists for its comparator surface rather than to
// avoid allocation: byte-wise equality, case-insensitive equality, and
// ASCII-insensitive ordering, used by ConnInfo, the dialect selector, and
// NameBinder while parsing without normalizing the whole input up front.
//
// It lives in package backend (rather than edba, where the rest of the
// spec's component numbering would otherwise place it) because
// NameBinder, its third caller, lives here too and backend cannot import
// edba; edba re-exports it as a type alias.
type StringRef string

// Equal reports byte-wise equality, mirroring edba's string_ref_less
// (case-sensitive ordering collapsed to the equal case).
func (r StringRef) Equal(other StringRef) bool {
	return string(r) == string(other)
}

// EqualFold reports case-insensitive equality, mirroring edba's
// string_ref_iless collapsed to the equal case.
func (r StringRef) EqualFold(other StringRef) bool {
	return strings.EqualFold(string(r), string(other))
}

// CompareFold performs an ASCII-insensitive lexicographic compare,
// returning <0, 0, >0 the way strings.Compare does.
func (r StringRef) CompareFold(other StringRef) int {
	a, b := string(r), string(other)
	for i := 0; i < len(a) && i < len(b); i++ {
		ca, cb := lowerByte(a[i]), lowerByte(b[i])
		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

func lowerByte(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c - 'A' + 'a'
	}
	return c
}

func (r StringRef) String() string { return string(r) }

func (r StringRef) Trim() StringRef {
	return StringRef(strings.TrimSpace(string(r)))
}
