package edba

import (
	"strconv"
	"strings"

	"github.com/caohanyu/edba/backend"
)

// SelectVariant picks the single SQL variant matching (engine, major,
// minor) out of sql, grounded on edba::select_statement (detail/utils.hpp).
//
// Grammar:
//
//	unannotated text is returned verbatim.
//	annotated form: a leading '~', then one or more "HEADER ~ BODY ~" pairs.
//	HEADER is empty (wildcard engine+version), an engine name (wildcard
//	version), or "engine/major.minor" / "engine/major" (minimum version;
//	both '/' and '.' are accepted as the engine/version separator).
//
// Pairs are scanned in order; the first whose header matches the engine
// name case-insensitively (or is empty) AND whose version is <=
// (major, minor) wins. No match is ErrSQLVariantNotFound.
func SelectVariant(sql, engine string, major, minor int) (string, error) {
	trimmed := strings.TrimLeft(sql, " \t\r\n")
	if !strings.HasPrefix(trimmed, "~") {
		return sql, nil
	}
	body := trimmed[1:]

	for len(body) > 0 {
		headerEnd := strings.IndexByte(body, '~')
		if headerEnd < 0 {
			break
		}
		header := string(backend.StringRef(body[:headerEnd]).Trim())
		rest := body[headerEnd+1:]

		bodyEnd := strings.IndexByte(rest, '~')
		if bodyEnd < 0 {
			break
		}
		variantBody := rest[:bodyEnd]
		body = rest[bodyEnd+1:]

		if headerMatches(header, engine, major, minor) {
			return variantBody, nil
		}
	}

	return "", ErrSQLVariantNotFound
}

// headerMatches implements the per-pair selection predicate: empty header
// is a wildcard; "engine" alone matches any version of that engine;
// "engine/M.m" or "engine/M" (also accepting '.' in place of '/' before
// the version) requires (major, minor) to be >= the header's version.
func headerMatches(header, engine string, major, minor int) bool {
	if header == "" {
		return true
	}

	engPart := header
	var verPart string
	hasVersion := false

	if i := strings.IndexByte(header, '/'); i >= 0 {
		engPart, verPart = header[:i], header[i+1:]
		hasVersion = true
	} else if i := lastDotBeforeDigits(header); i >= 0 {
		engPart, verPart = header[:i], header[i+1:]
		hasVersion = true
	}

	if !backend.StringRef(engPart).EqualFold(backend.StringRef(engine)) {
		return false
	}
	if !hasVersion {
		return true
	}

	wantMajor, wantMinor := parseVersion(verPart)
	if major != wantMajor {
		return major > wantMajor
	}
	return minor >= wantMinor
}

// lastDotBeforeDigits finds a '.' separating an engine name from a
// version that starts with a digit, e.g. "Microsoft SQL Server.9.0" ->
// index of the first '.'. Returns -1 if header has no such separator.
func lastDotBeforeDigits(header string) int {
	i := strings.IndexByte(header, '.')
	if i < 0 || i+1 >= len(header) {
		return -1
	}
	if header[i+1] < '0' || header[i+1] > '9' {
		return -1
	}
	return i
}

func parseVersion(s string) (major, minor int) {
	parts := strings.SplitN(s, ".", 2)
	major, _ = strconv.Atoi(strings.TrimSpace(parts[0]))
	if len(parts) > 1 {
		minor, _ = strconv.Atoi(strings.TrimSpace(parts[1]))
	}
	return
}

// SelectBatch splits sql on ';', trims and skips empty fragments, applies
// SelectVariant to each, and rejoins the results with ";\n\n". A fragment
// without '~' annotation is passed through unchanged.
func SelectBatch(sql, engine string, major, minor int) (string, error) {
	fragments := strings.Split(sql, ";")
	var selected []string

	for _, frag := range fragments {
		trimmed := strings.TrimSpace(frag)
		if trimmed == "" {
			continue
		}
		variant, err := SelectVariant(trimmed, engine, major, minor)
		if err != nil {
			return "", err
		}
		selected = append(selected, variant)
	}

	return strings.Join(selected, ";\n\n"), nil
}
