package answer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultDelimiter separates accepted alternatives in mark-scheme text.
const DefaultDelimiter = "/"

// AlternativeSet is the result of splitting an answer string into its
// accepted alternatives.
type AlternativeSet struct {
	HasDelimiter     bool     `json:"has_delimiter"`
	Alternatives     []string `json:"alternatives"`
	ValidationErrors []string `json:"validation_errors,omitempty"`
}

// ParseAlternatives splits s on delim (DefaultDelimiter when empty). Slashes
// inside brackets, numeric fractions and compound units are not treated as
// separators. Empty segments are reported and skipped.
func ParseAlternatives(s, delim string) AlternativeSet {
	if delim == "" {
		delim = DefaultDelimiter
	}

	segments := splitOutsideContext(s, delim)
	if len(segments) == 1 {
		return AlternativeSet{
			HasDelimiter: false,
			Alternatives: []string{strings.TrimSpace(s)},
		}
	}

	set := AlternativeSet{HasDelimiter: true, Alternatives: []string{}}
	seen := make(map[string]bool, len(segments))
	for i, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			set.ValidationErrors = append(set.ValidationErrors, fmt.Sprintf("empty alternative at position %d", i+1))
			continue
		}
		key := strings.ToLower(seg)
		if seen[key] {
			continue
		}
		seen[key] = true
		set.Alternatives = append(set.Alternatives, seg)
	}
	return set
}

func splitOutsideContext(s, delim string) []string {
	var (
		segments []string
		depth    int
		start    int
	)
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch r {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		}
		if depth == 0 && strings.HasPrefix(s[i:], delim) && !(delim == DefaultDelimiter && protectedDelimiter(s, i, len(delim))) {
			segments = append(segments, s[start:i])
			i += len(delim)
			start = i
			continue
		}
		i += size
	}
	return append(segments, s[start:])
}

// protectedDelimiter reports whether the delimiter at s[i:i+n] belongs to a
// fraction (3/4) or a compound unit (12 m/s, mol/dm3) rather than separating
// answers. Bare symbol pairs such as A/C or C/N are separated.
func protectedDelimiter(s string, i, n int) bool {
	left := s[:i]
	right := s[i+n:]
	if left == "" || right == "" {
		return false
	}
	lr, _ := utf8.DecodeLastRuneInString(left)
	rr, _ := utf8.DecodeRuneInString(right)
	if unicode.IsDigit(lr) && unicode.IsDigit(rr) {
		return true
	}
	lt := lastToken(left)
	rt := firstToken(right)
	if lt == "" || rt == "" || !unitSymbol(lt, true) || !unitSymbol(rt, true) {
		return false
	}
	// A unit pair only forms a compound after a quantity (5 m/s, 9.8 m/s/s)
	// or when the whole answer is a recognisable compound unit.
	before := strings.TrimRightFunc(left[:len(left)-len(lt)], unicode.IsSpace)
	if br, _ := utf8.DecodeLastRuneInString(before); unicode.IsDigit(br) {
		return true
	}
	if strings.HasSuffix(before, DefaultDelimiter) {
		return protectedDelimiter(s, len(before)-1, 1)
	}
	return compoundUnit(strings.TrimSpace(s))
}

func lastToken(s string) string {
	end := len(s)
	start := end
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(s[:start])
		if !unicode.IsLetter(r) && r != '°' {
			break
		}
		start -= size
	}
	return s[start:end]
}

func firstToken(s string) string {
	end := 0
	for end < len(s) {
		r, size := utf8.DecodeRuneInString(s[end:])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '°' && r != '^' {
			break
		}
		end += size
	}
	return s[:end]
}
