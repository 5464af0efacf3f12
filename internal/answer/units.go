package answer

import (
	"regexp"
	"strings"
	"unicode"
)

// baseUnits are unit symbols that may not take an SI prefix. Symbols are
// case sensitive: N is a newton, n is only a prefix.
var baseUnits = setOf(
	"min", "h", "hr", "hrs", "yr", "day", "days",
	"K", "°C", "°F", "°", "%", "rad", "sr", "dB", "bar", "atm", "cd",
)

// prefixableUnits take the prefixes below (kg, mm, kJ, MHz, µA, mol).
var prefixableUnits = setOf(
	"m", "s", "g", "mol", "J", "N", "W", "V", "A", "Pa", "Hz", "L", "l",
	"C", "Ω", "eV", "T", "F", "Wb",
)

var unitPrefixes = []string{"p", "n", "µ", "μ", "u", "m", "c", "d", "k", "M", "G"}

// unitWords are spelled-out unit names, matched case-insensitively with an
// optional plural ending.
var unitWords = setOf(
	"metre", "meter", "centimetre", "centimeter", "millimetre", "millimeter",
	"kilometre", "kilometer", "second", "minute", "hour", "year",
	"gram", "kilogram", "milligram", "tonne",
	"newton", "joule", "kilojoule", "watt", "kilowatt", "volt", "amp", "ampere",
	"ohm", "coulomb", "kelvin", "pascal", "hertz", "litre", "liter", "millilitre",
	"milliliter", "mole", "degree", "percent", "tesla", "farad",
)

// commonCompounds are compound units recognised even without a number in
// front, where every part is a single letter.
var commonCompounds = setOf("m/s", "m/s2", "m/s^2", "km/h", "N/m", "N/m2", "C/s", "J/s", "V/m")

var looseUnits = func() map[string]bool {
	out := map[string]bool{}
	for sym := range allSymbols() {
		if len([]rune(sym)) > 1 {
			out[strings.ToLower(sym)] = true
		}
	}
	return out
}()

var strictUnits = allSymbols()

func allSymbols() map[string]bool {
	out := map[string]bool{}
	for sym := range baseUnits {
		out[sym] = true
	}
	for sym := range prefixableUnits {
		out[sym] = true
		for _, p := range unitPrefixes {
			out[p+sym] = true
		}
	}
	return out
}

func setOf(vals ...string) map[string]bool {
	out := make(map[string]bool, len(vals))
	for _, v := range vals {
		out[v] = true
	}
	return out
}

// stripExponent turns cm3, s^2, s-1 or m² into the bare symbol.
func stripExponent(tok string) string {
	return strings.TrimRightFunc(tok, func(r rune) bool {
		return unicode.IsDigit(r) || r == '^' || r == '-' || r == '−' || r == '⁻' || strings.ContainsRune("⁰¹²³⁴⁵⁶⁷⁸⁹", r)
	})
}

// unitSymbol reports whether tok, exponent removed, is one unit symbol or
// unit name. Loose matching also accepts miscased multi-letter symbols
// (kj, khz) and is only safe next to a number.
func unitSymbol(tok string, loose bool) bool {
	sym := stripExponent(tok)
	if sym == "" {
		return false
	}
	if strictUnits[sym] {
		return true
	}
	if !loose {
		return false
	}
	lower := strings.ToLower(sym)
	if looseUnits[lower] {
		return true
	}
	for _, suffix := range []string{"", "s", "es"} {
		if w, ok := strings.CutSuffix(lower, suffix); ok && unitWords[w] {
			return true
		}
	}
	return false
}

// IsUnit reports whether s is a unit of measurement: symbols or unit names,
// optionally with exponents, joined by "/", "·", spaces or "per"
// (m/s, mol dm-3, kg m^-3, metres per second).
func IsUnit(s string) bool {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return false
	}
	for i, f := range fields {
		if strings.EqualFold(f, "per") && i > 0 && i < len(fields)-1 {
			continue
		}
		for _, part := range strings.FieldsFunc(f, func(r rune) bool { return r == '/' || r == '·' }) {
			if !unitSymbol(part, true) {
				return false
			}
		}
		if strings.Trim(f, "/·") != f {
			return false
		}
	}
	return true
}

// compoundUnit reports whether s on its own reads as a compound unit:
// a well-known one, or slash-joined strict symbols with at least two
// multi-letter parts (mol/dm3, kJ/mol). Pairs of single letters such as
// A/C or C/N stay ambiguous and are not treated as units.
func compoundUnit(s string) bool {
	if commonCompounds[s] {
		return true
	}
	parts := strings.Split(s, "/")
	if len(parts) < 2 {
		return false
	}
	multi := 0
	for _, p := range parts {
		if !unitSymbol(p, false) {
			return false
		}
		if len([]rune(stripExponent(p))) > 1 {
			multi++
		}
	}
	return multi >= 2
}

var (
	quantityPattern = regexp.MustCompile(`^(-?\d+(?:\.\d+)?(?:\s*[x×]\s*10\^?[-−]?\d+)?)\s*(.+)$`)
	quantityNumber  = regexp.MustCompile(`(?:^|[^\w.])-?\d+(?:\.\d+)?(?:\s*[x×]\s*10\^?[-−]?\d+)?`)
)

// SplitQuantity splits "9.8 m/s2" into its value and unit. ok is false
// unless s is a number followed only by a unit.
func SplitQuantity(s string) (value, unit string, ok bool) {
	m := quantityPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", "", false
	}
	unit = strings.TrimRight(m[2], ".")
	if !IsUnit(unit) {
		return "", "", false
	}
	return m[1], unit, true
}

// HasQuantity reports whether any number in s is directly followed by a
// unit. "5 because it falls" and "3 apples" carry no unit.
func HasQuantity(s string) bool {
	for _, loc := range quantityNumber.FindAllStringIndex(s, -1) {
		rest := strings.TrimLeftFunc(s[loc[1]:], unicode.IsSpace)
		if end := strings.IndexAny(rest, " \t\n,;:()[]"); end >= 0 {
			rest = rest[:end]
		}
		if tok := strings.TrimRight(rest, "."); tok != "" && IsUnit(tok) {
			return true
		}
	}
	return false
}
