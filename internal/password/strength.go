// Package password estimates credential strength and generates passwords
// and passphrases from a secure random source.
package password

import (
	"math"
	"strings"
)

// Analysis is the result of one strength evaluation. Score is a coarse 0..4
// band; EntropyBits is the charset-based estimate before heuristic
// penalties. The heuristic set behind Score is deliberately swappable: the
// contract is the shape of Analysis, not the concrete algorithm.
type Analysis struct {
	Score              int
	EntropyBits        float64
	MeetsMinimumPolicy bool
	Violations         []string
}

// Minimum policy for a master secret.
const minPolicyLength = 12

const (
	violationLength = "length must be at least 12 characters"
	violationUpper  = "missing uppercase letter"
	violationLower  = "missing lowercase letter"
	violationDigit  = "missing digit"
	violationSymbol = "missing symbol"
)

// Character class sizes for the entropy estimate. Symbols counts the
// printable ASCII punctuation set.
const (
	classLowerSize  = 26
	classUpperSize  = 26
	classDigitSize  = 10
	classSymbolSize = 33
)

// commonWords is a deliberately small dictionary of terms that gut a
// password's practical strength regardless of its raw entropy.
var commonWords = []string{
	"password", "passphrase", "passwort", "qwerty", "letmein", "welcome",
	"admin", "login", "master", "secret", "dragon", "monkey", "shadow",
	"sunshine", "princess", "football", "baseball", "superman", "batman",
	"trustno", "iloveyou", "starwars", "whatever", "freedom", "ninja",
	"mustang", "access", "hello", "charlie", "donald", "summer", "winter",
	"strong", "change", "default",
}

// keyboardRuns are 4+ character walks on common layouts.
var keyboardRuns = []string{
	"qwert", "werty", "ertyu", "rtyui", "tyuio", "yuiop",
	"asdf", "sdfg", "dfgh", "fghj", "ghjk", "hjkl",
	"zxcv", "xcvb", "cvbn", "vbnm",
	"1234", "2345", "3456", "4567", "5678", "6789", "7890",
	"abcd", "bcde", "cdef", "defg",
}

var leetMap = strings.NewReplacer(
	"0", "o", "1", "l", "3", "e", "4", "a", "5", "s",
	"7", "t", "8", "b", "@", "a", "$", "s", "!", "i",
)

type classes struct {
	lower, upper, digit, symbol bool
}

func classify(password string) classes {
	var c classes
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			c.lower = true
		case r >= 'A' && r <= 'Z':
			c.upper = true
		case r >= '0' && r <= '9':
			c.digit = true
		default:
			c.symbol = true
		}
	}
	return c
}

func (c classes) charsetSize() int {
	size := 0
	if c.lower {
		size += classLowerSize
	}
	if c.upper {
		size += classUpperSize
	}
	if c.digit {
		size += classDigitSize
	}
	if c.symbol {
		size += classSymbolSize
	}
	return size
}

// Analyze scores a password. contextWords are values an attacker would try
// first against this specific user (username, site, old passwords).
func Analyze(password string, contextWords []string) Analysis {
	a := Analysis{}
	c := classify(password)

	if size := c.charsetSize(); size > 0 {
		a.EntropyBits = float64(len(password)) * math.Log2(float64(size))
	}

	if len(password) < minPolicyLength {
		a.Violations = append(a.Violations, violationLength)
	}
	if !c.upper {
		a.Violations = append(a.Violations, violationUpper)
	}
	if !c.lower {
		a.Violations = append(a.Violations, violationLower)
	}
	if !c.digit {
		a.Violations = append(a.Violations, violationDigit)
	}
	if !c.symbol {
		a.Violations = append(a.Violations, violationSymbol)
	}
	a.MeetsMinimumPolicy = len(a.Violations) == 0

	a.Score = clampScore(entropyBand(a.EntropyBits) - penalties(password, contextWords))
	return a
}

func entropyBand(bits float64) int {
	switch {
	case bits < 28:
		return 0
	case bits < 36:
		return 1
	case bits < 60:
		return 2
	case bits < 80:
		return 3
	default:
		return 4
	}
}

// penalties counts heuristic weaknesses: dictionary words (after leetspeak
// normalization), keyboard walks, date-looking digit runs, and context
// words. Each category costs one band.
func penalties(password string, contextWords []string) int {
	lowered := strings.ToLower(password)
	normalized := leetMap.Replace(lowered)
	n := 0

	for _, w := range commonWords {
		if strings.Contains(normalized, w) {
			n++
			break
		}
	}
	for _, run := range keyboardRuns {
		if strings.Contains(lowered, run) {
			n++
			break
		}
	}
	if hasDatePattern(password) {
		n++
	}
	for _, w := range contextWords {
		w = strings.ToLower(strings.TrimSpace(w))
		if len(w) >= 3 && (strings.Contains(lowered, w) || strings.Contains(normalized, w)) {
			n += 2
			break
		}
	}
	return n
}

// hasDatePattern looks for plausible years (19xx/20xx) or 6-8 digit runs.
func hasDatePattern(password string) bool {
	digits := 0
	for i := 0; i < len(password); i++ {
		if password[i] >= '0' && password[i] <= '9' {
			digits++
			if digits >= 6 {
				return true
			}
		} else {
			digits = 0
		}
	}
	for i := 0; i+4 <= len(password); i++ {
		if (password[i] == '1' && password[i+1] == '9') ||
			(password[i] == '2' && password[i+1] == '0') {
			if isDigit(password[i+2]) && isDigit(password[i+3]) {
				return true
			}
		}
	}
	return false
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 4 {
		return 4
	}
	return s
}
