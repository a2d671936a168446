package password

import (
	"errors"
	"strings"

	"vault-engine/internal/crypto"
)

// Options select the character classes a generated password draws from.
type Options struct {
	Length           int
	Uppercase        bool
	Lowercase        bool
	Digits           bool
	Symbols          bool
	ExcludeAmbiguous bool
}

var ErrNoCharset = errors.New("password: no character classes selected")

const (
	lowerChars  = "abcdefghijklmnopqrstuvwxyz"
	upperChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitChars  = "0123456789"
	symbolChars = "!@#$%^&*()-_=+[]{};:,.<>?"

	// ambiguousChars are visually confusable and dropped on request.
	ambiguousChars = "Il1O0o"

	// maxRegenerations bounds rejection sampling before the deterministic
	// splice fallback kicks in.
	maxRegenerations = 16
)

func stripAmbiguous(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if !strings.ContainsRune(ambiguousChars, r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func (o Options) classSets() []string {
	var sets []string
	add := func(s string) {
		if o.ExcludeAmbiguous {
			s = stripAmbiguous(s)
		}
		sets = append(sets, s)
	}
	if o.Lowercase {
		add(lowerChars)
	}
	if o.Uppercase {
		add(upperChars)
	}
	if o.Digits {
		add(digitChars)
	}
	if o.Symbols {
		add(symbolChars)
	}
	return sets
}

// Generate draws a password of the requested length, guaranteeing at least
// one character from every requested class. Coverage is enforced by bounded
// rejection sampling; if the cap is hit, missing classes are spliced in at
// random positions rather than looping forever.
func Generate(opts Options) (string, error) {
	sets := opts.classSets()
	if len(sets) == 0 {
		return "", ErrNoCharset
	}
	if opts.Length < len(sets) {
		opts.Length = len(sets)
	}
	charset := strings.Join(sets, "")

	var out []byte
	for attempt := 0; attempt < maxRegenerations; attempt++ {
		candidate, err := draw(charset, opts.Length)
		if err != nil {
			return "", err
		}
		if coversAll(candidate, sets) {
			return string(candidate), nil
		}
		out = candidate
	}

	// Splice fallback: overwrite random positions with one character from
	// each missing class. Positions are distinct so one splice cannot undo
	// another.
	used := make(map[int]bool)
	for _, set := range sets {
		if containsAny(out, set) {
			continue
		}
		pos, err := freshPosition(len(out), used)
		if err != nil {
			return "", err
		}
		ci, err := crypto.RandomIndex(len(set))
		if err != nil {
			return "", err
		}
		out[pos] = set[ci]
		used[pos] = true
	}
	return string(out), nil
}

func draw(charset string, length int) ([]byte, error) {
	out := make([]byte, length)
	for i := range out {
		idx, err := crypto.RandomIndex(len(charset))
		if err != nil {
			return nil, err
		}
		out[i] = charset[idx]
	}
	return out, nil
}

func coversAll(candidate []byte, sets []string) bool {
	for _, set := range sets {
		if !containsAny(candidate, set) {
			return false
		}
	}
	return true
}

func containsAny(candidate []byte, set string) bool {
	for _, b := range candidate {
		if strings.IndexByte(set, b) >= 0 {
			return true
		}
	}
	return false
}

func freshPosition(length int, used map[int]bool) (int, error) {
	for {
		pos, err := crypto.RandomIndex(length)
		if err != nil {
			return 0, err
		}
		if !used[pos] {
			return pos, nil
		}
	}
}

// GeneratePassphrase draws words from the embedded wordlist.
func GeneratePassphrase(wordCount int, separator string, capitalizeFirst bool) (string, error) {
	if wordCount <= 0 {
		wordCount = 6
	}
	words := make([]string, 0, wordCount)
	for i := 0; i < wordCount; i++ {
		idx, err := crypto.RandomIndex(len(wordlist))
		if err != nil {
			return "", err
		}
		w := wordlist[idx]
		if capitalizeFirst {
			w = strings.ToUpper(w[:1]) + w[1:]
		}
		words = append(words, w)
	}
	return strings.Join(words, separator), nil
}
