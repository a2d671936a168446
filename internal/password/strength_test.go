package password

import (
	"strings"
	"testing"
)

func TestAnalyzeShortPassword(t *testing.T) {
	a := Analyze("short", nil)
	if a.MeetsMinimumPolicy {
		t.Fatal("short password must fail the minimum policy")
	}
	found := false
	for _, v := range a.Violations {
		if v == violationLength {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a length violation, got %v", a.Violations)
	}
	if a.Score != 0 {
		t.Fatalf("expected score 0 for %q, got %d", "short", a.Score)
	}
}

func TestAnalyzeMeetsPolicy(t *testing.T) {
	a := Analyze("Tr0ub4dor&3XYZ!", nil)
	if !a.MeetsMinimumPolicy {
		t.Fatalf("expected policy pass, violations: %v", a.Violations)
	}
	if len(a.Violations) != 0 {
		t.Fatalf("unexpected violations: %v", a.Violations)
	}
	if a.Score < 3 {
		t.Fatalf("expected a strong score, got %d", a.Score)
	}
}

func TestAnalyzeMissingClasses(t *testing.T) {
	a := Analyze("alllowercaseletters", nil)
	if a.MeetsMinimumPolicy {
		t.Fatal("single-class password must fail the policy")
	}
	want := map[string]bool{violationUpper: false, violationDigit: false, violationSymbol: false}
	for _, v := range a.Violations {
		if _, ok := want[v]; ok {
			want[v] = true
		}
	}
	for v, seen := range want {
		if !seen {
			t.Fatalf("expected violation %q, got %v", v, a.Violations)
		}
	}
}

func TestAnalyzeEntropyEstimate(t *testing.T) {
	a := Analyze("abcdefgh", nil)
	// 8 chars over a 26-letter charset: 8 * log2(26) ≈ 37.6
	if a.EntropyBits < 37 || a.EntropyBits > 38 {
		t.Fatalf("unexpected entropy %f", a.EntropyBits)
	}
	b := Analyze("aB3$aB3$", nil)
	if b.EntropyBits <= a.EntropyBits {
		t.Fatal("larger charset must estimate more entropy at equal length")
	}
}

func TestAnalyzeDictionaryPenalty(t *testing.T) {
	plain := Analyze("xkQv9#mZpL2&", nil)
	leet := Analyze("P@ssw0rd9#mZ", nil)
	if leet.Score >= plain.Score {
		t.Fatalf("leetspeak dictionary word must be penalized: %d vs %d", leet.Score, plain.Score)
	}
}

func TestAnalyzeContextWords(t *testing.T) {
	without := Analyze("Alice#Spring9$x", nil)
	with := Analyze("Alice#Spring9$x", []string{"alice"})
	if with.Score >= without.Score {
		t.Fatalf("context word must be penalized: %d vs %d", with.Score, without.Score)
	}
}

func TestAnalyzeKeyboardAndDatePatterns(t *testing.T) {
	if a := Analyze("Qwerty!Qwerty!Qw", nil); a.Score >= 4 {
		t.Fatalf("keyboard walk must be penalized, got %d", a.Score)
	}
	if a := Analyze("Xk$vmZ#pL19840612", nil); a.Score >= 4 {
		t.Fatalf("date pattern must be penalized, got %d", a.Score)
	}
}

func TestGenerateClassCoverage(t *testing.T) {
	opts := Options{Length: 16, Uppercase: true, Lowercase: true, Digits: true, Symbols: true}
	for i := 0; i < 1000; i++ {
		pw, err := Generate(opts)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(pw) != 16 {
			t.Fatalf("expected length 16, got %d", len(pw))
		}
		if !strings.ContainsAny(pw, upperChars) ||
			!strings.ContainsAny(pw, lowerChars) ||
			!strings.ContainsAny(pw, digitChars) ||
			!strings.ContainsAny(pw, symbolChars) {
			t.Fatalf("missing a requested class in %q", pw)
		}
	}
}

func TestGenerateExcludeAmbiguous(t *testing.T) {
	opts := Options{Length: 64, Uppercase: true, Lowercase: true, Digits: true, ExcludeAmbiguous: true}
	for i := 0; i < 50; i++ {
		pw, err := Generate(opts)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if strings.ContainsAny(pw, ambiguousChars) {
			t.Fatalf("ambiguous character in %q", pw)
		}
	}
}

func TestGenerateRestrictedCharset(t *testing.T) {
	pw, err := Generate(Options{Length: 12, Digits: true})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, r := range pw {
		if r < '0' || r > '9' {
			t.Fatalf("non-digit %q in digits-only password %q", r, pw)
		}
	}
}

func TestGenerateNoClasses(t *testing.T) {
	if _, err := Generate(Options{Length: 12}); err != ErrNoCharset {
		t.Fatalf("expected ErrNoCharset, got %v", err)
	}
}

func TestGenerateLengthFloor(t *testing.T) {
	pw, err := Generate(Options{Length: 2, Uppercase: true, Lowercase: true, Digits: true, Symbols: true})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(pw) != 4 {
		t.Fatalf("length must be raised to class count, got %d", len(pw))
	}
}

func TestGeneratePassphrase(t *testing.T) {
	p, err := GeneratePassphrase(6, "-", false)
	if err != nil {
		t.Fatalf("passphrase: %v", err)
	}
	parts := strings.Split(p, "-")
	if len(parts) != 6 {
		t.Fatalf("expected 6 words, got %d in %q", len(parts), p)
	}
	for _, w := range parts {
		if w == "" || strings.ToLower(w) != w {
			t.Fatalf("unexpected word %q", w)
		}
	}

	capitalized, err := GeneratePassphrase(4, " ", true)
	if err != nil {
		t.Fatalf("passphrase: %v", err)
	}
	for _, w := range strings.Split(capitalized, " ") {
		if w[0] < 'A' || w[0] > 'Z' {
			t.Fatalf("word %q not capitalized", w)
		}
	}
}
