// Package health scans decrypted login records for weak, reused, stale and
// compromised credentials. It is pure: no engine state, no network calls.
package health

import (
	"time"

	"vault-engine/internal/password"
	"vault-engine/internal/vault"
)

const (
	// DefaultStaleWindow is how long a password may go without rotation.
	DefaultStaleWindow = 90 * 24 * time.Hour

	// weakScoreThreshold: strength scores below this count as weak.
	weakScoreThreshold = 2
)

// Score penalties per category, applied proportionally to the fraction of
// login records affected.
const (
	penaltyWeak    = 40
	penaltyReused  = 30
	penaltyStale   = 15
	penaltyFlagged = 15
)

type Options struct {
	// StaleWindow overrides DefaultStaleWindow when positive.
	StaleWindow time.Duration
	// Now anchors staleness checks; zero means time.Now().
	Now time.Time
}

// Report lists record ids per finding category. A record may appear in
// several categories.
type Report struct {
	Weak    []string
	Reused  []string
	Stale   []string
	Flagged []string
}

func (o Options) resolve() Options {
	if o.StaleWindow <= 0 {
		o.StaleWindow = DefaultStaleWindow
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	return o
}

// Analyze inspects login-kind records. Other kinds are ignored.
func Analyze(records []*vault.Record, opts Options) Report {
	opts = opts.resolve()
	var rep Report
	byPassword := make(map[string][]string)

	for _, rec := range records {
		if rec.Kind != vault.KindLogin || rec.Login == nil {
			continue
		}
		login := rec.Login

		if password.Analyze(login.Password, nil).Score < weakScoreThreshold {
			rep.Weak = append(rep.Weak, rec.ID)
		}
		byPassword[login.Password] = append(byPassword[login.Password], rec.ID)

		rotated := rec.UpdatedAt
		if login.PasswordChangedAt != nil {
			rotated = *login.PasswordChangedAt
		}
		if opts.Now.Sub(rotated) > opts.StaleWindow {
			rep.Stale = append(rep.Stale, rec.ID)
		}
		if login.Compromised {
			rep.Flagged = append(rep.Flagged, rec.ID)
		}
	}

	for _, ids := range byPassword {
		if len(ids) > 1 {
			rep.Reused = append(rep.Reused, ids...)
		}
	}
	return rep
}

// Score reduces a record set to 0..100. Each category subtracts its penalty
// weighted by the fraction of login records affected; an empty login set
// scores 100.
func Score(records []*vault.Record, opts Options) int {
	total := 0
	for _, rec := range records {
		if rec.Kind == vault.KindLogin && rec.Login != nil {
			total++
		}
	}
	if total == 0 {
		return 100
	}
	rep := Analyze(records, opts)

	score := 100.0
	score -= penaltyWeak * float64(len(rep.Weak)) / float64(total)
	score -= penaltyReused * float64(len(rep.Reused)) / float64(total)
	score -= penaltyStale * float64(len(rep.Stale)) / float64(total)
	score -= penaltyFlagged * float64(len(rep.Flagged)) / float64(total)
	if score < 0 {
		return 0
	}
	return int(score)
}
