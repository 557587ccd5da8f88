// Package timerange maps the API's symbolic window tokens to absolute
// time bounds ending "now".
package timerange

import "time"

// windows is the reconciled token table shared by every ranged endpoint.
var windows = map[string]time.Duration{
	"6months": 180 * 24 * time.Hour,
	"2months": 60 * 24 * time.Hour,
	"1week":   7 * 24 * time.Hour,
	"1day":    24 * time.Hour,
	"1hour":   time.Hour,
	"latest":  2 * time.Hour,
}

// Resolve returns the window duration for a token. ok is false for "all"
// and for unrecognized tokens, both of which mean "no lower bound" — the
// silent fallback matches the historical contract, even though a 422 on
// unknown tokens would catch client typos.
func Resolve(token string) (time.Duration, bool) {
	d, found := windows[token]
	return d, found
}

// LowerBound resolves a token against now; nil means unbounded.
func LowerBound(token string, now time.Time) *time.Time {
	d, ok := Resolve(token)
	if !ok {
		return nil
	}
	start := now.Add(-d)
	return &start
}
