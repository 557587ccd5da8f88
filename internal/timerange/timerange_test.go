package timerange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveKnownTokens(t *testing.T) {
	cases := map[string]time.Duration{
		"6months": 180 * 24 * time.Hour,
		"2months": 60 * 24 * time.Hour,
		"1week":   7 * 24 * time.Hour,
		"1day":    24 * time.Hour,
		"1hour":   time.Hour,
		"latest":  2 * time.Hour,
	}
	for token, want := range cases {
		d, ok := Resolve(token)
		require.True(t, ok, "token %q should resolve", token)
		assert.Equal(t, want, d, "token %q", token)
	}
}

func TestResolveAllAndUnknown(t *testing.T) {
	for _, token := range []string{"all", "", "2weeks", "fortnight"} {
		_, ok := Resolve(token)
		assert.False(t, ok, "token %q should have no lower bound", token)
	}
}

func TestLowerBoundEqualsNowMinusDuration(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for token := range windows {
		d, _ := Resolve(token)
		start := LowerBound(token, now)
		require.NotNil(t, start, "token %q", token)
		assert.Equal(t, now.Add(-d), *start, "token %q", token)
	}
	assert.Nil(t, LowerBound("all", now))
	assert.Nil(t, LowerBound("bogus", now))
}
