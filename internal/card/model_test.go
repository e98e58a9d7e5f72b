package card

import (
	"testing"
	"time"
)

func TestExpired(t *testing.T) {
	today := time.Now().UTC().Truncate(24 * time.Hour)

	cases := []struct {
		name   string
		expiry time.Time
		want   bool
	}{
		{"past date", today.AddDate(0, 0, -1), true},
		{"today", today, false},
		{"future date", today.AddDate(1, 0, 0), false},
		{"zero date never expires", time.Time{}, false},
	}
	for _, tc := range cases {
		c := Card{ExpiryDate: tc.expiry}
		if got := Expired(&c); got != tc.want {
			t.Fatalf("%s: Expired = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestExpiredNilPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on nil card")
		}
	}()
	Expired(nil)
}

func TestParseStatus(t *testing.T) {
	for _, s := range []Status{StatusActive, StatusBlockRequested, StatusBlocked, StatusExpired} {
		got, ok := ParseStatus(string(s))
		if !ok {
			t.Fatalf("ParseStatus(%q) rejected a valid status", s)
		}
		if got != s {
			t.Fatalf("ParseStatus(%q) = %q", s, got)
		}
	}
	if _, ok := ParseStatus("FROZEN"); ok {
		t.Fatal("expected unknown status to be rejected")
	}
}
