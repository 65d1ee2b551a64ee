package karotz

import (
	"errors"
	"testing"
)

func TestParseHostnameAccepts(t *testing.T) {
	cases := map[string]string{
		"192.168.1.0":      "192.168.1.0",
		"192.168.1.0:8080": "192.168.1.0:8080",
		"Karotz.local":     "karotz.local",
		"karotz":           "karotz",
		"karotz-1.lan:80":  "karotz-1.lan:80",
		"fe80::1":          "[fe80::1]",
		"[fe80::1]":        "[fe80::1]",
		"[fe80::1]:8080":   "[fe80::1]:8080",
		"  karotz  ":       "karotz",
	}
	for raw, want := range cases {
		h, err := ParseHostname(raw)
		if err != nil {
			t.Fatalf("ParseHostname(%q): %v", raw, err)
		}
		if h.String() != want {
			t.Fatalf("ParseHostname(%q) = %s, want %s", raw, h, want)
		}
	}
}

func TestParseHostnameRejects(t *testing.T) {
	invalid := []string{
		"",
		"   ",
		"http://karotz",
		"karotz/cgi-bin",
		"karotz?x=1",
		"user@karotz",
		"karotz:0",
		"karotz:70000",
		"karotz:abc",
		"karotz:",
		"-karotz",
		"karotz_1",
		"999.1.1.1",
		"kar otz",
		"a..b",
	}
	for _, raw := range invalid {
		if _, err := ParseHostname(raw); !errors.Is(err, ErrInvalidHostname) {
			t.Fatalf("ParseHostname(%q): expected ErrInvalidHostname, got %v", raw, err)
		}
	}
}

func TestHostnameZeroValue(t *testing.T) {
	var h Hostname
	if !h.IsZero() {
		t.Fatalf("expected zero hostname")
	}
	if MustParseHostname("karotz:81").Port() != "81" {
		t.Fatalf("expected port 81")
	}
}
