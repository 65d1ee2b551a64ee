package karotz

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
)

const maxHostnameLength = 253

var (
	hostnameLabelRe = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9-]{0,61}[A-Za-z0-9])?$`)
	numericLabelRe  = regexp.MustCompile(`^[0-9]+$`)
)

// Hostname is a validated device address: a DNS name, an IPv4 address or an IPv6
// address, optionally followed by a port. The zero value is not a valid hostname.
type Hostname struct {
	host string
	port string
}

// ParseHostname validates raw and returns the immutable Hostname.
func ParseHostname(raw string) (Hostname, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Hostname{}, fmt.Errorf("%w: empty", ErrInvalidHostname)
	}
	if strings.Contains(raw, "://") || strings.ContainsAny(raw, "/?#@ \t\r\n") {
		return Hostname{}, fmt.Errorf("%w: %q must be a bare host or host:port", ErrInvalidHostname, raw)
	}

	host, port := raw, ""
	if h, p, err := net.SplitHostPort(raw); err == nil {
		host, port = h, p
		if err := validatePort(port); err != nil {
			return Hostname{}, fmt.Errorf("%w: %q: %v", ErrInvalidHostname, raw, err)
		}
	} else if strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]") {
		host = strings.TrimSuffix(strings.TrimPrefix(raw, "["), "]")
	}

	if ip := net.ParseIP(host); ip != nil {
		return Hostname{host: ip.String(), port: port}, nil
	}
	if strings.Contains(host, ":") {
		return Hostname{}, fmt.Errorf("%w: %q", ErrInvalidHostname, raw)
	}
	if err := validateDNSName(host); err != nil {
		return Hostname{}, fmt.Errorf("%w: %q: %v", ErrInvalidHostname, raw, err)
	}
	return Hostname{host: strings.ToLower(host), port: port}, nil
}

// MustParseHostname is like ParseHostname but panics on invalid input.
func MustParseHostname(raw string) Hostname {
	h, err := ParseHostname(raw)
	if err != nil {
		panic(err)
	}
	return h
}

// Host returns the host part without port or brackets.
func (h Hostname) Host() string { return h.host }

// Port returns the port, or "" when none was given.
func (h Hostname) Port() string { return h.port }

// IsZero reports whether h is the zero value.
func (h Hostname) IsZero() bool { return h.host == "" }

// String returns the form used in URLs (IPv6 hosts bracketed).
func (h Hostname) String() string {
	if h.port != "" {
		return net.JoinHostPort(h.host, h.port)
	}
	if strings.Contains(h.host, ":") {
		return "[" + h.host + "]"
	}
	return h.host
}

func validatePort(port string) error {
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("invalid port %q", port)
	}
	return nil
}

func validateDNSName(name string) error {
	name = strings.TrimSuffix(name, ".")
	if name == "" || len(name) > maxHostnameLength {
		return fmt.Errorf("length must be 1-%d", maxHostnameLength)
	}
	labels := strings.Split(name, ".")
	allNumeric := true
	for _, label := range labels {
		if !hostnameLabelRe.MatchString(label) {
			return fmt.Errorf("invalid label %q", label)
		}
		if !numericLabelRe.MatchString(label) {
			allNumeric = false
		}
	}
	if allNumeric {
		return fmt.Errorf("%q is neither an IP address nor a DNS name", name)
	}
	return nil
}
