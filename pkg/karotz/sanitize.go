package karotz

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	commandPathRe = regexp.MustCompile(`^[A-Za-z0-9_]+(/[A-Za-z0-9_]+)*$`)
	queryRe       = regexp.MustCompile(`^[A-Za-z0-9_.~%&=+\-]*$`)
)

// SanitizePath checks a command path with optional query ("ears?left=1&right=2")
// and returns it in the canonical "/ears?left=1&right=2" form. Traversal segments,
// fragments, control characters and unescaped reserved characters are rejected.
func SanitizePath(raw string) (string, error) {
	path, query, hasQuery := strings.Cut(strings.TrimSpace(raw), "?")
	path = strings.TrimLeft(path, "/")

	if !commandPathRe.MatchString(path) {
		return "", invalidArgument("command path %q", path)
	}
	if !hasQuery || query == "" {
		return "/" + path, nil
	}
	if !queryRe.MatchString(query) {
		return "", invalidArgument("query for %s contains unescaped characters", path)
	}
	if _, err := url.ParseQuery(query); err != nil {
		return "", invalidArgument("query for %s: %v", path, err)
	}
	return "/" + path + "?" + query, nil
}
