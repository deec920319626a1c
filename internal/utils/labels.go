package utils

import "strings"

// typePrefixes are dropped from site names shown on charts, longest first
var typePrefixes = []string{
	"Khu công nghiệp",
	"Cụm công nghiệp",
	"Khu CN",
	"Cụm CN",
	"KCN",
	"CCN",
}

// CleanLabel shortens a site name for display:
// "Khu công nghiệp VSIP II - Bình Dương" becomes "VSIP II".
func CleanLabel(name string) string {
	s := strings.TrimSpace(name)
	lower := strings.ToLower(s)
	for _, prefix := range typePrefixes {
		p := strings.ToLower(prefix)
		if !strings.HasPrefix(lower, p) {
			continue
		}
		s = strings.TrimSpace(s[len(p):])
		s = strings.TrimSpace(strings.TrimLeft(s, "-:"))
		break
	}
	if head, _, ok := strings.Cut(s, " - "); ok {
		s = strings.TrimSpace(head)
	}
	if s == "" {
		return strings.TrimSpace(name)
	}
	return s
}

// Truncate shortens s to at most n runes, adding an ellipsis when cut
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
