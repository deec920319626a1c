package utils

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	urlPattern      = regexp.MustCompile(`(?i)\bhttps?://\S+|\bwww\.\S+`)
	numberedSuffix  = regexp.MustCompile(`^(?:[ivx]{1,4}|\d{1,3}[a-z]?)$`)
	dStrokeReplacer = strings.NewReplacer("đ", "d")
)

// Fold lower-cases s, removes Vietnamese tone and vowel marks, maps đ to d
// and collapses runs of whitespace, so "Khu Công Nghiệp  Đồng An" becomes
// "khu cong nghiep dong an".
func Fold(s string) string {
	s = strings.ToLower(norm.NFC.String(s))
	// transform.Chain keeps internal buffers, so a fresh chain is built per call
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = dStrokeReplacer.Replace(out)
	return strings.Join(strings.Fields(out), " ")
}

// Lower lower-cases s in NFC form and collapses whitespace like Fold, but
// keeps the marks. Fold maps each rune of Lower(s) to exactly one rune, so
// rune offsets in one string are valid in the other.
func Lower(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(norm.NFC.String(s))), " ")
}

// StripURLs removes links from a question before it is analysed
func StripURLs(s string) string {
	return strings.TrimSpace(urlPattern.ReplaceAllString(s, " "))
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// startsAtBoundary reports whether s[i:] begins a new word
func startsAtBoundary(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWordRune(r)
}

// endsAtBoundary reports whether s[:j] ends a word
func endsAtBoundary(s string, j int) bool {
	if j >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[j:])
	return !isWordRune(r)
}

// IndexToken returns the byte offset of the first occurrence of needle in s
// at or after from that both starts and ends on a word boundary, or -1.
func IndexToken(s, needle string, from int) int {
	if needle == "" || from > len(s) {
		return -1
	}
	for from <= len(s)-len(needle) {
		i := strings.Index(s[from:], needle)
		if i < 0 {
			return -1
		}
		i += from
		if startsAtBoundary(s, i) && endsAtBoundary(s, i+len(needle)) {
			return i
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		from = i + size
	}
	return -1
}

// ContainsToken reports whether needle occurs in s as whole words
func ContainsToken(s, needle string) bool {
	return IndexToken(s, needle, 0) >= 0
}

// ContainsEndBounded reports whether needle occurs in s with its end on a word
// boundary. "vsip i" is found in "vsip i binh duong" but not in "vsip iii".
func ContainsEndBounded(s, needle string) bool {
	if needle == "" {
		return true
	}
	from := 0
	for from <= len(s)-len(needle) {
		i := strings.Index(s[from:], needle)
		if i < 0 {
			return false
		}
		i += from
		if endsAtBoundary(s, i+len(needle)) {
			return true
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		from = i + size
	}
	return false
}

// HasNumberedSuffix reports whether a folded multi-word name ends with a
// roman numeral or a number, as in "vsip ii" or "song than 3".
func HasNumberedSuffix(folded string) bool {
	fields := strings.Fields(folded)
	if len(fields) < 2 {
		return false
	}
	return numberedSuffix.MatchString(fields[len(fields)-1])
}

// TrimNumberedSuffix drops a trailing roman numeral or number from a folded name.
// It returns the input unchanged when there is no such suffix.
func TrimNumberedSuffix(folded string) string {
	if !HasNumberedSuffix(folded) {
		return folded
	}
	fields := strings.Fields(folded)
	return strings.Join(fields[:len(fields)-1], " ")
}

// Mask overwrites s[start:end] with spaces, keeping byte offsets stable
func Mask(s string, start, end int) string {
	if start < 0 || end > len(s) || start >= end {
		return s
	}
	return s[:start] + strings.Repeat(" ", end-start) + s[end:]
}
