package source

import "strings"

// NormalizeGameVersion strips build metadata from a Minecraft version label
// by cutting at the first '-'. "1.20.1-R0.1-SNAPSHOT" becomes "1.20.1".
func NormalizeGameVersion(v string) string {
	base, _, _ := strings.Cut(v, "-")
	return base
}

// MatchesGameVersion reports whether two Minecraft version labels are
// compatible. After normalization, the labels match if they are equal or if
// one is a prefix of the other ending at a delimiter boundary: "1.20.1"
// matches "1.20", but "1.2" does not match "1.20" because the character
// after the shared prefix is a digit, not a delimiter.
func MatchesGameVersion(a, b string) bool {
	a, b = NormalizeGameVersion(a), NormalizeGameVersion(b)
	if a == b {
		return true
	}
	return prefixAtBoundary(a, b) || prefixAtBoundary(b, a)
}

// prefixAtBoundary reports whether shorter is a strict prefix of longer with
// a delimiter immediately after it.
func prefixAtBoundary(longer, shorter string) bool {
	if len(longer) <= len(shorter) || !strings.HasPrefix(longer, shorter) {
		return false
	}
	return isDelimiter(longer[len(shorter)])
}

func isDelimiter(c byte) bool {
	return c == '.' || c == '-' || c == ' '
}
