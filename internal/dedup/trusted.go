package dedup

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// A purely numeric identifier is only meaningful above this floor; small
// numbers are sequence counters from tools that never assign real ids.
const numericTrustFloor = 100000

var (
	// FictionBook Designer stamps ids of this shape.
	designerIDPattern = regexp.MustCompile(`(?i)^fbd-[0-9a-f]{2,}(-[0-9a-f]+)+$`)
	numericPattern    = regexp.MustCompile(`^[0-9]+$`)
)

// timestampLeaks are substrings that betray a source tool writing a formatted
// date where the identifier belongs.
var timestampLeaks = []string{
	"mon", "tue", "wed", "thu", "fri", "sat", "sun",
	"jan", "feb", "mar", "apr", "may", "jun",
	"jul", "aug", "sep", "oct", "nov", "dec",
}

// IsTrustedID reports whether a document-declared identifier is reliable
// enough to serve as a primary duplicate key. Anything else routes to the
// fuzzy duplicate-key tier; malformed input is never an error.
func IsTrustedID(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}

	if designerIDPattern.MatchString(id) {
		return true
	}

	if numericPattern.MatchString(id) {
		n, err := strconv.ParseInt(id, 10, 64)
		return err == nil && n > numericTrustFloor
	}

	if _, err := uuid.Parse(id); err != nil {
		return false
	}
	return !isPlaceholderGUID(id)
}

// isPlaceholderGUID catches the degenerate values buggy tools emit instead
// of real identifiers.
func isPlaceholderGUID(id string) bool {
	lower := strings.ToLower(id)
	for _, leak := range timestampLeaks {
		if strings.Contains(lower, leak) {
			return true
		}
	}

	stripped := strings.NewReplacer("-", "", "{", "", "}", "").Replace(lower)
	if stripped == "" {
		return true
	}
	return allSame(stripped) || sequentialDigits(stripped)
}

func allSame(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}

// sequentialDigits matches ascending digit runs like 12345678-1234-...
func sequentialDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
		if i > 0 && s[i] != '0'+byte((int(s[i-1]-'0')+1)%10) {
			return false
		}
	}
	return true
}
