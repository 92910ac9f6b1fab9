package yandex

import (
	"fmt"
	"regexp"
	"strconv"
)

// idSegmentRe matches a path segment of at least 6 digits bounded by a path
// separator, a query-string marker, or the end of the string.
var idSegmentRe = regexp.MustCompile(`/(\d{6,})(?:[/?]|$)`)

// InvalidIdentifierError is returned when no business ID can be derived from
// the user's input.
type InvalidIdentifierError struct {
	Input string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("could not determine a business ID from %q", e.Input)
}

// ExtractID derives the numeric business ID from free-form input: either a
// purely numeric string or a Yandex Maps URL containing the ID as a path
// segment.
func ExtractID(source string) (int64, error) {
	if isDigits(source) {
		id, err := strconv.ParseInt(source, 10, 64)
		if err != nil {
			return 0, &InvalidIdentifierError{Input: source}
		}
		return id, nil
	}

	m := idSegmentRe.FindStringSubmatch(source)
	if m == nil {
		return 0, &InvalidIdentifierError{Input: source}
	}

	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, &InvalidIdentifierError{Input: source}
	}
	return id, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
