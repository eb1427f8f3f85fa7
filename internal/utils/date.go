package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrUnknownDateFormat = errors.New("unknown date format")

// accepted in this order: ISO, then day-first with slashes or dots
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02.01.2006",
}

// ParseDate reads a calendar date in any of the accepted layouts and returns it as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownDateFormat, s)
}
