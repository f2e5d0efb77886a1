package booking

import (
	"fmt"
	"regexp"
	"time"
)

// DateLayout is the day.month.year format users type into the guided form.
const DateLayout = "02.01.2006"

// ISODateLayout is the format the embedded form submits.
const ISODateLayout = "2006-01-02"

var dateTokenRe = regexp.MustCompile(`\d{2}\.\d{2}\.\d{4}`)

// ErrUnparseableDates is the ErrInvalidRange subcase where no usable date
// pair was found at all. The transport prompts for the format instead of
// complaining about ordering.
var ErrUnparseableDates = fmt.Errorf("%w: dates not recognized", ErrInvalidRange)

// ParseDateRange extracts a check-in/check-out pair from free text. The first
// two DD.MM.YYYY tokens are taken; extra tokens are ignored. Returns
// ErrUnparseableDates when fewer than two tokens are found or a token does
// not parse, and ErrInvalidRange when check-in is not strictly before
// check-out.
func ParseDateRange(text string) (checkIn, checkOut time.Time, err error) {
	tokens := dateTokenRe.FindAllString(text, 2)
	if len(tokens) < 2 {
		return time.Time{}, time.Time{}, ErrUnparseableDates
	}
	checkIn, err = time.Parse(DateLayout, tokens[0])
	if err != nil {
		return time.Time{}, time.Time{}, ErrUnparseableDates
	}
	checkOut, err = time.Parse(DateLayout, tokens[1])
	if err != nil {
		return time.Time{}, time.Time{}, ErrUnparseableDates
	}
	if !checkIn.Before(checkOut) {
		return time.Time{}, time.Time{}, ErrInvalidRange
	}
	return checkIn, checkOut, nil
}

// parseSubmittedDate parses a date from a structured submission. The embedded
// form sends ISO dates; DD.MM.YYYY is accepted as well.
func parseSubmittedDate(value string) (time.Time, error) {
	if t, err := time.Parse(ISODateLayout, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(DateLayout, value); err == nil {
		return t, nil
	}
	return time.Time{}, ErrInvalidRange
}
