package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoNumericPattern means no price-like number could be found in the text.
var ErrNoNumericPattern = errors.New("no numeric pattern in price text")

// NormalizeError reports unparsable price text.
type NormalizeError struct {
	Text string
	Err  error
}

func (e *NormalizeError) Error() string {
	return fmt.Sprintf("normalize %q: %v", e.Text, e.Err)
}

func (e *NormalizeError) Unwrap() error { return e.Err }

var (
	machinePattern = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
	pricePattern   = regexp.MustCompile(`(\d+\.\d+)`)
)

// ParseAmount parses German-locale price text ("1.234,56 €") or a
// machine-readable attribute value ("1234.56") into a EUR amount.
//
// Only the first numeric match is taken: a text block containing a
// struck-through original price before the sale price yields the original
// price. That matches the source sites' markup order and is a documented
// limitation, not something this function tries to disambiguate.
func ParseAmount(raw string) (float64, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return 0, &NormalizeError{Text: raw, Err: ErrNoNumericPattern}
	}

	// Machine-readable attribute values are already dot-decimal.
	if machinePattern.MatchString(text) {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, &NormalizeError{Text: raw, Err: err}
		}
		return v, nil
	}

	// German locale: "." is a thousands separator, "," the decimal mark.
	cleaned := strings.ReplaceAll(text, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	match := pricePattern.FindString(cleaned)
	if match == "" {
		return 0, &NormalizeError{Text: raw, Err: ErrNoNumericPattern}
	}

	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, &NormalizeError{Text: raw, Err: err}
	}
	return v, nil
}
