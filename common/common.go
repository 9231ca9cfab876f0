package common

import (
	"fmt"
	"regexp"
	"strings"
)

// IsBuyOrSell reports whether the side results in an order
func (s Side) IsBuyOrSell() bool {
	return s == Buy || s == Sell
}

// Sign returns 1 for buys and -1 for sells
func (s Side) Sign() int64 {
	switch s {
	case Buy:
		return 1
	case Sell:
		return -1
	}
	return 0
}

// Opposite returns the side that reduces a position opened with s
func (s Side) Opposite() Side {
	switch s {
	case Buy:
		return Sell
	case Sell:
		return Buy
	}
	return s
}

// ParseSide converts a config or file string to a Side
func ParseSide(s string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(Buy), "LONG":
		return Buy, nil
	case string(Sell), "SHORT":
		return Sell, nil
	case string(DoNothing), "":
		return DoNothing, nil
	}
	return "", fmt.Errorf("%w '%v'", ErrInvalidSide, s)
}

// AppendError appends an error to a list of errors. A nil incoming error
// returns the original unchanged.
func AppendError(original, incoming error) error {
	if incoming == nil {
		return original
	}
	if original == nil {
		return incoming
	}
	if me, ok := original.(*multiError); ok {
		me.errs = append(me.errs, incoming)
		return me
	}
	return &multiError{errs: []error{original, incoming}}
}

// Error returns every held error joined by ", "
func (e *multiError) Error() string {
	s := make([]string, len(e.errs))
	for i := range e.errs {
		s[i] = e.errs[i].Error()
	}
	return strings.Join(s, ", ")
}

// Unwrap allows errors.Is to inspect every held error
func (e *multiError) Unwrap() []error {
	return e.errs
}

var fileNameCleaner = regexp.MustCompile(`[^a-z0-9_\-]+`)

// GenerateFileName will convert a proposed file name into something which is more
// OS friendly
func GenerateFileName(fileName, extension string) (string, error) {
	if fileName == "" || extension == "" {
		return "", errCannotGenerateFileName
	}
	fileName = fileNameCleaner.ReplaceAllString(strings.ToLower(fileName), "")
	extension = fileNameCleaner.ReplaceAllString(strings.ToLower(extension), "")
	if fileName == "" || extension == "" {
		return "", errCannotGenerateFileName
	}
	return fileName + "." + extension, nil
}

// FitStringToLimit ensures a string is of the length of the limit
// either by truncating the string with ellipses or padding with the spacer
func FitStringToLimit(str, spacer string, limit int, upper bool) string {
	if limit < 0 {
		return str
	}
	if limit == 0 {
		return ""
	}
	if upper {
		str = strings.ToUpper(str)
	}
	if len(str) > limit {
		if limit < 3 {
			return str[:limit]
		}
		return str[:limit-3] + "..."
	}
	if spacer == "" {
		spacer = " "
	}
	pad := strings.Repeat(spacer, limit-len(str))
	return str + pad[:limit-len(str)]
}
