package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	controlChars       = regexp.MustCompile(`[\x00-\x1f\x7f]`)
	registrationNumber = regexp.MustCompile(`^T\d{13}$`)
	amountNoise        = strings.NewReplacer(",", "", "¥", "", "￥", "", "円", "", " ", "", "　", "")
)

// SanitizeText removes control characters from OCR output. Newlines are
// kept; receipt raw text is line oriented.
func SanitizeText(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = controlChars.ReplaceAllString(line, "")
	}
	return strings.Join(lines, "\n")
}

// ValidateRegistrationNumber checks a Japanese qualified invoice
// registration number (登録番号): T followed by 13 digits.
func ValidateRegistrationNumber(s string) error {
	if !registrationNumber.MatchString(s) {
		return fmt.Errorf("invalid registration number format: %s", s)
	}
	return nil
}

// ParseAmount converts a printed amount ("¥1,234", "1234円") to a float.
// Returns 0 for empty or unparseable input.
func ParseAmount(s string) float64 {
	s = strings.TrimSpace(amountNoise.Replace(s))
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
