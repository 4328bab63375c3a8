package client

import (
	"strings"

	"github.com/MrJamesThe3rd/facturador/internal/validation"
)

var cuitWeights = [10]int{5, 4, 3, 2, 7, 6, 5, 4, 3, 2}

// NormalizeDocNumber strips the separators people usually type into document numbers.
func NormalizeDocNumber(s string) string {
	return strings.NewReplacer(".", "", "-", "", " ", "").Replace(strings.TrimSpace(s))
}

// ValidateDocument checks an already normalized document number against its type.
func ValidateDocument(docType DocType, number string) error {
	switch docType {
	case DocNone:
		if number != "" {
			return validation.New("doc_number", "must be empty for clients without document")
		}

		return nil
	case DocDNI:
		if !isDigits(number) || len(number) < 7 || len(number) > 8 {
			return validation.New("doc_number", "DNI must have 7 or 8 digits")
		}

		return nil
	case DocCUIT, DocCUIL:
		if !isDigits(number) || len(number) != 11 {
			return validation.New("doc_number", string(docType)+" must have 11 digits")
		}

		if !validCheckDigit(number) {
			return validation.New("doc_number", string(docType)+" check digit is invalid")
		}

		return nil
	default:
		return validation.New("doc_type", "unknown document type "+string(docType))
	}
}

// validCheckDigit applies the modulo 11 rule used by CUIT and CUIL numbers.
func validCheckDigit(number string) bool {
	sum := 0
	for i, w := range cuitWeights {
		sum += int(number[i]-'0') * w
	}

	check := 11 - sum%11
	switch check {
	case 11:
		check = 0
	case 10:
		check = 9
	}

	return int(number[10]-'0') == check
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
