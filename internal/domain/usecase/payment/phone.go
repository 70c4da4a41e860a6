package payment

import (
	"strings"

	errs "github.com/oumasdelicacy/mpesa-bridge/internal/domain/error"
)

// FormatPhoneNumber normalizes a Kenyan MSISDN to the 254XXXXXXXXX form the
// gateway requires. Spaces, dashes and a leading plus are stripped; a
// leading 0 is replaced with 254; a number without a country code gets 254
// prefixed.
func FormatPhoneNumber(phone string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '+':
			return -1
		}
		return r
	}, phone)

	if cleaned == "" {
		return "", errs.ErrInvalidPhoneNumber
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return "", errs.ErrInvalidPhoneNumber
		}
	}

	if strings.HasPrefix(cleaned, "0") {
		cleaned = "254" + cleaned[1:]
	}
	if !strings.HasPrefix(cleaned, "254") {
		cleaned = "254" + cleaned
	}

	return cleaned, nil
}
