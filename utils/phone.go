package utils

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// E164 parses a locally typed number (9 digits in Chile) for region and
// returns it in E.164 form, e.g. "+56912345678". An empty region means CL.
func E164(phone, region string) (string, error) {
	if region == "" {
		region = DefaultPhoneRegion
	}
	num, err := phonenumbers.Parse(NormalizePhone(phone), strings.ToUpper(region))
	if err != nil {
		return "", fmt.Errorf("parse phone %q: %w", phone, err)
	}
	if !phonenumbers.IsPossibleNumber(num) {
		return "", fmt.Errorf("phone %q is not a possible number for %s", phone, region)
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// WhatsAppLink builds a wa.me link, optionally pre-filled with message.
func WhatsAppLink(phone, region, message string) (string, error) {
	e164, err := E164(phone, region)
	if err != nil {
		return "", err
	}
	link := "https://wa.me/" + strings.TrimPrefix(e164, "+")
	if message != "" {
		link += "?text=" + strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	}
	return link, nil
}
