package notification

import (
	"sort"
	"strings"
)

// carrierGateways maps a normalized carrier key to its email-to-SMS domain.
var carrierGateways = map[string]string{
	"att":         "@txt.att.net",
	"att_mms":     "@mms.att.net",
	"verizon":     "@vtext.com",
	"verizon_mms": "@vzwpix.com",
	"tmobile":     "@tmomail.net",
	"sprint":      "@messaging.sprintpcs.com",
	"googlefi":    "@msg.fi.google.com",
	"xfinity":     "@vtext.com",
}

var carrierKeyReplacer = strings.NewReplacer(" ", "", "&", "", "-", "")

// NormalizeCarrier lowercases a carrier name and strips spaces, ampersands
// and hyphens, so "AT&T" becomes "att" and "T-Mobile" becomes "tmobile".
func NormalizeCarrier(carrier string) string {
	return carrierKeyReplacer.Replace(strings.ToLower(strings.TrimSpace(carrier)))
}

// Carriers returns the supported carrier keys in sorted order.
func Carriers() []string {
	keys := make([]string, 0, len(carrierGateways))
	for k := range carrierGateways {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsSupportedCarrier reports whether carrier maps to a known gateway.
func IsSupportedCarrier(carrier string) bool {
	_, ok := carrierGateways[NormalizeCarrier(carrier)]
	return ok
}

// SMSAddress builds the email-to-SMS address for phone on carrier. It returns
// false when the phone has no digits or the carrier is unknown.
func SMSAddress(phone, carrier string) (string, bool) {
	domain, ok := carrierGateways[NormalizeCarrier(carrier)]
	if !ok {
		return "", false
	}
	digits := digitsOnly(phone)
	if digits == "" {
		return "", false
	}
	return digits + domain, true
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
