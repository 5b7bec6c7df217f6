package intel

import (
	"regexp"
	"strings"
)

// Extraction patterns. Digit runs are classified after matching so that a
// phone-shaped number is never double-counted as a bank account.
var (
	upiRE      = regexp.MustCompile(`[A-Za-z0-9._\-]{2,256}@[A-Za-z][A-Za-z.]{1,63}`)
	digitRunRE = regexp.MustCompile(`\b\d{9,18}\b`)
	linkRE     = regexp.MustCompile(`https?://[^\s)"']+`)
	wwwLinkRE  = regexp.MustCompile(`\bwww\.[^\s)"']+\.\w+`)
	ccPhoneRE  = regexp.MustCompile(`\+91[-\s]?[6-9]\d{9}\b`)
	phoneRE    = regexp.MustCompile(`\b[6-9]\d{9}\b`)
)

// suspiciousKeywords is the fixed pressure-word vocabulary, matched by
// case-insensitive containment.
var suspiciousKeywords = []string{
	"urgent", "verify", "confirm", "click", "update", "kyc",
	"upi", "bank", "account", "otp", "password", "pan",
	"expired", "suspend", "fraud", "download", "link",
	"blocked", "lottery", "winner", "pay",
}

// Extract pulls structured fraud indicators out of free text. It is pure and
// deterministic; empty or non-textual input yields a zero Set.
func Extract(text string) Set {
	var s Set
	if strings.TrimSpace(text) == "" {
		return s
	}

	s.UPIIDs = appendUnique(nil, upiRE.FindAllString(text, -1))

	for _, link := range linkRE.FindAllString(text, -1) {
		s.PhishingLinks = appendUnique(s.PhishingLinks, []string{trimLink(link)})
	}
	for _, link := range wwwLinkRE.FindAllString(text, -1) {
		s.PhishingLinks = appendUnique(s.PhishingLinks, []string{trimLink(link)})
	}

	s.PhoneNumbers = extractPhones(text)

	for _, run := range digitRunRE.FindAllString(text, -1) {
		if phoneShaped(run) {
			continue
		}
		s.BankAccounts = appendUnique(s.BankAccounts, []string{run})
	}

	lower := strings.ToLower(text)
	for _, kw := range suspiciousKeywords {
		if strings.Contains(lower, kw) {
			s.SuspiciousKeywords = appendUnique(s.SuspiciousKeywords, []string{kw})
		}
	}

	s.Flagged = !s.Empty()
	return s
}

// extractPhones finds mobile numbers with or without a +91 country code,
// normalizes separators, and dedups on the 10-digit core.
func extractPhones(text string) []string {
	var phones []string
	seen := make(map[string]struct{})

	add := func(raw string) {
		normalized := normalizePhone(raw)
		core := phoneCore(normalized)
		if core == "" {
			return
		}
		if _, dup := seen[core]; dup {
			return
		}
		seen[core] = struct{}{}
		phones = append(phones, normalized)
	}

	for _, m := range ccPhoneRE.FindAllString(text, -1) {
		add(m)
	}
	for _, m := range phoneRE.FindAllString(text, -1) {
		add(m)
	}
	return phones
}

// normalizePhone strips spaces, dashes, and parentheses.
func normalizePhone(raw string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')':
			return -1
		}
		return r
	}, raw)
}

// phoneCore returns the trailing 10-digit mobile number, or "" if the input
// is not phone-shaped.
func phoneCore(normalized string) string {
	digits := strings.TrimPrefix(normalized, "+")
	digits = strings.TrimPrefix(digits, "91")
	if len(digits) != 10 {
		if len(normalized) == 10 {
			digits = normalized
		} else {
			return ""
		}
	}
	if digits[0] < '6' || digits[0] > '9' {
		return ""
	}
	return digits
}

// phoneShaped reports whether a bare digit run looks like a mobile number,
// with or without the 91 country prefix.
func phoneShaped(run string) bool {
	switch len(run) {
	case 10:
		return run[0] >= '6' && run[0] <= '9'
	case 12:
		return strings.HasPrefix(run, "91") && run[2] >= '6' && run[2] <= '9'
	default:
		return false
	}
}

// trimLink drops trailing punctuation that sentence context attaches to URLs.
func trimLink(link string) string {
	return strings.TrimRight(link, ".,;:!?")
}
