package intel

// Set is the cumulative fraud evidence extracted from a conversation. Field
// names on the wire match the collector's payload contract.
type Set struct {
	BankAccounts       []string `json:"bankAccounts"`
	UPIIDs             []string `json:"upiIds"`
	PhishingLinks      []string `json:"phishingLinks"`
	PhoneNumbers       []string `json:"phoneNumbers"`
	SuspiciousKeywords []string `json:"suspiciousKeywords"`
	Flagged            bool     `json:"scamDetected"`
}

// categoryOrder fixes the order categories are reported in.
var categoryOrder = []string{"bankAccounts", "upiIds", "phishingLinks", "phoneNumbers", "suspiciousKeywords"}

// Merge unions other into s. Existing members are never removed, duplicates
// and empty strings are never inserted, and insertion order is preserved.
func (s *Set) Merge(other Set) {
	s.BankAccounts = appendUnique(s.BankAccounts, other.BankAccounts)
	s.UPIIDs = appendUnique(s.UPIIDs, other.UPIIDs)
	s.PhishingLinks = appendUnique(s.PhishingLinks, other.PhishingLinks)
	s.PhoneNumbers = appendUnique(s.PhoneNumbers, other.PhoneNumbers)
	s.SuspiciousKeywords = appendUnique(s.SuspiciousKeywords, other.SuspiciousKeywords)
	s.Flagged = s.Flagged || other.Flagged
}

// Clone returns a deep copy of the set.
func (s Set) Clone() Set {
	return Set{
		BankAccounts:       append([]string(nil), s.BankAccounts...),
		UPIIDs:             append([]string(nil), s.UPIIDs...),
		PhishingLinks:      append([]string(nil), s.PhishingLinks...),
		PhoneNumbers:       append([]string(nil), s.PhoneNumbers...),
		SuspiciousKeywords: append([]string(nil), s.SuspiciousKeywords...),
		Flagged:            s.Flagged,
	}
}

// Empty reports whether every category is empty.
func (s Set) Empty() bool {
	return len(s.BankAccounts) == 0 &&
		len(s.UPIIDs) == 0 &&
		len(s.PhishingLinks) == 0 &&
		len(s.PhoneNumbers) == 0 &&
		len(s.SuspiciousKeywords) == 0
}

// HasCriticalIntel reports whether the set contains evidence usable to move
// money: a payment handle, a bank account, or a phone number.
func (s Set) HasCriticalIntel() bool {
	return len(s.UPIIDs) > 0 || len(s.BankAccounts) > 0 || len(s.PhoneNumbers) > 0
}

// NonEmptyCategories returns wire names of the populated categories in a
// fixed order, for use in report notes.
func (s Set) NonEmptyCategories() []string {
	counts := map[string]int{
		"bankAccounts":       len(s.BankAccounts),
		"upiIds":             len(s.UPIIDs),
		"phishingLinks":      len(s.PhishingLinks),
		"phoneNumbers":       len(s.PhoneNumbers),
		"suspiciousKeywords": len(s.SuspiciousKeywords),
	}
	var out []string
	for _, name := range categoryOrder {
		if counts[name] > 0 {
			out = append(out, name)
		}
	}
	return out
}

func appendUnique(dst []string, items []string) []string {
	for _, item := range items {
		if item == "" {
			continue
		}
		if contains(dst, item) {
			continue
		}
		dst = append(dst, item)
	}
	return dst
}

func contains(list []string, item string) bool {
	for _, v := range list {
		if v == item {
			return true
		}
	}
	return false
}
