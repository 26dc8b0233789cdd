package ledger

import "bilancio/internal/core"

// EntryFilter restricts which rules and punctual entries take part in an
// aggregation. Empty sets mean "no restriction". The same filter is applied
// to both record kinds before any expansion, so recurring and punctual paths
// can never disagree about what was filtered.
type EntryFilter struct {
	// Categories keeps only records in one of these categories.
	Categories []string

	// Wallets keeps only records belonging to one of these wallets.
	Wallets []string

	// Tags keeps only records carrying at least one of these tags.
	Tags []string

	// ExcludeCategories drops records in these categories regardless of the
	// include sets. Used to suppress transfer categories from balances.
	ExcludeCategories []string
}

// MatchRule reports whether a recurrence rule passes the filter.
func (f EntryFilter) MatchRule(r core.RecurrenceRule) bool {
	return f.match(r.Category, r.Wallet, r.Tags)
}

// MatchEntry reports whether a punctual entry passes the filter.
func (f EntryFilter) MatchEntry(e core.PunctualEntry) bool {
	return f.match(e.Category, e.Wallet, e.Tags)
}

func (f EntryFilter) match(category, wallet string, tags []string) bool {
	for _, c := range f.ExcludeCategories {
		if c == category {
			return false
		}
	}
	if len(f.Categories) > 0 && !containsString(f.Categories, category) {
		return false
	}
	if len(f.Wallets) > 0 && !containsString(f.Wallets, wallet) {
		return false
	}
	if len(f.Tags) > 0 {
		any := false
		for _, t := range tags {
			if containsString(f.Tags, t) {
				any = true
				break
			}
		}
		if !any {
			return false
		}
	}
	return true
}

func containsString(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
