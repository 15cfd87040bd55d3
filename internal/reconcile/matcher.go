package reconcile

// Tier identifies which rule marked a record as a duplicate.
type Tier int

const (
	TierNone      Tier = iota // Not a duplicate
	TierDOI                   // Shares an identifier with another record
	TierTitleYear             // No identifier; shares normalized title and year
)

func (t Tier) String() string {
	switch t {
	case TierDOI:
		return "doi"
	case TierTitleYear:
		return "title_year"
	default:
		return "none"
	}
}

// Membership records which rows belong to some duplicate group.
// Groups themselves are not materialized.
type Membership struct {
	tiers map[Tag]Tier
}

// IsDuplicate reports whether the row at tag has a duplicate partner.
func (m Membership) IsDuplicate(tag Tag) bool {
	return m.tiers[tag] != TierNone
}

// Tier returns the rule that flagged the row at tag, or TierNone.
func (m Membership) Tier(tag Tag) Tier {
	return m.tiers[tag]
}

// Count returns the number of flagged rows.
func (m Membership) Count() int {
	return len(m.tiers)
}

// CountByTier returns the number of rows flagged by the given tier.
func (m Membership) CountByTier(tier Tier) int {
	n := 0
	for _, t := range m.tiers {
		if t == tier {
			n++
		}
	}
	return n
}

type titleYear struct {
	key  string
	year string
}

// FindDuplicates computes duplicate membership over the union of sets.
//
// Records with an identifier are grouped by identifier only. Records
// without one are grouped by (normalized title, year); a record whose year
// is missing or unparseable never joins a title+year group. Any group with
// two or more members flags all of them.
func FindDuplicates(sets ...[]Prepared) Membership {
	byID := make(map[string][]Tag)
	byTitleYear := make(map[titleYear][]Tag)

	for _, set := range sets {
		for _, p := range set {
			switch {
			case p.IDKey != "":
				byID[p.IDKey] = append(byID[p.IDKey], p.Tag)
			case p.YearOK:
				k := titleYear{key: p.Key, year: p.YearKey}
				byTitleYear[k] = append(byTitleYear[k], p.Tag)
			}
		}
	}

	m := Membership{tiers: make(map[Tag]Tier)}
	for _, tags := range byID {
		m.flag(tags, TierDOI)
	}
	for _, tags := range byTitleYear {
		m.flag(tags, TierTitleYear)
	}
	return m
}

func (m Membership) flag(tags []Tag, tier Tier) {
	if len(tags) < 2 {
		return
	}
	for _, tag := range tags {
		m.tiers[tag] = tier
	}
}
