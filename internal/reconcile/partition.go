package reconcile

import "github.com/matsen/refsplit/internal/reference"

// Split is the per-source routing of rows by duplicate membership.
type Split struct {
	Unique [][]reference.Record // Per source, rows with no duplicate partner
	Shared [][]reference.Record // Per source, rows with a duplicate partner

	// Duplicates is every shared row in source-then-position order,
	// with identical records reported once.
	Duplicates []reference.Record
}

// Partition routes every row of every set into its source's unique or
// shared output. Each row lands in exactly one of the two.
func Partition(sets [][]Prepared, m Membership) Split {
	s := Split{
		Unique: make([][]reference.Record, len(sets)),
		Shared: make([][]reference.Record, len(sets)),
	}

	var shared []reference.Record
	for i, set := range sets {
		s.Unique[i] = []reference.Record{}
		s.Shared[i] = []reference.Record{}
		for _, p := range set {
			if m.IsDuplicate(p.Tag) {
				s.Shared[i] = append(s.Shared[i], p.Record)
				shared = append(shared, p.Record)
			} else {
				s.Unique[i] = append(s.Unique[i], p.Record)
			}
		}
	}
	s.Duplicates = distinct(shared)
	return s
}

// distinct drops records identical to an earlier one, keeping order.
func distinct(recs []reference.Record) []reference.Record {
	seen := make(map[reference.Record]bool, len(recs))
	out := make([]reference.Record, 0, len(recs))
	for _, r := range recs {
		if seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}
