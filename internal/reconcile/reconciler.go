// Package reconcile finds bibliographic records that describe the same
// publication and splits record sets into unique and duplicate outputs.
//
// Two records are duplicates when they share an identifier (DOI), or, for
// records without one, when their normalized titles and years agree. The
// package performs no I/O: it takes decoded tables and returns records.
package reconcile

import (
	"fmt"

	"github.com/matsen/refsplit/internal/reference"
)

// Operation names reported in Events.
const (
	OpKeepOne   = "keep_one"
	OpWithinOne = "within_one"
	OpDedupe    = "dedupe"
	OpSplit     = "split"
)

const (
	minSplitSets = 2
	maxSplitSets = 3
)

// Reconciler runs duplicate detection with fixed options.
// It holds no per-call state and is safe for concurrent use when its
// Observer is.
type Reconciler struct {
	opts     Options
	observer Observer
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithObserver sets the observer that receives diagnostic events.
func WithObserver(o Observer) Option {
	return func(r *Reconciler) {
		if o != nil {
			r.observer = o
		}
	}
}

// WithOptions replaces the key derivation options.
func WithOptions(opts Options) Option {
	return func(r *Reconciler) {
		r.opts = opts
	}
}

// New creates a Reconciler.
func New(opts ...Option) *Reconciler {
	r := &Reconciler{
		opts:     DefaultOptions(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Stats summarizes one operation.
type Stats struct {
	Input       int `json:"input"`
	Unique      int `json:"unique"`
	Duplicates  int `json:"duplicates"`
	ByDOI       int `json:"by_doi"`
	ByTitleYear int `json:"by_title_year"`
}

// SourceResult is one source's share of a split.
type SourceResult struct {
	Name   string             `json:"name"`
	Input  int                `json:"input"`
	Shared int                `json:"shared"`
	Unique []reference.Record `json:"unique"`
}

// SplitResult is the outcome of FindAndSplitDuplicates.
type SplitResult struct {
	Sources    []SourceResult     `json:"sources"`
	Duplicates []reference.Record `json:"duplicates"`
	// Merged holds every source's unique rows, identical records once.
	Merged []reference.Record `json:"merged"`
	Stats  Stats              `json:"stats"`
}

// DedupeResult is the outcome of single-file deduplication.
type DedupeResult struct {
	Unique     []reference.Record `json:"unique"`
	Duplicates []reference.Record `json:"duplicates"`
	Stats      Stats              `json:"stats"`
}

// RemoveDuplicatesKeepOne returns t's rows with later repeats removed.
// Rows are keyed by (identifier, normalized title, year); the first
// occurrence is kept and input order is preserved. A row with neither an
// identifier nor a usable year has no complete key and is always kept.
func (r *Reconciler) RemoveDuplicatesKeepOne(t reference.Table) ([]reference.Record, error) {
	set, err := r.prepare(OpKeepOne, 0, t)
	if err != nil {
		return nil, err
	}
	return keepFirst(set), nil
}

// FindDuplicatesWithinOne returns the rows of t that duplicate another row
// of t, in input order, identical records reported once.
func (r *Reconciler) FindDuplicatesWithinOne(t reference.Table) ([]reference.Record, error) {
	set, err := r.prepare(OpWithinOne, 0, t)
	if err != nil {
		return nil, err
	}
	m := r.match(OpWithinOne, set)
	return Partition([][]Prepared{set}, m).Duplicates, nil
}

// Dedupe runs both single-file operations over one preparation of t.
func (r *Reconciler) Dedupe(t reference.Table) (*DedupeResult, error) {
	set, err := r.prepare(OpDedupe, 0, t)
	if err != nil {
		return nil, err
	}
	m := r.match(OpDedupe, set)
	split := Partition([][]Prepared{set}, m)
	unique := keepFirst(set)

	res := &DedupeResult{
		Unique:     unique,
		Duplicates: split.Duplicates,
		Stats: Stats{
			Input:       len(set),
			Unique:      len(unique),
			Duplicates:  m.Count(),
			ByDOI:       m.CountByTier(TierDOI),
			ByTitleYear: m.CountByTier(TierTitleYear),
		},
	}
	r.observer.Observe(Event{Op: OpDedupe, Stage: StagePartition, Rows: len(set), Duplicates: len(split.Duplicates)})
	return res, nil
}

// FindAndSplitDuplicates matches two or three tables against each other.
// Each source's rows are split into rows unique to that source and rows
// with a duplicate partner anywhere in the combined input; the latter make
// up the duplicates report.
func (r *Reconciler) FindAndSplitDuplicates(tables ...reference.Table) (*SplitResult, error) {
	if len(tables) < minSplitSets || len(tables) > maxSplitSets {
		err := fmt.Errorf("%w: got %d", ErrSourceCount, len(tables))
		r.observer.Observe(Event{Op: OpSplit, Stage: StagePrepare, Err: err})
		return nil, err
	}

	sets := make([][]Prepared, len(tables))
	for i, t := range tables {
		set, err := r.prepare(OpSplit, i, t)
		if err != nil {
			return nil, err
		}
		sets[i] = set
	}

	m := r.match(OpSplit, sets...)
	split := Partition(sets, m)

	res := &SplitResult{
		Sources:    make([]SourceResult, len(tables)),
		Duplicates: split.Duplicates,
		Stats: Stats{
			Duplicates:  m.Count(),
			ByDOI:       m.CountByTier(TierDOI),
			ByTitleYear: m.CountByTier(TierTitleYear),
		},
	}
	var uniques []reference.Record
	for i, t := range tables {
		res.Sources[i] = SourceResult{
			Name:   t.Name,
			Input:  len(sets[i]),
			Shared: len(split.Shared[i]),
			Unique: split.Unique[i],
		}
		res.Stats.Input += len(sets[i])
		res.Stats.Unique += len(split.Unique[i])
		uniques = append(uniques, split.Unique[i]...)
	}
	res.Merged = distinct(uniques)

	r.observer.Observe(Event{Op: OpSplit, Stage: StagePartition, Rows: res.Stats.Input, Duplicates: len(res.Duplicates)})
	return res, nil
}

func (r *Reconciler) prepare(op string, src int, t reference.Table) ([]Prepared, error) {
	set, err := Prepare(src, t, r.opts)
	r.observer.Observe(Event{Op: op, Stage: StagePrepare, Source: t.Name, Rows: len(t.Rows), Err: err})
	return set, err
}

func (r *Reconciler) match(op string, sets ...[]Prepared) Membership {
	m := FindDuplicates(sets...)
	rows := 0
	for _, s := range sets {
		rows += len(s)
	}
	r.observer.Observe(Event{
		Op:          op,
		Stage:       StageMatch,
		Rows:        rows,
		Duplicates:  m.Count(),
		ByDOI:       m.CountByTier(TierDOI),
		ByTitleYear: m.CountByTier(TierTitleYear),
	})
	return m
}

type keepKey struct {
	id    string
	title string
	year  string
}

// keepFirst keeps the first row for each complete (identifier, title, year) key.
func keepFirst(set []Prepared) []reference.Record {
	seen := make(map[keepKey]bool, len(set))
	out := make([]reference.Record, 0, len(set))
	for _, p := range set {
		if p.IDKey == "" && !p.YearOK {
			out = append(out, p.Record)
			continue
		}
		k := keepKey{id: p.IDKey, title: p.Key, year: p.YearKey}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p.Record)
	}
	return out
}
