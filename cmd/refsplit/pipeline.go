package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/matsen/refsplit/internal/export"
	"github.com/matsen/refsplit/internal/importer"
	"github.com/matsen/refsplit/internal/logging"
	"github.com/matsen/refsplit/internal/reconcile"
	"github.com/matsen/refsplit/internal/reference"
	"github.com/matsen/refsplit/internal/storage"
)

// Output table names.
const (
	OutputUniqueRecords  = "unique_records"
	OutputDuplicatesOnly = "duplicates_only"
	OutputDuplicates     = "duplicates"
	OutputMerged         = "merged"

	// ResultsDBFile is the database written for --format sqlite.
	ResultsDBFile = "results.db"
)

// sourceLetters label split inputs in output names: unique_in_a, unique_in_b, ...
var sourceLetters = []string{"a", "b", "c"}

// uniqueOutputName returns the unique-rows output name for source i.
func uniqueOutputName(i int) string {
	return "unique_in_" + sourceLetters[i]
}

// namedTable is one output table, written in order.
type namedTable struct {
	name string
	recs []reference.Record
}

// SourceSummary describes one input file.
type SourceSummary struct {
	Path    string `json:"path"`
	Format  string `json:"format"`
	Charset string `json:"charset"`
	Size    int64  `json:"size"`
	Rows    int    `json:"rows"`
	Shared  int    `json:"shared"`
	Unique  int    `json:"unique"`
}

// RunResponse is the JSON summary printed by dedupe and split.
type RunResponse struct {
	RunID     string            `json:"run_id"`
	Operation string            `json:"operation"`
	DryRun    bool              `json:"dry_run"`
	Sources   []SourceSummary   `json:"sources"`
	Stats     reconcile.Stats   `json:"stats"`
	Counts    map[string]int    `json:"counts"`
	Outputs   map[string]string `json:"outputs,omitempty"` // output name -> path
	Elapsed   string            `json:"elapsed"`
}

func newReconciler(rs *runSettings) *reconcile.Reconciler {
	return reconcile.New(
		reconcile.WithOptions(reconcile.Options{CanonicalDOI: rs.CanonicalDOI}),
		reconcile.WithObserver(logging.Observer(rs.Logger.Logger)),
	)
}

// loadSources reads every input file.
func loadSources(rs *runSettings, paths []string) ([]*importer.Source, error) {
	sources := make([]*importer.Source, len(paths))
	for i, path := range paths {
		src, err := importer.Load(path, rs.InputFormat)
		if err != nil {
			return nil, err
		}
		rs.Logger.Info().
			Str("file", path).
			Str("format", string(src.Format)).
			Str("charset", src.Charset).
			Int("rows", len(src.Table.Rows)).
			Msg("loaded")
		sources[i] = src
	}
	return sources, nil
}

// executeDedupe reduces one file to unique records and reports its duplicates.
func executeDedupe(rs *runSettings, path string) (*RunResponse, error) {
	start := time.Now()
	sources, err := loadSources(rs, []string{path})
	if err != nil {
		return nil, err
	}

	res, err := newReconciler(rs).Dedupe(sources[0].Table)
	if err != nil {
		return nil, err
	}

	summary := summarize(path, sources[0])
	summary.Shared = res.Stats.Duplicates
	summary.Unique = res.Stats.Unique

	tables := []namedTable{
		{OutputUniqueRecords, res.Unique},
		{OutputDuplicatesOnly, res.Duplicates},
	}
	resp := &RunResponse{
		RunID:     rs.RunID,
		Operation: reconcile.OpDedupe,
		DryRun:    rs.DryRun,
		Sources:   []SourceSummary{summary},
		Stats:     res.Stats,
		Counts:    countTables(tables),
	}
	if err := writeOutputs(rs, resp, tables); err != nil {
		return nil, err
	}
	resp.Elapsed = time.Since(start).Round(time.Millisecond).String()
	return resp, nil
}

// executeSplit matches two or three files against each other.
func executeSplit(rs *runSettings, paths []string) (*RunResponse, error) {
	start := time.Now()
	if len(paths) < 2 || len(paths) > len(sourceLetters) {
		return nil, fmt.Errorf("%w: got %d", reconcile.ErrSourceCount, len(paths))
	}
	sources, err := loadSources(rs, paths)
	if err != nil {
		return nil, err
	}

	tables := make([]reference.Table, len(sources))
	for i, src := range sources {
		tables[i] = src.Table
	}
	res, err := newReconciler(rs).FindAndSplitDuplicates(tables...)
	if err != nil {
		return nil, err
	}

	resp := &RunResponse{
		RunID:     rs.RunID,
		Operation: reconcile.OpSplit,
		DryRun:    rs.DryRun,
		Sources:   make([]SourceSummary, len(sources)),
		Stats:     res.Stats,
	}
	var outputs []namedTable
	for i, sr := range res.Sources {
		summary := summarize(paths[i], sources[i])
		summary.Shared = sr.Shared
		summary.Unique = len(sr.Unique)
		resp.Sources[i] = summary
		outputs = append(outputs, namedTable{uniqueOutputName(i), sr.Unique})
	}
	outputs = append(outputs,
		namedTable{OutputDuplicates, res.Duplicates},
		namedTable{OutputMerged, res.Merged},
	)
	resp.Counts = countTables(outputs)

	if err := writeOutputs(rs, resp, outputs); err != nil {
		return nil, err
	}
	resp.Elapsed = time.Since(start).Round(time.Millisecond).String()
	return resp, nil
}

func summarize(path string, src *importer.Source) SourceSummary {
	return SourceSummary{
		Path:    path,
		Format:  string(src.Format),
		Charset: src.Charset,
		Size:    src.Size,
		Rows:    len(src.Table.Rows),
	}
}

func countTables(tables []namedTable) map[string]int {
	counts := make(map[string]int, len(tables))
	for _, t := range tables {
		counts[t.name] = len(t.recs)
	}
	return counts
}

// writeOutputs writes every table to the configured sink and records the
// written paths in resp. In dry-run mode it only fills in the would-be paths.
func writeOutputs(rs *runSettings, resp *RunResponse, tables []namedTable) error {
	resp.Outputs = make(map[string]string, len(tables))
	if rs.Format == export.FormatSQLite {
		dbPath := filepath.Join(rs.OutDir, ResultsDBFile)
		for _, t := range tables {
			resp.Outputs[t.name] = dbPath
		}
	} else {
		for _, t := range tables {
			resp.Outputs[t.name] = filepath.Join(rs.OutDir, t.name+rs.Format.Extension())
		}
	}
	if rs.DryRun {
		return nil
	}

	run := storage.Run{
		ID:        rs.RunID,
		Operation: resp.Operation,
		StartedAt: time.Now(),
	}
	for _, s := range resp.Sources {
		run.Sources = append(run.Sources, s.Path)
	}

	unlock, err := storage.LockDir(rs.OutDir)
	if err != nil {
		return err
	}
	defer unlock()

	sink, err := openSink(rs, run)
	if err != nil {
		return err
	}
	for _, t := range tables {
		if err := sink.WriteTable(t.name, t.recs); err != nil {
			sink.Close()
			return err
		}
		rs.Logger.Debug().Str("output", t.name).Int("rows", len(t.recs)).Msg("wrote")
	}
	if err := sink.Close(); err != nil {
		return fmt.Errorf("closing output: %w", err)
	}

	// File outputs get a line in the run log; the database records runs itself
	if rs.Format != export.FormatSQLite {
		entry := storage.ManifestEntry{Run: run, Outputs: resp.Outputs, Counts: resp.Counts}
		if err := storage.AppendManifest(filepath.Join(rs.OutDir, storage.ManifestName), entry); err != nil {
			return err
		}
	}

	rs.Logger.Info().Str("dir", rs.OutDir).Str("format", string(rs.Format)).Msg("outputs written")
	return nil
}

// openSink returns the writer for the configured output format.
func openSink(rs *runSettings, run storage.Run) (export.Sink, error) {
	if rs.Format != export.FormatSQLite {
		dir, err := export.NewDirSink(rs.OutDir, rs.Format)
		if err != nil {
			return nil, err
		}
		return dir, nil
	}
	db, err := storage.OpenDB(filepath.Join(rs.OutDir, ResultsDBFile), run)
	if err != nil {
		return nil, fmt.Errorf("opening results database: %w", err)
	}
	return db, nil
}
