package logging

import (
	"github.com/matsen/refsplit/internal/reconcile"
	"github.com/rs/zerolog"
)

// Observer adapts a logger to reconcile.Observer. Stage events log at debug,
// partition summaries at info and failures at error.
func Observer(logger zerolog.Logger) reconcile.Observer {
	return reconcile.ObserverFunc(func(e reconcile.Event) {
		var ev *zerolog.Event
		switch {
		case e.Err != nil:
			ev = logger.Error().Err(e.Err)
		case e.Stage == reconcile.StagePartition:
			ev = logger.Info()
		default:
			ev = logger.Debug()
		}

		ev = ev.Str("op", e.Op).Str("stage", e.Stage)
		if e.Source != "" {
			ev = ev.Str("source", e.Source)
		}

		switch e.Stage {
		case reconcile.StagePrepare:
			ev = ev.Int("rows", e.Rows)
		case reconcile.StageMatch:
			ev = ev.Int("rows", e.Rows).
				Int("duplicates", e.Duplicates).
				Int("by_doi", e.ByDOI).
				Int("by_title_year", e.ByTitleYear)
		case reconcile.StagePartition:
			ev = ev.Int("rows", e.Rows).Int("duplicates", e.Duplicates)
		}

		if e.Err != nil {
			ev.Msg("reconciliation failed")
			return
		}
		ev.Msg(e.Stage)
	})
}
