package app

import (
	"context"

	"github.com/five82/skytrack/internal/logger"
	"github.com/five82/skytrack/internal/state"
)

// viewSource is the subscription side of the flight store.
type viewSource interface {
	Subscribe() (<-chan state.View, func())
}

// watchStore logs feed transitions (live, cached, failing) until ctx is
// cancelled. Per-update counts go to debug so a quiet feed stays quiet.
func watchStore(ctx context.Context, src viewSource, log *logger.Logger) {
	views, unsubscribe := src.Subscribe()
	defer unsubscribe()

	var last feedState
	for {
		select {
		case <-ctx.Done():
			return
		case v, ok := <-views:
			if !ok {
				return
			}
			cur := feedStateOf(v)
			if cur != last {
				logTransition(log, last, cur, v)
				last = cur
			}
			if !v.Loading && !v.UpdatedAt.IsZero() {
				log.Debug("flights updated",
					logger.Int("flights", len(v.Flights)),
					logger.Int("visible", len(v.Visible)),
					logger.Int("countries", len(v.Countries)),
					logger.String("source", v.Source.String()),
				)
			}
		}
	}
}

type feedState struct {
	source state.Source
	err    string
}

func feedStateOf(v state.View) feedState {
	return feedState{source: v.Source, err: v.Err}
}

func logTransition(log *logger.Logger, from, to feedState, v state.View) {
	switch {
	case to.err != "":
		log.Warn("feed failing",
			logger.String("error", to.err),
			logger.Int("consecutive_failures", v.ConsecutiveFailures),
			logger.String("source", to.source.String()),
		)
	case from.err != "":
		log.Info("feed recovered", logger.String("source", to.source.String()))
	case to.source == state.SourceCache:
		log.Info("serving cached flights", logger.Int64("data_time", v.DataTime))
	case to.source == state.SourceLive && from.source != state.SourceLive:
		log.Info("live feed", logger.Int("flights", len(v.Flights)))
	}
}
