package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/merge-indexer/eth-parser/logging"
	"github.com/merge-indexer/eth-parser/metrics"
)

// Adapter binds a HeightSyncer to one chain layer.
type Adapter interface {
	fmt.Stringer
	// NodeHeight is the head height reported by the node.
	NodeHeight(ctx context.Context) (uint64, error)
	// StoreHeight is the highest height stored, nil when nothing is stored yet.
	StoreHeight() (*uint64, error)
	// ProcessHeight fetches and stores a single height.
	ProcessHeight(ctx context.Context, height uint64) error
}

// HeightSyncer walks heights in ascending order, one at a time, and hands each of them to its adapter.
type HeightSyncer struct {
	adapter Adapter
}

func NewHeightSyncer(adapter Adapter) *HeightSyncer {
	return &HeightSyncer{adapter: adapter}
}

func (s *HeightSyncer) resolveFrom(from *uint64) (uint64, error) {
	if from != nil {
		return *from, nil
	}
	stored, err := s.adapter.StoreHeight()
	if err != nil {
		return 0, err
	}
	if stored == nil {
		return 0, nil
	}
	return *stored + 1, nil
}

// CatchUp processes every height in [from, to]. A nil from resumes after the highest stored height.
// A failed height is logged and skipped, so the returned height is always to and does not
// mean every height in the range was stored.
func (s *HeightSyncer) CatchUp(ctx context.Context, from *uint64, to uint64) (uint64, error) {
	start, err := s.resolveFrom(from)
	if err != nil {
		logging.Logger.Errorf("%s: failed to resolve start height, err=%s", s.adapter, err.Error())
		return 0, err
	}
	return s.catchUp(ctx, start, to)
}

func (s *HeightSyncer) catchUp(ctx context.Context, from, to uint64) (uint64, error) {
	if from > to {
		return to, nil
	}
	logging.Logger.Infof("%s: syncing from height %d to %d", s.adapter, from, to)
	for height := from; ; height++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if err := s.adapter.ProcessHeight(ctx, height); err != nil {
			metrics.HeightFailureCounter.WithLabelValues(s.adapter.String()).Inc()
			logging.Logger.Warningf("%s: failed to process height %d, err=%s", s.adapter, height, err.Error())
		} else {
			logging.Logger.Debugf("%s: processed height %d", s.adapter, height)
		}
		if height == to {
			break
		}
	}
	return to, nil
}

// PollForever compares the node head with the store on every tick and catches up the difference.
// from is only honoured by the first tick that reaches the node. Errors never stop the loop,
// it returns once ctx is done.
func (s *HeightSyncer) PollForever(ctx context.Context, from *uint64, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		from = s.tick(ctx, from)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// tick returns the start height override still to be honoured.
func (s *HeightSyncer) tick(ctx context.Context, from *uint64) *uint64 {
	to, err := s.adapter.NodeHeight(ctx)
	if err != nil {
		logging.Logger.Errorf("%s: failed to get node height, err=%s", s.adapter, err.Error())
		return from
	}
	start, err := s.resolveFrom(from)
	if err != nil {
		logging.Logger.Errorf("%s: failed to resolve start height, err=%s", s.adapter, err.Error())
		return from
	}
	if to == start {
		return nil
	}
	if _, err = s.catchUp(ctx, start, to); err != nil {
		logging.Logger.Errorf("%s: catch up interrupted, err=%s", s.adapter, err.Error())
	}
	return nil
}
