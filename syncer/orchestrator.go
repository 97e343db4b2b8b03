package syncer

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/merge-indexer/eth-parser/cache"
	"github.com/merge-indexer/eth-parser/config"
	"github.com/merge-indexer/eth-parser/db"
	"github.com/merge-indexer/eth-parser/logging"
	"github.com/merge-indexer/eth-parser/util"
)

const MonitorProgressInterval = time.Minute

// Orchestrator schedules the consensus and execution syncers and the validator refresher.
type Orchestrator struct {
	cfg       *config.SyncerConfig
	dao       db.SyncerDao
	client    NodeClient
	consensus *HeightSyncer
	execution *HeightSyncer
	refresher *ValidatorRefresher
	bound     *BoundFinder

	roundPause      time.Duration
	monitorInterval time.Duration
}

func NewOrchestrator(cfg *config.SyncerConfig, dao db.SyncerDao, client NodeClient, c cache.Cache) *Orchestrator {
	return &Orchestrator{
		cfg:             cfg,
		dao:             dao,
		client:          client,
		consensus:       NewHeightSyncer(NewConsensusAdapter(client, dao, cfg.RecordValidatorCount)),
		execution:       NewHeightSyncer(NewExecutionAdapter(client, dao, cfg.GetDepositLinkConcurrency())),
		refresher:       NewValidatorRefresher(client, dao, cfg.GetValidatorBatchSize(), cfg.GetValidatorRefreshInterval()),
		bound:           NewBoundFinder(client, c),
		roundPause:      cfg.GetSlotPollInterval(),
		monitorInterval: MonitorProgressInterval,
	}
}

// Run polls both layers and refreshes validators until ctx is done.
func (o *Orchestrator) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return o.consensus.PollForever(ctx, o.cfg.StartSlot, o.cfg.GetSlotPollInterval())
	})
	g.Go(func() error {
		return o.execution.PollForever(ctx, o.cfg.StartBlock, o.cfg.GetBlockPollInterval())
	})
	g.Go(func() error {
		return o.refresher.Loop(ctx)
	})
	g.Go(func() error {
		return o.monitorProgress(ctx)
	})
	return g.Wait()
}

// RunFrozen syncs both layers in rounds up to freezeAt and returns once the consensus layer reached it.
// Every round refreshes validators at the round ceiling, then catches up both layers concurrently and joins them.
func (o *Orchestrator) RunFrozen(ctx context.Context, freezeAt uint64) error {
	if err := o.cfg.CheckFreezeAt(freezeAt); err != nil {
		return err
	}
	fromSlot, fromBlock := o.cfg.StartSlot, o.cfg.StartBlock
	for {
		done, err := o.round(ctx, freezeAt, fromSlot, fromBlock)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logging.Logger.Errorf("frozen sync round failed, err=%s", err.Error())
		} else {
			fromSlot, fromBlock = nil, nil
		}
		if done {
			logging.Logger.Infof("reached freeze slot %d", freezeAt)
			o.updateProgressMetrics()
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(o.roundPause):
		}
	}
}

func (o *Orchestrator) round(ctx context.Context, freezeAt uint64, fromSlot, fromBlock *uint64) (bool, error) {
	head, err := o.client.GetHeadSlot(ctx)
	if err != nil {
		return false, err
	}
	ceiling := head
	if freezeAt < ceiling {
		ceiling = freezeAt
	}

	if _, err = o.refresher.Refresh(ctx, util.Uint64ToString(ceiling)); err != nil {
		logging.Logger.Errorf("failed to refresh validators at slot %d, err=%s", ceiling, err.Error())
	}

	maxBlock, err := o.bound.LastExecBlockNumber(ctx, ceiling)
	if err != nil {
		return false, err
	}
	logging.Logger.Infof("frozen sync round: slot ceiling %d, execution ceiling %d", ceiling, maxBlock)

	var (
		g       errgroup.Group
		reached uint64
	)
	g.Go(func() error {
		var err error
		reached, err = o.consensus.CatchUp(ctx, fromSlot, ceiling)
		return err
	})
	g.Go(func() error {
		_, err := o.execution.CatchUp(ctx, fromBlock, maxBlock)
		return err
	})
	if err = g.Wait(); err != nil {
		return false, err
	}
	return reached == freezeAt, nil
}
