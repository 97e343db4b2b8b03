package syncer

import (
	"context"
	"time"

	"github.com/merge-indexer/eth-parser/logging"
	"github.com/merge-indexer/eth-parser/metrics"
)

func (o *Orchestrator) monitorProgress(ctx context.Context) error {
	ticker := time.NewTicker(o.monitorInterval)
	defer ticker.Stop()
	for {
		o.updateProgressMetrics()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (o *Orchestrator) updateProgressMetrics() {
	slot, err := o.dao.GetHighestSlot()
	if err != nil {
		logging.Logger.Errorf("failed to get highest slot from DB, err=%s", err.Error())
	} else if slot != nil {
		metrics.SyncedSlotGauge.Set(float64(slot.Height))
	}
	block, err := o.dao.GetHighestExecBlock()
	if err != nil {
		logging.Logger.Errorf("failed to get highest execution block from DB, err=%s", err.Error())
	} else if block != nil {
		metrics.SyncedExecBlockGauge.Set(float64(block.Number))
	}
	count, err := o.dao.CountValidators()
	if err != nil {
		logging.Logger.Errorf("failed to count validators, err=%s", err.Error())
		return
	}
	metrics.ValidatorsGauge.Set(float64(count))
}
