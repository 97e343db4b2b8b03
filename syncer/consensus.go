package syncer

import (
	"context"

	"github.com/pkg/errors"

	"github.com/merge-indexer/eth-parser/db"
	"github.com/merge-indexer/eth-parser/external/eth"
	"github.com/merge-indexer/eth-parser/logging"
	"github.com/merge-indexer/eth-parser/metrics"
	"github.com/merge-indexer/eth-parser/util"
)

// ConsensusAdapter stores one row per beacon slot.
type ConsensusAdapter struct {
	client               ConsensusClient
	slotDao              db.SlotDB
	recordValidatorCount bool
}

func NewConsensusAdapter(client ConsensusClient, slotDao db.SlotDB, recordValidatorCount bool) *ConsensusAdapter {
	return &ConsensusAdapter{
		client:               client,
		slotDao:              slotDao,
		recordValidatorCount: recordValidatorCount,
	}
}

func (a *ConsensusAdapter) String() string {
	return metrics.LayerConsensus
}

func (a *ConsensusAdapter) NodeHeight(ctx context.Context) (uint64, error) {
	return a.client.GetHeadSlot(ctx)
}

func (a *ConsensusAdapter) StoreHeight() (*uint64, error) {
	slot, err := a.slotDao.GetHighestSlot()
	if err != nil {
		return nil, err
	}
	if slot == nil {
		return nil, nil
	}
	return &slot.Height, nil
}

// ProcessHeight stores the slot, a missed slot is not an error and leaves no row.
// An existing row for the slot is kept as is.
func (a *ConsensusAdapter) ProcessHeight(ctx context.Context, height uint64) error {
	block, err := a.client.GetBeaconBlock(ctx, height)
	if err != nil {
		if errors.Is(err, eth.ErrBlockNotFound) {
			logging.Logger.Infof("slot %d was missed", height)
			return nil
		}
		return errors.Wrapf(err, "get beacon block at slot %d", height)
	}
	ref, err := ToExecutionRef(block)
	if err != nil {
		return errors.Wrapf(err, "extract execution payload at slot %d", height)
	}

	slot := &db.Slot{Height: height}
	if ref != nil {
		blockHash := util.HashToString(ref.BlockHash)
		blockNumber := ref.BlockNumber
		slot.BlockHash = &blockHash
		slot.BlockNumber = &blockNumber
	}
	if a.recordValidatorCount {
		validators, err := a.client.GetValidators(ctx, util.Uint64ToString(height))
		if err != nil {
			return errors.Wrapf(err, "get validators at slot %d", height)
		}
		count := uint64(len(validators))
		slot.ValidatorsCount = &count
	}

	inserted, err := a.slotDao.InsertSlotOrSkip(slot)
	if err != nil {
		return err
	}
	if !inserted {
		logging.Logger.Debugf("slot %d is already stored", height)
	}
	return nil
}
