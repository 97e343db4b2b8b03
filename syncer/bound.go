package syncer

import (
	"context"

	"github.com/pkg/errors"

	"github.com/merge-indexer/eth-parser/cache"
	"github.com/merge-indexer/eth-parser/external/eth"
	"github.com/merge-indexer/eth-parser/logging"
)

// BoundFinder translates a slot ceiling into the highest execution block number reachable from it.
type BoundFinder struct {
	client ConsensusClient
	cache  cache.Cache
}

func NewBoundFinder(client ConsensusClient, c cache.Cache) *BoundFinder {
	return &BoundFinder{client: client, cache: c}
}

// LastExecBlockNumber scans slots backward from slot down to 0 and returns the block number of the first
// execution payload found, 0 when there is none. Results are cached per ceiling: a cached slot below the
// ceiling answers for the ceiling too, since no payload was found in between.
func (f *BoundFinder) LastExecBlockNumber(ctx context.Context, slot uint64) (uint64, error) {
	for h := slot; ; h-- {
		if number, ok := f.cache.Get(h); ok {
			f.cache.Set(slot, number)
			return number, nil
		}
		logging.Logger.Debugf("looking for execution payload in slot %d", h)
		block, err := f.client.GetBeaconBlock(ctx, h)
		switch {
		case errors.Is(err, eth.ErrBlockNotFound):
		case err != nil:
			return 0, errors.Wrapf(err, "get beacon block at slot %d", h)
		default:
			ref, err := ToExecutionRef(block)
			if err != nil {
				return 0, errors.Wrapf(err, "extract execution payload at slot %d", h)
			}
			if ref != nil {
				f.cache.Set(slot, ref.BlockNumber)
				return ref.BlockNumber, nil
			}
		}
		if h == 0 {
			break
		}
	}
	f.cache.Set(slot, 0)
	return 0, nil
}
