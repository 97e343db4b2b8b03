package syncer

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/prysmaticlabs/prysm/v5/api/server/structs"

	"github.com/merge-indexer/eth-parser/db"
	"github.com/merge-indexer/eth-parser/external/eth"
	"github.com/merge-indexer/eth-parser/logging"
	"github.com/merge-indexer/eth-parser/util"
)

// ValidatorRefresher periodically merges the whole validator set into the store.
type ValidatorRefresher struct {
	client    ConsensusClient
	dao       db.ValidatorDB
	batchSize int
	interval  time.Duration
}

func NewValidatorRefresher(client ConsensusClient, dao db.ValidatorDB, batchSize int, interval time.Duration) *ValidatorRefresher {
	return &ValidatorRefresher{
		client:    client,
		dao:       dao,
		batchSize: batchSize,
		interval:  interval,
	}
}

// Refresh fetches the validator set at stateID, "head" or a slot, and upserts it. Only balance, status,
// withdrawal credentials, effective balance and slashed are overwritten for known validators.
func (r *ValidatorRefresher) Refresh(ctx context.Context, stateID string) (int, error) {
	logging.Logger.Infof("syncing validators at state %s", stateID)
	containers, err := r.client.GetValidators(ctx, stateID)
	if err != nil {
		if errors.Is(err, eth.ErrStateNotFound) {
			return 0, errors.Wrapf(ErrNoValidators, "state=%s", stateID)
		}
		return 0, errors.Wrapf(err, "get validators at state %s", stateID)
	}
	if len(containers) == 0 {
		return 0, errors.Wrapf(ErrNoValidators, "state=%s", stateID)
	}

	validators := make([]*db.Validator, 0, len(containers))
	for _, c := range containers {
		v, err := toValidator(c)
		if err != nil {
			return 0, err
		}
		validators = append(validators, v)
	}
	if err = r.dao.UpsertValidators(validators, r.batchSize); err != nil {
		return 0, err
	}
	logging.Logger.Infof("upserted %d validators at state %s", len(validators), stateID)
	return len(validators), nil
}

// Loop refreshes the validators at head on every interval until ctx is done.
func (r *ValidatorRefresher) Loop(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		if _, err := r.Refresh(ctx, eth.StateHead); err != nil {
			logging.Logger.Errorf("failed to refresh validators, err=%s", err.Error())
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func toValidator(c *structs.ValidatorContainer) (*db.Validator, error) {
	if c == nil || c.Validator == nil {
		return nil, errors.New("empty validator container")
	}
	index, err := util.StringToUint64(c.Index)
	if err != nil {
		return nil, errors.Wrapf(err, "validator index %q", c.Index)
	}
	balance, err := util.StringToUint64(c.Balance)
	if err != nil {
		return nil, errors.Wrapf(err, "balance of validator %d", index)
	}
	effectiveBalance, err := util.StringToUint64(c.Validator.EffectiveBalance)
	if err != nil {
		return nil, errors.Wrapf(err, "effective balance of validator %d", index)
	}
	epochs := make([]int64, 4)
	for i, s := range []string{
		c.Validator.ActivationEligibilityEpoch,
		c.Validator.ActivationEpoch,
		c.Validator.ExitEpoch,
		c.Validator.WithdrawableEpoch,
	} {
		if epochs[i], err = util.StringToEpoch(s); err != nil {
			return nil, errors.Wrapf(err, "epoch of validator %d", index)
		}
	}
	return &db.Validator{
		Index:                      index,
		Balance:                    balance,
		Status:                     c.Status,
		Pubkey:                     util.NormalizeHex(c.Validator.Pubkey),
		WithdrawalCredentials:      util.NormalizeHex(c.Validator.WithdrawalCredentials),
		EffectiveBalance:           effectiveBalance,
		Slashed:                    c.Validator.Slashed,
		ActivationEligibilityEpoch: epochs[0],
		ActivationEpoch:            epochs[1],
		ExitEpoch:                  epochs[2],
		WithdrawableEpoch:          epochs[3],
	}, nil
}
