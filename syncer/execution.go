package syncer

import (
	"context"
	"math/big"

	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/merge-indexer/eth-parser/db"
	"github.com/merge-indexer/eth-parser/external/eth"
	"github.com/merge-indexer/eth-parser/logging"
	"github.com/merge-indexer/eth-parser/metrics"
	"github.com/merge-indexer/eth-parser/types"
	"github.com/merge-indexer/eth-parser/util"
)

const (
	anomalyNoValidator        = "no_validator"
	anomalyManyValidators     = "many_validators"
	anomalyLinkFailed         = "link_failed"
	defaultDepositConcurrency = 16
)

// ExecutionAdapter stores execution blocks with their transactions and links deposits to validators.
type ExecutionAdapter struct {
	client      ExecutionClient
	dao         db.SyncerDao
	concurrency int
}

func NewExecutionAdapter(client ExecutionClient, dao db.SyncerDao, depositLinkConcurrency int) *ExecutionAdapter {
	if depositLinkConcurrency <= 0 {
		depositLinkConcurrency = defaultDepositConcurrency
	}
	return &ExecutionAdapter{
		client:      client,
		dao:         dao,
		concurrency: depositLinkConcurrency,
	}
}

func (a *ExecutionAdapter) String() string {
	return metrics.LayerExecution
}

func (a *ExecutionAdapter) NodeHeight(ctx context.Context) (uint64, error) {
	return a.client.GetBlockNumber(ctx)
}

func (a *ExecutionAdapter) StoreHeight() (*uint64, error) {
	block, err := a.dao.GetHighestExecBlock()
	if err != nil {
		return nil, err
	}
	if block == nil {
		return nil, nil
	}
	return &block.Number, nil
}

// ProcessHeight stores the block at height and its transactions in one unit, a block stored twice is an error.
// Deposit contract calls are then linked concurrently, ProcessHeight returns once every link is done.
// Link failures are logged and do not fail the block.
func (a *ExecutionAdapter) ProcessHeight(ctx context.Context, height uint64) error {
	block, err := a.client.GetBlockWithTransactions(ctx, height)
	if err != nil {
		if errors.Is(err, eth.ErrBlockNotFound) {
			return errors.Wrapf(ErrNothingAtHeight, "height=%d", height)
		}
		return errors.Wrapf(err, "get execution block %d", height)
	}
	if block.Hash == nil || block.Number == nil {
		return errors.Wrapf(ErrPendingBlock, "height=%d", height)
	}

	stored, err := a.dao.GetExecBlockByNumber(height)
	if err != nil {
		return err
	}
	if stored != nil {
		logging.Logger.Errorf("execution block(h=%d) is already stored with hash %s", height, stored.Hash)
		return errors.Wrapf(db.ErrDuplicateEntry, "execution block %d already stored", height)
	}

	blockToSave, txsToSave, deposits, err := a.toBlockAndTransactions(block)
	if err != nil {
		return err
	}
	if err = a.dao.SaveExecBlockAndTransactions(blockToSave, txsToSave); err != nil {
		logging.Logger.Errorf("failed to save execution block(h=%d) and transactions(count=%d), err=%s", height, len(txsToSave), err.Error())
		return err
	}
	logging.Logger.Debugf("saved execution block(h=%d) and transactions(count=%d)", height, len(txsToSave))

	if len(deposits) == 0 {
		return nil
	}
	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for _, tx := range deposits {
		tx := tx
		g.Go(func() error {
			if err := a.linkDeposit(ctx, tx); err != nil {
				metrics.DepositLinkAnomalyCounter.WithLabelValues(anomalyLinkFailed).Inc()
				logging.Logger.Errorf("failed to link deposit transaction %s, err=%s", tx.Hash.Hex(), err.Error())
			}
			return nil
		})
	}
	return g.Wait()
}

func (a *ExecutionAdapter) toBlockAndTransactions(block *types.ExecutionBlock) (*db.ExecBlock, []*db.Transaction, []*types.ExecutionTransaction, error) {
	blockHash := util.HashToString(*block.Hash)
	blockToSave := &db.ExecBlock{
		Hash:             blockHash,
		Number:           block.Number.ToInt().Uint64(),
		ParentHash:       util.HashToString(block.ParentHash),
		StateRoot:        util.HashToString(block.StateRoot),
		TransactionsRoot: util.HashToString(block.TransactionsRoot),
		ReceiptsRoot:     util.HashToString(block.ReceiptsRoot),
	}

	txs := make([]*db.Transaction, 0, len(block.Transactions))
	var deposits []*types.ExecutionTransaction
	for i, tx := range block.Transactions {
		var value *big.Int
		if tx.Value != nil {
			value = tx.Value.ToInt()
		}
		valueBz, err := util.BigToLE32(value)
		if err != nil {
			return nil, nil, nil, errors.Wrapf(err, "transaction %s", tx.Hash.Hex())
		}
		index := uint64(i)
		if tx.TransactionIndex != nil {
			index = uint64(*tx.TransactionIndex)
		}
		txToSave := &db.Transaction{
			Hash:        util.HashToString(tx.Hash),
			BlockHash:   blockHash,
			Index:       index,
			FromAddress: util.AddressToString(tx.From),
			Input:       tx.Input,
			Value:       valueBz,
		}
		if tx.To != nil {
			to := util.AddressToString(*tx.To)
			txToSave.ToAddress = &to
		}
		txs = append(txs, txToSave)

		if IsDepositContractCall(tx.To) {
			deposits = append(deposits, tx)
		}
	}
	return blockToSave, txs, deposits, nil
}

// linkDeposit records the outcome of a deposit contract call and points the deposited validator at it.
// Calls that are not a deposit are ignored. The transaction must be included, its receipt is required.
func (a *ExecutionAdapter) linkDeposit(ctx context.Context, tx *types.ExecutionTransaction) error {
	pubkey, ok := DecodeDepositPubkey(tx.Input)
	if !ok {
		logging.Logger.Debugf("transaction %s to the deposit contract is not a deposit", tx.Hash.Hex())
		return nil
	}

	receipt, err := a.client.GetTransactionReceipt(ctx, tx.Hash)
	if err != nil {
		return err
	}
	if receipt == nil {
		return errors.Wrapf(ErrMissingReceipt, "transaction %s", tx.Hash.Hex())
	}
	txHash := util.HashToString(tx.Hash)
	success := receipt.Status == ethtypes.ReceiptStatusSuccessful
	if _, err = a.dao.SetTransactionStatus(txHash, success); err != nil {
		return err
	}

	validatorPubkey := util.PubkeyToString(pubkey)
	rows, err := a.dao.SetValidatorDepositTransaction(validatorPubkey, txHash)
	if err != nil {
		return err
	}
	switch {
	case rows == 1:
		metrics.DepositLinkCounter.Inc()
	case rows == 0:
		metrics.DepositLinkAnomalyCounter.WithLabelValues(anomalyNoValidator).Inc()
		logging.Logger.Errorf("no validator with pubkey %s to link to deposit transaction %s", validatorPubkey, tx.Hash.Hex())
	default:
		metrics.DepositLinkAnomalyCounter.WithLabelValues(anomalyManyValidators).Inc()
		logging.Logger.Errorf("wrong amount (%d) of validators are linked to deposit transaction %s", rows, tx.Hash.Hex())
	}
	return nil
}
