package eth

import (
	"context"
	"encoding/json"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"

	"github.com/merge-indexer/eth-parser/types"
)

type ExecutionClient struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client
}

func NewExecutionClient(ctx context.Context, addr string) (*ExecutionClient, error) {
	rpcClient, err := rpc.DialContext(ctx, addr)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", addr)
	}
	return &ExecutionClient{
		rpcClient: rpcClient,
		ethClient: ethclient.NewClient(rpcClient),
	}, nil
}

func (c *ExecutionClient) GetBlockNumber(ctx context.Context) (uint64, error) {
	return c.ethClient.BlockNumber(ctx)
}

// GetBlockWithTransactions returns the block at height with full transaction bodies, ErrBlockNotFound when the node has none.
// The raw rpc call keeps a pending block (no hash, no number) observable, ethclient would compute a hash for it.
func (c *ExecutionClient) GetBlockWithTransactions(ctx context.Context, height uint64) (*types.ExecutionBlock, error) {
	var raw json.RawMessage
	if err := c.rpcClient.CallContext(ctx, &raw, "eth_getBlockByNumber", hexutil.EncodeUint64(height), true); err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, ErrBlockNotFound
	}
	block := &types.ExecutionBlock{}
	if err := json.Unmarshal(raw, block); err != nil {
		return nil, errors.Wrapf(err, "decode block %d", height)
	}
	return block, nil
}

// GetTransactionReceipt returns nil when the node knows no receipt for hash.
func (c *ExecutionClient) GetTransactionReceipt(ctx context.Context, hash common.Hash) (*ethtypes.Receipt, error) {
	receipt, err := c.ethClient.TransactionReceipt(ctx, hash)
	if errors.Is(err, ethereum.NotFound) {
		return nil, nil
	}
	return receipt, err
}

func (c *ExecutionClient) Close() {
	c.rpcClient.Close()
}
