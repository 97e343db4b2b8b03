package external

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/prysmaticlabs/prysm/v5/api/server/structs"

	"github.com/merge-indexer/eth-parser/config"
	"github.com/merge-indexer/eth-parser/external/eth"
	"github.com/merge-indexer/eth-parser/types"
)

type IClient interface {
	// for eth beacon chain
	GetHeadSlot(ctx context.Context) (uint64, error)
	GetBeaconBlock(ctx context.Context, slotNumber uint64) (*structs.GetBlockV2Response, error)
	GetValidators(ctx context.Context, stateID string) ([]*structs.ValidatorContainer, error)
	GetChainConfig(ctx context.Context) (*types.ChainConfig, error)

	// for execution chain
	GetBlockNumber(ctx context.Context) (uint64, error)
	GetBlockWithTransactions(ctx context.Context, height uint64) (*types.ExecutionBlock, error)
	GetTransactionReceipt(ctx context.Context, hash common.Hash) (*ethtypes.Receipt, error)
}

type Client struct {
	*eth.BeaconClient
	*eth.ExecutionClient
}

func NewClient(cfg *config.SyncerConfig) IClient {
	beaconClient, err := eth.NewBeaconClient(cfg.BeaconRPCAddrs[0], cfg.GetRPCTimeout())
	if err != nil {
		panic("new beacon client error")
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.GetRPCTimeout())
	defer cancel()
	executionClient, err := eth.NewExecutionClient(ctx, cfg.RPCAddrs[0])
	if err != nil {
		panic("new execution client error")
	}
	return &Client{
		BeaconClient:    beaconClient,
		ExecutionClient: executionClient,
	}
}
