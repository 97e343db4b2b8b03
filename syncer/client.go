package syncer

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/prysmaticlabs/prysm/v5/api/server/structs"

	"github.com/merge-indexer/eth-parser/types"
)

// ConsensusClient is the part of the beacon node API the syncer reads.
type ConsensusClient interface {
	GetHeadSlot(ctx context.Context) (uint64, error)
	GetBeaconBlock(ctx context.Context, slotNumber uint64) (*structs.GetBlockV2Response, error)
	GetValidators(ctx context.Context, stateID string) ([]*structs.ValidatorContainer, error)
	GetChainConfig(ctx context.Context) (*types.ChainConfig, error)
}

// ExecutionClient is the part of the execution JSON-RPC API the syncer reads.
type ExecutionClient interface {
	GetBlockNumber(ctx context.Context) (uint64, error)
	GetBlockWithTransactions(ctx context.Context, height uint64) (*types.ExecutionBlock, error)
	GetTransactionReceipt(ctx context.Context, hash common.Hash) (*ethtypes.Receipt, error)
}

// NodeClient is satisfied by external.IClient.
type NodeClient interface {
	ConsensusClient
	ExecutionClient
}
