package types

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ExecutionBlock is an execution block returned by eth_getBlockByNumber with full transaction bodies.
// Hash and Number are nil while the block is pending.
type ExecutionBlock struct {
	Hash             *common.Hash            `json:"hash"`
	Number           *hexutil.Big            `json:"number"`
	ParentHash       common.Hash             `json:"parentHash"`
	StateRoot        common.Hash             `json:"stateRoot"`
	TransactionsRoot common.Hash             `json:"transactionsRoot"`
	ReceiptsRoot     common.Hash             `json:"receiptsRoot"`
	Transactions     []*ExecutionTransaction `json:"transactions"`
}

// ExecutionTransaction is a transaction body as embedded in ExecutionBlock, To is nil for a contract creation.
type ExecutionTransaction struct {
	Hash             common.Hash     `json:"hash"`
	BlockHash        *common.Hash    `json:"blockHash"`
	TransactionIndex *hexutil.Uint64 `json:"transactionIndex"`
	From             common.Address  `json:"from"`
	To               *common.Address `json:"to"`
	Input            hexutil.Bytes   `json:"input"`
	Value            *hexutil.Big    `json:"value"`
}

// ExecutionRef is the execution block referenced by the payload of a beacon block.
type ExecutionRef struct {
	BlockHash   common.Hash
	BlockNumber uint64
}

// ChainConfig is the identity of the beacon chain a node follows.
type ChainConfig struct {
	PresetBase string
	ConfigName string
}
