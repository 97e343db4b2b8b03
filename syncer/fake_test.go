package syncer

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/prysmaticlabs/prysm/v5/api/server/structs"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/merge-indexer/eth-parser/db"
	"github.com/merge-indexer/eth-parser/external/eth"
	"github.com/merge-indexer/eth-parser/types"
	"github.com/merge-indexer/eth-parser/util"
)

func newTestDao(t *testing.T) db.SyncerDao {
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	db.AutoMigrateDB(gdb)
	return db.NewSyncerSvcDB(gdb)
}

func u64Ptr(u uint64) *uint64 { return &u }

// fakeNode serves both layers from memory.
type fakeNode struct {
	mu sync.Mutex

	head     uint64
	headStep uint64 // added to head after every GetHeadSlot call
	blocks   map[uint64]*structs.GetBlockV2Response
	failing  map[uint64]bool // slots whose block request fails

	validators map[string][]*structs.ValidatorContainer
	chain      *types.ChainConfig

	execHead   uint64
	execErr    error // returned by GetBlockNumber when set
	execBlocks map[uint64]*types.ExecutionBlock
	receipts   map[common.Hash]*ethtypes.Receipt

	beaconCalls int
}

func newFakeNode() *fakeNode {
	return &fakeNode{
		blocks:     map[uint64]*structs.GetBlockV2Response{},
		failing:    map[uint64]bool{},
		validators: map[string][]*structs.ValidatorContainer{},
		chain:      &types.ChainConfig{PresetBase: "mainnet", ConfigName: "kiln"},
		execBlocks: map[uint64]*types.ExecutionBlock{},
		receipts:   map[common.Hash]*ethtypes.Receipt{},
	}
}

func (f *fakeNode) GetHeadSlot(ctx context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	head := f.head
	f.head += f.headStep
	return head, nil
}

func (f *fakeNode) GetBeaconBlock(ctx context.Context, slotNumber uint64) (*structs.GetBlockV2Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.beaconCalls++
	if f.failing[slotNumber] {
		return nil, fmt.Errorf("beacon node unavailable")
	}
	block, ok := f.blocks[slotNumber]
	if !ok {
		return nil, eth.ErrBlockNotFound
	}
	return block, nil
}

func (f *fakeNode) GetValidators(ctx context.Context, stateID string) ([]*structs.ValidatorContainer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	validators, ok := f.validators[stateID]
	if !ok {
		return nil, eth.ErrStateNotFound
	}
	return validators, nil
}

func (f *fakeNode) GetChainConfig(ctx context.Context) (*types.ChainConfig, error) {
	return f.chain, nil
}

func (f *fakeNode) GetBlockNumber(ctx context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.execErr != nil {
		return 0, f.execErr
	}
	return f.execHead, nil
}

func (f *fakeNode) GetBlockWithTransactions(ctx context.Context, height uint64) (*types.ExecutionBlock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	block, ok := f.execBlocks[height]
	if !ok {
		return nil, eth.ErrBlockNotFound
	}
	return block, nil
}

func (f *fakeNode) GetTransactionReceipt(ctx context.Context, hash common.Hash) (*ethtypes.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.receipts[hash], nil
}

func (f *fakeNode) beaconCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.beaconCalls
}

func payloadHash(slot uint64) common.Hash {
	return common.BigToHash(new(big.Int).SetUint64(0xabc000 + slot))
}

func bellatrixBlock(slot uint64, hash common.Hash, number uint64) *structs.GetBlockV2Response {
	msg := fmt.Sprintf(`{"slot":"%d","proposer_index":"1","parent_root":"0x00","state_root":"0x00","body":{"execution_payload":{"block_hash":"%s","block_number":"%d"}}}`,
		slot, hash.Hex(), number)
	return &structs.GetBlockV2Response{
		Version: "bellatrix",
		Data:    &structs.SignedBlock{Message: []byte(msg), Signature: "0x00"},
	}
}

func altairBlock(slot uint64) *structs.GetBlockV2Response {
	msg := fmt.Sprintf(`{"slot":"%d","proposer_index":"1","parent_root":"0x00","state_root":"0x00","body":{"graffiti":"0x00"}}`, slot)
	return &structs.GetBlockV2Response{
		Version: "altair",
		Data:    &structs.SignedBlock{Message: []byte(msg), Signature: "0x00"},
	}
}

// mergedChain fills slots [0, last] with altair blocks before merge and payload blocks from merge on,
// slots in missed have no block. The payload of slot s references execution block s-merge+1.
func (f *fakeNode) mergedChain(last, merge uint64, missed ...uint64) {
	skip := map[uint64]bool{}
	for _, m := range missed {
		skip[m] = true
	}
	for s := uint64(0); s <= last; s++ {
		if skip[s] {
			continue
		}
		if s < merge {
			f.blocks[s] = altairBlock(s)
			continue
		}
		f.blocks[s] = bellatrixBlock(s, payloadHash(s), s-merge+1)
	}
}

func validatorContainer(index uint64, pubkey string) *structs.ValidatorContainer {
	return &structs.ValidatorContainer{
		Index:   util.Uint64ToString(index),
		Balance: "32000000000",
		Status:  "active_ongoing",
		Validator: &structs.Validator{
			Pubkey:                     pubkey,
			WithdrawalCredentials:      "0x00bb",
			EffectiveBalance:           "32000000000",
			Slashed:                    false,
			ActivationEligibilityEpoch: "0",
			ActivationEpoch:            "0",
			ExitEpoch:                  "18446744073709551615",
			WithdrawableEpoch:          "18446744073709551615",
		},
	}
}

func execBlock(number uint64, txs ...*types.ExecutionTransaction) *types.ExecutionBlock {
	hash := common.BigToHash(new(big.Int).SetUint64(0xb10c000 + number))
	for i, tx := range txs {
		idx := hexutil.Uint64(i)
		tx.BlockHash = &hash
		tx.TransactionIndex = &idx
	}
	return &types.ExecutionBlock{
		Hash:             &hash,
		Number:           (*hexutil.Big)(new(big.Int).SetUint64(number)),
		ParentHash:       common.BigToHash(new(big.Int).SetUint64(0xb10c000 + number - 1)),
		StateRoot:        common.HexToHash("0x01"),
		TransactionsRoot: common.HexToHash("0x02"),
		ReceiptsRoot:     common.HexToHash("0x03"),
		Transactions:     txs,
	}
}

func transferTx(seed uint64, to common.Address, value int64) *types.ExecutionTransaction {
	return &types.ExecutionTransaction{
		Hash:  common.BigToHash(new(big.Int).SetUint64(0x7000 + seed)),
		From:  common.HexToAddress("0x1111111111111111111111111111111111111111"),
		To:    &to,
		Input: hexutil.Bytes{},
		Value: (*hexutil.Big)(big.NewInt(value)),
	}
}

func depositInput(t *testing.T, pubkey []byte) []byte {
	input, err := depositContractABI.Pack(depositMethodName, pubkey, make([]byte, 32), make([]byte, 96), [32]byte{})
	require.NoError(t, err)
	return input
}

func depositTx(t *testing.T, seed uint64, pubkey []byte) *types.ExecutionTransaction {
	to := DepositContractAddress
	tx := transferTx(seed, to, 0)
	tx.Input = depositInput(t, pubkey)
	return tx
}
