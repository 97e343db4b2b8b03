package syncer

import (
	"context"
	"testing"

	"github.com/prysmaticlabs/prysm/v5/api/server/structs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merge-indexer/eth-parser/util"
)

func TestConsensusCatchUpAcrossMerge(t *testing.T) {
	dao := newTestDao(t)
	node := newFakeNode()
	node.head = 100
	node.mergedChain(100, 30, 40, 41)
	s := NewHeightSyncer(NewConsensusAdapter(node, dao, false))

	reached, err := s.CatchUp(context.Background(), nil, 50)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), reached)

	highest, err := dao.GetHighestSlot()
	require.NoError(t, err)
	require.NotNil(t, highest)
	assert.Equal(t, uint64(50), highest.Height)

	for h := uint64(0); h <= 50; h++ {
		slot, err := dao.GetSlot(h)
		require.NoError(t, err)
		if h == 40 || h == 41 {
			assert.Nil(t, slot, "missed slot %d", h)
			continue
		}
		require.NotNil(t, slot, "slot %d", h)
		if h < 30 {
			assert.Nil(t, slot.BlockHash)
			assert.Nil(t, slot.BlockNumber)
			continue
		}
		require.NotNil(t, slot.BlockHash)
		require.NotNil(t, slot.BlockNumber)
		assert.Equal(t, util.HashToString(payloadHash(h)), *slot.BlockHash)
		assert.Equal(t, h-29, *slot.BlockNumber)
		assert.Nil(t, slot.ValidatorsCount)
	}
}

func TestConsensusProcessHeightIsIdempotent(t *testing.T) {
	dao := newTestDao(t)
	node := newFakeNode()
	node.mergedChain(5, 0)
	adapter := NewConsensusAdapter(node, dao, false)

	require.NoError(t, adapter.ProcessHeight(context.Background(), 3))
	before, err := dao.GetSlot(3)
	require.NoError(t, err)

	// the node now reports different content, the stored row must not change
	node.blocks[3] = bellatrixBlock(3, payloadHash(99), 99)
	require.NoError(t, adapter.ProcessHeight(context.Background(), 3))
	after, err := dao.GetSlot(3)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestConsensusMissedSlot(t *testing.T) {
	dao := newTestDao(t)
	node := newFakeNode()
	adapter := NewConsensusAdapter(node, dao, false)

	require.NoError(t, adapter.ProcessHeight(context.Background(), 12))
	slot, err := dao.GetSlot(12)
	require.NoError(t, err)
	assert.Nil(t, slot)

	node.failing[13] = true
	assert.Error(t, adapter.ProcessHeight(context.Background(), 13))
}

func TestConsensusZeroPayloadIsAbsent(t *testing.T) {
	dao := newTestDao(t)
	node := newFakeNode()
	node.blocks[7] = bellatrixBlock(7, [32]byte{}, 0)
	adapter := NewConsensusAdapter(node, dao, false)

	require.NoError(t, adapter.ProcessHeight(context.Background(), 7))
	slot, err := dao.GetSlot(7)
	require.NoError(t, err)
	require.NotNil(t, slot)
	assert.Nil(t, slot.BlockHash)
	assert.Nil(t, slot.BlockNumber)
}

func TestConsensusRecordsValidatorCount(t *testing.T) {
	dao := newTestDao(t)
	node := newFakeNode()
	node.mergedChain(5, 0)
	node.validators["5"] = []*structs.ValidatorContainer{
		validatorContainer(0, "0xaa"),
		validatorContainer(1, "0xbb"),
	}
	adapter := NewConsensusAdapter(node, dao, true)

	require.NoError(t, adapter.ProcessHeight(context.Background(), 5))
	slot, err := dao.GetSlot(5)
	require.NoError(t, err)
	require.NotNil(t, slot.ValidatorsCount)
	assert.Equal(t, uint64(2), *slot.ValidatorsCount)

	// no state for slot 4
	assert.Error(t, adapter.ProcessHeight(context.Background(), 4))
}

func TestConsensusHeights(t *testing.T) {
	dao := newTestDao(t)
	node := newFakeNode()
	node.head = 42
	adapter := NewConsensusAdapter(node, dao, false)

	h, err := adapter.NodeHeight(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(42), h)

	stored, err := adapter.StoreHeight()
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestConsensusCatchUpStoresEverySlot(t *testing.T) {
	dao := newTestDao(t)
	node := newFakeNode()
	node.head = 100
	node.mergedChain(100, 30)
	s := NewHeightSyncer(NewConsensusAdapter(node, dao, false))

	_, err := s.CatchUp(context.Background(), nil, 50)
	require.NoError(t, err)

	var rows, withPayload int
	for h := uint64(0); h <= 100; h++ {
		slot, err := dao.GetSlot(h)
		require.NoError(t, err)
		if slot == nil {
			continue
		}
		rows++
		if slot.BlockHash != nil {
			withPayload++
		}
	}
	assert.Equal(t, 51, rows)
	assert.Equal(t, 21, withPayload)
}
