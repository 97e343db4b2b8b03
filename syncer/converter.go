package syncer

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/prysm/v5/api/server/structs"
	"github.com/prysmaticlabs/prysm/v5/runtime/version"

	"github.com/merge-indexer/eth-parser/types"
	"github.com/merge-indexer/eth-parser/util"
)

// payloadBlock is the shape shared by every post merge block, used for forks without a dedicated struct.
type payloadBlock struct {
	Body *struct {
		ExecutionPayload *struct {
			BlockHash   string `json:"block_hash"`
			BlockNumber string `json:"block_number"`
		} `json:"execution_payload"`
	} `json:"body"`
}

// ToExecutionRef extracts the execution block referenced by a beacon block. It returns nil when the block
// carries no payload: phase0 and altair blocks, and bellatrix blocks produced before the merge whose payload is empty.
func ToExecutionRef(blockResp *structs.GetBlockV2Response) (*types.ExecutionRef, error) {
	if blockResp == nil || blockResp.Data == nil {
		return nil, errors.New("empty block response")
	}
	var (
		hash, number string
		err          error
	)
	switch blockResp.Version {
	case version.String(version.Phase0), version.String(version.Altair):
		return nil, nil
	case version.String(version.Bellatrix):
		blk := &structs.BeaconBlockBellatrix{}
		if err = json.Unmarshal(blockResp.Data.Message, blk); err != nil {
			return nil, errors.Wrap(err, "decode bellatrix block")
		}
		if blk.Body == nil || blk.Body.ExecutionPayload == nil {
			return nil, nil
		}
		hash, number = blk.Body.ExecutionPayload.BlockHash, blk.Body.ExecutionPayload.BlockNumber
	case version.String(version.Capella):
		blk := &structs.BeaconBlockCapella{}
		if err = json.Unmarshal(blockResp.Data.Message, blk); err != nil {
			return nil, errors.Wrap(err, "decode capella block")
		}
		if blk.Body == nil || blk.Body.ExecutionPayload == nil {
			return nil, nil
		}
		hash, number = blk.Body.ExecutionPayload.BlockHash, blk.Body.ExecutionPayload.BlockNumber
	case version.String(version.Deneb):
		blk := &structs.BeaconBlockDeneb{}
		if err = json.Unmarshal(blockResp.Data.Message, blk); err != nil {
			return nil, errors.Wrap(err, "decode deneb block")
		}
		if blk.Body == nil || blk.Body.ExecutionPayload == nil {
			return nil, nil
		}
		hash, number = blk.Body.ExecutionPayload.BlockHash, blk.Body.ExecutionPayload.BlockNumber
	default:
		blk := &payloadBlock{}
		if err = json.Unmarshal(blockResp.Data.Message, blk); err != nil {
			return nil, errors.Wrapf(err, "decode %s block", blockResp.Version)
		}
		if blk.Body == nil || blk.Body.ExecutionPayload == nil {
			return nil, nil
		}
		hash, number = blk.Body.ExecutionPayload.BlockHash, blk.Body.ExecutionPayload.BlockNumber
	}
	return toExecutionRef(hash, number)
}

func toExecutionRef(hash, number string) (*types.ExecutionRef, error) {
	hashBz, err := hexutil.Decode(hash)
	if err != nil {
		return nil, errors.Wrapf(err, "decode payload block hash %q", hash)
	}
	if len(hashBz) != common.HashLength {
		return nil, errors.Errorf("payload block hash %q should be %d bytes", hash, common.HashLength)
	}
	blockHash := common.BytesToHash(hashBz)
	if util.IsZeroHash(blockHash) {
		return nil, nil
	}
	blockNumber, err := util.StringToUint64(number)
	if err != nil {
		return nil, errors.Wrapf(err, "decode payload block number %q", number)
	}
	return &types.ExecutionRef{
		BlockHash:   blockHash,
		BlockNumber: blockNumber,
	}, nil
}
