package syncer

import "github.com/pkg/errors"

var (
	ErrPendingBlock     = errors.New("block is pending")
	ErrNothingAtHeight  = errors.New("no block at height")
	ErrNoValidators     = errors.New("no validators at state")
	ErrMissingReceipt   = errors.New("receipt of an included transaction is missing")
	ErrInvalidPreset    = errors.New("unsupported chain preset")
	ErrMissingChainName = errors.New("chain name is missing from the node spec")
	ErrUnsupportedChain = errors.New("unsupported chain")
	ErrNodeUnreachable  = errors.New("node is unreachable")
)
