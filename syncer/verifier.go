package syncer

import (
	"context"

	"github.com/pkg/errors"

	"github.com/merge-indexer/eth-parser/db"
	"github.com/merge-indexer/eth-parser/logging"
)

// ValidateChain checks the node follows the configured chain and records it in the store.
// Only one preset and chain name is supported, the schema has no room for a second chain.
func (o *Orchestrator) ValidateChain(ctx context.Context) error {
	chainCfg, err := o.client.GetChainConfig(ctx)
	if err != nil {
		return errors.Wrap(err, "get chain config")
	}
	if chainCfg.PresetBase != o.cfg.GetPresetBase() {
		return errors.Wrapf(ErrInvalidPreset, "preset=%q, expected %q", chainCfg.PresetBase, o.cfg.GetPresetBase())
	}
	if chainCfg.ConfigName == "" {
		return ErrMissingChainName
	}
	if chainCfg.ConfigName != o.cfg.GetChainName() {
		return errors.Wrapf(ErrUnsupportedChain, "chain=%q, expected %q", chainCfg.ConfigName, o.cfg.GetChainName())
	}

	inserted, err := o.dao.InsertSpecOrSkip(&db.Spec{
		Name:       chainCfg.ConfigName,
		PresetBase: chainCfg.PresetBase,
	})
	if err != nil {
		return err
	}
	if inserted {
		logging.Logger.Infof("recorded chain %s (preset %s)", chainCfg.ConfigName, chainCfg.PresetBase)
	}
	return nil
}

// CheckExecutionNode makes one call to the execution node, dialing an http endpoint never fails on its own.
func (o *Orchestrator) CheckExecutionNode(ctx context.Context) error {
	head, err := o.client.GetBlockNumber(ctx)
	if err != nil {
		return errors.Wrapf(ErrNodeUnreachable, "execution node: %s", err.Error())
	}
	logging.Logger.Infof("execution node is at block %d", head)
	return nil
}
