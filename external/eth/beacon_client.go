package eth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/prysmaticlabs/prysm/v5/api/server/structs"

	"github.com/merge-indexer/eth-parser/types"
	"github.com/merge-indexer/eth-parser/util"
)

var (
	ErrBlockNotFound = errors.New("the block is not found") // note: a missed slot also returns 404
	ErrStateNotFound = errors.New("the state is not found")
)

const (
	pathGetBlock      = "/eth/v2/beacon/blocks/%s"
	pathGetValidators = "/eth/v1/beacon/states/%s/validators"
	pathGetSyncing    = "/eth/v1/node/syncing"
	pathGetSpec       = "/eth/v1/config/spec"

	specPresetBase = "PRESET_BASE"
	specConfigName = "CONFIG_NAME"

	StateHead = "head"
)

type BeaconClient struct {
	hc   *http.Client
	host string
}

// NewBeaconClient returns a new beacon client.
func NewBeaconClient(host string, timeout time.Duration) (*BeaconClient, error) {
	transport := &http.Transport{
		DisableCompression:  true,
		MaxIdleConnsPerHost: 1000,
		MaxConnsPerHost:     1000,
		IdleConnTimeout:     90 * time.Second,
	}
	client := &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
	return &BeaconClient{hc: client, host: host}, nil
}

// GetHeadSlot returns the head slot of the node.
func (c *BeaconClient) GetHeadSlot(ctx context.Context) (uint64, error) {
	resp := &structs.SyncStatusResponse{}
	if err := c.get(ctx, pathGetSyncing, resp); err != nil {
		return 0, err
	}
	if resp.Data == nil {
		return 0, errors.New("empty syncing status")
	}
	return util.StringToUint64(resp.Data.HeadSlot)
}

// GetBeaconBlock returns the block at slot, ErrBlockNotFound when the slot was missed.
func (c *BeaconClient) GetBeaconBlock(ctx context.Context, slotNumber uint64) (*structs.GetBlockV2Response, error) {
	resp := &structs.GetBlockV2Response{}
	err := c.get(ctx, fmt.Sprintf(pathGetBlock, strconv.FormatUint(slotNumber, 10)), resp)
	if errors.Is(err, errNotFound) {
		return nil, ErrBlockNotFound
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// GetValidators returns the whole validator set at stateID ("head" or a slot), ErrStateNotFound when the node has no such state.
func (c *BeaconClient) GetValidators(ctx context.Context, stateID string) ([]*structs.ValidatorContainer, error) {
	resp := &structs.GetValidatorsResponse{}
	err := c.get(ctx, fmt.Sprintf(pathGetValidators, stateID), resp)
	if errors.Is(err, errNotFound) {
		return nil, ErrStateNotFound
	}
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// GetChainConfig reads the preset and chain name out of the node spec.
func (c *BeaconClient) GetChainConfig(ctx context.Context) (*types.ChainConfig, error) {
	resp := &structs.GetSpecResponse{}
	if err := c.get(ctx, pathGetSpec, resp); err != nil {
		return nil, err
	}
	spec, ok := resp.Data.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected spec payload %T", resp.Data)
	}
	cfg := &types.ChainConfig{}
	if preset, ok := spec[specPresetBase].(string); ok {
		cfg.PresetBase = preset
	}
	if name, ok := spec[specConfigName].(string); ok {
		cfg.ConfigName = name
	}
	return cfg, nil
}

var errNotFound = errors.New("not found")

func (c *BeaconClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+path, nil)
	if err != nil {
		return err
	}
	r, err := c.hc.Do(req)
	if err != nil {
		return errors.Wrapf(err, "get %s", path)
	}
	defer r.Body.Close()
	b, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("error reading http response body %s", err)
	}

	if r.StatusCode != http.StatusOK {
		if r.StatusCode == http.StatusNotFound {
			return errNotFound
		}
		return fmt.Errorf("received non-OK response status: %s", r.Status)
	}
	return json.Unmarshal(b, out)
}
