package liteclient

import (
	"context"
	"fmt"

	"github.com/tonwire/tonwire/internal/liteapi"
)

// query dispatches a bare request and returns the raw response.
func (c *Client) query(ctx context.Context, req liteapi.Request) (liteapi.Response, error) {
	return c.Query(ctx, &liteapi.WrappedRequest{Request: req})
}

func unexpected(resp liteapi.Response) error {
	return fmt.Errorf("%w: unexpected response %T", liteapi.ErrUnexpectedMessage, resp)
}

// GetMasterchainInfo requests the latest masterchain block id.
func (c *Client) GetMasterchainInfo(ctx context.Context) (liteapi.MasterchainInfo, error) {
	resp, err := c.query(ctx, liteapi.GetMasterchainInfo{})
	if err != nil {
		return liteapi.MasterchainInfo{}, err
	}
	v, ok := resp.(liteapi.MasterchainInfo)
	if !ok {
		return liteapi.MasterchainInfo{}, unexpected(resp)
	}
	return v, nil
}

// GetMasterchainInfoExt requests extended masterchain info.
func (c *Client) GetMasterchainInfoExt(ctx context.Context, mode uint32) (liteapi.MasterchainInfoExt, error) {
	resp, err := c.query(ctx, liteapi.GetMasterchainInfoExt{Mode: mode})
	if err != nil {
		return liteapi.MasterchainInfoExt{}, err
	}
	v, ok := resp.(liteapi.MasterchainInfoExt)
	if !ok {
		return liteapi.MasterchainInfoExt{}, unexpected(resp)
	}
	return v, nil
}

// GetTime requests the server's wall clock.
func (c *Client) GetTime(ctx context.Context) (liteapi.CurrentTime, error) {
	resp, err := c.query(ctx, liteapi.GetTime{})
	if err != nil {
		return liteapi.CurrentTime{}, err
	}
	v, ok := resp.(liteapi.CurrentTime)
	if !ok {
		return liteapi.CurrentTime{}, unexpected(resp)
	}
	return v, nil
}

// GetVersion requests the server's protocol version and capabilities.
func (c *Client) GetVersion(ctx context.Context) (liteapi.Version, error) {
	resp, err := c.query(ctx, liteapi.GetVersion{})
	if err != nil {
		return liteapi.Version{}, err
	}
	v, ok := resp.(liteapi.Version)
	if !ok {
		return liteapi.Version{}, unexpected(resp)
	}
	return v, nil
}

// GetBlock requests a full block.
func (c *Client) GetBlock(ctx context.Context, id liteapi.BlockIdExt) (liteapi.BlockData, error) {
	resp, err := c.query(ctx, liteapi.GetBlock{Id: id})
	if err != nil {
		return liteapi.BlockData{}, err
	}
	v, ok := resp.(liteapi.BlockData)
	if !ok {
		return liteapi.BlockData{}, unexpected(resp)
	}
	return v, nil
}

// GetState requests a full shard state.
func (c *Client) GetState(ctx context.Context, id liteapi.BlockIdExt) (liteapi.BlockState, error) {
	resp, err := c.query(ctx, liteapi.GetState{Id: id})
	if err != nil {
		return liteapi.BlockState{}, err
	}
	v, ok := resp.(liteapi.BlockState)
	if !ok {
		return liteapi.BlockState{}, unexpected(resp)
	}
	return v, nil
}

// GetBlockHeader requests a block header proof.
func (c *Client) GetBlockHeader(ctx context.Context, id liteapi.BlockIdExt, mode uint32) (liteapi.BlockHeader, error) {
	resp, err := c.query(ctx, liteapi.GetBlockHeader{Id: id, Mode: mode})
	if err != nil {
		return liteapi.BlockHeader{}, err
	}
	v, ok := resp.(liteapi.BlockHeader)
	if !ok {
		return liteapi.BlockHeader{}, unexpected(resp)
	}
	return v, nil
}

// SendMessage submits an external message.
func (c *Client) SendMessage(ctx context.Context, body []byte) (liteapi.SendMsgStatus, error) {
	resp, err := c.query(ctx, liteapi.SendMessage{Body: body})
	if err != nil {
		return liteapi.SendMsgStatus{}, err
	}
	v, ok := resp.(liteapi.SendMsgStatus)
	if !ok {
		return liteapi.SendMsgStatus{}, unexpected(resp)
	}
	return v, nil
}

// GetAccountState requests an account state with proofs.
func (c *Client) GetAccountState(ctx context.Context, id liteapi.BlockIdExt, account liteapi.AccountId) (liteapi.AccountState, error) {
	resp, err := c.query(ctx, liteapi.GetAccountState{Id: id, Account: account})
	if err != nil {
		return liteapi.AccountState{}, err
	}
	v, ok := resp.(liteapi.AccountState)
	if !ok {
		return liteapi.AccountState{}, unexpected(resp)
	}
	return v, nil
}

// RunSmcMethod executes a get-method against an account state.
func (c *Client) RunSmcMethod(ctx context.Context, req liteapi.RunSmcMethod) (liteapi.RunMethodResult, error) {
	resp, err := c.query(ctx, req)
	if err != nil {
		return liteapi.RunMethodResult{}, err
	}
	v, ok := resp.(liteapi.RunMethodResult)
	if !ok {
		return liteapi.RunMethodResult{}, unexpected(resp)
	}
	return v, nil
}

// GetShardInfo requests the shard block covering a workchain/shard pair.
func (c *Client) GetShardInfo(ctx context.Context, id liteapi.BlockIdExt, workchain int32, shard uint64, exact bool) (liteapi.ShardInfo, error) {
	resp, err := c.query(ctx, liteapi.GetShardInfo{Id: id, Workchain: workchain, Shard: shard, Exact: exact})
	if err != nil {
		return liteapi.ShardInfo{}, err
	}
	v, ok := resp.(liteapi.ShardInfo)
	if !ok {
		return liteapi.ShardInfo{}, unexpected(resp)
	}
	return v, nil
}

// GetAllShardsInfo requests the full shard configuration.
func (c *Client) GetAllShardsInfo(ctx context.Context, id liteapi.BlockIdExt) (liteapi.AllShardsInfo, error) {
	resp, err := c.query(ctx, liteapi.GetAllShardsInfo{Id: id})
	if err != nil {
		return liteapi.AllShardsInfo{}, err
	}
	v, ok := resp.(liteapi.AllShardsInfo)
	if !ok {
		return liteapi.AllShardsInfo{}, unexpected(resp)
	}
	return v, nil
}

// GetOneTransaction requests a single transaction from a known block.
func (c *Client) GetOneTransaction(ctx context.Context, id liteapi.BlockIdExt, account liteapi.AccountId, lt uint64) (liteapi.TransactionInfo, error) {
	resp, err := c.query(ctx, liteapi.GetOneTransaction{Id: id, Account: account, Lt: lt})
	if err != nil {
		return liteapi.TransactionInfo{}, err
	}
	v, ok := resp.(liteapi.TransactionInfo)
	if !ok {
		return liteapi.TransactionInfo{}, unexpected(resp)
	}
	return v, nil
}

// GetTransactions requests an account's transaction history.
func (c *Client) GetTransactions(ctx context.Context, count uint32, account liteapi.AccountId, lt uint64, hash liteapi.Int256) (liteapi.TransactionList, error) {
	resp, err := c.query(ctx, liteapi.GetTransactions{Count: count, Account: account, Lt: lt, Hash: hash})
	if err != nil {
		return liteapi.TransactionList{}, err
	}
	v, ok := resp.(liteapi.TransactionList)
	if !ok {
		return liteapi.TransactionList{}, unexpected(resp)
	}
	return v, nil
}

// LookupBlock finds a block header by seqno, logical time or unix time.
func (c *Client) LookupBlock(ctx context.Context, id liteapi.BlockId, lt *uint64, utime *uint32) (liteapi.BlockHeader, error) {
	resp, err := c.query(ctx, liteapi.LookupBlock{Id: id, Lt: lt, Utime: utime})
	if err != nil {
		return liteapi.BlockHeader{}, err
	}
	v, ok := resp.(liteapi.BlockHeader)
	if !ok {
		return liteapi.BlockHeader{}, unexpected(resp)
	}
	return v, nil
}

// ListBlockTransactions enumerates transaction ids within a block.
func (c *Client) ListBlockTransactions(ctx context.Context, req liteapi.ListBlockTransactions) (liteapi.BlockTransactions, error) {
	resp, err := c.query(ctx, req)
	if err != nil {
		return liteapi.BlockTransactions{}, err
	}
	v, ok := resp.(liteapi.BlockTransactions)
	if !ok {
		return liteapi.BlockTransactions{}, unexpected(resp)
	}
	return v, nil
}

// GetBlockProof requests a proof chain from a known block.
func (c *Client) GetBlockProof(ctx context.Context, knownBlock liteapi.BlockIdExt, targetBlock *liteapi.BlockIdExt) (liteapi.PartialBlockProof, error) {
	resp, err := c.query(ctx, liteapi.GetBlockProof{KnownBlock: knownBlock, TargetBlock: targetBlock})
	if err != nil {
		return liteapi.PartialBlockProof{}, err
	}
	v, ok := resp.(liteapi.PartialBlockProof)
	if !ok {
		return liteapi.PartialBlockProof{}, unexpected(resp)
	}
	return v, nil
}

// GetConfigAll requests the complete configuration at a block.
func (c *Client) GetConfigAll(ctx context.Context, mode uint32, id liteapi.BlockIdExt) (liteapi.ConfigInfo, error) {
	resp, err := c.query(ctx, liteapi.GetConfigAll{Mode: mode, Id: id})
	if err != nil {
		return liteapi.ConfigInfo{}, err
	}
	v, ok := resp.(liteapi.ConfigInfo)
	if !ok {
		return liteapi.ConfigInfo{}, unexpected(resp)
	}
	return v, nil
}

// GetConfigParams requests specific configuration parameters at a block.
func (c *Client) GetConfigParams(ctx context.Context, mode uint32, id liteapi.BlockIdExt, params []int32) (liteapi.ConfigInfo, error) {
	resp, err := c.query(ctx, liteapi.GetConfigParams{Mode: mode, Id: id, ParamList: params})
	if err != nil {
		return liteapi.ConfigInfo{}, err
	}
	v, ok := resp.(liteapi.ConfigInfo)
	if !ok {
		return liteapi.ConfigInfo{}, unexpected(resp)
	}
	return v, nil
}

// GetValidatorStats pages through validator statistics at a block.
func (c *Client) GetValidatorStats(ctx context.Context, req liteapi.GetValidatorStats) (liteapi.ValidatorStats, error) {
	resp, err := c.query(ctx, req)
	if err != nil {
		return liteapi.ValidatorStats{}, err
	}
	v, ok := resp.(liteapi.ValidatorStats)
	if !ok {
		return liteapi.ValidatorStats{}, unexpected(resp)
	}
	return v, nil
}

// GetLibraries requests library cells by hash.
func (c *Client) GetLibraries(ctx context.Context, hashes []liteapi.Int256) (liteapi.LibraryResult, error) {
	resp, err := c.query(ctx, liteapi.GetLibraries{LibraryList: hashes})
	if err != nil {
		return liteapi.LibraryResult{}, err
	}
	v, ok := resp.(liteapi.LibraryResult)
	if !ok {
		return liteapi.LibraryResult{}, unexpected(resp)
	}
	return v, nil
}

// GetLibrariesWithProof requests library cells with membership proofs.
func (c *Client) GetLibrariesWithProof(ctx context.Context, req liteapi.GetLibrariesWithProof) (liteapi.LibraryResultWithProof, error) {
	resp, err := c.query(ctx, req)
	if err != nil {
		return liteapi.LibraryResultWithProof{}, err
	}
	v, ok := resp.(liteapi.LibraryResultWithProof)
	if !ok {
		return liteapi.LibraryResultWithProof{}, unexpected(resp)
	}
	return v, nil
}
