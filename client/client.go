package client

import (
	"context"
	"fmt"
	"time"

	avajson "github.com/MetalBlockchain/metalgo/utils/json"
	"github.com/MetalBlockchain/metalgo/utils/rpc"
	"github.com/sealchain-project/sealchain/api"
	"github.com/sealchain-project/sealchain/chain"
	"github.com/sealchain-project/sealchain/node"
)

type Client interface {
	// Pings the node.
	Ping(ctx context.Context) (bool, error)
	// Submits a payload to the append path; returns the sealed block's
	// hash and height.
	IssueBlock(ctx context.Context, payload api.FormattedPayload) (string, uint64, error)
	// Fetches a stored block by its hash.
	GetBlock(ctx context.Context, hash string) (api.Block, error)
	// Fetches a stored block by its chain position.
	GetBlockByHeight(ctx context.Context, height uint64) (api.Block, error)
	// Decodes a stored block's payload; nil for the chain's first block.
	GetPayload(ctx context.Context, hash string) (any, error)
	// Re-verifies one stored block.
	VerifyBlock(ctx context.Context, hash string) (bool, error)
	// Re-verifies every stored block and link.
	AuditChain(ctx context.Context) (chain.Report, error)
	// Returns the chain head.
	LastAccepted(ctx context.Context) (string, uint64, error)
}

// New creates a new client object.
func New(uri string, reqTimeout time.Duration) Client {
	req := rpc.NewEndpointRequester(
		fmt.Sprintf("%s%s", uri, node.Endpoint),
	)
	return &client{req: req}
}

type client struct {
	req rpc.EndpointRequester
}

func (cli *client) Ping(ctx context.Context) (bool, error) {
	resp := new(api.PingReply)
	err := cli.req.SendRequest(ctx,
		"sealchain.ping",
		nil,
		resp,
	)
	if err != nil {
		return false, err
	}
	return resp.Success, nil
}

func (cli *client) IssueBlock(ctx context.Context, payload api.FormattedPayload) (string, uint64, error) {
	resp := new(api.IssueBlockReply)
	err := cli.req.SendRequest(ctx,
		"sealchain.issueBlock",
		payload,
		resp,
	)
	if err != nil {
		return "", 0, err
	}
	return resp.Hash, uint64(resp.Height), nil
}

func (cli *client) GetBlock(ctx context.Context, hash string) (api.Block, error) {
	resp := new(api.GetBlockReply)
	err := cli.req.SendRequest(ctx,
		"sealchain.getBlock",
		&api.GetBlockArgs{Hash: hash},
		resp,
	)
	if err != nil {
		return api.Block{}, err
	}
	return resp.Block, nil
}

func (cli *client) GetBlockByHeight(ctx context.Context, height uint64) (api.Block, error) {
	resp := new(api.GetBlockReply)
	err := cli.req.SendRequest(ctx,
		"sealchain.getBlockByHeight",
		&api.GetBlockByHeightArgs{Height: avajson.Uint64(height)},
		resp,
	)
	if err != nil {
		return api.Block{}, err
	}
	return resp.Block, nil
}

func (cli *client) GetPayload(ctx context.Context, hash string) (any, error) {
	resp := new(api.GetPayloadReply)
	err := cli.req.SendRequest(ctx,
		"sealchain.getPayload",
		&api.GetPayloadArgs{Hash: hash},
		resp,
	)
	if err != nil {
		return nil, err
	}
	return resp.Payload, nil
}

func (cli *client) VerifyBlock(ctx context.Context, hash string) (bool, error) {
	resp := new(api.VerifyBlockReply)
	err := cli.req.SendRequest(ctx,
		"sealchain.verifyBlock",
		&api.VerifyBlockArgs{Hash: hash},
		resp,
	)
	if err != nil {
		return false, err
	}
	return resp.Valid, nil
}

func (cli *client) AuditChain(ctx context.Context) (chain.Report, error) {
	resp := new(api.AuditChainReply)
	err := cli.req.SendRequest(ctx,
		"sealchain.auditChain",
		nil,
		resp,
	)
	if err != nil {
		return chain.Report{}, err
	}
	return resp.Report, nil
}

func (cli *client) LastAccepted(ctx context.Context) (string, uint64, error) {
	resp := new(api.LastAcceptedReply)
	err := cli.req.SendRequest(ctx,
		"sealchain.lastAccepted",
		nil,
		resp,
	)
	if err != nil {
		return "", 0, err
	}
	return resp.Hash, uint64(resp.Height), nil
}
