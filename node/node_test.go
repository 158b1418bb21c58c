package node

import (
	"testing"

	"github.com/MetalBlockchain/metalgo/database/memdb"
	"github.com/MetalBlockchain/metalgo/utils/formatting"
	"github.com/MetalBlockchain/metalgo/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sealchain-project/sealchain/api"
	"github.com/sealchain-project/sealchain/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNode(t *testing.T) *Node {
	t.Helper()
	cfg := config.Default
	n, err := New(&cfg, memdb.New(), logging.NoLog{}, prometheus.NewRegistry())
	require.NoError(t, err)
	return n
}

func TestNodeInit(t *testing.T) {
	n := newTestNode(t)

	handlers, err := n.CreateHandlers()
	require.NoError(t, err)
	assert.Contains(t, handlers, Endpoint)

	svc := &Service{node: n}
	reply := api.LastAcceptedReply{}
	require.NoError(t, svc.LastAccepted(nil, nil, &reply))

	hash, height := n.Chain().LastAccepted()
	assert.Equal(t, hash, reply.Hash)
	assert.Equal(t, uint64(height), uint64(reply.Height))
}

func TestServiceIssueAndGetPayload(t *testing.T) {
	n := newTestNode(t)
	svc := &Service{node: n}

	payload, err := formatting.Encode(formatting.Hex, []byte(`{"amount":10}`))
	require.NoError(t, err)

	issueReply := api.IssueBlockReply{}
	require.NoError(t, svc.IssueBlock(nil, &api.FormattedPayload{
		Payload:  payload,
		Encoding: formatting.Hex,
	}, &issueReply))
	assert.Equal(t, uint64(1), uint64(issueReply.Height))

	payloadReply := api.GetPayloadReply{}
	require.NoError(t, svc.GetPayload(nil, &api.GetPayloadArgs{Hash: issueReply.Hash}, &payloadReply))
	assert.Equal(t, map[string]any{"amount": float64(10)}, payloadReply.Payload)

	blockReply := api.GetBlockReply{}
	require.NoError(t, svc.GetBlockByHeight(nil, &api.GetBlockByHeightArgs{Height: 1}, &blockReply))
	require.NotNil(t, blockReply.Block.Hash)
	assert.Equal(t, issueReply.Hash, *blockReply.Block.Hash)
}

func TestServiceGenesisPayloadIsNull(t *testing.T) {
	n := newTestNode(t)
	svc := &Service{node: n}

	hash, _ := n.Chain().LastAccepted()

	reply := api.GetPayloadReply{}
	require.NoError(t, svc.GetPayload(nil, &api.GetPayloadArgs{Hash: hash}, &reply))
	assert.Nil(t, reply.Payload)
}

func TestServiceVerifyAndAudit(t *testing.T) {
	n := newTestNode(t)
	svc := &Service{node: n}

	payload, err := formatting.Encode(formatting.Hex, []byte(`{"amount":5}`))
	require.NoError(t, err)

	issueReply := api.IssueBlockReply{}
	require.NoError(t, svc.IssueBlock(nil, &api.FormattedPayload{
		Payload:  payload,
		Encoding: formatting.Hex,
	}, &issueReply))

	verifyReply := api.VerifyBlockReply{}
	require.NoError(t, svc.VerifyBlock(nil, &api.VerifyBlockArgs{Hash: issueReply.Hash}, &verifyReply))
	assert.True(t, verifyReply.Valid)

	// Mutate the stored block outside of the append path.
	blk, err := n.Chain().GetBlock(issueReply.Hash)
	require.NoError(t, err)
	blk.Time++

	verifyReply = api.VerifyBlockReply{}
	require.NoError(t, svc.VerifyBlock(nil, &api.VerifyBlockArgs{Hash: issueReply.Hash}, &verifyReply))
	assert.False(t, verifyReply.Valid)

	auditReply := api.AuditChainReply{}
	require.NoError(t, svc.AuditChain(nil, nil, &auditReply))
	assert.False(t, auditReply.Report.Valid)
	require.Len(t, auditReply.Report.Failures, 1)
	assert.Equal(t, issueReply.Hash, auditReply.Report.Failures[0].Hash)
}

func TestServicePayloadDecodeFailure(t *testing.T) {
	n := newTestNode(t)
	svc := &Service{node: n}

	payload, err := formatting.Encode(formatting.Hex, []byte(`{"amount":5}`))
	require.NoError(t, err)

	issueReply := api.IssueBlockReply{}
	require.NoError(t, svc.IssueBlock(nil, &api.FormattedPayload{
		Payload:  payload,
		Encoding: formatting.Hex,
	}, &issueReply))

	// Corrupt the stored body to a non-hex string.
	blk, err := n.Chain().GetBlock(issueReply.Hash)
	require.NoError(t, err)
	blk.Body = "not hex"

	reply := api.GetPayloadReply{}
	err = svc.GetPayload(nil, &api.GetPayloadArgs{Hash: issueReply.Hash}, &reply)
	require.Error(t, err)
	assert.Nil(t, reply.Payload)
}
