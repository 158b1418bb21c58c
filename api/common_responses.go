package api

import (
	avajson "github.com/MetalBlockchain/metalgo/utils/json"
	"github.com/sealchain-project/sealchain/chain"
)

type EmptyReply struct{}

type PingReply struct {
	Success bool `json:"success"`
}

type IssueBlockReply struct {
	Hash   string         `json:"hash"`
	Height avajson.Uint64 `json:"height"`
}

// Block mirrors the stored field set of one block.
type Block struct {
	Hash              *string        `json:"hash"`
	Height            avajson.Uint64 `json:"height"`
	Body              string         `json:"body"`
	Time              int64          `json:"time"`
	PreviousBlockHash *string        `json:"previousBlockHash"`
}

type GetBlockReply struct {
	Block Block `json:"block"`
}

// GetPayloadReply carries the decoded payload; it is null for the chain's
// first block.
type GetPayloadReply struct {
	Payload any `json:"payload"`
}

type VerifyBlockReply struct {
	Valid bool `json:"valid"`
}

type AuditChainReply struct {
	Report chain.Report `json:"report"`
}

type LastAcceptedReply struct {
	Hash   string         `json:"hash"`
	Height avajson.Uint64 `json:"height"`
}
