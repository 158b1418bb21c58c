package api

import (
	"github.com/MetalBlockchain/metalgo/utils/formatting"
	avajson "github.com/MetalBlockchain/metalgo/utils/json"
)

// FormattedPayload carries the serialized payload text for a new block,
// encoded per [Encoding].
type FormattedPayload struct {
	Payload  string              `json:"payload"`
	Encoding formatting.Encoding `json:"encoding"`
}

type GetBlockArgs struct {
	Hash string `json:"hash"`
}

type GetBlockByHeightArgs struct {
	Height avajson.Uint64 `json:"height"`
}

type GetPayloadArgs struct {
	Hash string `json:"hash"`
}

type VerifyBlockArgs struct {
	Hash string `json:"hash"`
}
