package node

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/MetalBlockchain/metalgo/utils/formatting"
	avajson "github.com/MetalBlockchain/metalgo/utils/json"
	"github.com/sealchain-project/sealchain/api"
	"github.com/sealchain-project/sealchain/chain/block"
	"go.uber.org/zap"
)

type Service struct {
	node *Node
}

func (svc *Service) Ping(_ *http.Request, _ *struct{}, response *api.PingReply) (err error) {
	svc.node.log.Info("API called", zap.String("service", "sealchain"), zap.String("method", "ping"))

	response.Success = true

	return nil
}

func (svc *Service) IssueBlock(_ *http.Request, args *api.FormattedPayload, reply *api.IssueBlockReply) error {
	svc.node.log.Info("API called",
		zap.String("service", "sealchain"),
		zap.String("method", "issueBlock"),
	)

	payloadBytes, err := formatting.Decode(args.Encoding, args.Payload)
	if err != nil {
		return fmt.Errorf("problem decoding payload: %w", err)
	}

	blk, err := svc.node.chain.Append(json.RawMessage(payloadBytes))
	if err != nil {
		svc.node.log.Debug("failed to append block",
			zap.Error(err),
		)
		return err
	}
	svc.node.metrics.MarkSealed()

	reply.Hash = *blk.Hash
	reply.Height = avajson.Uint64(blk.Height)
	return nil
}

func (svc *Service) GetBlock(_ *http.Request, args *api.GetBlockArgs, reply *api.GetBlockReply) error {
	svc.node.log.Debug("API called",
		zap.String("service", "sealchain"),
		zap.String("method", "getBlock"),
		zap.String("hash", args.Hash),
	)

	blk, err := svc.node.chain.GetBlock(args.Hash)
	if err != nil {
		return fmt.Errorf("couldn't get block with hash %s: %w", args.Hash, err)
	}

	reply.Block = formatBlock(blk)
	return nil
}

func (svc *Service) GetBlockByHeight(_ *http.Request, args *api.GetBlockByHeightArgs, reply *api.GetBlockReply) error {
	svc.node.log.Debug("API called",
		zap.String("service", "sealchain"),
		zap.String("method", "getBlockByHeight"),
		zap.Uint64("height", uint64(args.Height)),
	)

	blk, err := svc.node.chain.GetBlockByHeight(uint64(args.Height))
	if err != nil {
		return fmt.Errorf("couldn't get block at height %d: %w", args.Height, err)
	}

	reply.Block = formatBlock(blk)
	return nil
}

func (svc *Service) GetPayload(_ *http.Request, args *api.GetPayloadArgs, reply *api.GetPayloadReply) error {
	svc.node.log.Debug("API called",
		zap.String("service", "sealchain"),
		zap.String("method", "getPayload"),
		zap.String("hash", args.Hash),
	)

	blk, err := svc.node.chain.GetBlock(args.Hash)
	if err != nil {
		return fmt.Errorf("couldn't get block with hash %s: %w", args.Hash, err)
	}

	payload, err := blk.Payload()
	if err != nil {
		decodeErr := &block.PayloadDecodeError{}
		if errors.As(err, &decodeErr) {
			svc.node.metrics.MarkDecodeFailure()
		}
		svc.node.log.Error("failed to decode block payload",
			zap.String("hash", args.Hash),
			zap.Error(err),
		)
		return err
	}

	reply.Payload = payload
	return nil
}

func (svc *Service) VerifyBlock(_ *http.Request, args *api.VerifyBlockArgs, reply *api.VerifyBlockReply) error {
	svc.node.log.Debug("API called",
		zap.String("service", "sealchain"),
		zap.String("method", "verifyBlock"),
		zap.String("hash", args.Hash),
	)

	blk, err := svc.node.chain.GetBlock(args.Hash)
	if err != nil {
		return fmt.Errorf("couldn't get block with hash %s: %w", args.Hash, err)
	}

	valid, err := blk.Verify()
	if err != nil {
		svc.node.log.Error("failed to verify block",
			zap.String("hash", args.Hash),
			zap.Error(err),
		)
		return err
	}
	svc.node.metrics.MarkVerified(valid)

	reply.Valid = valid
	return nil
}

func (svc *Service) AuditChain(_ *http.Request, _ *struct{}, reply *api.AuditChainReply) error {
	svc.node.log.Info("API called",
		zap.String("service", "sealchain"),
		zap.String("method", "auditChain"),
	)

	report, err := svc.node.chain.Audit()
	if err != nil {
		return err
	}

	reply.Report = report
	return nil
}

func (svc *Service) LastAccepted(_ *http.Request, _ *struct{}, reply *api.LastAcceptedReply) error {
	svc.node.log.Debug("API called",
		zap.String("service", "sealchain"),
		zap.String("method", "lastAccepted"),
	)

	hash, height := svc.node.chain.LastAccepted()
	reply.Hash = hash
	reply.Height = avajson.Uint64(height)
	return nil
}

func formatBlock(blk *block.Block) api.Block {
	return api.Block{
		Hash:              blk.Hash,
		Height:            avajson.Uint64(blk.Height),
		Body:              blk.Body,
		Time:              blk.Time,
		PreviousBlockHash: blk.PreviousBlockHash,
	}
}
