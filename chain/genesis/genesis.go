package genesis

import (
	"fmt"

	"github.com/sealchain-project/sealchain/chain/block"
)

// Payload returns the conventional first-block payload. Blocks carrying it
// decode to a nil payload, see block.GenesisData.
func Payload() map[string]string {
	return map[string]string{"data": block.GenesisData}
}

// Block builds and seals the chain's first block: height 0, no predecessor,
// created at [timestamp].
func Block(timestamp int64) (*block.Block, error) {
	blk, err := block.New(Payload())
	if err != nil {
		return nil, fmt.Errorf("failed to build the genesis block: %w", err)
	}
	blk.Time = timestamp

	digest, err := blk.ComputeHash()
	if err != nil {
		return nil, fmt.Errorf("failed to seal the genesis block: %w", err)
	}
	blk.Hash = &digest
	return blk, nil
}
