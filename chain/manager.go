package chain

import (
	"errors"
	"fmt"
	"sync"

	"github.com/MetalBlockchain/metalgo/database"
	"github.com/MetalBlockchain/metalgo/utils/logging"
	"github.com/MetalBlockchain/metalgo/utils/timer/mockable"
	"github.com/sealchain-project/sealchain/chain/block"
	"github.com/sealchain-project/sealchain/chain/genesis"
	"github.com/sealchain-project/sealchain/state"
	"go.uber.org/zap"
)

var errCorruptHead = errors.New("last accepted block is missing from state")

// Manager owns the sanctioned append path: it constructs blocks, stamps
// their position, timestamp and predecessor link, seals them and persists
// them. Blocks never change after sealing; Audit detects any that did.
type Manager struct {
	lock  sync.Mutex
	state state.State
	clk   *mockable.Clock
	log   logging.Logger

	lastHash   string
	nextHeight uint64
}

// New builds a Manager over [s], bootstrapping a sealed genesis block if the
// store is empty.
func New(s state.State, clk *mockable.Clock, log logging.Logger) (*Manager, error) {
	m := &Manager{
		state: s,
		clk:   clk,
		log:   log,
	}

	lastAccepted := s.GetLastAccepted()
	if lastAccepted == "" {
		genesisBlk, err := genesis.Block(clk.Time().Unix())
		if err != nil {
			return nil, err
		}
		s.AddBlock(genesisBlk)
		s.SetLastAccepted(*genesisBlk.Hash)
		if err := s.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit the genesis block: %w", err)
		}

		m.lastHash = *genesisBlk.Hash
		m.nextHeight = 1
		log.Info("bootstrapped chain",
			zap.String("genesisHash", m.lastHash),
		)
		return m, nil
	}

	head, err := s.GetBlock(lastAccepted)
	if errors.Is(err, database.ErrNotFound) {
		return nil, errCorruptHead
	}
	if err != nil {
		return nil, err
	}

	m.lastHash = lastAccepted
	m.nextHeight = head.Height + 1
	log.Info("resumed chain",
		zap.String("lastAccepted", lastAccepted),
		zap.Uint64("height", head.Height),
	)
	return m, nil
}

// Append constructs a block around [payload], stamps and seals it, and
// persists it as the new head.
func (m *Manager) Append(payload any) (*block.Block, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	blk, err := block.New(payload)
	if err != nil {
		return nil, err
	}
	blk.Height = m.nextHeight
	blk.Time = m.clk.Time().Unix()
	prevHash := m.lastHash
	blk.PreviousBlockHash = &prevHash

	digest, err := blk.ComputeHash()
	if err != nil {
		return nil, fmt.Errorf("failed to seal block: %w", err)
	}
	blk.Hash = &digest

	m.state.AddBlock(blk)
	m.state.SetLastAccepted(digest)
	if err := m.state.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit block: %w", err)
	}

	m.lastHash = digest
	m.nextHeight = blk.Height + 1

	m.log.Info("sealed block",
		zap.String("hash", digest),
		zap.Uint64("height", blk.Height),
	)
	return blk, nil
}

// GetBlock fetches a stored block by its hash.
//
// All state access goes through [m.lock]: Append mutates the state's pending
// maps, so unguarded reads race with it.
func (m *Manager) GetBlock(hash string) (*block.Block, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.state.GetBlock(hash)
}

// GetBlockByHeight fetches a stored block by its chain position.
func (m *Manager) GetBlockByHeight(height uint64) (*block.Block, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.getBlockByHeight(height)
}

// getBlockByHeight assumes [m.lock] is held.
func (m *Manager) getBlockByHeight(height uint64) (*block.Block, error) {
	hash, err := m.state.GetBlockHashAtHeight(height)
	if err != nil {
		return nil, err
	}
	return m.state.GetBlock(hash)
}

// LastAccepted returns the hash and height of the chain head.
func (m *Manager) LastAccepted() (string, uint64) {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.lastHash, m.nextHeight - 1
}
