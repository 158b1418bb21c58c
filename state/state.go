package state

import (
	"errors"
	"fmt"

	"github.com/MetalBlockchain/metalgo/cache"
	"github.com/MetalBlockchain/metalgo/database"
	"github.com/MetalBlockchain/metalgo/database/prefixdb"
	"github.com/MetalBlockchain/metalgo/database/versiondb"
	"github.com/sealchain-project/sealchain/chain/block"
)

var (
	_ State = (*state)(nil)

	blockPrefix     = []byte("block")
	heightPrefix    = []byte("height")
	singletonPrefix = []byte("singleton")

	lastAcceptedKey = []byte("last accepted")
)

// State persists sealed blocks and the chain head. Reconstructing a block
// from storage yields a field-identical value, so verification and payload
// decoding behave the same before and after a restart.
type State interface {
	GetBlock(hash string) (*block.Block, error)

	// AddBlock stages a sealed block for the next Commit. Unsealed blocks
	// (nil hash) have no storage key and are dropped.
	AddBlock(blk *block.Block)

	GetBlockHashAtHeight(height uint64) (string, error)

	GetLastAccepted() string
	SetLastAccepted(hash string)

	// Commit changes to the base database.
	Commit() error

	Close() error
}

type state struct {
	baseDB *versiondb.Database

	// lastAccepted is the hash of the most recently appended block.
	lastAccepted string

	addedBlocks map[string]*block.Block             // map of hash -> Block
	blockCache  cache.Cacher[string, *block.Block]  // cache of hash -> Block; if the entry is nil, it is not in the database
	blockDB     database.Database

	addedBlockHashes map[uint64]string            // map of height -> hash
	blockHashCache   cache.Cacher[uint64, string] // cache of height -> hash; if the entry is "", it is not in the database
	heightDB         database.Database

	singletonDB database.Database
}

func New(db database.Database, blockCacheSize int, blockHashCacheSize int) (State, error) {
	baseDB := versiondb.New(db)

	s := &state{
		baseDB: baseDB,

		addedBlocks: make(map[string]*block.Block),
		blockCache:  &cache.LRU[string, *block.Block]{Size: blockCacheSize},
		blockDB:     prefixdb.New(blockPrefix, baseDB),

		addedBlockHashes: make(map[uint64]string),
		blockHashCache:   &cache.LRU[uint64, string]{Size: blockHashCacheSize},
		heightDB:         prefixdb.New(heightPrefix, baseDB),

		singletonDB: prefixdb.New(singletonPrefix, baseDB),
	}

	lastAccepted, err := s.singletonDB.Get(lastAcceptedKey)
	switch {
	case err == nil:
		s.lastAccepted = string(lastAccepted)
	case errors.Is(err, database.ErrNotFound):
	default:
		return nil, fmt.Errorf("failed to read last accepted block: %w", err)
	}

	return s, nil
}

func (s *state) GetBlock(hash string) (*block.Block, error) {
	if blk, exists := s.addedBlocks[hash]; exists {
		return blk, nil
	}
	if blk, cached := s.blockCache.Get(hash); cached {
		if blk == nil {
			return nil, database.ErrNotFound
		}

		return blk, nil
	}

	blkBytes, err := s.blockDB.Get([]byte(hash))
	if errors.Is(err, database.ErrNotFound) {
		s.blockCache.Put(hash, nil)
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	blk, err := block.Parse(blkBytes)
	if err != nil {
		return nil, err
	}

	s.blockCache.Put(hash, blk)
	return blk, nil
}

func (s *state) AddBlock(blk *block.Block) {
	// The hash is the storage key; a block without one cannot be indexed.
	if blk.Hash == nil {
		return
	}
	s.addedBlocks[*blk.Hash] = blk
	s.addedBlockHashes[blk.Height] = *blk.Hash
}

func (s *state) GetBlockHashAtHeight(height uint64) (string, error) {
	if hash, exists := s.addedBlockHashes[height]; exists {
		return hash, nil
	}
	if hash, cached := s.blockHashCache.Get(height); cached {
		if hash == "" {
			return "", database.ErrNotFound
		}

		return hash, nil
	}

	heightKey := database.PackUInt64(height)

	hashBytes, err := s.heightDB.Get(heightKey)
	if errors.Is(err, database.ErrNotFound) {
		s.blockHashCache.Put(height, "")
		return "", database.ErrNotFound
	}
	if err != nil {
		return "", err
	}

	hash := string(hashBytes)
	s.blockHashCache.Put(height, hash)
	return hash, nil
}

func (s *state) GetLastAccepted() string {
	return s.lastAccepted
}

func (s *state) SetLastAccepted(hash string) {
	s.lastAccepted = hash
}

func (s *state) Abort() {
	s.baseDB.Abort()
}

func (s *state) Commit() error {
	defer s.Abort()
	batch, err := s.CommitBatch()
	if err != nil {
		return err
	}
	return batch.Write()
}

func (s *state) CommitBatch() (database.Batch, error) {
	if err := s.write(); err != nil {
		return nil, err
	}
	return s.baseDB.CommitBatch()
}

func (s *state) Close() error {
	return errors.Join(
		s.blockDB.Close(),
		s.heightDB.Close(),
		s.singletonDB.Close(),
		s.baseDB.Close(),
	)
}

func (s *state) write() error {
	if err := s.writeBlocks(); err != nil {
		return err
	}
	if s.lastAccepted != "" {
		if err := s.singletonDB.Put(lastAcceptedKey, []byte(s.lastAccepted)); err != nil {
			return fmt.Errorf("failed to write last accepted block: %w", err)
		}
	}
	return nil
}

func (s *state) writeBlocks() error {
	for hash, blk := range s.addedBlocks {
		blkBytes, err := blk.Bytes()
		if err != nil {
			return fmt.Errorf("failed to serialize block %s: %w", hash, err)
		}
		blkHeight := blk.Height
		heightKey := database.PackUInt64(blkHeight)

		delete(s.addedBlockHashes, blkHeight)
		s.blockHashCache.Put(blkHeight, hash)
		if err := s.heightDB.Put(heightKey, []byte(hash)); err != nil {
			return fmt.Errorf("failed to add block hash: %w", err)
		}

		delete(s.addedBlocks, hash)
		s.blockCache.Put(hash, blk)
		if err := s.blockDB.Put([]byte(hash), blkBytes); err != nil {
			return fmt.Errorf("failed to write block %s: %w", hash, err)
		}
	}
	return nil
}
