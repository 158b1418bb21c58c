package block

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/MetalBlockchain/metalgo/utils/hashing"
)

// GenesisData is the conventional payload of a chain's first block. A block
// carrying it decodes to a nil payload so callers can tell the root block
// apart from data blocks without inspecting payloads themselves.
const GenesisData = "Genesis Block"

// Block is one unit of a hash-linked ledger. Body holds the payload in its
// encoded form (canonical JSON text, hex-encoded); Hash binds the remaining
// fields and stays nil until the block is sealed by its chain manager.
//
// Field order is the canonical serialization order and must not change, or
// previously sealed hashes stop verifying.
type Block struct {
	Hash              *string `json:"hash"`
	Height            uint64  `json:"height"`
	Body              string  `json:"body"`
	Time              int64   `json:"time"`
	PreviousBlockHash *string `json:"previousBlockHash"`
}

// New builds an unsealed block around [payload]. The payload is serialized
// to canonical JSON and stored hex-encoded; Height, Time and
// PreviousBlockHash are left for the chain manager to populate before
// sealing.
func New(payload any) (*Block, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize payload: %w", err)
	}
	return &Block{
		Body: hex.EncodeToString(data),
	}, nil
}

// ComputeHash returns the digest that seals the block: SHA-256 over the
// canonical JSON of the full field set with Hash treated as null. The same
// computation runs at seal time and inside Verify; digesting anything other
// than a null hash field gives a different, wrong answer.
func (b *Block) ComputeHash() (string, error) {
	preimage := Block{
		Height:            b.Height,
		Body:              b.Body,
		Time:              b.Time,
		PreviousBlockHash: b.PreviousBlockHash,
	}
	raw, err := json.Marshal(&preimage)
	if err != nil {
		return "", fmt.Errorf("failed to serialize block: %w", err)
	}
	return hex.EncodeToString(hashing.ComputeHash256(raw)), nil
}

// Verify reports whether the stored hash still matches a digest freshly
// computed from the block's current field values. An unsealed block (nil
// hash) verifies false. A failure to compute the digest surfaces as an
// *IntegrityCheckError so callers can tell "tampered" from "could not
// check".
func (b *Block) Verify() (bool, error) {
	digest, err := b.ComputeHash()
	if err != nil {
		return false, &IntegrityCheckError{Err: err}
	}
	if b.Hash == nil {
		return false, nil
	}
	return *b.Hash == digest, nil
}

// Payload decodes Body back into the value passed to New. Blocks carrying
// the genesis payload decode to nil; nil is reserved for that signal and is
// never returned alongside an error.
func (b *Block) Payload() (any, error) {
	data, err := hex.DecodeString(b.Body)
	if err != nil {
		return nil, &PayloadDecodeError{Err: fmt.Errorf("malformed body: %w", err)}
	}

	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, &PayloadDecodeError{Err: fmt.Errorf("malformed payload: %w", err)}
	}

	if obj, ok := payload.(map[string]any); ok && obj["data"] == GenesisData {
		return nil, nil
	}
	return payload, nil
}

// Bytes returns the canonical JSON of the full field set, including the
// sealed hash. This is the form the state layer persists.
func (b *Block) Bytes() ([]byte, error) {
	return json.Marshal(b)
}

// Parse is the inverse of Bytes.
func Parse(raw []byte) (*Block, error) {
	blk := &Block{}
	if err := json.Unmarshal(raw, blk); err != nil {
		return nil, fmt.Errorf("failed to parse block: %w", err)
	}
	return blk, nil
}
