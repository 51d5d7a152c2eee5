package chain

import (
	uuid "github.com/satori/go.uuid"
	"github.com/ground-x/powsim/common"
)

// Block is an immutable mined block (spec §3). Txns[0] is always the
// coinbase; ParentID is empty only for the genesis block itself, which is
// synthesized directly by NewGenesis rather than mined.
type Block struct {
	ID       common.BlockID
	ParentID common.BlockID
	Miner    common.PeerID
	Txns     []Transaction
}

// NewGenesis returns the synthetic root block shared by every peer: empty
// transactions, depth 0, no parent (spec §3, GLOSSARY).
func NewGenesis() Block {
	return Block{
		ID:       common.GenesisID,
		ParentID: "",
		Miner:    -1,
		Txns:     nil,
	}
}

// IsGenesis reports whether b is the synthetic genesis block.
func (b Block) IsGenesis() bool {
	return b.ID == common.GenesisID
}

// NewBlock mints a fresh block id and assembles a block with coinbase at
// index 0 followed by the given transactions (spec §3, §4.4 step 2).
func NewBlock(parent common.BlockID, miner common.PeerID, coinbase Transaction, txns []Transaction) Block {
	all := make([]Transaction, 0, len(txns)+1)
	all = append(all, coinbase)
	all = append(all, txns...)
	return Block{
		ID:       common.BlockID(uuid.NewV4().String()),
		ParentID: parent,
		Miner:    miner,
		Txns:     all,
	}
}

// SizeKB is max(1, |transactions|) x 1KB, applied even to an empty
// transaction list so such a block still has a nonzero size (spec §3).
func (b Block) SizeKB(txnSizeKB int) int64 {
	n := int64(len(b.Txns))
	if n < 1 {
		n = 1
	}
	return n * int64(txnSizeKB)
}

// SizeBits returns the block's wire size in bits for latency modeling,
// applying the same bitsPerKB factor as Transaction.SizeBits (spec §9
// ambiguity (a): one bits-per-KB convention, used uniformly).
func (b Block) SizeBits(txnSizeKB, bitsPerKB int) int64 {
	return b.SizeKB(txnSizeKB) * int64(bitsPerKB)
}

// TxnIDs returns the ids of every transaction in the block, coinbase
// included, in order.
func (b Block) TxnIDs() []common.TxID {
	ids := make([]common.TxID, len(b.Txns))
	for i, tx := range b.Txns {
		ids[i] = tx.ID
	}
	return ids
}
