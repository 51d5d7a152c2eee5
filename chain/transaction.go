// Package chain holds the immutable value types this simulator's consensus
// layer operates on: Transaction, Block, and the per-peer block-tree Node
// wrapper (spec §3). It plays the role the teacher's blockchain/types
// package plays for a real node, but is a from-scratch, much smaller value
// model: this simulator has no EVM, no account-key hierarchy, and no
// multiple transaction kinds beyond "coinbase" vs "value transfer", so none
// of the teacher's tx_internal_data_* variants generalize here.
package chain

import (
	uuid "github.com/satori/go.uuid"
	"github.com/ground-x/powsim/common"
)

// Transaction is an immutable value-transfer or coinbase payment (spec §3).
type Transaction struct {
	ID        common.TxID
	Sender    common.PeerID
	Recipient common.PeerID
	Amount    int64
	Coinbase  bool
}

// NewTransaction creates a regular (non-coinbase) transaction with a fresh
// unique id, mirroring the satori/go.uuid-based id generation the teacher
// uses elsewhere in the tree for object identifiers.
func NewTransaction(sender, recipient common.PeerID, amount int64) Transaction {
	return Transaction{
		ID:        common.TxID(uuid.NewV4().String()),
		Sender:    sender,
		Recipient: recipient,
		Amount:    amount,
		Coinbase:  false,
	}
}

// NewCoinbase creates the reward transaction for a newly mined block: sender
// and recipient are both the miner, amount is the fixed block reward (spec
// §3, §4.4).
func NewCoinbase(miner common.PeerID, reward int64) Transaction {
	return Transaction{
		ID:        common.TxID(uuid.NewV4().String()),
		Sender:    miner,
		Recipient: miner,
		Amount:    reward,
		Coinbase:  true,
	}
}

// SizeBits returns the transaction's wire size in bits for latency
// modeling (spec §6): a fixed txnSizeKB at bitsPerKB, applied uniformly
// with blocks' size-to-bits conversion (spec §9 ambiguity (a)).
func SizeBits(txnSizeKB, bitsPerKB int) int64 {
	return int64(txnSizeKB) * int64(bitsPerKB)
}
