package peer

import (
	"github.com/ground-x/powsim/chain"
	"github.com/ground-x/powsim/common"
)

// The four event payload shapes of spec §4.9, carried as
// eventqueue.Event.Payload and dispatched by the simulator's type switch.

// GenerateTxnPayload fires a peer's recurring transaction generator.
type GenerateTxnPayload struct {
	Peer common.PeerID
}

// DeliverTxnPayload delivers a gossiped transaction to Target, having come
// from From (used only to exclude From from further re-forwarding).
type DeliverTxnPayload struct {
	Target common.PeerID
	From   common.PeerID
	Txn    chain.Transaction
}

// MineCompletePayload fires when a peer's mining timer for Candidate
// expires. Generation is compared against the peer's current mining
// generation counter to detect a stale (superseded) attempt (spec §5).
type MineCompletePayload struct {
	Peer       common.PeerID
	Candidate  chain.Block
	Generation int64
}

// DeliverBlockPayload delivers a gossiped or mined block to Target, having
// come from From, the neighbor that sent it (used only to exclude From from
// further re-forwarding).
type DeliverBlockPayload struct {
	Target common.PeerID
	From   common.PeerID
	Block  chain.Block
}
