// Package common holds identifier types and the balance cache shared across
// this simulator's core, the way the teacher's common package holds the
// cross-cutting Address/Hash types and the generic LRU Cache wrapper
// (common/cache.go) used by every higher-level package.
package common

import "fmt"

// PeerID identifies a peer in the simulated network, 0..N-1.
type PeerID int

func (p PeerID) String() string { return fmt.Sprintf("peer-%d", int(p)) }

// TxID is an opaque, unique transaction identifier.
type TxID string

// BlockID is an opaque, unique block identifier. GenesisID is the single
// synthetic identity shared by every peer's GENESIS node.
type BlockID string

// GenesisID is the well-known id of the synthetic genesis block.
const GenesisID BlockID = "GENESIS"
