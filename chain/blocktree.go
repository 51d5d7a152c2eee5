package chain

import "github.com/ground-x/powsim/common"

// Node is a peer's local view of a Block in its block tree (spec §3):
// the block itself, its parent id, its known children, its depth (GENESIS
// is 0), and the simulated-time instant this peer first accepted it.
type Node struct {
	Block       Block
	ParentID    common.BlockID
	Children    []common.BlockID
	Depth       int
	ArrivalTime float64
}
