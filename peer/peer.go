// Package peer implements the consensus state machine of spec §4.3-§4.6:
// mempool, block tree, longest-chain tracking, balance accounting, mining
// scheduling, and chain reorganization. It is the bulk of this simulator's
// core, generalizing the teacher's work/worker.go + work/agent.go
// split — there, a worker assembles a candidate Task and agents race to
// Seal it; here, each Peer both assembles its own candidate block and races
// its own Exponential mining timer, since there is no separate goroutine
// pool to hand sealing off to in a single-threaded discrete-event kernel.
package peer

import (
	"math"
	"math/rand"

	set "gopkg.in/fatih/set.v0"

	"github.com/ground-x/powsim/chain"
	"github.com/ground-x/powsim/common"
	"github.com/ground-x/powsim/eventqueue"
	"github.com/ground-x/powsim/log"
	"github.com/ground-x/powsim/metrics"
	"github.com/ground-x/powsim/netbuild"
	"github.com/ground-x/powsim/params"
)

var logger = log.NewModuleLogger(log.Peer)

// Peer is the per-node consensus state machine (spec §3 "Peer state"). It
// holds no direct references to other peers — only their common.PeerID —
// the arena discipline spec §9 calls for; all cross-peer communication goes
// through events pushed onto the shared eventqueue.Queue.
type Peer struct {
	ID           common.PeerID
	IsSlow       bool
	IsLowCPU     bool
	HashingPower float64
	Neighbors    []common.PeerID

	cfg     params.SimConfig
	topo    *netbuild.Topology
	metrics *metrics.Registry
	rng     *rand.Rand

	mempool           *mempool
	receivedTxnIDs    map[common.TxID]bool
	sentTxnTargets    map[common.TxID]*set.Set // txn id -> set of common.PeerID already sent to
	sentBlockTargets  map[common.PeerID]*set.Set // neighbor -> set of common.BlockID already sent

	blockTree   map[common.BlockID]*chain.Node
	orphanPool  map[common.BlockID]orphanEntry
	orphanOrder []common.BlockID // arrival order, for deterministic reattachment

	longestChainTip    common.BlockID
	longestChainTxnIDs map[common.TxID]bool
	balances           common.Balances
	balanceCache       *common.BalanceCache

	miningOutstanding bool
	miningGeneration  int64
	blocksMined       int64
}

// New constructs a Peer seeded with GENESIS as its sole block-tree entry and
// an empty ledger, wired to the shared topology/metrics/rng a simulation
// run's peers all share (spec §9 "single seeded generator consumed in
// event-dispatch order").
func New(spec netbuild.PeerSpec, cfg params.SimConfig, topo *netbuild.Topology, reg *metrics.Registry, rng *rand.Rand) *Peer {
	p := &Peer{
		ID:           spec.ID,
		IsSlow:       spec.IsSlow,
		IsLowCPU:     spec.IsLowCPU,
		HashingPower: spec.HashingPower,
		Neighbors:    spec.Neighbors,

		cfg:     cfg,
		topo:    topo,
		metrics: reg,
		rng:     rng,

		mempool:          newMempool(),
		receivedTxnIDs:   make(map[common.TxID]bool),
		sentTxnTargets:   make(map[common.TxID]*set.Set),
		sentBlockTargets: make(map[common.PeerID]*set.Set),

		blockTree:  make(map[common.BlockID]*chain.Node),
		orphanPool: make(map[common.BlockID]orphanEntry),

		longestChainTxnIDs: make(map[common.TxID]bool),
		balances:           make(common.Balances),
		balanceCache:       common.NewBalanceCache(maxInt(1024, 4*cfg.N)),
	}

	genesis := chain.NewGenesis()
	p.blockTree[genesis.ID] = &chain.Node{Block: genesis, ParentID: "", Children: nil, Depth: 0, ArrivalTime: 0}
	p.longestChainTip = genesis.ID
	p.balanceCache.Pin(genesis.ID, p.balances.Clone())
	return p
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Balance returns id's balance on the peer's current longest chain.
func (p *Peer) Balance(id common.PeerID) int64 {
	return p.balances[id]
}

// LongestChainTip returns the block id the peer currently considers the
// canonical tip.
func (p *Peer) LongestChainTip() common.BlockID {
	return p.longestChainTip
}

// TipDepth returns the depth of the current longest-chain tip.
func (p *Peer) TipDepth() int {
	return p.blockTree[p.longestChainTip].Depth
}

// BlockTreeSnapshot returns a read-only copy of the block tree for
// reporting/logging (spec §4.7, §6 "Output per peer"); callers must not
// mutate the returned nodes.
func (p *Peer) BlockTreeSnapshot() map[common.BlockID]*chain.Node {
	out := make(map[common.BlockID]*chain.Node, len(p.blockTree))
	for id, node := range p.blockTree {
		out[id] = node
	}
	return out
}

// BlocksMined returns the total number of blocks this peer has mined
// (including ones later orphaned by a reorg), mirroring the teacher's
// miner.mined counter in LarryRuane-minesim.
func (p *Peer) BlocksMined() int64 { return p.blocksMined }

// OrphanCount returns the number of blocks currently awaiting their parent.
func (p *Peer) OrphanCount() int { return len(p.orphanPool) }

// MempoolLen returns the number of transactions not yet on the main chain.
func (p *Peer) MempoolLen() int { return p.mempool.Len() }

// expDelay draws from an Exponential distribution with the given mean using
// inverse-transform sampling, exactly the formula LarryRuane-minesim uses
// for both its mining-delay and (implicitly) queueing-delay draws:
// -ln(1-U) * mean.
func expDelay(rng *rand.Rand, mean float64) float64 {
	return -math.Log(1-rng.Float64()) * mean
}

// pushDeliverTxn schedules a transaction delivery to a neighbor, computing
// latency per spec §4.3.
func (p *Peer) pushDeliverTxn(q *eventqueue.Queue, now float64, to common.PeerID, tx chain.Transaction) {
	sizeBits := chain.SizeBits(p.cfg.TxnSizeKB, p.cfg.BitsPerKB)
	delay := p.latency(to, sizeBits)
	q.Push(eventqueue.Event{
		When: now + delay,
		Kind: eventqueue.DeliverTxn,
		Payload: DeliverTxnPayload{
			Target: to,
			From:   p.ID,
			Txn:    tx,
		},
	})
}

// pushDeliverBlock schedules a block delivery to a neighbor.
func (p *Peer) pushDeliverBlock(q *eventqueue.Queue, now float64, to common.PeerID, b chain.Block) {
	sizeBits := b.SizeBits(p.cfg.TxnSizeKB, p.cfg.BitsPerKB)
	delay := p.latency(to, sizeBits)
	q.Push(eventqueue.Event{
		When: now + delay,
		Kind: eventqueue.DeliverBlock,
		Payload: DeliverBlockPayload{
			Target: to,
			From:   p.ID,
			Block:  b,
		},
	})
}

// latency implements spec §4.3: rho_ij + m/c_ij + d_queue, where d_queue ~
// Exp(mean = 96000/c_ij seconds).
func (p *Peer) latency(to common.PeerID, sizeBits int64) float64 {
	link, ok := p.topo.Link(p.ID, to)
	if !ok {
		logger.Error("no link to neighbor", "from", p.ID, "to", to)
		return 0
	}
	propSeconds := link.PropDelayMs / 1000.0
	bitsPerSecond := link.BandwidthMbps * 1e6
	transmitSeconds := float64(sizeBits) / bitsPerSecond
	queueMean := 96000.0 / bitsPerSecond
	queueSeconds := expDelay(p.rng, queueMean)
	return propSeconds + transmitSeconds + queueSeconds
}
