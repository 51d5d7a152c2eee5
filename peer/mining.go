package peer

import (
	"fmt"

	"github.com/ground-x/powsim/chain"
	"github.com/ground-x/powsim/common"
	"github.com/ground-x/powsim/eventqueue"
	"github.com/ground-x/powsim/simerr"
)

// ScheduleMining implements spec §4.4's schedule_mining: if a mining event
// is already outstanding, do nothing; otherwise assemble a candidate atop
// the current tip and draw an Exponential(h_k/I) completion delay.
func (p *Peer) ScheduleMining(now float64, q *eventqueue.Queue) {
	if p.miningOutstanding {
		return
	}

	tip := p.longestChainTip
	candidate := p.assembleCandidate(tip)

	mean := p.cfg.I / p.HashingPower
	delay := expDelay(p.rng, mean)

	p.miningGeneration++
	p.miningOutstanding = true
	q.Push(eventqueue.Event{
		When: now + delay,
		Kind: eventqueue.MineComplete,
		Payload: MineCompletePayload{
			Peer:       p.ID,
			Candidate:  candidate,
			Generation: p.miningGeneration,
		},
	})
}

// cancelMining tombstones any outstanding mining event; when it eventually
// fires, its saved Generation will no longer match p.miningGeneration and
// MineComplete will drop it silently (spec §5).
func (p *Peer) cancelMining() {
	p.miningOutstanding = false
}

// assembleCandidate implements spec §4.4 step 3: greedily include mempool
// transactions not already on the chain ending at tip, skipping any that
// would drive a balance negative, and halting entirely (discarding the
// offending transaction) the moment the next inclusion would exceed the
// max block size.
func (p *Peer) assembleCandidate(tip common.BlockID) chain.Block {
	coinbase := chain.NewCoinbase(p.ID, p.cfg.BlockReward)

	running := p.balances.Clone()
	running[p.ID] += p.cfg.BlockReward

	included := make([]chain.Transaction, 0)
	sizeKB := int64(p.cfg.TxnSizeKB) // coinbase alone

	for _, tx := range p.mempool.Txns() {
		if p.longestChainTxnIDs[tx.ID] {
			continue
		}
		nextSizeKB := sizeKB + int64(p.cfg.TxnSizeKB)
		if nextSizeKB > int64(p.cfg.MaxBlockSizeKB) {
			break
		}
		if running[tx.Sender]-tx.Amount < 0 {
			continue
		}
		running[tx.Sender] -= tx.Amount
		running[tx.Recipient] += tx.Amount
		included = append(included, tx)
		sizeKB = nextSizeKB
	}

	block := chain.NewBlock(tip, p.ID, coinbase, included)
	// Name the block after its miner and this mining attempt's generation
	// instead of NewBlock's random UUID, so a seeded run reproduces its
	// block ids.
	block.ID = common.BlockID(fmt.Sprintf("%d-%d", int(p.ID), p.miningGeneration+1))
	return block
}

// MineComplete implements spec §4.4's mine_block_callback.
func (p *Peer) MineComplete(now float64, q *eventqueue.Queue, payload MineCompletePayload) error {
	if payload.Generation != p.miningGeneration || !p.miningOutstanding {
		return simerr.New(simerr.StaleMiningEvent, "superseded mining attempt")
	}

	block := payload.Candidate
	parent, ok := p.blockTree[block.ParentID]
	if !ok {
		// The parent was pruned out from under us; nothing sane to attach to.
		p.miningOutstanding = false
		return simerr.New(simerr.StaleMiningEvent, "mining parent no longer present")
	}

	if err := p.attach(block, parent, now, q); err != nil {
		p.miningOutstanding = false
		return err
	}

	p.blocksMined++
	if p.metrics != nil {
		p.metrics.BlocksMined.Inc(1)
	}

	p.broadcastBlock(q, now, block, -1)

	p.miningOutstanding = false
	p.ScheduleMining(now, q)
	return nil
}
