package peer

import (
	set "gopkg.in/fatih/set.v0"

	"github.com/ground-x/powsim/chain"
	"github.com/ground-x/powsim/common"
	"github.com/ground-x/powsim/eventqueue"
	"github.com/ground-x/powsim/simerr"
)

// orphanEntry remembers who delivered an orphaned block so that, once its
// parent arrives and it is reattached, it can still be broadcast with the
// right sender excluded (spec §4.5 step 7 re-invokes receive_block on it,
// which would otherwise broadcast to its own original sender).
type orphanEntry struct {
	Block chain.Block
	From  common.PeerID
}

// ReceiveBlock implements spec §4.5: dedup; if the parent is unknown, park
// the block in the orphan pool and return without broadcasting (step 2);
// otherwise attach it, and only on success broadcast to every neighbor that
// hasn't already received this block id (step 8). An invalid block is
// dropped by attach/validateBlock before ever reaching the network.
func (p *Peer) ReceiveBlock(block chain.Block, now float64, q *eventqueue.Queue, from common.PeerID) error {
	if _, ok := p.blockTree[block.ID]; ok {
		return simerr.New(simerr.DuplicateMessage, "block already in tree")
	}
	if _, ok := p.orphanPool[block.ID]; ok {
		return simerr.New(simerr.DuplicateMessage, "block already orphaned")
	}

	parent, ok := p.blockTree[block.ParentID]
	if !ok {
		p.orphanPool[block.ID] = orphanEntry{Block: block, From: from}
		p.orphanOrder = append(p.orphanOrder, block.ID)
		if p.metrics != nil {
			p.metrics.Orphans.Inc(1)
		}
		return nil
	}

	if err := p.attach(block, parent, now, q); err != nil {
		return err
	}
	p.broadcastBlock(q, now, block, from)
	return nil
}

// validateBlock implements spec §4.5 step 3: size bound, a well-formed
// coinbase at index 0, and no transaction driving a balance negative when
// replayed atop the parent's balances.
func (p *Peer) validateBlock(block chain.Block) error {
	if block.SizeKB(p.cfg.TxnSizeKB) > int64(p.cfg.MaxBlockSizeKB) {
		return simerr.New(simerr.InvalidBlock, "block exceeds max size")
	}
	if len(block.Txns) == 0 || !block.Txns[0].Coinbase {
		return simerr.New(simerr.InvalidBlock, "missing coinbase at index 0")
	}
	cb := block.Txns[0]
	if cb.Sender != block.Miner || cb.Recipient != block.Miner || cb.Amount != p.cfg.BlockReward {
		return simerr.New(simerr.InvalidBlock, "malformed coinbase")
	}

	balances := p.balancesAt(block.ParentID)
	for _, tx := range block.Txns {
		if tx.Coinbase {
			balances[tx.Recipient] += tx.Amount
			continue
		}
		if balances[tx.Sender]-tx.Amount < 0 {
			return simerr.New(simerr.InvalidBlock, "transaction would drive a balance negative")
		}
		balances[tx.Sender] -= tx.Amount
		balances[tx.Recipient] += tx.Amount
	}
	return nil
}

// balancesAt implements spec §4.6's lazy computation: walk from id toward
// GENESIS until hitting a cached ancestor (GENESIS itself always is),
// then replay forward, memoizing each intermediate snapshot in the bounded
// LRU tier so repeated validation against the same side branch stays cheap.
func (p *Peer) balancesAt(id common.BlockID) common.Balances {
	var pending []common.BlockID
	cur := id
	for {
		if b, ok := p.balanceCache.Get(cur); ok {
			balances := b.Clone()
			for i := len(pending) - 1; i >= 0; i-- {
				node := p.blockTree[pending[i]]
				balances[node.Block.Miner] += p.cfg.BlockReward
				for _, tx := range node.Block.Txns {
					if tx.Coinbase {
						continue
					}
					balances[tx.Sender] -= tx.Amount
					balances[tx.Recipient] += tx.Amount
				}
				p.balanceCache.Put(pending[i], balances.Clone())
			}
			return balances
		}
		pending = append(pending, cur)
		cur = p.blockTree[cur].ParentID
	}
}

// attach adds block to the tree under its now-known, already-validated
// parent, switches the longest chain if block's depth beats the current
// tip, and reattaches any orphans that were waiting on block. An invalid
// block is dropped before ever entering the tree (spec §4.5 step 3).
func (p *Peer) attach(block chain.Block, parent *chain.Node, now float64, q *eventqueue.Queue) error {
	if err := p.validateBlock(block); err != nil {
		if p.metrics != nil {
			p.metrics.DroppedBlock.Inc(1)
		}
		return err
	}

	node := &chain.Node{
		Block:       block,
		ParentID:    block.ParentID,
		Depth:       parent.Depth + 1,
		ArrivalTime: now,
	}
	p.blockTree[block.ID] = node
	parent.Children = append(parent.Children, block.ID)

	tipDepth := p.blockTree[p.longestChainTip].Depth
	if node.Depth > tipDepth {
		if block.ParentID == p.longestChainTip {
			p.applyFastPathExtension(block, now)
		} else {
			p.reorgTo(block.ID, now)
		}
		p.cancelMining()
		p.ScheduleMining(now, q)
	} else {
		// First-arrival-wins tie-break: block joins as a side branch.
		// balancesAt memoizes block.ID's snapshot as a side effect, so a
		// later reorg onto it doesn't have to replay all the way from
		// GENESIS.
		p.balancesAt(block.ID)
	}

	p.reattachOrphans(block.ID, now, q)
	return nil
}

// reattachOrphans pulls any blocks waiting on parentID out of the orphan
// pool, in their original arrival order, and re-invokes the attach+broadcast
// steps of receive_block on each in turn (which may itself free further
// orphans). Arrival order is preserved so that equal-depth tie-breaking
// (spec §4.5 "first arrival wins") stays deterministic regardless of the
// orphan pool's map iteration order.
func (p *Peer) reattachOrphans(parentID common.BlockID, now float64, q *eventqueue.Queue) {
	for {
		var nextID common.BlockID
		found := false
		remaining := p.orphanOrder[:0]
		for _, id := range p.orphanOrder {
			if !found {
				if e, ok := p.orphanPool[id]; ok && e.Block.ParentID == parentID {
					nextID = id
					found = true
					continue
				}
			}
			remaining = append(remaining, id)
		}
		p.orphanOrder = remaining
		if !found {
			return
		}
		entry := p.orphanPool[nextID]
		delete(p.orphanPool, nextID)
		parent := p.blockTree[entry.Block.ParentID]
		if err := p.attach(entry.Block, parent, now, q); err != nil {
			logger.Detail("orphan reattachment dropped", "block", entry.Block.ID, "reason", err)
			continue
		}
		p.broadcastBlock(q, now, entry.Block, entry.From)
	}
}

// applyFastPathExtension handles the common case: block's parent is exactly
// the current tip, so the ledger only needs the one block's worth of deltas
// applied, no ancestor walk required.
func (p *Peer) applyFastPathExtension(block chain.Block, now float64) {
	p.balances[block.Miner] += p.cfg.BlockReward
	for _, tx := range block.Txns {
		if tx.Coinbase {
			continue
		}
		p.balances[tx.Sender] -= tx.Amount
		p.balances[tx.Recipient] += tx.Amount
		p.longestChainTxnIDs[tx.ID] = true
		p.mempool.Remove(tx.ID)
	}
	p.longestChainTip = block.ID
	p.balanceCache.Pin(block.ID, p.balances.Clone())
}

// pathToRoot returns the chain from id back to GENESIS, id first.
func (p *Peer) pathToRoot(id common.BlockID) []common.BlockID {
	var path []common.BlockID
	cur := id
	for {
		path = append(path, cur)
		node := p.blockTree[cur]
		if node.ParentID == "" {
			return path
		}
		cur = node.ParentID
	}
}

// collectTxnIDs unions every non-coinbase transaction id appearing in the
// chain from id back to GENESIS.
func (p *Peer) collectTxnIDs(id common.BlockID) map[common.TxID]bool {
	ids := make(map[common.TxID]bool)
	for _, blockID := range p.pathToRoot(id) {
		node := p.blockTree[blockID]
		for _, tx := range node.Block.Txns {
			if !tx.Coinbase {
				ids[tx.ID] = true
			}
		}
	}
	return ids
}

// reorgTo implements spec §4.5/§4.6's reorganization: find the lowest common
// ancestor of the current tip and newTip, rewind the ledger to the
// ancestor's cached snapshot, then replay forward along the adopted branch,
// restoring discarded transactions to the mempool and repinning balance
// snapshots for the newly-canonical blocks.
func (p *Peer) reorgTo(newTip common.BlockID, now float64) {
	oldPath := p.pathToRoot(p.longestChainTip)
	newPath := p.pathToRoot(newTip)

	oldIndex := make(map[common.BlockID]int, len(oldPath))
	for i, id := range oldPath {
		oldIndex[id] = i
	}

	var ancestor common.BlockID
	var ancestorNewIdx int
	for i, id := range newPath {
		if _, ok := oldIndex[id]; ok {
			ancestor = id
			ancestorNewIdx = i
			break
		}
	}
	ancestorOldIdx := oldIndex[ancestor]

	discarded := oldPath[:ancestorOldIdx]
	adopted := newPath[:ancestorNewIdx]
	for i, j := 0, len(adopted)-1; i < j; i, j = i+1, j-1 {
		adopted[i], adopted[j] = adopted[j], adopted[i]
	}

	balances, ok := p.balanceCache.Get(ancestor)
	if !ok {
		logger.Error("reorg ancestor missing from balance cache", "ancestor", ancestor)
		balances = make(common.Balances)
	}
	balances = balances.Clone()

	adoptedTxnIDs := make(map[common.TxID]bool)
	for _, blockID := range adopted {
		node := p.blockTree[blockID]
		balances[node.Block.Miner] += p.cfg.BlockReward
		for _, tx := range node.Block.Txns {
			if tx.Coinbase {
				continue
			}
			balances[tx.Sender] -= tx.Amount
			balances[tx.Recipient] += tx.Amount
			adoptedTxnIDs[tx.ID] = true
			p.mempool.Remove(tx.ID)
		}
		p.balanceCache.Pin(blockID, balances.Clone())
	}

	ancestorTxnIDs := p.collectTxnIDs(ancestor)
	newChainTxnIDs := make(map[common.TxID]bool, len(ancestorTxnIDs)+len(adoptedTxnIDs))
	for id := range ancestorTxnIDs {
		newChainTxnIDs[id] = true
	}
	for id := range adoptedTxnIDs {
		newChainTxnIDs[id] = true
	}

	for _, blockID := range discarded {
		p.balanceCache.Unpin(blockID)
		node := p.blockTree[blockID]
		for _, tx := range node.Block.Txns {
			if tx.Coinbase {
				continue
			}
			if !newChainTxnIDs[tx.ID] {
				p.mempool.Add(tx)
			}
		}
	}

	p.balances = balances
	p.longestChainTxnIDs = newChainTxnIDs
	p.longestChainTip = newTip

	if p.metrics != nil {
		p.metrics.Reorgs.Inc(1)
		p.metrics.ReorgDepth.Update(int64(len(discarded)))
	}
	logger.Debug("reorg", "peer", p.ID, "ancestor", ancestor, "discarded", len(discarded), "adopted", len(adopted))
}

// broadcastBlock forwards block to every neighbor besides from that hasn't
// already been sent this block id, mirroring the per-target dedup used for
// transaction gossip.
func (p *Peer) broadcastBlock(q *eventqueue.Queue, now float64, block chain.Block, from common.PeerID) {
	for _, nb := range p.Neighbors {
		if nb == from {
			continue
		}
		sent, ok := p.sentBlockTargets[nb]
		if !ok {
			sent = set.New()
			p.sentBlockTargets[nb] = sent
		}
		if sent.Has(block.ID) {
			continue
		}
		sent.Add(block.ID)
		p.pushDeliverBlock(q, now, nb, block)
	}
}
