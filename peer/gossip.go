package peer

import (
	set "gopkg.in/fatih/set.v0"

	"github.com/ground-x/powsim/chain"
	"github.com/ground-x/powsim/common"
	"github.com/ground-x/powsim/eventqueue"
	"github.com/ground-x/powsim/simerr"
)

// GenerateTxn fires this peer's recurring transaction-generation timer
// (spec §4.3). A zero-balance peer mints nothing this round but the
// generator itself always reschedules, so the peer resumes generating as
// soon as it has coins again (spec §8 "a peer with zero balance generates
// no transactions" bounds what is minted, not whether the timer keeps
// ticking).
func (p *Peer) GenerateTxn(now float64, q *eventqueue.Queue) {
	balance := p.balances[p.ID]
	if balance > 0 {
		recipient := p.randomOtherPeer()
		amount := int64(1 + p.rng.Intn(int(balance)))
		tx := chain.NewTransaction(p.ID, recipient, amount)
		p.ReceiveTransaction(tx, now, q, p.ID)
	}

	delay := expDelay(p.rng, p.cfg.Ttx)
	q.Push(eventqueue.Event{
		When:    now + delay,
		Kind:    eventqueue.GenerateTxn,
		Payload: GenerateTxnPayload{Peer: p.ID},
	})
}

// randomOtherPeer picks uniformly among every peer id besides this one,
// using the Topology's peer count.
func (p *Peer) randomOtherPeer() common.PeerID {
	n := len(p.topo.Peers)
	for {
		candidate := common.PeerID(p.rng.Intn(n))
		if candidate != p.ID {
			return candidate
		}
	}
}

// ReceiveTransaction implements spec §4.3's gossip handler: drop if already
// on the main chain or already seen, else admit to the mempool and forward
// to every neighbor besides from that hasn't already been sent this txn.
func (p *Peer) ReceiveTransaction(tx chain.Transaction, now float64, q *eventqueue.Queue, from common.PeerID) error {
	if p.longestChainTxnIDs[tx.ID] {
		return simerr.New(simerr.DuplicateMessage, "txn already on main chain")
	}
	if p.receivedTxnIDs[tx.ID] {
		return simerr.New(simerr.DuplicateMessage, "txn already seen")
	}

	p.receivedTxnIDs[tx.ID] = true
	p.mempool.Add(tx)

	sent, ok := p.sentTxnTargets[tx.ID]
	if !ok {
		sent = set.New()
		p.sentTxnTargets[tx.ID] = sent
	}
	for _, nb := range p.Neighbors {
		if nb == from {
			continue
		}
		if sent.Has(nb) {
			continue
		}
		sent.Add(nb)
		p.pushDeliverTxn(q, now, nb, tx)
	}
	return nil
}
