package peer

import "github.com/ground-x/powsim/chain"
import "github.com/ground-x/powsim/common"

// mempool is the insertion-ordered set of transactions a peer knows about
// but has not yet seen on its longest chain. Spec §9 calls for "include
// order in candidate blocks ... deterministic given the RNG", which rules
// out a bare Go map (whose iteration order is intentionally randomized) —
// this keeps both an ordered slice (for deterministic mining-candidate
// iteration) and a membership map (for O(1) Contains/Remove).
type mempool struct {
	order []common.TxID
	byID  map[common.TxID]chain.Transaction
}

func newMempool() *mempool {
	return &mempool{byID: make(map[common.TxID]chain.Transaction)}
}

func (m *mempool) Add(tx chain.Transaction) {
	if _, ok := m.byID[tx.ID]; ok {
		return
	}
	m.byID[tx.ID] = tx
	m.order = append(m.order, tx.ID)
}

func (m *mempool) Contains(id common.TxID) bool {
	_, ok := m.byID[id]
	return ok
}

func (m *mempool) Remove(id common.TxID) {
	if _, ok := m.byID[id]; !ok {
		return
	}
	delete(m.byID, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Txns returns every mempool transaction in insertion order.
func (m *mempool) Txns() []chain.Transaction {
	out := make([]chain.Transaction, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id])
	}
	return out
}

func (m *mempool) Len() int { return len(m.order) }
