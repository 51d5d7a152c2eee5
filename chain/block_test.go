package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ground-x/powsim/common"
)

func TestGenesisIsRecognized(t *testing.T) {
	g := NewGenesis()
	assert.True(t, g.IsGenesis())
	assert.Empty(t, g.Txns)
}

func TestBlockSizeIsAtLeastOneKB(t *testing.T) {
	coinbase := NewCoinbase(1, 50)
	b := NewBlock(common.GenesisID, 1, coinbase, nil)
	assert.Equal(t, int64(1), b.SizeKB(1))
	assert.Equal(t, int64(8192), b.SizeBits(1, 8192))
}

func TestBlockSizeGrowsWithTxnCount(t *testing.T) {
	coinbase := NewCoinbase(1, 50)
	txns := make([]Transaction, 1023)
	for i := range txns {
		txns[i] = NewTransaction(1, 2, 1)
	}
	b := NewBlock(common.GenesisID, 1, coinbase, txns)
	assert.Len(t, b.Txns, 1024)
	assert.Equal(t, int64(1024), b.SizeKB(1))
}

func TestCoinbaseIsAlwaysFirst(t *testing.T) {
	coinbase := NewCoinbase(3, 50)
	tx := NewTransaction(1, 2, 5)
	b := NewBlock(common.GenesisID, 3, coinbase, []Transaction{tx})
	assert.True(t, b.Txns[0].Coinbase)
	assert.Equal(t, common.PeerID(3), b.Txns[0].Sender)
	assert.Equal(t, common.PeerID(3), b.Txns[0].Recipient)
	assert.Equal(t, int64(50), b.Txns[0].Amount)
}
