package simulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ground-x/powsim/params"
)

func testCfg() params.SimConfig {
	cfg := params.Default()
	cfg.N = 8
	cfg.Z0 = 25
	cfg.Z1 = 25
	cfg.Ttx = 5
	cfg.I = 2
	cfg.MaxTime = 200
	cfg.Seed = 7
	return cfg
}

func TestRunProducesEveryPeerOnAConnectedTreeAtGenesis(t *testing.T) {
	cfg := testCfg()
	result, err := Run(cfg)
	require.NoError(t, err)

	assert.Len(t, result.Peers, cfg.N)
	assert.Greater(t, result.EventsProcessed, int64(0))
	assert.LessOrEqual(t, result.FinalTime, cfg.MaxTime)

	for id, p := range result.Peers {
		tree := p.BlockTreeSnapshot()
		require.Contains(t, tree, p.LongestChainTip(), "peer %d's own tip must be in its own tree", id)
		_, hasGenesis := tree["GENESIS"]
		assert.True(t, hasGenesis)
	}
}

func TestRunIsDeterministicGivenTheSameSeed(t *testing.T) {
	cfg := testCfg()

	r1, err := Run(cfg)
	require.NoError(t, err)
	r2, err := Run(cfg)
	require.NoError(t, err)

	assert.Equal(t, r1.EventsProcessed, r2.EventsProcessed)
	assert.Equal(t, r1.FinalTime, r2.FinalTime)
	for id := range r1.Peers {
		assert.Equal(t, r1.Peers[id].LongestChainTip(), r2.Peers[id].LongestChainTip())
		assert.Equal(t, r1.Peers[id].BlocksMined(), r2.Peers[id].BlocksMined())
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	cfg := testCfg()
	cfg.N = 0
	_, err := Run(cfg)
	assert.Error(t, err)
}
