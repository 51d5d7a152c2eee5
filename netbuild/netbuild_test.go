package netbuild

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ground-x/powsim/params"
)

func testConfig(n int) params.SimConfig {
	cfg := params.Default()
	cfg.N = n
	cfg.Z0 = 20
	cfg.Z1 = 30
	cfg.Ttx = 5
	cfg.I = 10
	cfg.MaxTime = 1000
	return cfg
}

func TestBuildProducesConnectedGraphWithDegreeBounds(t *testing.T) {
	cfg := testConfig(20)
	topo, err := Build(cfg, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.Len(t, topo.Peers, 20)

	for _, p := range topo.Peers {
		assert.GreaterOrEqual(t, len(p.Neighbors), 0)
		assert.LessOrEqual(t, len(p.Neighbors), cfg.MaxDegree)
	}

	adjacency := make([][]bool, cfg.N)
	for i := range adjacency {
		adjacency[i] = make([]bool, cfg.N)
	}
	for _, p := range topo.Peers {
		for _, nb := range p.Neighbors {
			adjacency[p.ID][nb] = true
		}
	}
	visited := make([]bool, cfg.N)
	queue := []int{0}
	visited[0] = true
	count := 1
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for j := 0; j < cfg.N; j++ {
			if adjacency[cur][j] && !visited[j] {
				visited[j] = true
				count++
				queue = append(queue, j)
			}
		}
	}
	assert.Equal(t, cfg.N, count, "graph must be connected")
}

func TestHashingPowerSumsToOne(t *testing.T) {
	cfg := testConfig(10)
	topo, err := Build(cfg, rand.New(rand.NewSource(2)))
	require.NoError(t, err)

	var sum float64
	for _, p := range topo.Peers {
		sum += p.HashingPower
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestHighCpuPeersGetTenTimesHashingPower(t *testing.T) {
	cfg := testConfig(10)
	cfg.Z1 = 50
	topo, err := Build(cfg, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	var highPower, lowPower float64
	for _, p := range topo.Peers {
		if p.IsLowCPU {
			lowPower = p.HashingPower
		} else {
			highPower = p.HashingPower
		}
	}
	if lowPower > 0 && highPower > 0 {
		assert.InDelta(t, 10*lowPower, highPower, 1e-9)
	}
}

func TestInvalidConfigIsRejected(t *testing.T) {
	cfg := testConfig(0)
	_, err := Build(cfg, rand.New(rand.NewSource(1)))
	assert.Error(t, err)
}

func TestLinkBandwidthDependsOnSpeed(t *testing.T) {
	cfg := testConfig(10)
	topo, err := Build(cfg, rand.New(rand.NewSource(4)))
	require.NoError(t, err)

	for key, link := range topo.Links {
		a := topo.Peers[key.A]
		b := topo.Peers[key.B]
		if a.IsSlow || b.IsSlow {
			assert.Equal(t, cfg.SlowBandwidthMbps, link.BandwidthMbps)
		} else {
			assert.Equal(t, cfg.FastBandwidthMbps, link.BandwidthMbps)
		}
		assert.GreaterOrEqual(t, link.PropDelayMs, cfg.MinPropDelayMs)
		assert.LessOrEqual(t, link.PropDelayMs, cfg.MaxPropDelayMs)
	}
}
