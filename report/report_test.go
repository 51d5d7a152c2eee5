package report

import (
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ground-x/powsim/chain"
	"github.com/ground-x/powsim/common"
	"github.com/ground-x/powsim/eventqueue"
	"github.com/ground-x/powsim/metrics"
	"github.com/ground-x/powsim/netbuild"
	"github.com/ground-x/powsim/params"
	"github.com/ground-x/powsim/peer"
)

func twoPeerTopology(cfg params.SimConfig) *netbuild.Topology {
	cfg.MinDegree, cfg.MaxDegree = 1, 1
	topo, err := netbuild.Build(cfg, rand.New(rand.NewSource(1)))
	if err != nil {
		panic(err)
	}
	return topo
}

func TestWritePeerFilesRendersGenesisWithNoneParent(t *testing.T) {
	cfg := params.Default()
	cfg.N = 2
	cfg.Ttx, cfg.I, cfg.MaxTime = 5, 10, 1000

	topo := twoPeerTopology(cfg)
	reg := metrics.NewRegistry()
	rng := rand.New(rand.NewSource(2))
	p0 := peer.New(topo.Peers[0], cfg, topo, reg, rng)

	dir := t.TempDir()
	require.NoError(t, WritePeerFiles(dir, map[common.PeerID]*peer.Peer{0: p0}))

	data, err := os.ReadFile(filepath.Join(dir, "peer_0.txt"))
	require.NoError(t, err)
	assert.Equal(t, "GENESIS|None|0\n", string(data))
}

func TestWritePeerFilesIncludesMinedBlocks(t *testing.T) {
	cfg := params.Default()
	cfg.N = 2
	cfg.Ttx, cfg.I, cfg.MaxTime = 5, 10, 1000
	cfg.BlockReward = 50

	topo := twoPeerTopology(cfg)
	reg := metrics.NewRegistry()
	rng := rand.New(rand.NewSource(2))
	p0 := peer.New(topo.Peers[0], cfg, topo, reg, rng)
	q := eventqueue.New()

	coinbase := chain.NewCoinbase(0, cfg.BlockReward)
	block := chain.NewBlock(common.GenesisID, 0, coinbase, nil)
	require.NoError(t, p0.ReceiveBlock(block, 5.0, q, 1))

	dir := t.TempDir()
	require.NoError(t, WritePeerFiles(dir, map[common.PeerID]*peer.Peer{0: p0}))

	data, err := os.ReadFile(filepath.Join(dir, "peer_0.txt"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], string(block.ID)+"|")
}

func TestSummaryComputesRetentionRatio(t *testing.T) {
	cfg := params.Default()
	cfg.N = 2
	cfg.Ttx, cfg.I, cfg.MaxTime = 5, 10, 1000
	cfg.BlockReward = 50

	topo := twoPeerTopology(cfg)
	reg := metrics.NewRegistry()
	rng := rand.New(rand.NewSource(2))
	p0 := peer.New(topo.Peers[0], cfg, topo, reg, rng)
	q := eventqueue.New()

	p0.ScheduleMining(0, q)
	ev, _ := q.Pop()
	payload := ev.Payload.(peer.MineCompletePayload)
	require.NoError(t, p0.MineComplete(ev.When, q, payload))

	rows := Summary(map[common.PeerID]*peer.Peer{0: p0})
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].BlocksMined)
	assert.Equal(t, 1, rows[0].BlocksRetained)
	assert.Equal(t, 1.0, rows[0].Retention)

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, rows))
	assert.Contains(t, buf.String(), "peer-0")
}
