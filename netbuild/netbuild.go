// Package netbuild constructs the random connected peer-to-peer graph and
// the per-peer hashing-power assignment a simulation run starts from (spec
// §4.2). It is the only place a simulation run can fail fast: a topology
// that cannot be made connected after GraphBuildRetries attempts is a
// simerr.ConfigurationError (spec §7), generalizing the teacher's pattern
// of validating a static, file-described peer list at startup in
// LarryRuane-minesim's main() (duplicate names, bad hashrates, unknown
// peers all fail fast there too, just via os.Exit instead of a typed
// error).
package netbuild

import (
	"math/rand"

	"github.com/ground-x/powsim/common"
	"github.com/ground-x/powsim/log"
	"github.com/ground-x/powsim/params"
	"github.com/ground-x/powsim/simerr"
)

var logger = log.NewModuleLogger(log.NetBuild)

// Link describes one direction-agnostic edge's bandwidth and propagation
// delay (spec §4.2 step 4). Both ends of an edge see the same Link.
type Link struct {
	BandwidthMbps float64
	PropDelayMs   float64
}

// PeerSpec is a peer's static, pre-simulation attributes: its speed/CPU
// class, hashing-power share, and neighbor set.
type PeerSpec struct {
	ID            common.PeerID
	IsSlow        bool
	IsLowCPU      bool
	HashingPower  float64
	Neighbors     []common.PeerID
}

// Topology is the full output of Build: every peer's spec plus the
// bandwidth/delay of every edge between them, keyed by the unordered pair.
type Topology struct {
	Peers []PeerSpec
	Links map[edgeKey]Link
}

type edgeKey struct {
	A, B common.PeerID
}

func makeEdgeKey(a, b common.PeerID) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{A: a, B: b}
}

// Link looks up the bandwidth/delay between two neighboring peers.
func (t *Topology) Link(a, b common.PeerID) (Link, bool) {
	l, ok := t.Links[makeEdgeKey(a, b)]
	return l, ok
}

// Build runs the four-step procedure of spec §4.2: label slow/low-CPU
// peers, derive hashing power, grow a random degree-[min,max] graph and
// retry until it's connected, then assign per-edge bandwidth/delay.
func Build(cfg params.SimConfig, r *rand.Rand) (*Topology, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	peers := labelPeers(cfg, r)
	assignHashingPower(peers)

	var adjacency [][]common.PeerID
	ok := false
	for attempt := 0; attempt < cfg.GraphBuildRetries; attempt++ {
		adjacency = growRandomGraph(cfg, r)
		if isConnected(adjacency) {
			ok = true
			break
		}
	}
	if !ok {
		return nil, simerr.NewConfigurationError("could not build a connected graph after graph_build_retries attempts")
	}

	for i := range peers {
		peers[i].Neighbors = adjacency[i]
	}

	links := make(map[edgeKey]Link)
	for i, neighbors := range adjacency {
		for _, j := range neighbors {
			key := makeEdgeKey(common.PeerID(i), j)
			if _, seen := links[key]; seen {
				continue
			}
			links[key] = assignLink(cfg, peers[i], peers[j], r)
		}
	}

	logger.Info("built network", "n", cfg.N, "edges", len(links))
	return &Topology{Peers: peers, Links: links}, nil
}

// labelPeers implements step 1: independently sample floor(N*z0/100) slow
// peers and floor(N*z1/100) low-CPU peers.
func labelPeers(cfg params.SimConfig, r *rand.Rand) []PeerSpec {
	peers := make([]PeerSpec, cfg.N)
	for i := range peers {
		peers[i].ID = common.PeerID(i)
	}

	nSlow := int(float64(cfg.N) * cfg.Z0 / 100)
	nLowCPU := int(float64(cfg.N) * cfg.Z1 / 100)

	for _, idx := range r.Perm(cfg.N)[:nSlow] {
		peers[idx].IsSlow = true
	}
	for _, idx := range r.Perm(cfg.N)[:nLowCPU] {
		peers[idx].IsLowCPU = true
	}
	return peers
}

// assignHashingPower implements step 2: h_low = 1/(L + 10H), high-CPU peers
// get 10*h_low.
func assignHashingPower(peers []PeerSpec) {
	var lowCount, highCount int
	for _, p := range peers {
		if p.IsLowCPU {
			lowCount++
		} else {
			highCount++
		}
	}
	hLow := 1.0 / (float64(lowCount) + 10*float64(highCount))
	for i := range peers {
		if peers[i].IsLowCPU {
			peers[i].HashingPower = hLow
		} else {
			peers[i].HashingPower = 10 * hLow
		}
	}
}

// growRandomGraph implements step 3: each peer picks a target degree
// uniformly from [MinDegree,MaxDegree] and fills it with random eligible
// peers (not itself, not already a neighbor, own degree < MaxDegree).
func growRandomGraph(cfg params.SimConfig, r *rand.Rand) [][]common.PeerID {
	n := cfg.N
	adjacency := make([][]common.PeerID, n)
	neighborSet := make([]map[common.PeerID]bool, n)
	for i := range neighborSet {
		neighborSet[i] = make(map[common.PeerID]bool)
	}

	targetDegree := make([]int, n)
	for i := range targetDegree {
		targetDegree[i] = cfg.MinDegree + r.Intn(cfg.MaxDegree-cfg.MinDegree+1)
	}

	for i := 0; i < n; i++ {
		for len(adjacency[i]) < targetDegree[i] {
			candidates := make([]int, 0, n)
			for j := 0; j < n; j++ {
				if j == i || neighborSet[i][common.PeerID(j)] || len(adjacency[j]) >= cfg.MaxDegree {
					continue
				}
				candidates = append(candidates, j)
			}
			if len(candidates) == 0 {
				break
			}
			j := candidates[r.Intn(len(candidates))]
			adjacency[i] = append(adjacency[i], common.PeerID(j))
			adjacency[j] = append(adjacency[j], common.PeerID(i))
			neighborSet[i][common.PeerID(j)] = true
			neighborSet[j][common.PeerID(i)] = true
		}
	}
	return adjacency
}

// isConnected runs a BFS from peer 0 and checks every peer was reached.
func isConnected(adjacency [][]common.PeerID) bool {
	n := len(adjacency)
	if n == 0 {
		return true
	}
	visited := make([]bool, n)
	queue := []common.PeerID{0}
	visited[0] = true
	count := 1
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, nb := range adjacency[cur] {
			if !visited[nb] {
				visited[nb] = true
				count++
				queue = append(queue, nb)
			}
		}
	}
	return count == n
}

// assignLink implements step 4: 100Mbps if both endpoints are fast, else
// 5Mbps; propagation delay uniform in [MinPropDelayMs,MaxPropDelayMs].
func assignLink(cfg params.SimConfig, a, b PeerSpec, r *rand.Rand) Link {
	bandwidth := cfg.SlowBandwidthMbps
	if !a.IsSlow && !b.IsSlow {
		bandwidth = cfg.FastBandwidthMbps
	}
	delay := cfg.MinPropDelayMs + r.Float64()*(cfg.MaxPropDelayMs-cfg.MinPropDelayMs)
	return Link{BandwidthMbps: bandwidth, PropDelayMs: delay}
}
