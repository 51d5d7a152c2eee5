// Package metrics exposes the counters and histograms this simulator's core
// records during a run. It wraps rcrowley/go-metrics the same way the
// teacher's work/worker.go does at package scope:
//
//	timeLimitReachedCounter = metrics.NewRegisteredCounter("miner/timelimitreached", nil)
//
// Here the registry is not a package-level global but owned per-simulation
// run, since a process may run many independent simulations (e.g. in tests)
// and the teacher's single global go-metrics.DefaultRegistry would leak
// counters across runs.
package metrics

import gometrics "github.com/rcrowley/go-metrics"

// Registry collects the counters and histograms produced by a single
// simulation run's peers.
type Registry struct {
	r gometrics.Registry

	BlocksMined  gometrics.Counter
	Orphans      gometrics.Counter
	Reorgs       gometrics.Counter
	ReorgDepth   gometrics.Histogram
	DroppedBlock gometrics.Counter
}

// NewRegistry creates a fresh, unregistered metrics registry for one
// simulation run, following the field names work/worker.go registers under
// the "miner/..." prefix, generalized to "peer/...".
func NewRegistry() *Registry {
	r := gometrics.NewRegistry()
	reg := &Registry{
		r:            r,
		BlocksMined:  gometrics.NewRegisteredCounter("peer/blocksmined", r),
		Orphans:      gometrics.NewRegisteredCounter("peer/orphans", r),
		Reorgs:       gometrics.NewRegisteredCounter("peer/reorgs", r),
		ReorgDepth:   gometrics.NewRegisteredHistogram("peer/reorgdepth", r, gometrics.NewUniformSample(1028)),
		DroppedBlock: gometrics.NewRegisteredCounter("peer/droppedblocks", r),
	}
	return reg
}

// Snapshot returns a point-in-time read of every metric, keyed by name.
func (reg *Registry) Snapshot() map[string]int64 {
	out := make(map[string]int64)
	reg.r.Each(func(name string, i interface{}) {
		switch m := i.(type) {
		case gometrics.Counter:
			out[name] = m.Count()
		case gometrics.Histogram:
			out[name] = m.Count()
		}
	})
	return out
}
