// Package report renders a completed run's per-peer block trees and a
// summary table to disk. It is the one package in this module that creates
// files (spec §6): the simulation core only ever mutates in-memory state
// reached through the eventqueue, the way the teacher keeps its
// core consensus packages free of direct filesystem access and leaves I/O
// to its cmd/ entrypoints.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/ground-x/powsim/common"
	"github.com/ground-x/powsim/log"
	"github.com/ground-x/powsim/peer"
)

var logger = log.NewModuleLogger(log.Report)

// WritePeerFiles writes one peer_<id>.txt per peer into dir, one line per
// known block: "<block_id>|<parent_id>|<arrival_time>", GENESIS's parent
// rendered as the literal string "None" (spec §6).
func WritePeerFiles(dir string, peers map[common.PeerID]*peer.Peer) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for id, p := range peers {
		path := filepath.Join(dir, fmt.Sprintf("peer_%d.txt", id))
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		err = writePeerFile(f, p)
		closeErr := f.Close()
		if err != nil {
			return err
		}
		if closeErr != nil {
			return closeErr
		}
		logger.Debug("wrote peer report", "peer", id, "path", path)
	}
	return nil
}

func writePeerFile(w io.Writer, p *peer.Peer) error {
	tree := p.BlockTreeSnapshot()

	ids := make([]common.BlockID, 0, len(tree))
	for id := range tree {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ni, nj := tree[ids[i]], tree[ids[j]]
		if ni.ArrivalTime != nj.ArrivalTime {
			return ni.ArrivalTime < nj.ArrivalTime
		}
		return ids[i] < ids[j]
	})

	for _, id := range ids {
		node := tree[id]
		parent := string(node.ParentID)
		if parent == "" {
			parent = "None"
		}
		if _, err := fmt.Fprintf(w, "%s|%s|%g\n", id, parent, node.ArrivalTime); err != nil {
			return err
		}
	}
	return nil
}

// Row is one peer's line in the summary table.
type Row struct {
	ID             common.PeerID
	HashingPower   float64
	IsLowCPU       bool
	IsSlow         bool
	BlocksMined    int64
	BlocksRetained int
	Retention      float64
}

// Summary builds one Row per peer, counting how many of the blocks a peer
// mined survive on its own current longest chain.
func Summary(peers map[common.PeerID]*peer.Peer) []Row {
	rows := make([]Row, 0, len(peers))
	for id, p := range peers {
		tree := p.BlockTreeSnapshot()
		retained := 0
		for cur := p.LongestChainTip(); ; {
			node, ok := tree[cur]
			if !ok {
				break
			}
			if node.Block.Miner == id {
				retained++
			}
			if node.ParentID == "" {
				break
			}
			cur = node.ParentID
		}

		var retention float64
		if p.BlocksMined() > 0 {
			retention = float64(retained) / float64(p.BlocksMined())
		}

		rows = append(rows, Row{
			ID:             id,
			HashingPower:   p.HashingPower,
			IsLowCPU:       p.IsLowCPU,
			IsSlow:         p.IsSlow,
			BlocksMined:    p.BlocksMined(),
			BlocksRetained: retained,
			Retention:      retention,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows
}

// WriteSummary renders rows as a fixed-width table, the way the teacher's
// cmd/ tools format operator-facing tabular output.
func WriteSummary(w io.Writer, rows []Row) error {
	_, err := fmt.Fprintf(w, "%-8s %-10s %-6s %-6s %-12s %-12s %-10s\n",
		"peer", "hashpower", "lowcpu", "slow", "mined", "retained", "retention")
	if err != nil {
		return err
	}
	for _, r := range rows {
		_, err := fmt.Fprintf(w, "%-8s %-10.6f %-6t %-6t %-12d %-12d %-10.4f\n",
			r.ID, r.HashingPower, r.IsLowCPU, r.IsSlow, r.BlocksMined, r.BlocksRetained, r.Retention)
		if err != nil {
			return err
		}
	}
	return nil
}
