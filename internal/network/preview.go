package network

import (
	"math/rand/v2"
	"sort"
	"strconv"
)

// Rendering defaults for preview payloads, matching what the frontend graph
// widget expects.
const (
	previewColor     = "#97c2fc"
	previewNodeSize  = 10.0
	previewEdgeWidth = 1.0
)

// previewStream is the PCG stream selector for preview sampling.
const previewStream = 500

// PreviewNode is one rendered node of a sampled topology.
type PreviewNode struct {
	ID    int     `json:"id"`
	Label string  `json:"label"`
	Color string  `json:"color"`
	Size  float64 `json:"size"`
}

// PreviewEdge is one rendered edge; both endpoints are in the sampled node set.
type PreviewEdge struct {
	From  int     `json:"from"`
	To    int     `json:"to"`
	Width float64 `json:"width"`
}

// Preview is a renderable sample of a topology.
type Preview struct {
	Nodes []PreviewNode `json:"nodes"`
	Edges []PreviewEdge `json:"edges"`
}

// Preview samples the topology down to at most maxNodes nodes,
// deterministically from the seed, and keeps only edges whose endpoints both
// survive. Graphs at or under the cap are returned whole. No I/O happens
// here; serving the result is the API layer's concern.
func (t *Topology) Preview(maxNodes int, seed uint64) Preview {
	n := t.NumNodes()

	var ids []int
	if n <= maxNodes {
		ids = make([]int, n)
		for i := range ids {
			ids[i] = i
		}
	} else {
		rng := rand.New(rand.NewPCG(seed, previewStream))
		ids = rng.Perm(n)[:maxNodes]
		sort.Ints(ids)
	}

	keep := make(map[int]bool, len(ids))
	for _, id := range ids {
		keep[id] = true
	}

	nodes := make([]PreviewNode, 0, len(ids))
	for _, id := range ids {
		nodes = append(nodes, PreviewNode{
			ID:    id,
			Label: strconv.Itoa(id),
			Color: previewColor,
			Size:  previewNodeSize,
		})
	}

	var edges []PreviewEdge
	for _, u := range ids {
		for _, v := range t.Neighbors(u) {
			if v > u && keep[v] {
				edges = append(edges, PreviewEdge{From: u, To: v, Width: previewEdgeWidth})
			}
		}
	}

	return Preview{Nodes: nodes, Edges: edges}
}
