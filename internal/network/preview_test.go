package network

import (
	"reflect"
	"testing"

	"github.com/talgya/funnelsim/internal/scenario"
)

func TestPreviewCapsNodes(t *testing.T) {
	topo, err := Generate(scenario.NetworkConfig{Kind: scenario.NetworkSmallWorld, N: 10000, K: 6, Beta: 0.1}, 42)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	p := topo.Preview(50, 42)
	if len(p.Nodes) != 50 {
		t.Errorf("sampled nodes = %d, want exactly 50", len(p.Nodes))
	}

	keep := make(map[int]bool, len(p.Nodes))
	for _, n := range p.Nodes {
		keep[n.ID] = true
	}
	for _, e := range p.Edges {
		if !keep[e.From] || !keep[e.To] {
			t.Fatalf("edge %d-%d has an endpoint outside the sampled node set", e.From, e.To)
		}
	}
}

func TestPreviewSmallGraphComplete(t *testing.T) {
	topo, err := Generate(scenario.NetworkConfig{Kind: scenario.NetworkSmallWorld, N: 200, K: 6, Beta: 0.1}, 7)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	p := topo.Preview(500, 42)
	if len(p.Nodes) != 200 {
		t.Errorf("under the cap the whole graph is returned, got %d nodes", len(p.Nodes))
	}
	if len(p.Edges) != topo.NumEdges() {
		t.Errorf("edges = %d, want all %d", len(p.Edges), topo.NumEdges())
	}
	if p.Nodes[0].Color != previewColor || p.Nodes[0].Size != previewNodeSize {
		t.Errorf("node rendering defaults missing: %+v", p.Nodes[0])
	}
}

func TestPreviewDeterministic(t *testing.T) {
	topo, err := Generate(scenario.NetworkConfig{Kind: scenario.NetworkScaleFree, N: 2000, K: 6}, 13)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	a := topo.Preview(100, 42)
	b := topo.Preview(100, 42)
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed must produce the same preview sample")
	}
}

func TestMetricsRingLattice(t *testing.T) {
	// Ring lattice n=10, k=4: every closed-form value is known.
	topo, err := Generate(scenario.NetworkConfig{Kind: scenario.NetworkSmallWorld, N: 10, K: 4, Beta: 0}, 1)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	m := topo.Metrics()
	if m.Nodes != 10 || m.Edges != 20 {
		t.Errorf("nodes/edges = %d/%d, want 10/20", m.Nodes, m.Edges)
	}
	if m.AvgDegree != 4 {
		t.Errorf("avg degree = %g, want 4", m.AvgDegree)
	}
	// C = 3(k-2)/(4(k-1)) for a ring lattice.
	if diff := m.Clustering - 0.5; diff > 1e-12 || diff < -1e-12 {
		t.Errorf("clustering = %g, want 0.5", m.Clustering)
	}
	if m.Diameter == nil || *m.Diameter != 3 {
		t.Errorf("diameter = %v, want 3", m.Diameter)
	}
	want := 15.0 / 9.0
	if m.AvgPathLen == nil || *m.AvgPathLen-want > 1e-12 || want-*m.AvgPathLen > 1e-12 {
		t.Errorf("avg path length = %v, want %g", m.AvgPathLen, want)
	}
}

func TestMetricsDisconnected(t *testing.T) {
	// G(n, p) with k=2 at n=200 leaves isolated nodes with near certainty.
	topo, err := Generate(scenario.NetworkConfig{Kind: scenario.NetworkRandom, N: 200, K: 2}, 4)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	m := topo.Metrics()
	if m.Diameter != nil || m.AvgPathLen != nil {
		t.Errorf("disconnected graph must omit path metrics, got diameter=%v avg=%v", m.Diameter, m.AvgPathLen)
	}
}
