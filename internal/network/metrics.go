package network

// Metrics summarizes a topology for preview responses. Diameter and average
// path length are omitted for disconnected graphs, mirroring how they are
// undefined there.
type Metrics struct {
	Nodes      int      `json:"nodes"`
	Edges      int      `json:"edges"`
	AvgDegree  float64  `json:"avg_degree"`
	Clustering float64  `json:"clustering"`
	Diameter   *int     `json:"diameter,omitempty"`
	AvgPathLen *float64 `json:"avg_path_length,omitempty"`
}

// Metrics computes summary statistics over the whole graph. The path metrics
// run a BFS per node, so this is meant for preview-sized topologies, not the
// full simulation graph.
func (t *Topology) Metrics() Metrics {
	n := t.NumNodes()
	m := Metrics{
		Nodes:      n,
		Edges:      t.NumEdges(),
		Clustering: t.avgClustering(),
	}
	if n > 0 {
		m.AvgDegree = 2 * float64(t.NumEdges()) / float64(n)
	}

	diameter, avgPath, connected := t.pathStats()
	if connected {
		m.Diameter = &diameter
		m.AvgPathLen = &avgPath
	}
	return m
}

// avgClustering returns the mean local clustering coefficient. Nodes with
// fewer than two neighbors contribute zero.
func (t *Topology) avgClustering() float64 {
	n := t.NumNodes()
	if n == 0 {
		return 0
	}

	total := 0.0
	for u := 0; u < n; u++ {
		neigh := t.Neighbors(u)
		d := len(neigh)
		if d < 2 {
			continue
		}
		links := 0
		for i := 0; i < d; i++ {
			for j := i + 1; j < d; j++ {
				if t.HasEdge(neigh[i], neigh[j]) {
					links++
				}
			}
		}
		total += 2 * float64(links) / float64(d*(d-1))
	}
	return total / float64(n)
}

// pathStats runs a BFS from every node and returns the diameter and average
// shortest path length. connected is false if any pair is unreachable, in
// which case both metrics are meaningless.
func (t *Topology) pathStats() (diameter int, avgPath float64, connected bool) {
	n := t.NumNodes()
	if n < 2 {
		return 0, 0, n == 1
	}

	dist := make([]int, n)
	queue := make([]int, 0, n)
	var totalDist uint64

	for src := 0; src < n; src++ {
		for i := range dist {
			dist[i] = -1
		}
		dist[src] = 0
		queue = append(queue[:0], src)
		visited := 1

		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			for _, v := range t.Neighbors(u) {
				if dist[v] >= 0 {
					continue
				}
				dist[v] = dist[u] + 1
				if dist[v] > diameter {
					diameter = dist[v]
				}
				totalDist += uint64(dist[v])
				visited++
				queue = append(queue, v)
			}
		}

		if visited < n {
			return 0, 0, false
		}
	}

	avgPath = float64(totalDist) / float64(n*(n-1))
	return diameter, avgPath, true
}
