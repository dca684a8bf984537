// Package network builds the social graph agents live on. Three generators
// (random, small world, scale free) produce an immutable Topology from a
// seed; the same inputs always yield the same edge set.
package network

import (
	"sort"
)

// Topology is an undirected graph over nodes 0..n-1. It is immutable once
// built and safe for concurrent readers. Adjacency lists are sorted
// ascending, so neighbor iteration order is part of the reproducibility
// contract.
type Topology struct {
	adj   [][]int
	edges int
}

// NumNodes returns the node count.
func (t *Topology) NumNodes() int { return len(t.adj) }

// NumEdges returns the undirected edge count.
func (t *Topology) NumEdges() int { return t.edges }

// Degree returns the number of neighbors of node u.
func (t *Topology) Degree(u int) int { return len(t.adj[u]) }

// Neighbors returns u's neighbors in ascending order. The returned slice is
// shared with the topology and must not be modified.
func (t *Topology) Neighbors(u int) []int { return t.adj[u] }

// HasEdge reports whether the undirected edge (u, v) exists.
func (t *Topology) HasEdge(u, v int) bool {
	n := t.adj[u]
	i := sort.SearchInts(n, v)
	return i < len(n) && n[i] == v
}

// Edges returns every edge exactly once as (u, v) with u < v, ordered by u
// then v. Mostly useful for tests and export.
func (t *Topology) Edges() [][2]int {
	out := make([][2]int, 0, t.edges)
	for u, neigh := range t.adj {
		for _, v := range neigh {
			if v > u {
				out = append(out, [2]int{u, v})
			}
		}
	}
	return out
}

// builder accumulates edges during generation. The edge set lives in a map
// keyed by packed (min, max) pairs; adjacency slices are produced and sorted
// once at finalize, so map iteration order never leaks into the result.
type builder struct {
	n   int
	set map[uint64]struct{}
	deg []int
}

func newBuilder(n int) *builder {
	return &builder{
		n:   n,
		set: make(map[uint64]struct{}, n*3),
		deg: make([]int, n),
	}
}

func edgeKey(u, v int) uint64 {
	if u > v {
		u, v = v, u
	}
	return uint64(u)<<32 | uint64(v)
}

// add inserts the undirected edge (u, v). Self loops and duplicates are
// ignored; the return value reports whether the edge was new.
func (b *builder) add(u, v int) bool {
	if u == v {
		return false
	}
	k := edgeKey(u, v)
	if _, ok := b.set[k]; ok {
		return false
	}
	b.set[k] = struct{}{}
	b.deg[u]++
	b.deg[v]++
	return true
}

func (b *builder) remove(u, v int) {
	k := edgeKey(u, v)
	if _, ok := b.set[k]; !ok {
		return
	}
	delete(b.set, k)
	b.deg[u]--
	b.deg[v]--
}

func (b *builder) has(u, v int) bool {
	_, ok := b.set[edgeKey(u, v)]
	return ok
}

func (b *builder) degree(u int) int { return b.deg[u] }

func (b *builder) finalize() *Topology {
	adj := make([][]int, b.n)
	for u, d := range b.deg {
		adj[u] = make([]int, 0, d)
	}
	for k := range b.set {
		u := int(k >> 32)
		v := int(k & 0xffffffff)
		adj[u] = append(adj[u], v)
		adj[v] = append(adj[v], u)
	}
	for _, neigh := range adj {
		sort.Ints(neigh)
	}
	return &Topology{adj: adj, edges: len(b.set)}
}
