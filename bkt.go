package vantage

// bktNode is an arena-stored Burkhard-Keller Tree node: a stored byte
// vector, the id of the first point that introduced it, a bag of ids for
// any exact duplicates of that vector (spec.md §3/§9: duplicates never
// become new nodes, since an edge label of 0 would make find_threshold
// loop), and a map from edge label (Hamming distance to this node's value)
// to child handle.
type bktNode struct {
	value    []byte
	id       int64
	dup      []int64
	children map[uint32]int32
}

// bktTree is the built BKT index body: point storage lives inline in the
// node arena (unlike the VPT, a BKT node IS a point), since every stored
// value is unique and the tree structure already deduplicates.
type bktTree struct {
	width   int
	hamming func(a, b []byte) uint32

	nodes []bktNode
	root  int32
}

func newBKTTree(width int) *bktTree {
	t := &bktTree{width: width, root: noChild}
	t.hamming = hammingKernel(width)
	return t
}

// build constructs the tree from points in input order: the first row
// becomes the root, and every subsequent row is inserted by walking from
// the root and descending on the edge labeled by its Hamming distance to
// the current node, attaching a new node when no such edge exists, and
// folding exact duplicates (distance 0) into the current node's bag
// instead of creating a zero-distance edge.
func (t *bktTree) build(points [][]byte) {
	if len(points) == 0 {
		t.root = noChild
		return
	}
	t.nodes = make([]bktNode, 0, len(points))
	t.root = t.newNode(points[0], 0)
	for i := 1; i < len(points); i++ {
		t.insert(points[i], int64(i))
	}
}

func (t *bktTree) newNode(v []byte, id int64) int32 {
	h := int32(len(t.nodes))
	t.nodes = append(t.nodes, bktNode{value: v, id: id, children: make(map[uint32]int32)})
	return h
}

func (t *bktTree) insert(v []byte, id int64) {
	cur := t.root
	for {
		n := &t.nodes[cur]
		d := t.hamming(n.value, v)
		if d == 0 {
			n.dup = append(n.dup, id)
			return
		}
		if child, ok := n.children[d]; ok {
			cur = child
			continue
		}
		h := t.newNode(v, id)
		t.nodes[cur].children[d] = h
		return
	}
}

func (t *bktTree) empty() bool { return t.root == noChild }

// size returns the number of unique stored points (duplicates excluded).
func (t *bktTree) size() int { return len(t.nodes) }

// values returns every distinct stored byte-vector; order matches arena
// insertion order, which is deterministic for a given build but otherwise
// unspecified per spec.md §4.6.
func (t *bktTree) values() [][]byte {
	out := make([][]byte, len(t.nodes))
	for i, n := range t.nodes {
		out[i] = n.value
	}
	return out
}

// findThreshold returns every stored point (including duplicates) within
// Hamming distance T of query, walking from the root and pruning a child
// edge labeled c whenever c falls outside [max(0, d-T), d+T], where d is
// the query's distance to the current node.
func (t *bktTree) findThreshold(query []byte, T int) ([]int64, []uint32, [][]byte) {
	if t.root == noChild {
		return nil, nil, nil
	}
	var ids []int64
	var dists []uint32
	var values [][]byte

	var walk func(node int32)
	walk = func(node int32) {
		n := &t.nodes[node]
		d := t.hamming(n.value, query)
		if int(d) <= T {
			ids = append(ids, n.id)
			dists = append(dists, d)
			values = append(values, n.value)
			for _, dupID := range n.dup {
				ids = append(ids, dupID)
				dists = append(dists, d)
				values = append(values, n.value)
			}
		}
		lo := int(d) - T
		if lo < 0 {
			lo = 0
		}
		hi := int(d) + T
		for label, child := range n.children {
			if int(label) >= lo && int(label) <= hi {
				walk(child)
			}
		}
	}
	walk(t.root)
	return ids, dists, values
}
