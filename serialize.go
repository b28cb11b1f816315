package vantage

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"io"
	"math"
)

// Binary serialization (C7): length-prefixed, little-endian, versioned.
// Layout follows spec.md §4.7 conceptually — magic, version, kind, metric,
// element type, dimension, point count, point storage, a tree body, and a
// trailing CRC32 over everything before it. The node arena (spec.md §9's
// design note) is serialized directly in arena-index order rather than by
// a recursive pre-order walk: children are recorded as absolute arena
// handles, which round-trips identically and is a direct dump of the
// in-memory representation, matching spec.md §4.7's framing of TREE_BODY
// as "kind-specific" rather than prescribing an exact node visitation
// order.
var magicBytes = [4]byte{'V', 'A', 'N', 'T'}

const serializationVersion uint32 = 1

const (
	kindVPT uint8 = 1
	kindBKT uint8 = 2
)

const (
	elemFloat32 uint8 = 0
	elemByte    uint8 = 1
)

func writeHeader(buf *bytes.Buffer, kind uint8, metric Metric, elem uint8, dim int, n int) {
	buf.Write(magicBytes[:])
	binary.Write(buf, binary.LittleEndian, serializationVersion)
	buf.WriteByte(kind)
	buf.WriteByte(byte(metric))
	buf.WriteByte(elem)
	binary.Write(buf, binary.LittleEndian, uint32(dim))
	binary.Write(buf, binary.LittleEndian, uint64(n))
}

type header struct {
	kind   uint8
	metric Metric
	elem   uint8
	dim    int
	n      int
}

func readHeader(r *bytes.Reader) (header, error) {
	var h header
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return h, ErrCorruptInput
	}
	if magic != magicBytes {
		return h, ErrCorruptInput
	}
	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return h, ErrCorruptInput
	}
	if version != serializationVersion {
		return h, ErrCorruptInput
	}
	kind, err := r.ReadByte()
	if err != nil {
		return h, ErrCorruptInput
	}
	metricByte, err := r.ReadByte()
	if err != nil {
		return h, ErrCorruptInput
	}
	elem, err := r.ReadByte()
	if err != nil {
		return h, ErrCorruptInput
	}
	var dim32 uint32
	if err := binary.Read(r, binary.LittleEndian, &dim32); err != nil {
		return h, ErrCorruptInput
	}
	var n64 uint64
	if err := binary.Read(r, binary.LittleEndian, &n64); err != nil {
		return h, ErrCorruptInput
	}
	h.kind = kind
	h.metric = Metric(metricByte)
	h.elem = elem
	h.dim = int(dim32)
	h.n = int(n64)
	return h, nil
}

func appendChecksummed(buf *bytes.Buffer) []byte {
	sum := crc32.ChecksumIEEE(buf.Bytes())
	var tail [4]byte
	binary.LittleEndian.PutUint32(tail[:], sum)
	buf.Write(tail[:])
	return buf.Bytes()
}

func verifyChecksum(data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, ErrCorruptInput
	}
	body, tail := data[:len(data)-4], data[len(data)-4:]
	want := binary.LittleEndian.Uint32(tail)
	got := crc32.ChecksumIEEE(body)
	if want != got {
		return nil, ErrCorruptInput
	}
	return body, nil
}

// marshalVPT serializes a built VPT tree and its point storage.
func marshalVPT(t *vptTree) ([]byte, error) {
	var buf bytes.Buffer
	elem := elemFloat32
	n := len(t.floatPoints)
	if t.metric == MetricHamming {
		elem = elemByte
		n = len(t.bytePoints)
	}
	writeHeader(&buf, kindVPT, t.metric, elem, t.dim, n)

	if t.metric == MetricHamming {
		for _, p := range t.bytePoints {
			buf.Write(p)
		}
	} else {
		for _, p := range t.floatPoints {
			for _, v := range p {
				binary.Write(&buf, binary.LittleEndian, math.Float32bits(v))
			}
		}
	}

	binary.Write(&buf, binary.LittleEndian, uint32(t.leafSize))
	if t.root == noChild {
		buf.WriteByte(0)
	} else {
		buf.WriteByte(1)
		binary.Write(&buf, binary.LittleEndian, t.root)
	}
	binary.Write(&buf, binary.LittleEndian, uint32(len(t.nodes)))
	for _, node := range t.nodes {
		if node.isLeaf {
			buf.WriteByte(0)
			binary.Write(&buf, binary.LittleEndian, uint32(len(node.leafIDs)))
			for _, id := range node.leafIDs {
				binary.Write(&buf, binary.LittleEndian, id)
			}
			continue
		}
		buf.WriteByte(1)
		binary.Write(&buf, binary.LittleEndian, node.pivotID)
		binary.Write(&buf, binary.LittleEndian, math.Float64bits(node.mu))
		binary.Write(&buf, binary.LittleEndian, node.left)
		binary.Write(&buf, binary.LittleEndian, node.right)
		for _, v := range node.boundsLeft {
			binary.Write(&buf, binary.LittleEndian, math.Float64bits(v))
		}
		for _, v := range node.boundsRight {
			binary.Write(&buf, binary.LittleEndian, math.Float64bits(v))
		}
	}
	return appendChecksummed(&buf), nil
}

// unmarshalVPT parses bytes produced by marshalVPT into a fresh tree.
func unmarshalVPT(data []byte) (*vptTree, error) {
	body, err := verifyChecksum(data)
	if err != nil {
		return nil, err
	}
	r := bytes.NewReader(body)
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	if h.kind != kindVPT {
		return nil, ErrCorruptInput
	}
	t := newVPTTree(h.metric, h.dim, 1)

	if h.elem == elemByte {
		pts := make([][]byte, h.n)
		for i := range pts {
			buf := make([]byte, h.dim)
			if _, err := io.ReadFull(r, buf); err != nil {
				return nil, ErrCorruptInput
			}
			pts[i] = buf
		}
		t.bytePoints = pts
	} else {
		pts := make([][]float32, h.n)
		for i := range pts {
			row := make([]float32, h.dim)
			for d := 0; d < h.dim; d++ {
				var bits uint32
				if err := binary.Read(r, binary.LittleEndian, &bits); err != nil {
					return nil, ErrCorruptInput
				}
				row[d] = math.Float32frombits(bits)
			}
			pts[i] = row
		}
		t.floatPoints = pts
	}

	var leafSize uint32
	if err := binary.Read(r, binary.LittleEndian, &leafSize); err != nil {
		return nil, ErrCorruptInput
	}
	t.leafSize = int(leafSize)

	rootPresent, err := r.ReadByte()
	if err != nil {
		return nil, ErrCorruptInput
	}
	t.root = noChild
	if rootPresent == 1 {
		if err := binary.Read(r, binary.LittleEndian, &t.root); err != nil {
			return nil, ErrCorruptInput
		}
	}

	var nodeCount uint32
	if err := binary.Read(r, binary.LittleEndian, &nodeCount); err != nil {
		return nil, ErrCorruptInput
	}
	t.nodes = make([]vptNode, nodeCount)
	for i := range t.nodes {
		tag, err := r.ReadByte()
		if err != nil {
			return nil, ErrCorruptInput
		}
		if tag == 0 {
			var count uint32
			if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
				return nil, ErrCorruptInput
			}
			ids := make([]int64, count)
			for j := range ids {
				if err := binary.Read(r, binary.LittleEndian, &ids[j]); err != nil {
					return nil, ErrCorruptInput
				}
			}
			t.nodes[i] = vptNode{isLeaf: true, leafIDs: ids, left: noChild, right: noChild}
			continue
		}
		var node vptNode
		if err := binary.Read(r, binary.LittleEndian, &node.pivotID); err != nil {
			return nil, ErrCorruptInput
		}
		var muBits uint64
		if err := binary.Read(r, binary.LittleEndian, &muBits); err != nil {
			return nil, ErrCorruptInput
		}
		node.mu = math.Float64frombits(muBits)
		if err := binary.Read(r, binary.LittleEndian, &node.left); err != nil {
			return nil, ErrCorruptInput
		}
		if err := binary.Read(r, binary.LittleEndian, &node.right); err != nil {
			return nil, ErrCorruptInput
		}
		for k := range node.boundsLeft {
			var b uint64
			if err := binary.Read(r, binary.LittleEndian, &b); err != nil {
				return nil, ErrCorruptInput
			}
			node.boundsLeft[k] = math.Float64frombits(b)
		}
		for k := range node.boundsRight {
			var b uint64
			if err := binary.Read(r, binary.LittleEndian, &b); err != nil {
				return nil, ErrCorruptInput
			}
			node.boundsRight[k] = math.Float64frombits(b)
		}
		t.nodes[i] = node
	}
	if r.Len() != 0 {
		return nil, ErrCorruptInput
	}
	return t, nil
}

// marshalBKT serializes a built BKT tree.
func marshalBKT(t *bktTree) ([]byte, error) {
	var buf bytes.Buffer
	writeHeader(&buf, kindBKT, MetricHamming, elemByte, t.width, len(t.nodes))

	for _, node := range t.nodes {
		buf.Write(node.value)
	}

	if t.root == noChild {
		buf.WriteByte(0)
	} else {
		buf.WriteByte(1)
		binary.Write(&buf, binary.LittleEndian, t.root)
	}
	binary.Write(&buf, binary.LittleEndian, uint32(len(t.nodes)))
	for _, node := range t.nodes {
		binary.Write(&buf, binary.LittleEndian, node.id)
		binary.Write(&buf, binary.LittleEndian, uint32(len(node.dup)))
		for _, id := range node.dup {
			binary.Write(&buf, binary.LittleEndian, id)
		}
		binary.Write(&buf, binary.LittleEndian, uint32(len(node.children)))
		labels := make([]uint32, 0, len(node.children))
		for label := range node.children {
			labels = append(labels, label)
		}
		SortByKey(labels, func(x uint32) uint32 { return x })
		for _, label := range labels {
			binary.Write(&buf, binary.LittleEndian, label)
			binary.Write(&buf, binary.LittleEndian, node.children[label])
		}
	}
	return appendChecksummed(&buf), nil
}

// unmarshalBKT parses bytes produced by marshalBKT into a fresh tree.
func unmarshalBKT(data []byte) (*bktTree, error) {
	body, err := verifyChecksum(data)
	if err != nil {
		return nil, err
	}
	r := bytes.NewReader(body)
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	if h.kind != kindBKT {
		return nil, ErrCorruptInput
	}
	t := newBKTTree(h.dim)

	values := make([][]byte, h.n)
	for i := range values {
		buf := make([]byte, h.dim)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, ErrCorruptInput
		}
		values[i] = buf
	}

	rootPresent, err := r.ReadByte()
	if err != nil {
		return nil, ErrCorruptInput
	}
	t.root = noChild
	if rootPresent == 1 {
		if err := binary.Read(r, binary.LittleEndian, &t.root); err != nil {
			return nil, ErrCorruptInput
		}
	}

	var nodeCount uint32
	if err := binary.Read(r, binary.LittleEndian, &nodeCount); err != nil {
		return nil, ErrCorruptInput
	}
	t.nodes = make([]bktNode, nodeCount)
	for i := range t.nodes {
		var id int64
		if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
			return nil, ErrCorruptInput
		}
		var dupCount uint32
		if err := binary.Read(r, binary.LittleEndian, &dupCount); err != nil {
			return nil, ErrCorruptInput
		}
		dup := make([]int64, dupCount)
		for j := range dup {
			if err := binary.Read(r, binary.LittleEndian, &dup[j]); err != nil {
				return nil, ErrCorruptInput
			}
		}
		var childCount uint32
		if err := binary.Read(r, binary.LittleEndian, &childCount); err != nil {
			return nil, ErrCorruptInput
		}
		children := make(map[uint32]int32, childCount)
		for j := uint32(0); j < childCount; j++ {
			var label uint32
			var child int32
			if err := binary.Read(r, binary.LittleEndian, &label); err != nil {
				return nil, ErrCorruptInput
			}
			if err := binary.Read(r, binary.LittleEndian, &child); err != nil {
				return nil, ErrCorruptInput
			}
			children[label] = child
		}
		var value []byte
		if int(h.n) > i {
			value = values[i]
		}
		t.nodes[i] = bktNode{value: value, id: id, dup: dup, children: children}
	}
	if r.Len() != 0 {
		return nil, ErrCorruptInput
	}
	return t, nil
}
