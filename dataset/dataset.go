// Package dataset provides a named, described container for point matrices
// used to build and benchmark vantage indexes, adapted from pyvptree's
// BenchmarkDataset (original_source/pyvptree/benchmark/dataset.py): a name,
// a free-text description and a lazily-unloadable data matrix. Unlike the
// Python original this package never fetches or generates data itself —
// callers supply an in-memory matrix and the package only handles metadata
// and on-disk persistence.
package dataset

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// meta is the YAML front matter persisted alongside a dataset's raw matrix:
// Name and Description mirror BenchmarkDataset's h5py attrs ("name",
// "description"); Dim and Kind describe the payload so Load can rebuild the
// matrix shape without re-deriving it from the row count.
type meta struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Dim         int    `yaml:"dim"`
	Rows        int    `yaml:"rows"`
	Kind        string `yaml:"kind"` // "float32" or "byte"
}

// Dataset is a named matrix of points, either float32 rows (for MetricL2,
// MetricL1 or MetricChebyshev) or fixed-width byte rows (for MetricHamming).
// Exactly one of Float32Rows or ByteRows is populated.
type Dataset struct {
	Name        string
	Description string

	Float32Rows [][]float32
	ByteRows    [][]byte
}

// Dim returns the row width, or 0 for an empty dataset.
func (d *Dataset) Dim() int {
	if len(d.Float32Rows) > 0 {
		return len(d.Float32Rows[0])
	}
	if len(d.ByteRows) > 0 {
		return len(d.ByteRows[0])
	}
	return 0
}

// Size returns the number of rows in the dataset.
func (d *Dataset) Size() int {
	if d.Float32Rows != nil {
		return len(d.Float32Rows)
	}
	return len(d.ByteRows)
}

// Save writes the dataset to path as a length-prefixed YAML metadata header
// followed by the raw little-endian payload, mirroring BenchmarkDataset.save's separation
// of small descriptive attributes from the bulk matrix.
func (d *Dataset) Save(path string) error {
	m := meta{Name: d.Name, Description: d.Description, Dim: d.Dim(), Rows: d.Size()}
	if d.Float32Rows != nil {
		m.Kind = "float32"
	} else {
		m.Kind = "byte"
	}
	head, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("dataset: marshal metadata: %w", err)
	}

	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint32(len(head)))
	buf.Write(head)

	if m.Kind == "float32" {
		for _, row := range d.Float32Rows {
			for _, v := range row {
				binary.Write(&buf, binary.LittleEndian, math.Float32bits(v))
			}
		}
	} else {
		for _, row := range d.ByteRows {
			buf.Write(row)
		}
	}

	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Load reads a dataset previously written by Save.
func Load(path string) (*Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", path, err)
	}
	if len(raw) < 4 {
		return nil, fmt.Errorf("dataset: %s is truncated", path)
	}
	headLen := binary.LittleEndian.Uint32(raw[:4])
	rest := raw[4:]
	if uint32(len(rest)) < headLen {
		return nil, fmt.Errorf("dataset: %s is truncated", path)
	}
	var m meta
	if err := yaml.Unmarshal(rest[:headLen], &m); err != nil {
		return nil, fmt.Errorf("dataset: unmarshal metadata: %w", err)
	}
	payload := rest[headLen:]

	d := &Dataset{Name: m.Name, Description: m.Description}
	switch m.Kind {
	case "float32":
		want := m.Rows * m.Dim * 4
		if len(payload) != want {
			return nil, fmt.Errorf("dataset: %s payload size mismatch", path)
		}
		rows := make([][]float32, m.Rows)
		off := 0
		for i := range rows {
			row := make([]float32, m.Dim)
			for j := range row {
				bits := binary.LittleEndian.Uint32(payload[off : off+4])
				row[j] = math.Float32frombits(bits)
				off += 4
			}
			rows[i] = row
		}
		d.Float32Rows = rows
	case "byte":
		want := m.Rows * m.Dim
		if len(payload) != want {
			return nil, fmt.Errorf("dataset: %s payload size mismatch", path)
		}
		rows := make([][]byte, m.Rows)
		off := 0
		for i := range rows {
			rows[i] = append([]byte(nil), payload[off:off+m.Dim]...)
			off += m.Dim
		}
		d.ByteRows = rows
	default:
		return nil, fmt.Errorf("dataset: %s has unknown kind %q", path, m.Kind)
	}
	return d, nil
}
