// Package orchestrate routes questionnaire items onto document chunks,
// builds the deterministic execution plan, and drives per-item chain
// execution through fusion and veto into the aggregator.
package orchestrate

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// MatrixSize is the fixed chunk count: 10 policy areas × 6 dimensions.
const MatrixSize = 60

// Chunk is one document segment, uniquely keyed by (policy area, dimension).
type Chunk struct {
	PolicyArea int    `yaml:"policy_area" json:"policy_area"`
	Dimension  int    `yaml:"dimension" json:"dimension"`
	Content    string `yaml:"content" json:"content"`
}

// Key returns the canonical chunk key.
func (c Chunk) Key() string {
	return fmt.Sprintf("area%02d/dim%d", c.PolicyArea, c.Dimension)
}

// ChunkMatrix is the validated 60-entry chunk set with its integrity hash.
// It is read-only after construction.
type ChunkMatrix struct {
	chunks map[string]Chunk
	hash   string
}

// NewMatrix validates and indexes the chunk set. It fails if the set does
// not contain exactly 60 entries, any content is empty, or two chunks share
// an (area, dimension) key. The integrity hash is computed over canonically
// sorted entries, so entry order does not matter.
func NewMatrix(chunks []Chunk) (*ChunkMatrix, error) {
	if len(chunks) != MatrixSize {
		return nil, fmt.Errorf("%w: expected exactly %d chunks, got %d",
			ErrMatrix, MatrixSize, len(chunks))
	}

	indexed := make(map[string]Chunk, len(chunks))
	for _, c := range chunks {
		if strings.TrimSpace(c.Content) == "" {
			return nil, fmt.Errorf("%w: chunk %s has empty content", ErrMatrix, c.Key())
		}
		if _, dup := indexed[c.Key()]; dup {
			return nil, fmt.Errorf("%w: duplicate chunk key %s", ErrMatrix, c.Key())
		}
		indexed[c.Key()] = c
	}

	return &ChunkMatrix{chunks: indexed, hash: matrixHash(indexed)}, nil
}

// Chunk returns the entry for (area, dimension), if present.
func (m *ChunkMatrix) Chunk(area, dimension int) (Chunk, bool) {
	c, ok := m.chunks[Chunk{PolicyArea: area, Dimension: dimension}.Key()]
	return c, ok
}

// IntegrityHash is the content hash over the sorted chunk set. Permuting the
// input chunk order yields an identical hash.
func (m *ChunkMatrix) IntegrityHash() string { return m.hash }

// Chunks returns all entries in canonical key order.
func (m *ChunkMatrix) Chunks() []Chunk {
	keys := make([]string, 0, len(m.chunks))
	for k := range m.chunks {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Chunk, 0, len(keys))
	for _, k := range keys {
		out = append(out, m.chunks[k])
	}
	return out
}

func matrixHash(indexed map[string]Chunk) string {
	keys := make([]string, 0, len(indexed))
	for k := range indexed {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		c := indexed[k]
		fmt.Fprintf(h, "%s\x00%s\x00", k, c.Content)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// matrixFile is the on-disk shape of a chunk matrix document.
type matrixFile struct {
	Chunks []Chunk `yaml:"chunks" json:"chunks"`
}

// LoadMatrixFromPath reads a chunk matrix file (YAML or JSON) and validates
// it via NewMatrix.
func LoadMatrixFromPath(path string) (*ChunkMatrix, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chunk matrix: %w", err)
	}
	return LoadMatrix(data, filepath.Ext(path))
}

// LoadMatrix parses a chunk matrix from bytes. ext is the format hint;
// empty = detect from content.
func LoadMatrix(data []byte, ext string) (*ChunkMatrix, error) {
	ext = strings.ToLower(ext)
	if ext == ".yml" {
		ext = ".yaml"
	}
	if ext == "" {
		if strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
			ext = ".json"
		} else {
			ext = ".yaml"
		}
	}

	var mf matrixFile
	switch ext {
	case ".yaml":
		if err := yaml.Unmarshal(data, &mf); err != nil {
			return nil, fmt.Errorf("parse chunk matrix yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &mf); err != nil {
			return nil, fmt.Errorf("parse chunk matrix json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported chunk matrix format %q", ext)
	}

	return NewMatrix(mf.Chunks)
}
