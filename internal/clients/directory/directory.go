// Package directory serves the read-only business listings attached to
// resupply points.
package directory

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
)

// Business is one listing near a resupply point
type Business struct {
	Name    string `json:"name"`
	Type    string `json:"type,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	Website string `json:"website,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

// Directory maps resupply ids to their businesses. It is immutable after
// loading.
type Directory struct {
	entries map[string][]Business
}

// Empty returns a directory with no listings
func Empty() *Directory {
	return &Directory{entries: map[string][]Business{}}
}

// LoadFile reads a JSON object keyed by resupply id
func LoadFile(path string) (*Directory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open directory file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses a directory document
func Decode(r io.Reader) (*Directory, error) {
	var doc map[string][]Business
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode directory: %w", err)
	}
	for id, list := range doc {
		for i, b := range list {
			if b.Name == "" {
				return nil, fmt.Errorf("directory entry %s[%d] has no name", id, i)
			}
		}
	}
	if doc == nil {
		doc = map[string][]Business{}
	}
	return &Directory{entries: doc}, nil
}

// Lookup returns a copy of the businesses for a resupply id
func (d *Directory) Lookup(id string) ([]Business, bool) {
	list, ok := d.entries[id]
	if !ok {
		return nil, false
	}
	return append([]Business(nil), list...), true
}

// IDs lists every resupply id with listings, sorted
func (d *Directory) IDs() []string {
	ids := make([]string, 0, len(d.entries))
	for id := range d.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len is the number of resupply ids with listings
func (d *Directory) Len() int {
	return len(d.entries)
}
