// Package spatial provides a uniform grid-bucket nearest-neighbor index
// over entity positions (spec.md §4.B). It is rebuilt once per tick from
// the engine's live collections and carries no game logic of its own,
// grounded on the teacher's effects_spatial_index.go bucket approach.
package spatial

import "math"

const cellSize = 100.0

type cellKey struct{ x, y int }

type entry struct {
	id   string
	x, y float64
}

// Index is a uniform grid over entity positions.
type Index struct {
	cells map[cellKey][]entry
}

// New returns an empty index.
func New() *Index {
	return &Index{cells: make(map[cellKey][]entry)}
}

// Clear empties the index for reuse without reallocating the map.
func (idx *Index) Clear() {
	for k := range idx.cells {
		delete(idx.cells, k)
	}
}

func keyFor(x, y float64) cellKey {
	return cellKey{x: int(math.Floor(x / cellSize)), y: int(math.Floor(y / cellSize))}
}

// Insert adds an entity at the given position.
func (idx *Index) Insert(id string, x, y float64) {
	k := keyFor(x, y)
	idx.cells[k] = append(idx.cells[k], entry{id: id, x: x, y: y})
}

// QueryRadius returns every inserted entity id within r pixels of (x, y).
func (idx *Index) QueryRadius(x, y, r float64) []string {
	if r < 0 {
		return nil
	}
	minCell := keyFor(x-r, y-r)
	maxCell := keyFor(x+r, y+r)
	rSq := r * r

	var results []string
	for cy := minCell.y; cy <= maxCell.y; cy++ {
		for cx := minCell.x; cx <= maxCell.x; cx++ {
			for _, e := range idx.cells[cellKey{x: cx, y: cy}] {
				dx := e.x - x
				dy := e.y - y
				if dx*dx+dy*dy <= rSq {
					results = append(results, e.id)
				}
			}
		}
	}
	return results
}

// Nearest returns the id closest to (x, y) within radius r among entities
// for which include returns true, or "" if none qualify.
func (idx *Index) Nearest(x, y, r float64, include func(id string) bool) (string, bool) {
	minCell := keyFor(x-r, y-r)
	maxCell := keyFor(x+r, y+r)
	rSq := r * r

	bestID := ""
	bestDistSq := math.Inf(1)
	for cy := minCell.y; cy <= maxCell.y; cy++ {
		for cx := minCell.x; cx <= maxCell.x; cx++ {
			for _, e := range idx.cells[cellKey{x: cx, y: cy}] {
				if include != nil && !include(e.id) {
					continue
				}
				dx := e.x - x
				dy := e.y - y
				distSq := dx*dx + dy*dy
				if distSq <= rSq && distSq < bestDistSq {
					bestDistSq = distSq
					bestID = e.id
				}
			}
		}
	}
	if bestID == "" {
		return "", false
	}
	return bestID, true
}
