package gstate

import "github.com/ocx/roguevm/internal/errs"

// TileOccupantCap is the maximum number of entities a single tile may hold
// simultaneously.
const TileOccupantCap = 4

// World is the tile-occupancy index: a sparse mapping from Position to the
// bounded, ordered list of entities standing on that tile. It is a mapping
// rather than a dense grid because maps are sparse.
type World struct {
	Occupants map[Position][]EntityID `json:"occupants"`
}

// NewWorld returns an empty World.
func NewWorld() World {
	return World{Occupants: map[Position][]EntityID{}}
}

// Clone deep-copies the occupancy index.
func (w World) Clone() World {
	out := World{Occupants: make(map[Position][]EntityID, len(w.Occupants))}
	for pos, ids := range w.Occupants {
		out.Occupants[pos] = append([]EntityID(nil), ids...)
	}
	return out
}

// Add places id on the tile at pos. Fails with Occupied if the tile is
// already at TileOccupantCap, and with OccupancyDesync if id is already
// present on that tile.
func (w *World) Add(pos Position, id EntityID) error {
	occ := w.Occupants[pos]
	for _, existing := range occ {
		if existing == id {
			return errs.New(errs.KindOccupancyDesync, "entity already occupies tile")
		}
	}
	if len(occ) >= TileOccupantCap {
		return errs.New(errs.KindOccupied, "tile at capacity")
	}
	w.Occupants[pos] = append(occ, id)
	return nil
}

// Remove takes id off the tile at pos. Missing id on that tile is an
// Internal bug (occupancy desync), never a user-facing Recoverable error.
func (w *World) Remove(pos Position, id EntityID) error {
	occ, ok := w.Occupants[pos]
	if !ok {
		return errs.New(errs.KindMissingOccupant, "tile has no occupants")
	}
	idx := -1
	for i, existing := range occ {
		if existing == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errs.New(errs.KindMissingOccupant, "entity not present on tile")
	}
	next := append(occ[:idx], occ[idx+1:]...)
	if len(next) == 0 {
		delete(w.Occupants, pos)
	} else {
		w.Occupants[pos] = next
	}
	return nil
}

// Has reports whether id occupies pos.
func (w World) Has(pos Position, id EntityID) bool {
	for _, existing := range w.Occupants[pos] {
		if existing == id {
			return true
		}
	}
	return false
}

// At returns the occupants of pos (nil when the tile has no occupants).
func (w World) At(pos Position) []EntityID {
	return w.Occupants[pos]
}

// SortedPositions returns every occupied position in the canonical
// lexicographic order used by canonical serialization and delta diffing.
func (w World) SortedPositions() []Position {
	out := make([]Position, 0, len(w.Occupants))
	for pos := range w.Occupants {
		out = append(out, pos)
	}
	sortPositions(out)
	return out
}

func sortPositions(ps []Position) {
	// insertion sort: occupancy maps are small (bounded by map size), and a
	// dependency-free sort keeps this package floor-level.
	for i := 1; i < len(ps); i++ {
		j := i
		for j > 0 && ps[j].Less(ps[j-1]) {
			ps[j], ps[j-1] = ps[j-1], ps[j]
			j--
		}
	}
}
