package sequencer

import "sort"

// Cell addresses one step of the sequencer: a beat column and a pitch row.
type Cell struct {
	Beat int `json:"beat" yaml:"beat"`
	Row  int `json:"row" yaml:"row"`
}

// Grid is an immutable set of active cells. The zero value is empty.
type Grid struct {
	cells map[Cell]struct{}
}

// NewGrid builds a grid from cells; duplicates collapse.
func NewGrid(cells ...Cell) Grid {
	g := Grid{cells: make(map[Cell]struct{}, len(cells))}
	for _, c := range cells {
		g.cells[c] = struct{}{}
	}
	return g
}

// Has reports whether c is active.
func (g Grid) Has(c Cell) bool {
	_, ok := g.cells[c]
	return ok
}

// Len returns the number of active cells.
func (g Grid) Len() int {
	return len(g.cells)
}

// Set returns a grid with c switched on or off.
func (g Grid) Set(c Cell, enabled bool) Grid {
	if g.Has(c) == enabled {
		return g
	}
	out := Grid{cells: make(map[Cell]struct{}, len(g.cells)+1)}
	for k := range g.cells {
		out.cells[k] = struct{}{}
	}
	if enabled {
		out.cells[c] = struct{}{}
	} else {
		delete(out.cells, c)
	}
	return out
}

// With returns a grid with c switched on.
func (g Grid) With(c Cell) Grid {
	return g.Set(c, true)
}

// Without returns a grid with c switched off.
func (g Grid) Without(c Cell) Grid {
	return g.Set(c, false)
}

// Cells returns the active cells ordered by row, then beat.
func (g Grid) Cells() []Cell {
	out := make([]Cell, 0, len(g.cells))
	for c := range g.cells {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row == out[j].Row {
			return out[i].Beat < out[j].Beat
		}
		return out[i].Row < out[j].Row
	})
	return out
}
