package gatekeep

import (
	"context"
	"strconv"
	"strings"
	"sync"
)

// fakeGrid is an in-memory GridAPI for tests. It applies single-cell
// A1 updates the way the remote service would and can be primed to
// fail fetches or updates with remote errors.
type fakeGrid struct {
	mu          sync.Mutex
	rows        [][]any
	fetchCalls  int
	updateCalls int

	fetchErr      error // Returned by every FetchRange while set.
	updateErr     error // Returned by every UpdateRange while set.
	updateErrOnce int   // When > 0, updateErr is cleared after this many failed updates.

	// onFailedUpdate runs (under the lock) when an update fails, to
	// simulate a concurrent writer changing the grid mid-flight.
	onFailedUpdate func(g *fakeGrid)
}

func newFakeGrid(rows [][]any) *fakeGrid {
	return &fakeGrid{rows: rows}
}

func (g *fakeGrid) FetchRange(_ context.Context, _, _ string) ([][]any, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.fetchCalls++
	if g.fetchErr != nil {
		return nil, g.fetchErr
	}

	out := make([][]any, len(g.rows))
	for i, row := range g.rows {
		out[i] = append([]any{}, row...)
	}
	return out, nil
}

func (g *fakeGrid) UpdateRange(_ context.Context, _, rng string, values [][]any) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.updateCalls++
	if g.updateErr != nil {
		err := g.updateErr
		if g.updateErrOnce > 0 {
			g.updateErrOnce--
			if g.updateErrOnce == 0 {
				g.updateErr = nil
			}
		}
		if g.onFailedUpdate != nil {
			g.onFailedUpdate(g)
		}
		return err
	}

	col, rowNum := parseCellRef(rng)
	g.setCell(rowNum-1, col, values[0][0])
	return nil
}

func (g *fakeGrid) setCell(rowIdx, colIdx int, val any) {
	for len(g.rows) <= rowIdx {
		g.rows = append(g.rows, []any{})
	}
	for len(g.rows[rowIdx]) <= colIdx {
		g.rows[rowIdx] = append(g.rows[rowIdx], "")
	}
	g.rows[rowIdx][colIdx] = val
}

func (g *fakeGrid) cell(rowIdx, colIdx int) any {
	if rowIdx >= len(g.rows) || colIdx >= len(g.rows[rowIdx]) {
		return nil
	}
	return g.rows[rowIdx][colIdx]
}

// parseCellRef decodes a single-cell reference like "Sheet1!C2" into a
// 0-based column index and a 1-based row number.
func parseCellRef(rng string) (col, row int) {
	if _, ref, ok := strings.Cut(rng, "!"); ok {
		rng = ref
	}

	i := 0
	for i < len(rng) && rng[i] >= 'A' && rng[i] <= 'Z' {
		col = col*26 + int(rng[i]-'A') + 1
		i++
	}
	col--

	row, _ = strconv.Atoi(rng[i:])
	return col, row
}
