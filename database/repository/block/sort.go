package blockRepo

import (
	"cmp"
	"slices"

	"agenda/models"
)

// sortBlocks orders by date, then time; "all" sorts after every HH:MM.
func sortBlocks(blocks []models.Block) {
	slices.SortFunc(blocks, func(a, b models.Block) int {
		if c := cmp.Compare(a.Date, b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.Time, b.Time)
	})
}
