package domain

import (
	"slices"

	domainerrors "github.com/nexogroup/nexo-server/internal/errors"
)

// transitionTable lists, for each state, the states it may move to.
// A state absent from the table is terminal.
type transitionTable[S ~string] map[S][]S

// check returns an INVALID_STATE error naming the entity when from → to is
// not in the table.
func (t transitionTable[S]) check(entity string, from, to S) error {
	if slices.Contains(t[from], to) {
		return nil
	}
	return domainerrors.InvalidStatef("%s cannot move from %s to %s", entity, from, to)
}
