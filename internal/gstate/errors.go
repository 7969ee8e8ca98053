package gstate

import (
	"fmt"

	"github.com/ocx/roguevm/internal/errs"
)

func occupancyDesyncErr(id EntityID, pos Position) error {
	return errs.New(errs.KindOccupancyDesync, fmt.Sprintf("entity %s listed at %v but not located there", id, pos))
}
