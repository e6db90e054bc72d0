package engine

import (
	"fmt"

	"github.com/DedS3t/monopoly-engine/app/models"
)

func violation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvariantViolation, fmt.Sprintf(format, args...))
}

// CheckInvariants verifies the cross-record rules every committed state must
// satisfy. It is run after each operation, before the result is committed.
func CheckInvariants(g *models.GameRecord) error {
	if g.HousesRemaining < 0 || g.HotelsRemaining < 0 {
		return violation("negative building supply")
	}
	if g.BankBalance < 0 {
		return violation("negative bank balance %d", g.BankBalance)
	}
	if len(g.ActiveTrades) > models.MaxActiveTrades {
		return violation("%d active trades", len(g.ActiveTrades))
	}

	houses, hotels := 0, 0
	for pos, prop := range g.Properties {
		if prop.Houses < 0 || prop.Houses > 4 {
			return violation("space %d has %d houses", pos, prop.Houses)
		}
		if prop.HasHotel && prop.Houses > 0 {
			return violation("space %d has houses and a hotel", pos)
		}
		if !prop.Owned() {
			if prop.Houses > 0 || prop.HasHotel || prop.IsMortgaged {
				return violation("unowned space %d is not clean", pos)
			}
			continue
		}
		if prop.Owner < 0 || prop.Owner >= len(g.Players) {
			return violation("space %d owned by unknown slot %d", pos, prop.Owner)
		}
		if !g.Alive.Has(prop.Owner) {
			return violation("space %d owned by eliminated slot %d", pos, prop.Owner)
		}
		if !g.Players[prop.Owner].Owns(pos) {
			return violation("space %d missing from owner's holdings", pos)
		}
		houses += prop.Houses
		if prop.HasHotel {
			hotels++
		}
	}
	if g.HousesRemaining+houses > models.MaxHouses {
		return violation("%d houses in play with %d in the bank", houses, g.HousesRemaining)
	}
	if g.HotelsRemaining+hotels > models.MaxHotels {
		return violation("%d hotels in play with %d in the bank", hotels, g.HotelsRemaining)
	}

	seen := make(map[int]bool)
	for slot, p := range g.Players {
		if p.CashBalance < 0 {
			return violation("slot %d has negative cash", slot)
		}
		if p.IsBankrupt == g.Alive.Has(slot) {
			return violation("slot %d bankrupt flag disagrees with alive set", slot)
		}
		for _, pos := range p.PropertiesOwned {
			if pos < 0 || pos >= models.BoardSize || g.Properties[pos].Owner != slot {
				return violation("slot %d lists space %d it does not own", slot, pos)
			}
			if seen[pos] {
				return violation("space %d listed twice", pos)
			}
			seen[pos] = true
		}
	}

	if g.Status == models.InProgress && !g.Alive.Has(g.CurrentTurn) {
		return violation("current turn %d is not a live slot", g.CurrentTurn)
	}
	return nil
}
