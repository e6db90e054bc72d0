package engine

import (
	"time"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/board"
)

// requireDevelopable checks the rules shared by house and hotel placement:
// a street the caller owns as part of an unmortgaged monopoly.
func (t *tx) requireDevelopable(slot, pos int) (models.Space, error) {
	space, err := t.ownedBy(slot, pos)
	if err != nil {
		return models.Space{}, err
	}
	if space.Type != models.StreetSpace {
		return models.Space{}, ErrNotStreet
	}
	if !ownsGroup(t.g, slot, space.Group) {
		return models.Space{}, ErrNoMonopoly
	}
	for _, sibling := range board.GroupMembers(space.Group) {
		if t.g.Properties[sibling].IsMortgaged {
			return models.Space{}, ErrMortgaged
		}
	}
	return space, nil
}

// evenAfter reports whether pos may move to level without leaving it more
// than one level away from any sibling in its group.
func evenAfter(g *models.GameRecord, space models.Space, level int) bool {
	for _, sibling := range board.GroupMembers(space.Group) {
		if sibling == space.Position {
			continue
		}
		other := g.Properties[sibling].Level()
		if level-other > 1 || other-level > 1 {
			return false
		}
	}
	return true
}

func (e *Game) BuildHouse(caller string, pos int, now time.Time) error {
	return e.apply("build_house", caller, now, func(t *tx) error {
		slot, p, err := t.actor(caller)
		if err != nil {
			return err
		}
		if p.Phase.Kind == models.AwaitingBankruptcy {
			return ErrMustDeclareBankruptcy
		}
		space, err := t.requireDevelopable(slot, pos)
		if err != nil {
			return err
		}
		prop := &t.g.Properties[pos]
		if prop.HasHotel {
			return ErrHasHotel
		}
		if prop.Houses >= 4 {
			return ErrMaxHouses
		}
		if !evenAfter(t.g, space, prop.Houses+1) {
			return ErrUnevenDevelopment
		}
		if t.g.HousesRemaining < 1 {
			return ErrNoHousesRemaining
		}
		if p.CashBalance < space.HouseCost {
			return ErrInsufficientFunds
		}
		if err := t.pay(slot, models.NoPlayer, space.HouseCost); err != nil {
			return err
		}
		prop.Houses++
		t.g.HousesRemaining--
		return nil
	})
}

// BuildHotel swaps four houses for a hotel. The houses go back to the bank.
func (e *Game) BuildHotel(caller string, pos int, now time.Time) error {
	return e.apply("build_hotel", caller, now, func(t *tx) error {
		slot, p, err := t.actor(caller)
		if err != nil {
			return err
		}
		if p.Phase.Kind == models.AwaitingBankruptcy {
			return ErrMustDeclareBankruptcy
		}
		space, err := t.requireDevelopable(slot, pos)
		if err != nil {
			return err
		}
		prop := &t.g.Properties[pos]
		if prop.HasHotel {
			return ErrHasHotel
		}
		if prop.Houses != 4 {
			return ErrNeedsFourHouses
		}
		if !evenAfter(t.g, space, hotelLevel) {
			return ErrUnevenDevelopment
		}
		if t.g.HotelsRemaining < 1 {
			return ErrNoHotelsRemaining
		}
		if p.CashBalance < space.HouseCost {
			return ErrInsufficientFunds
		}
		if err := t.pay(slot, models.NoPlayer, space.HouseCost); err != nil {
			return err
		}
		if err := t.returnHouses(4); err != nil {
			return err
		}
		prop.Houses = 0
		prop.HasHotel = true
		t.g.HotelsRemaining--
		return nil
	})
}

// SellBuilding sells the top building on pos back to the bank for half its
// cost. A hotel turns back into four houses. Selling is allowed outside the
// owner's turn.
func (e *Game) SellBuilding(caller string, pos int, now time.Time) error {
	return e.apply("sell_building", caller, now, func(t *tx) error {
		if err := t.requireInProgress(); err != nil {
			return err
		}
		slot, p, err := t.member(caller)
		if err != nil {
			return err
		}
		space, err := t.ownedBy(slot, pos)
		if err != nil {
			return err
		}
		if space.Type != models.StreetSpace {
			return ErrNotStreet
		}
		prop := &t.g.Properties[pos]
		if prop.Level() == 0 {
			return ErrNoBuildings
		}
		if !evenAfter(t.g, space, prop.Level()-1) {
			return ErrUnevenDevelopment
		}

		if prop.HasHotel {
			if t.g.HousesRemaining < 4 {
				return ErrNoHousesRemaining
			}
			if err := t.returnHotels(1); err != nil {
				return err
			}
			t.g.HousesRemaining -= 4
			prop.HasHotel = false
			prop.Houses = 4
		} else {
			if err := t.returnHouses(1); err != nil {
				return err
			}
			prop.Houses--
		}
		p.LastActionAt = t.now
		return t.pay(models.NoPlayer, slot, space.HouseCost/2)
	})
}
