package engine

import (
	"time"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/board"
)

func (e *Game) BuyProperty(caller string, pos int, now time.Time) error {
	return e.apply("buy_property", caller, now, func(t *tx) error {
		slot, p, err := t.decisionAt(caller, pos)
		if err != nil {
			return err
		}
		space := catalog(pos)
		if p.CashBalance < space.Price {
			return ErrInsufficientFunds
		}
		if err := t.pay(slot, models.NoPlayer, space.Price); err != nil {
			return err
		}
		// pay took the price off net worth; the deed puts it back and adds it again
		if err := t.addWorth(slot, 2*space.Price); err != nil {
			return err
		}
		t.g.Properties[pos].Owner = slot
		p.PropertiesOwned = append(p.PropertiesOwned, pos)
		p.Phase = phase(models.Resolved)
		return nil
	})
}

// DeclineProperty leaves the space with the bank. There is no auction.
func (e *Game) DeclineProperty(caller string, pos int, now time.Time) error {
	return e.apply("decline_property", caller, now, func(t *tx) error {
		_, p, err := t.decisionAt(caller, pos)
		if err != nil {
			return err
		}
		p.Phase = phase(models.Resolved)
		return nil
	})
}

func (t *tx) decisionAt(caller string, pos int) (int, *models.PlayerRecord, error) {
	slot, p, err := t.actor(caller)
	if err != nil {
		return 0, nil, err
	}
	space, err := board.GetByPos(pos)
	if err != nil {
		return 0, nil, err
	}
	if p.Position != pos {
		return 0, nil, ErrNotOnSpace
	}
	if !space.Purchasable() {
		return 0, nil, ErrNotPurchasable
	}
	if t.g.Properties[pos].Owned() {
		return 0, nil, ErrAlreadyOwned
	}
	if p.Phase.Kind != models.AwaitingPropertyDecision || p.Phase.Position != pos {
		return 0, nil, ErrNoPendingPropertyAction
	}
	return slot, p, nil
}

// ComputeRent prices a landing on pos under the current ownership. dice is
// the payer's roll, used for utilities.
func ComputeRent(g *models.GameRecord, pos int, dice models.Dice) (int64, error) {
	space, err := board.GetByPos(pos)
	if err != nil {
		return 0, err
	}
	prop := g.Properties[pos]
	if !prop.Owned() || prop.IsMortgaged {
		return 0, nil
	}

	switch space.Type {
	case models.StreetSpace:
		switch {
		case prop.HasHotel:
			return space.Rent[hotelLevel], nil
		case prop.Houses > 0:
			return space.Rent[prop.Houses], nil
		case ownsGroup(g, prop.Owner, space.Group):
			return checkedMul(space.Rent[0], 2)
		}
		return space.Rent[0], nil
	case models.RailroadSpace:
		owned := ownedInGroup(g, prop.Owner, space.Group)
		return checkedMul(space.Rent[0], int64(1)<<uint(owned-1))
	case models.UtilitySpace:
		multiplier := int64(4)
		if ownedInGroup(g, prop.Owner, space.Group) >= 2 {
			multiplier = 10
		}
		return checkedMul(int64(dice.Sum()), multiplier)
	}
	return 0, nil
}

func ownedInGroup(g *models.GameRecord, owner int, group string) int {
	n := 0
	for _, pos := range board.GroupMembers(group) {
		if g.Properties[pos].Owner == owner {
			n++
		}
	}
	return n
}

func ownsGroup(g *models.GameRecord, owner int, group string) bool {
	members := board.GroupMembers(group)
	return len(members) > 0 && ownedInGroup(g, owner, group) == len(members)
}

// PayRent settles rent owed for landing on pos. A payer who cannot cover it
// is left owing the owner and no money moves.
func (e *Game) PayRent(caller string, pos int, now time.Time) error {
	return e.apply("pay_rent", caller, now, func(t *tx) error {
		slot, p, err := t.actor(caller)
		if err != nil {
			return err
		}
		if !board.ValidPosition(pos) {
			return ErrInvalidPosition
		}
		if p.Phase.Kind != models.AwaitingPayment || p.Phase.Reason != models.RentDebt || p.Phase.Position != pos {
			return ErrNoPendingPayment
		}
		rent, err := ComputeRent(t.g, pos, p.LastDiceRoll)
		if err != nil {
			return err
		}
		owner := t.g.Properties[pos].Owner
		if p.CashBalance < rent {
			p.Phase = debt(models.RentDebt, rent, owner, pos)
			return nil
		}
		if err := t.pay(slot, owner, rent); err != nil {
			return err
		}
		p.Phase = phase(models.Resolved)
		return nil
	})
}

func (e *Game) PayTax(caller string, now time.Time) error {
	return e.apply("pay_tax", caller, now, func(t *tx) error {
		slot, p, err := t.actor(caller)
		if err != nil {
			return err
		}
		if p.Phase.Kind != models.AwaitingPayment || p.Phase.Reason != models.TaxDebt {
			return ErrNoPendingPayment
		}
		amount := p.Phase.Amount
		if p.CashBalance < amount {
			p.Phase = debt(models.TaxDebt, amount, models.NoPlayer, p.Position)
			return nil
		}
		if err := t.pay(slot, models.NoPlayer, amount); err != nil {
			return err
		}
		p.Phase = phase(models.Resolved)
		return nil
	})
}

// MortgageProperty is allowed outside the owner's turn so a player in debt
// can raise cash.
func (e *Game) MortgageProperty(caller string, pos int, now time.Time) error {
	return e.apply("mortgage_property", caller, now, func(t *tx) error {
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
		if t.g.Properties[pos].IsMortgaged {
			return ErrAlreadyMortgaged
		}
		if groupHasBuildings(t.g, space) {
			return ErrGroupHasBuildings
		}
		if err := t.pay(models.NoPlayer, slot, space.Mortgage); err != nil {
			return err
		}
		t.g.Properties[pos].IsMortgaged = true
		p.LastActionAt = t.now
		return nil
	})
}

func (e *Game) UnmortgageProperty(caller string, pos int, now time.Time) error {
	return e.apply("unmortgage_property", caller, now, func(t *tx) error {
		slot, p, err := t.actor(caller)
		if err != nil {
			return err
		}
		if p.Phase.Kind == models.AwaitingBankruptcy {
			return ErrMustDeclareBankruptcy
		}
		space, err := t.ownedBy(slot, pos)
		if err != nil {
			return err
		}
		if !t.g.Properties[pos].IsMortgaged {
			return ErrNotMortgaged
		}
		cost, err := checkedAdd(space.Mortgage, space.Mortgage/interestRatio)
		if err != nil {
			return err
		}
		if p.CashBalance < cost {
			return ErrInsufficientFunds
		}
		if err := t.pay(slot, models.NoPlayer, cost); err != nil {
			return err
		}
		t.g.Properties[pos].IsMortgaged = false
		return nil
	})
}

func (t *tx) ownedBy(slot, pos int) (models.Space, error) {
	space, err := board.GetByPos(pos)
	if err != nil {
		return models.Space{}, err
	}
	if t.g.Properties[pos].Owner != slot {
		return models.Space{}, ErrNotOwner
	}
	return space, nil
}

func groupHasBuildings(g *models.GameRecord, space models.Space) bool {
	if space.Type != models.StreetSpace {
		return false
	}
	for _, pos := range board.GroupMembers(space.Group) {
		if g.Properties[pos].Level() > 0 {
			return true
		}
	}
	return false
}
