package engine

import (
	"time"

	"github.com/DedS3t/monopoly-engine/app/models"
)

// DeclareBankruptcy liquidates the caller to the bank and removes them from
// the game. It may be called at any time by a live participant.
func (e *Game) DeclareBankruptcy(caller string, now time.Time) error {
	return e.apply("declare_bankruptcy", caller, now, func(t *tx) error {
		if err := t.requireInProgress(); err != nil {
			return err
		}
		slot, _, err := t.member(caller)
		if err != nil {
			return err
		}
		return t.bankrupt(slot)
	})
}

// liquidationValue is what the bank books for one holding: half the cost of
// every building plus the mortgage value of an unmortgaged space.
func liquidationValue(space models.Space, prop models.PropertyState) (int64, error) {
	value, err := checkedMul(int64(prop.Houses), space.HouseCost/2)
	if err != nil {
		return 0, err
	}
	if prop.HasHotel {
		hotel, err := checkedMul(5, space.HouseCost)
		if err != nil {
			return 0, err
		}
		if value, err = checkedAdd(value, hotel/2); err != nil {
			return 0, err
		}
	}
	if !prop.IsMortgaged {
		return checkedAdd(value, space.Mortgage)
	}
	return value, nil
}

// bankrupt always liquidates to the bank, whoever the creditor was.
func (t *tx) bankrupt(slot int) error {
	p := &t.g.Players[slot]
	credit := p.CashBalance
	houses, hotels := 0, 0

	for _, pos := range p.PropertiesOwned {
		prop := t.g.Properties[pos]
		value, err := liquidationValue(catalog(pos), prop)
		if err != nil {
			return err
		}
		if credit, err = checkedAdd(credit, value); err != nil {
			return err
		}
		houses += prop.Houses
		if prop.HasHotel {
			hotels++
		}
		t.g.Properties[pos] = models.PropertyState{Owner: models.NoPlayer}
	}
	if err := t.returnHouses(houses); err != nil {
		return err
	}
	if err := t.returnHotels(hotels); err != nil {
		return err
	}
	bank, err := checkedAdd(t.g.BankBalance, credit)
	if err != nil {
		return err
	}
	t.g.BankBalance = bank

	*p = models.PlayerRecord{
		ID:                    p.ID,
		IsBankrupt:            true,
		Phase:                 phase(models.AwaitingRoll),
		TimeoutPenaltyCount:   p.TimeoutPenaltyCount,
		TotalTimeoutPenalties: p.TotalTimeoutPenalties,
		LastActionAt:          t.now,
	}
	t.g.Alive.Remove(slot)
	t.dropTradesOf(p.ID)

	if t.g.Alive.Count() == 1 {
		t.finish(t.nextAliveAfter(slot))
		return nil
	}
	if t.g.CurrentTurn == slot {
		t.advanceTurn()
	}
	return nil
}

func (t *tx) finish(winner int) {
	t.g.Status = models.Finished
	t.g.Winner = winner
	t.g.CurrentTurn = winner
	t.g.EndedAt = t.now
	t.g.ActiveTrades = nil
	t.g.Players[winner].Phase = phase(models.Resolved)
}

// SettleDebt pays an outstanding debt once the debtor has raised the cash,
// e.g. by mortgaging or selling buildings. A settled jail fine releases the
// player and moves them by their last roll.
func (e *Game) SettleDebt(caller string, now time.Time) error {
	return e.apply("settle_debt", caller, now, func(t *tx) error {
		if err := t.requireInProgress(); err != nil {
			return err
		}
		slot, p, err := t.member(caller)
		if err != nil {
			return err
		}
		if p.Phase.Kind != models.AwaitingBankruptcy {
			return ErrNoDebt
		}
		owed := p.Phase
		if p.CashBalance < owed.Amount {
			return ErrInsufficientFunds
		}
		payee := owed.Payee
		if payee != models.NoPlayer && !t.g.Alive.Has(payee) {
			payee = models.NoPlayer
		}
		if err := t.pay(slot, payee, owed.Amount); err != nil {
			return err
		}
		p.LastActionAt = t.now

		if owed.Reason == models.FineDebt {
			t.release(slot)
			return t.move(slot, p.LastDiceRoll.Sum(), true)
		}
		if slot == t.g.CurrentTurn {
			p.Phase = phase(models.Resolved)
		} else {
			p.Phase = phase(models.AwaitingRoll)
		}
		return nil
	})
}

// ClaimPrize marks the prize pool as paid out to the winner and returns its
// size. Moving the value itself is up to the caller.
func (e *Game) ClaimPrize(caller string, now time.Time) (int64, error) {
	var prize int64
	err := e.apply("claim_prize", caller, now, func(t *tx) error {
		if t.g.Status != models.Finished {
			return ErrGameNotFinished
		}
		if t.g.Slot(caller) == models.NoPlayer || t.g.Slot(caller) != t.g.Winner {
			return ErrNotWinner
		}
		if t.g.PrizeClaimed {
			return ErrPrizeClaimed
		}
		t.g.PrizeClaimed = true
		prize = t.g.TotalPrizePool
		return nil
	})
	return prize, err
}
