package engine

import (
	"time"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/board"
)

// RollDice consumes one roll from the randomness source for the acting
// player. A jailed player rolls to escape instead of moving; the third double
// in a turn sends the player to jail.
func (e *Game) RollDice(caller string, dice models.Dice, now time.Time) error {
	return e.apply("roll_dice", caller, now, func(t *tx) error {
		slot, p, err := t.actor(caller)
		if err != nil {
			return err
		}
		if err := requireNoPending(p); err != nil {
			return err
		}
		if p.HasRolledDice {
			return ErrAlreadyRolledDice
		}
		if !dice.Valid() {
			return ErrInvalidDice
		}
		p.LastDiceRoll = dice

		if p.InJail {
			return t.jailRoll(slot, dice)
		}
		if dice.IsDouble() {
			p.DoublesCount++
			if p.DoublesCount >= maxDoubles {
				t.sendToJail(slot)
				t.closeTurn(slot)
				return nil
			}
		} else {
			p.DoublesCount = 0
			p.HasRolledDice = true
		}
		return t.move(slot, dice.Sum(), true)
	})
}

func (t *tx) jailRoll(slot int, dice models.Dice) error {
	p := &t.g.Players[slot]
	if dice.IsDouble() {
		t.release(slot)
		p.HasRolledDice = true
		return t.move(slot, dice.Sum(), true)
	}

	p.JailTurns++
	if p.JailTurns < maxJailTurns {
		t.closeTurn(slot)
		return nil
	}

	fine := t.g.Settings.JailFine
	p.HasRolledDice = true
	if p.CashBalance < fine {
		p.Phase = debt(models.FineDebt, fine, models.NoPlayer, p.Position)
		return nil
	}
	if err := t.pay(slot, models.NoPlayer, fine); err != nil {
		return err
	}
	t.release(slot)
	return t.move(slot, dice.Sum(), true)
}

func (t *tx) sendToJail(slot int) {
	p := &t.g.Players[slot]
	p.Position = board.JailPosition
	p.InJail = true
	p.JailTurns = 0
	p.DoublesCount = 0
}

func (t *tx) release(slot int) {
	p := &t.g.Players[slot]
	p.InJail = false
	p.JailTurns = 0
	p.DoublesCount = 0
}

// move walks steps spaces (negative walks backwards) and resolves the
// landing. Passing or landing on GO pays the salary when salary is set.
func (t *tx) move(slot, steps int, salary bool) error {
	p := &t.g.Players[slot]
	old := p.Position
	next := ((old+steps)%models.BoardSize + models.BoardSize) % models.BoardSize
	if salary && steps > 0 && next < old {
		if _, err := t.payout(slot, t.g.Settings.GoSalary); err != nil {
			return err
		}
	}
	p.Position = next
	return t.land(slot)
}

func (t *tx) advanceTo(slot, target int) error {
	steps := (target - t.g.Players[slot].Position + models.BoardSize) % models.BoardSize
	if steps == 0 {
		steps = models.BoardSize
	}
	return t.move(slot, steps, true)
}

func (t *tx) land(slot int) error {
	p := &t.g.Players[slot]
	pos := p.Position
	space := catalog(pos)

	switch space.Type {
	case models.StreetSpace, models.RailroadSpace, models.UtilitySpace:
		prop := t.g.Properties[pos]
		switch {
		case !prop.Owned():
			p.Phase = phase(models.AwaitingPropertyDecision)
			p.Phase.Position = pos
		case prop.Owner == slot || prop.IsMortgaged:
			p.Phase = phase(models.Resolved)
		default:
			p.Phase = models.TurnPhase{
				Kind:     models.AwaitingPayment,
				Reason:   models.RentDebt,
				Position: pos,
				Payee:    prop.Owner,
			}
		}
	case models.TaxSpace:
		p.Phase = models.TurnPhase{
			Kind:     models.AwaitingPayment,
			Reason:   models.TaxDebt,
			Amount:   space.Tax,
			Position: pos,
			Payee:    models.NoPlayer,
		}
	case models.ChanceSpace:
		p.Phase = phase(models.AwaitingCardDraw)
		p.Phase.Deck = models.ChanceDeck
		p.Phase.Position = pos
	case models.ChestSpace:
		p.Phase = phase(models.AwaitingCardDraw)
		p.Phase.Deck = models.CommunityChestDeck
		p.Phase.Position = pos
	case models.GoToJailSpace:
		t.sendToJail(slot)
		t.closeTurn(slot)
	default:
		p.Phase = phase(models.Resolved)
	}
	return nil
}

func (e *Game) EndTurn(caller string, now time.Time) error {
	return e.apply("end_turn", caller, now, func(t *tx) error {
		slot, p, err := t.actor(caller)
		if err != nil {
			return err
		}
		if !p.HasRolledDice {
			return ErrHasNotRolledDice
		}
		if err := requireNoPending(p); err != nil {
			return err
		}
		p.TimeoutPenaltyCount = 0
		t.closeTurn(slot)
		return nil
	})
}

// PayJailFine buys a jailed player out before rolling.
func (e *Game) PayJailFine(caller string, now time.Time) error {
	return e.apply("pay_jail_fine", caller, now, func(t *tx) error {
		slot, p, err := t.leaveJailCheck(caller)
		if err != nil {
			return err
		}
		if p.CashBalance < t.g.Settings.JailFine {
			return ErrInsufficientFunds
		}
		if err := t.pay(slot, models.NoPlayer, t.g.Settings.JailFine); err != nil {
			return err
		}
		t.release(slot)
		return nil
	})
}

func (e *Game) UseJailCard(caller string, now time.Time) error {
	return e.apply("use_jail_card", caller, now, func(t *tx) error {
		slot, p, err := t.leaveJailCheck(caller)
		if err != nil {
			return err
		}
		if p.GetOutOfJailCards == 0 {
			return ErrNoJailCards
		}
		p.GetOutOfJailCards--
		t.release(slot)
		return nil
	})
}

func (t *tx) leaveJailCheck(caller string) (int, *models.PlayerRecord, error) {
	slot, p, err := t.actor(caller)
	if err != nil {
		return 0, nil, err
	}
	if err := requireNoPending(p); err != nil {
		return 0, nil, err
	}
	if p.HasRolledDice {
		return 0, nil, ErrAlreadyRolledDice
	}
	if !p.InJail {
		return 0, nil, ErrNotInJail
	}
	return slot, p, nil
}
