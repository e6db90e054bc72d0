package engine

import (
	"time"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/board"
)

// DrawChanceCard resolves a pending chance draw. index comes from the
// randomness source and must be in [0, deck size).
func (e *Game) DrawChanceCard(caller string, index int, now time.Time) error {
	return e.draw("draw_chance_card", models.ChanceDeck, caller, index, now)
}

func (e *Game) DrawCommunityChestCard(caller string, index int, now time.Time) error {
	return e.draw("draw_community_chest_card", models.CommunityChestDeck, caller, index, now)
}

func (e *Game) draw(op string, deck models.Deck, caller string, index int, now time.Time) error {
	return e.apply(op, caller, now, func(t *tx) error {
		slot, p, err := t.actor(caller)
		if err != nil {
			return err
		}
		if p.Phase.Kind != models.AwaitingCardDraw {
			return ErrNoPendingCardDraw
		}
		if p.Phase.Deck != deck {
			return ErrWrongDeck
		}
		card, err := board.GetCard(deck, index)
		if err != nil {
			return err
		}
		p.Phase = phase(models.Resolved)
		return t.applyCard(slot, card)
	})
}

func (t *tx) applyCard(slot int, card models.Card) error {
	p := &t.g.Players[slot]
	switch card.Action {
	case models.CardChange:
		if card.Payload >= 0 {
			_, err := t.payout(slot, card.Payload)
			return err
		}
		return t.charge(slot, -card.Payload, models.NoPlayer)
	case models.CardAdvance:
		if !board.ValidPosition(int(card.Payload)) {
			return ErrInvalidPosition
		}
		return t.advanceTo(slot, int(card.Payload))
	case models.CardBack:
		return t.move(slot, -int(card.Payload), false)
	case models.CardNearest:
		target, err := board.NearestOf(p.Position, card.Target)
		if err != nil {
			return err
		}
		return t.advanceTo(slot, target)
	case models.CardJail:
		t.sendToJail(slot)
		t.closeTurn(slot)
		return nil
	case models.CardJailFree:
		p.GetOutOfJailCards++
		return nil
	case models.CardCollectEach:
		return t.collectFromEach(slot, card.Payload)
	case models.CardPayEach:
		return t.payEach(slot, card.Payload)
	case models.CardRepairs:
		return t.repairs(slot, card.Payload, card.Extra)
	}
	return nil
}

// charge takes amount from slot for payee, or leaves the player owing it
// when they cannot cover it.
func (t *tx) charge(slot int, amount int64, payee int) error {
	p := &t.g.Players[slot]
	if p.CashBalance < amount {
		p.Phase = debt(models.CardDebt, amount, payee, p.Position)
		return nil
	}
	return t.pay(slot, payee, amount)
}

func (t *tx) others(slot int) []int {
	var out []int
	for i := range t.g.Players {
		if i != slot && t.g.Alive.Has(i) {
			out = append(out, i)
		}
	}
	return out
}

// collectFromEach debits every other live player. A player who cannot pay
// owes the drawer instead and pays nothing now.
func (t *tx) collectFromEach(slot int, amount int64) error {
	for _, other := range t.others(slot) {
		op := &t.g.Players[other]
		if op.Phase.Kind == models.AwaitingBankruptcy {
			continue
		}
		if op.CashBalance < amount {
			op.Phase = debt(models.CardDebt, amount, slot, op.Position)
			continue
		}
		if err := t.pay(other, slot, amount); err != nil {
			return err
		}
	}
	return nil
}

func (t *tx) payEach(slot int, amount int64) error {
	others := t.others(slot)
	total, err := checkedMul(amount, int64(len(others)))
	if err != nil {
		return err
	}
	p := &t.g.Players[slot]
	if p.CashBalance < total {
		p.Phase = debt(models.CardDebt, total, models.NoPlayer, p.Position)
		return nil
	}
	for _, other := range others {
		if err := t.pay(slot, other, amount); err != nil {
			return err
		}
	}
	return nil
}

func (t *tx) repairs(slot int, perHouse, perHotel int64) error {
	var total int64
	for _, pos := range t.g.Players[slot].PropertiesOwned {
		prop := t.g.Properties[pos]
		cost, err := checkedMul(int64(prop.Houses), perHouse)
		if err != nil {
			return err
		}
		if prop.HasHotel {
			cost = perHotel
		}
		if total, err = checkedAdd(total, cost); err != nil {
			return err
		}
	}
	return t.charge(slot, total, models.NoPlayer)
}
