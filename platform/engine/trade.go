package engine

import (
	"fmt"
	"time"

	"github.com/DedS3t/monopoly-engine/app/models"
	uuid "github.com/satori/go.uuid"
)

func validateShape(o models.TradeOffer) error {
	if o.ProposerMoney < 0 || o.ReceiverMoney < 0 {
		return ErrInvalidAmount
	}
	give, take := o.ProposerProperty != nil, o.ReceiverProperty != nil
	var ok bool
	switch o.Shape {
	case models.MoneyOnly:
		ok = !give && !take && (o.ProposerMoney > 0 || o.ReceiverMoney > 0)
	case models.PropertyOnly:
		ok = (give || take) && o.ProposerMoney == 0 && o.ReceiverMoney == 0
	case models.MoneyForProperty:
		ok = !give && take && o.ProposerMoney > 0 && o.ReceiverMoney == 0
	case models.PropertyForMoney:
		ok = give && !take && o.ReceiverMoney > 0 && o.ProposerMoney == 0
	}
	if !ok {
		return ErrTradeShapeMismatch
	}
	return nil
}

// tradable checks that slot can hand over pos right now.
func (t *tx) tradable(slot int, pos *int) error {
	if pos == nil {
		return nil
	}
	space, err := t.ownedBy(slot, *pos)
	if err != nil {
		return err
	}
	if groupHasBuildings(t.g, space) {
		return ErrPropertyHasBuilding
	}
	return nil
}

// validateLegs checks both sides still hold what the offer promises. Trades
// are not escrowed so this runs at proposal and again at acceptance.
func (t *tx) validateLegs(proposer, receiver int, o models.TradeOffer) error {
	if t.g.Players[proposer].CashBalance < o.ProposerMoney {
		return ErrInsufficientFunds
	}
	if t.g.Players[receiver].CashBalance < o.ReceiverMoney {
		return ErrInsufficientFunds
	}
	if err := t.tradable(proposer, o.ProposerProperty); err != nil {
		return err
	}
	return t.tradable(receiver, o.ReceiverProperty)
}

func (t *tx) counterparty(proposer int, receiver string) (int, error) {
	if receiver == t.g.Players[proposer].ID {
		return 0, ErrSelfTrade
	}
	slot, _, err := t.member(receiver)
	return slot, err
}

// CreateTrade records a pending offer from caller and returns its id.
// Expired offers are reaped first so they do not count against the limit.
func (e *Game) CreateTrade(caller string, offer models.TradeOffer, now time.Time) (string, error) {
	var id string
	err := e.apply("create_trade", caller, now, func(t *tx) error {
		if err := t.requireInProgress(); err != nil {
			return err
		}
		proposer, p, err := t.member(caller)
		if err != nil {
			return err
		}
		if err := validateShape(offer); err != nil {
			return err
		}
		receiver, err := t.counterparty(proposer, offer.Receiver)
		if err != nil {
			return err
		}
		if err := t.validateLegs(proposer, receiver, offer); err != nil {
			return err
		}

		t.reapExpired()
		if len(t.g.ActiveTrades) >= models.MaxActiveTrades {
			return ErrTooManyTrades
		}
		t.g.TradeSeq++
		id = uuid.NewV5(uuid.NamespaceOID, fmt.Sprintf("%s/trade/%d", t.g.ID, t.g.TradeSeq)).String()
		t.g.ActiveTrades = append(t.g.ActiveTrades, models.TradeRecord{
			ID:        id,
			Proposer:  caller,
			Offer:     offer,
			Status:    models.TradePending,
			CreatedAt: t.now,
			ExpiresAt: t.now.Add(t.g.Settings.TradeExpiry),
		})
		p.LastActionAt = t.now
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// AcceptTrade swaps both legs of a pending offer. Either everything moves or
// nothing does.
func (e *Game) AcceptTrade(caller, tradeID string, now time.Time) (models.TradeRecord, error) {
	var done models.TradeRecord
	err := e.apply("accept_trade", caller, now, func(t *tx) error {
		if err := t.requireInProgress(); err != nil {
			return err
		}
		idx, trade, err := t.pendingTrade(tradeID)
		if err != nil {
			return err
		}
		if trade.Offer.Receiver != caller {
			return ErrNotTradeReceiver
		}
		if trade.Expired(t.now) {
			return ErrTradeExpired
		}
		receiver, r, err := t.member(caller)
		if err != nil {
			return err
		}
		proposer, _, err := t.member(trade.Proposer)
		if err != nil {
			return err
		}
		o := trade.Offer
		if err := t.validateLegs(proposer, receiver, o); err != nil {
			return err
		}

		if err := t.pay(proposer, receiver, o.ProposerMoney); err != nil {
			return err
		}
		if err := t.pay(receiver, proposer, o.ReceiverMoney); err != nil {
			return err
		}
		if o.ProposerProperty != nil {
			t.transfer(*o.ProposerProperty, proposer, receiver)
		}
		if o.ReceiverProperty != nil {
			t.transfer(*o.ReceiverProperty, receiver, proposer)
		}
		r.LastActionAt = t.now
		done = t.closeTrade(idx, models.TradeAccepted)
		return nil
	})
	return done, err
}

func (e *Game) RejectTrade(caller, tradeID string, now time.Time) (models.TradeRecord, error) {
	return e.terminate("reject_trade", caller, tradeID, now, models.TradeRejected)
}

func (e *Game) CancelTrade(caller, tradeID string, now time.Time) (models.TradeRecord, error) {
	return e.terminate("cancel_trade", caller, tradeID, now, models.TradeCancelled)
}

// terminate ends an offer without moving anything. Rejecting is the
// receiver's call and cancelling the proposer's; both work past expiry.
func (e *Game) terminate(op, caller, tradeID string, now time.Time, status models.TradeStatus) (models.TradeRecord, error) {
	var done models.TradeRecord
	err := e.apply(op, caller, now, func(t *tx) error {
		if err := t.requireInProgress(); err != nil {
			return err
		}
		idx, trade, err := t.pendingTrade(tradeID)
		if err != nil {
			return err
		}
		switch status {
		case models.TradeRejected:
			if trade.Offer.Receiver != caller {
				return ErrNotTradeReceiver
			}
		case models.TradeCancelled:
			if trade.Proposer != caller {
				return ErrNotTradeProposer
			}
		}
		done = t.closeTrade(idx, status)
		return nil
	})
	return done, err
}

// ExpireTrades removes every pending offer whose expiry has passed and
// returns them. Anyone may run the sweep.
func (e *Game) ExpireTrades(now time.Time) ([]models.TradeRecord, error) {
	var expired []models.TradeRecord
	err := e.apply("expire_trades", "", now, func(t *tx) error {
		expired = t.reapExpired()
		return nil
	})
	return expired, err
}

// ActiveTrades lists the pending offers involving player, or every offer
// when player is empty.
func (e *Game) ActiveTrades(player string) []models.TradeRecord {
	var out []models.TradeRecord
	for _, trade := range e.rec.ActiveTrades {
		if player == "" || trade.Proposer == player || trade.Offer.Receiver == player {
			out = append(out, trade)
		}
	}
	return out
}

func (t *tx) pendingTrade(id string) (int, models.TradeRecord, error) {
	for i, trade := range t.g.ActiveTrades {
		if trade.ID != id {
			continue
		}
		if trade.Status != models.TradePending {
			return 0, models.TradeRecord{}, ErrTradeNotPending
		}
		return i, trade, nil
	}
	return 0, models.TradeRecord{}, ErrTradeNotFound
}

func (t *tx) closeTrade(idx int, status models.TradeStatus) models.TradeRecord {
	trade := t.g.ActiveTrades[idx]
	trade.Status = status
	t.g.ActiveTrades = append(t.g.ActiveTrades[:idx], t.g.ActiveTrades[idx+1:]...)
	return trade
}

func (t *tx) reapExpired() []models.TradeRecord {
	var expired []models.TradeRecord
	kept := t.g.ActiveTrades[:0]
	for _, trade := range t.g.ActiveTrades {
		if trade.Status == models.TradePending && trade.Expired(t.now) {
			trade.Status = models.TradeExpired
			expired = append(expired, trade)
			continue
		}
		kept = append(kept, trade)
	}
	t.g.ActiveTrades = kept
	return expired
}

func (t *tx) dropTradesOf(player string) {
	kept := t.g.ActiveTrades[:0]
	for _, trade := range t.g.ActiveTrades {
		if trade.Proposer != player && trade.Offer.Receiver != player {
			kept = append(kept, trade)
		}
	}
	t.g.ActiveTrades = kept
}

// transfer moves pos between owned-property sets. The mortgage flag travels
// with the space.
func (t *tx) transfer(pos, from, to int) {
	owned := t.g.Players[from].PropertiesOwned
	for i, p := range owned {
		if p == pos {
			t.g.Players[from].PropertiesOwned = append(owned[:i], owned[i+1:]...)
			break
		}
	}
	t.g.Properties[pos].Owner = to
	t.g.Players[to].PropertiesOwned = append(t.g.Players[to].PropertiesOwned, pos)
}
