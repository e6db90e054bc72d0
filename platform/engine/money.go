package engine

import (
	"math"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/sirupsen/logrus"
)

func checkedAdd(a, b int64) (int64, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, ErrArithmeticOverflow
	}
	return a + b, nil
}

// checkedSub subtracts a non-negative amount from a balance that must stay
// non-negative.
func checkedSub(balance, amount int64) (int64, error) {
	if amount < 0 || balance < amount {
		return 0, ErrArithmeticOverflow
	}
	return balance - amount, nil
}

func checkedMul(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	c := a * b
	if c/b != a {
		return 0, ErrArithmeticOverflow
	}
	return c, nil
}

// pay moves amount from one party to another. models.NoPlayer is the bank.
// A player's net worth moves with their cash. Affordability is checked by
// callers that have a soft-fail path; an underflow here is a hard failure.
func (t *tx) pay(from, to int, amount int64) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	if amount == 0 || from == to {
		return nil
	}
	if from == models.NoPlayer {
		if t.g.BankBalance < amount {
			return ErrBankInsufficient
		}
		t.g.BankBalance -= amount
	} else if err := t.debit(from, amount); err != nil {
		return err
	}

	if to == models.NoPlayer {
		bank, err := checkedAdd(t.g.BankBalance, amount)
		if err != nil {
			return err
		}
		t.g.BankBalance = bank
		return nil
	}
	return t.credit(to, amount)
}

// payout pays a player from the bank, capped at what the bank still holds.
// It returns the amount actually paid.
func (t *tx) payout(slot int, amount int64) (int64, error) {
	if amount > t.g.BankBalance {
		t.log.WithFields(logrus.Fields{"owed": amount, "bank": t.g.BankBalance}).Warn("bank short on payout")
		amount = t.g.BankBalance
	}
	return amount, t.pay(models.NoPlayer, slot, amount)
}

func (t *tx) debit(slot int, amount int64) error {
	p := &t.g.Players[slot]
	cash, err := checkedSub(p.CashBalance, amount)
	if err != nil {
		return err
	}
	worth, err := checkedAdd(p.NetWorth, -amount)
	if err != nil {
		return err
	}
	p.CashBalance, p.NetWorth = cash, worth
	return nil
}

func (t *tx) credit(slot int, amount int64) error {
	p := &t.g.Players[slot]
	cash, err := checkedAdd(p.CashBalance, amount)
	if err != nil {
		return err
	}
	worth, err := checkedAdd(p.NetWorth, amount)
	if err != nil {
		return err
	}
	p.CashBalance, p.NetWorth = cash, worth
	return nil
}

// addWorth books a change in holdings that does not move cash.
func (t *tx) addWorth(slot int, amount int64) error {
	worth, err := checkedAdd(t.g.Players[slot].NetWorth, amount)
	if err != nil {
		return err
	}
	t.g.Players[slot].NetWorth = worth
	return nil
}

func (t *tx) returnHouses(n int) error {
	if n < 0 || t.g.HousesRemaining+n > models.MaxHouses {
		return ErrSupplyOverflow
	}
	t.g.HousesRemaining += n
	return nil
}

func (t *tx) returnHotels(n int) error {
	if n < 0 || t.g.HotelsRemaining+n > models.MaxHotels {
		return ErrSupplyOverflow
	}
	t.g.HotelsRemaining += n
	return nil
}
