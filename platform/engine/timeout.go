package engine

import (
	"time"

	"github.com/DedS3t/monopoly-engine/app/models"
)

// ForceEndTurn closes the turn of an unresponsive player on behalf of
// someone else. The turn must have run past both the grace period and the
// timeout, and the acting player must have been idle for a full grace period.
// Anything pending on the turn is dropped as if the player had done nothing.
func (e *Game) ForceEndTurn(enforcer string, now time.Time) error {
	return e.apply("force_end_turn", enforcer, now, func(t *tx) error {
		if err := t.requireInProgress(); err != nil {
			return err
		}
		slot := t.g.CurrentTurn
		p := &t.g.Players[slot]
		if enforcer == p.ID {
			return ErrEnforcerIsActingPlayer
		}
		elapsed := t.now.Sub(t.g.TurnStartedAt)
		if elapsed <= t.g.Settings.GracePeriod || elapsed <= t.g.Settings.TurnTimeout {
			return ErrTimeoutNotReached
		}
		if t.now.Sub(p.LastActionAt) < t.g.Settings.GracePeriod {
			return ErrRecentActivity
		}
		if p.Phase.Kind == models.AwaitingBankruptcy {
			return ErrMustDeclareBankruptcy
		}

		p.TimeoutPenaltyCount++
		p.TotalTimeoutPenalties++
		t.closeTurn(slot)
		return nil
	})
}

// ForceBankruptcyForTimeout liquidates a player whose consecutive timeout
// penalties reached the configured maximum, or a debtor who has sat on an
// unpaid debt past the turn timeout. A debtor cannot be moved along by
// ForceEndTurn, so the second case is the only way out for the table.
func (e *Game) ForceBankruptcyForTimeout(enforcer, target string, now time.Time) error {
	return e.apply("force_bankruptcy_for_timeout", enforcer, now, func(t *tx) error {
		if err := t.requireInProgress(); err != nil {
			return err
		}
		if enforcer == target {
			return ErrEnforcerIsActingPlayer
		}
		slot, p, err := t.member(target)
		if err != nil {
			return err
		}
		if p.TimeoutPenaltyCount < t.g.Settings.MaxTimeoutPenalties && !t.stalledDebtor(slot) {
			return ErrPenaltyThresholdNotReached
		}
		t.log.WithField("target", target).Info("liquidating player for timeouts")
		return t.bankrupt(slot)
	})
}

// stalledDebtor reports whether slot owes a debt and has been idle long
// enough that its turn could have been forced to an end.
func (t *tx) stalledDebtor(slot int) bool {
	p := &t.g.Players[slot]
	if p.Phase.Kind != models.AwaitingBankruptcy {
		return false
	}
	wait := t.g.Settings.TurnTimeout
	if t.g.Settings.GracePeriod > wait {
		wait = t.g.Settings.GracePeriod
	}
	if t.now.Sub(p.LastActionAt) <= wait {
		return false
	}
	return slot != t.g.CurrentTurn || t.now.Sub(t.g.TurnStartedAt) > wait
}

// TurnDeadline is when the acting player becomes eligible for a forced turn
// end, ignoring the idle check.
func (e *Game) TurnDeadline() time.Time {
	wait := e.rec.Settings.TurnTimeout
	if e.rec.Settings.GracePeriod > wait {
		wait = e.rec.Settings.GracePeriod
	}
	return e.rec.TurnStartedAt.Add(wait)
}
