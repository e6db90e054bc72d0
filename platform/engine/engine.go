// Package engine is the rules engine for one game. Every exported operation
// is a single atomic transition on a models.GameRecord: it runs against a
// copy and the copy replaces the record only when the operation succeeds and
// the record still satisfies its invariants.
//
// The engine does no locking. Callers serialize operations per game.
package engine

import (
	"errors"
	"time"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/board"
	"github.com/sirupsen/logrus"
)

const (
	maxDoubles    = 3
	maxJailTurns  = 3
	hotelLevel    = 5
	interestRatio = 10 // unmortgaging costs the mortgage value plus 1/10
)

type Game struct {
	rec *models.GameRecord
	log *logrus.Entry
}

func New(rec *models.GameRecord) *Game {
	return &Game{
		rec: rec,
		log: logrus.WithFields(logrus.Fields{"component": "engine", "game": rec.ID}),
	}
}

func (e *Game) Record() *models.GameRecord { return e.rec }

// tx is the working copy an operation mutates.
type tx struct {
	g   *models.GameRecord
	now time.Time
	log *logrus.Entry
}

func (e *Game) apply(op, caller string, now time.Time, fn func(t *tx) error) error {
	next := e.rec.Clone()
	fields := logrus.Fields{"op": op, "player": caller}
	t := &tx{g: next, now: now, log: e.log.WithFields(fields)}

	err := fn(t)
	if err == nil {
		err = CheckInvariants(next)
	}
	if err != nil {
		t.log.WithError(err).Warn("operation rejected")
		var re *RuleError
		if errors.As(err, &re) {
			return err
		}
		return &RuleError{Op: op, Player: caller, Err: err}
	}

	*e.rec = *next
	t.log.Debug("operation applied")
	return nil
}

func validateSettings(s models.Settings) error {
	if s.StartingCash <= 0 || s.GoSalary < 0 || s.JailFine < 0 || s.BankFloat < 0 || s.EntryFee < 0 ||
		s.TurnTimeout <= 0 || s.GracePeriod < 0 || s.MaxTimeoutPenalties <= 0 || s.TradeExpiry <= 0 {
		return ErrInvalidSettings
	}
	return nil
}

func newPlayer(id string, now time.Time) models.PlayerRecord {
	return models.PlayerRecord{
		ID:           id,
		Phase:        phase(models.AwaitingRoll),
		LastActionAt: now,
	}
}

// Initialize creates a game waiting for players with the creator seated in
// slot 0.
func Initialize(id, creator string, settings models.Settings, now time.Time) (*models.GameRecord, error) {
	if id == "" || creator == "" {
		return nil, &RuleError{Op: "initialize_game", Player: creator, Err: ErrPlayerNotFound}
	}
	if err := validateSettings(settings); err != nil {
		return nil, &RuleError{Op: "initialize_game", Player: creator, Err: err}
	}
	rec := &models.GameRecord{
		ID:              id,
		Creator:         creator,
		Status:          models.WaitingForPlayers,
		Players:         []models.PlayerRecord{newPlayer(creator, now)},
		Winner:          models.NoPlayer,
		HousesRemaining: models.MaxHouses,
		HotelsRemaining: models.MaxHotels,
		Settings:        settings,
		TotalPrizePool:  settings.EntryFee,
		CreatedAt:       now,
	}
	rec.Alive.Add(0)
	for i := range rec.Properties {
		rec.Properties[i] = models.PropertyState{Owner: models.NoPlayer}
	}
	return rec, nil
}

func (e *Game) Join(player string, now time.Time) error {
	return e.apply("join_game", player, now, func(t *tx) error {
		if t.g.Status != models.WaitingForPlayers {
			return ErrGameNotWaiting
		}
		if player == "" {
			return ErrPlayerNotFound
		}
		if t.g.Slot(player) != models.NoPlayer {
			return ErrAlreadyJoined
		}
		if len(t.g.Players) >= models.MaxPlayers {
			return ErrGameFull
		}
		pool, err := checkedAdd(t.g.TotalPrizePool, t.g.Settings.EntryFee)
		if err != nil {
			return err
		}
		t.g.TotalPrizePool = pool
		t.g.Players = append(t.g.Players, newPlayer(player, now))
		t.g.Alive.Add(len(t.g.Players) - 1)
		return nil
	})
}

func (e *Game) Start(caller string, now time.Time) error {
	return e.apply("start_game", caller, now, func(t *tx) error {
		if t.g.Status != models.WaitingForPlayers {
			return ErrGameNotWaiting
		}
		if caller != t.g.Creator {
			return ErrNotCreator
		}
		if len(t.g.Players) < models.MinPlayers {
			return ErrNotEnoughPlayers
		}
		for i := range t.g.Players {
			p := &t.g.Players[i]
			p.CashBalance = t.g.Settings.StartingCash
			p.NetWorth = t.g.Settings.StartingCash
			p.Phase = phase(models.AwaitingRoll)
			p.LastActionAt = now
		}
		t.g.BankBalance = t.g.Settings.BankFloat
		t.g.Status = models.InProgress
		t.g.CurrentTurn = 0
		t.g.TurnStartedAt = now
		t.g.StartedAt = now
		return nil
	})
}

func phase(kind models.PhaseKind) models.TurnPhase {
	return models.TurnPhase{Kind: kind, Payee: models.NoPlayer}
}

func debt(reason models.DebtReason, amount int64, payee, pos int) models.TurnPhase {
	return models.TurnPhase{
		Kind:     models.AwaitingBankruptcy,
		Reason:   reason,
		Amount:   amount,
		Payee:    payee,
		Position: pos,
	}
}

// catalog reads a space the caller has already bounds-checked.
func catalog(pos int) models.Space {
	space, err := board.GetByPos(pos)
	if err != nil {
		panic(err)
	}
	return space
}

func (t *tx) requireInProgress() error {
	if t.g.Status != models.InProgress {
		return ErrGameNotInProgress
	}
	return nil
}

// member resolves a live participant.
func (t *tx) member(id string) (int, *models.PlayerRecord, error) {
	slot := t.g.Slot(id)
	if slot == models.NoPlayer {
		return 0, nil, ErrPlayerNotFound
	}
	if !t.g.Alive.Has(slot) {
		return 0, nil, ErrPlayerBankrupt
	}
	return slot, &t.g.Players[slot], nil
}

// actor resolves the live participant whose turn it is.
func (t *tx) actor(id string) (int, *models.PlayerRecord, error) {
	if err := t.requireInProgress(); err != nil {
		return 0, nil, err
	}
	slot, p, err := t.member(id)
	if err != nil {
		return 0, nil, err
	}
	if slot != t.g.CurrentTurn {
		return 0, nil, ErrNotPlayerTurn
	}
	p.LastActionAt = t.now
	return slot, p, nil
}

func requireNoPending(p *models.PlayerRecord) error {
	if p.Phase.Kind == models.AwaitingBankruptcy {
		return ErrMustDeclareBankruptcy
	}
	if p.Phase.Pending() {
		return ErrMustHandleSpecialSpace
	}
	return nil
}

func (t *tx) nextAliveAfter(slot int) int {
	n := len(t.g.Players)
	for i := 1; i <= n; i++ {
		next := (slot + i) % n
		if t.g.Alive.Has(next) {
			return next
		}
	}
	return slot
}

// closeTurn clears the turn-scoped state of slot and hands the turn on.
func (t *tx) closeTurn(slot int) {
	p := &t.g.Players[slot]
	p.HasRolledDice = false
	p.DoublesCount = 0
	p.LastDiceRoll = models.Dice{}
	p.Phase = phase(models.AwaitingRoll)
	t.advanceTurn()
}

func (t *tx) advanceTurn() {
	next := t.nextAliveAfter(t.g.CurrentTurn)
	t.g.CurrentTurn = next
	t.g.TurnStartedAt = t.now
	if np := &t.g.Players[next]; !np.Phase.Pending() {
		np.Phase = phase(models.AwaitingRoll)
	}
}

// ComputeRent is the rent owed for landing on pos with the given roll.
func (e *Game) ComputeRent(pos int, dice models.Dice) (int64, error) {
	return ComputeRent(e.rec, pos, dice)
}
