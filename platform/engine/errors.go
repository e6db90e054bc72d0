package engine

import (
	"errors"

	"github.com/DedS3t/monopoly-engine/platform/board"
)

var (
	ErrInvalidSettings    = errors.New("invalid game settings")
	ErrGameNotWaiting     = errors.New("game is not waiting for players")
	ErrGameNotInProgress  = errors.New("game is not in progress")
	ErrGameNotFinished    = errors.New("game is not finished")
	ErrGameFull           = errors.New("game is full")
	ErrAlreadyJoined      = errors.New("player already joined")
	ErrNotEnoughPlayers   = errors.New("not enough players to start")
	ErrNotCreator         = errors.New("only the game creator can do this")
	ErrPlayerNotFound     = errors.New("player not in game")
	ErrPlayerBankrupt     = errors.New("player is bankrupt")
	ErrInvariantViolation = errors.New("invariant violation")

	ErrNotPlayerTurn          = errors.New("not player turn")
	ErrAlreadyRolledDice      = errors.New("already rolled dice")
	ErrHasNotRolledDice       = errors.New("has not rolled dice")
	ErrMustHandleSpecialSpace = errors.New("must handle special space first")
	ErrMustDeclareBankruptcy  = errors.New("must declare bankruptcy")
	ErrInvalidDice            = errors.New("dice values must be between 1 and 6")
	ErrNotInJail              = errors.New("player is not in jail")
	ErrNoJailCards            = errors.New("no get out of jail cards")
	ErrNoPendingCardDraw      = errors.New("no card draw pending")
	ErrWrongDeck              = errors.New("pending card draw is for the other deck")

	ErrInvalidPosition         = board.ErrInvalidPosition
	ErrInvalidCardIndex        = board.ErrInvalidCardIndex
	ErrNotOnSpace              = errors.New("player is not on that space")
	ErrNotPurchasable          = errors.New("space cannot be purchased")
	ErrAlreadyOwned            = errors.New("space is already owned")
	ErrNoPendingPropertyAction = errors.New("no property decision pending for that space")
	ErrNoPendingPayment        = errors.New("no matching payment pending")
	ErrNoDebt                  = errors.New("no outstanding debt")
	ErrInsufficientFunds       = errors.New("insufficient funds")
	ErrNotOwner                = errors.New("player does not own that space")
	ErrAlreadyMortgaged        = errors.New("space is already mortgaged")
	ErrNotMortgaged            = errors.New("space is not mortgaged")

	ErrNotStreet          = errors.New("space is not a street")
	ErrMortgaged          = errors.New("color group has a mortgaged space")
	ErrNoMonopoly         = errors.New("player does not own the whole color group")
	ErrHasHotel           = errors.New("space already has a hotel")
	ErrMaxHouses          = errors.New("space already has four houses")
	ErrNeedsFourHouses    = errors.New("hotel requires four houses")
	ErrUnevenDevelopment  = errors.New("uneven development within color group")
	ErrNoHousesRemaining  = errors.New("bank has no houses left")
	ErrNoHotelsRemaining  = errors.New("bank has no hotels left")
	ErrNoBuildings        = errors.New("space has no buildings")
	ErrGroupHasBuildings  = errors.New("color group has buildings")
	ErrSupplyOverflow     = errors.New("building supply would exceed its cap")
	ErrArithmeticOverflow = errors.New("arithmetic overflow")
	ErrBankInsufficient   = errors.New("bank cannot cover payout")
	ErrInvalidAmount      = errors.New("amount must not be negative")

	ErrTooManyTrades       = errors.New("too many active trades")
	ErrTradeNotFound       = errors.New("trade not found")
	ErrTradeNotPending     = errors.New("trade is not pending")
	ErrTradeShapeMismatch  = errors.New("trade fields do not match its shape")
	ErrSelfTrade           = errors.New("cannot trade with yourself")
	ErrTradeExpired        = errors.New("trade has expired")
	ErrNotTradeReceiver    = errors.New("only the receiver can do this")
	ErrNotTradeProposer    = errors.New("only the proposer can do this")
	ErrPropertyHasBuilding = errors.New("property group must be free of buildings to trade")

	ErrTimeoutNotReached          = errors.New("turn timeout not reached")
	ErrRecentActivity             = errors.New("player acted within the grace period")
	ErrEnforcerIsActingPlayer     = errors.New("acting player cannot force their own turn")
	ErrPenaltyThresholdNotReached = errors.New("timeout penalties below threshold")

	ErrNotWinner    = errors.New("only the winner can claim the prize")
	ErrPrizeClaimed = errors.New("prize already claimed")
)

// RuleError reports which operation failed and which precondition or
// invariant it violated. Use errors.Is against the Err* values.
type RuleError struct {
	Op     string
	Player string
	Err    error
}

func (e *RuleError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *RuleError) Unwrap() error { return e.Err }
