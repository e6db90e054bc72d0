package models

import "time"

// Player is the lobby row linking a user to a game.
type Player struct {
	User_id  string `pg:",pk"`
	Game_id  string `pg:",pk"`
	Username string
	Active   bool `pg:",use_zero"`
}

// PlayerDto is the public view of one seat sent to clients.
type PlayerDto struct {
	Id         string    `json:"id"`
	Username   string    `json:"username"`
	Balance    int64     `json:"balance"`
	NetWorth   int64     `json:"net_worth"`
	Pos        int       `json:"pos"`
	Properties []int     `json:"properties"`
	Jail       bool      `json:"jail"`
	Bankrupt   bool      `json:"bankrupt"`
	Phase      TurnPhase `json:"phase"`
}

// Dice is one roll of two dice as supplied by the randomness source.
type Dice [2]int

func (d Dice) Sum() int { return d[0] + d[1] }

func (d Dice) IsDouble() bool { return d[0] == d[1] }

func (d Dice) Valid() bool {
	return d[0] >= 1 && d[0] <= 6 && d[1] >= 1 && d[1] <= 6
}

type PhaseKind string

const (
	AwaitingRoll             PhaseKind = "awaiting_roll"
	AwaitingPropertyDecision PhaseKind = "awaiting_property_decision"
	AwaitingCardDraw         PhaseKind = "awaiting_card_draw"
	AwaitingPayment          PhaseKind = "awaiting_payment"
	AwaitingBankruptcy       PhaseKind = "awaiting_bankruptcy"
	Resolved                 PhaseKind = "resolved"
)

type DebtReason string

const (
	RentDebt DebtReason = "rent"
	TaxDebt  DebtReason = "tax"
	FineDebt DebtReason = "fine"
	CardDebt DebtReason = "card"
)

// TurnPhase is where a player stands inside a turn. Only the fields relevant
// to Kind are meaningful: Position for property decisions and rent, Deck for
// card draws, Reason/Amount/Payee for payments and debts.
type TurnPhase struct {
	Kind     PhaseKind  `json:"kind"`
	Position int        `json:"position,omitempty"`
	Deck     Deck       `json:"deck,omitempty"`
	Reason   DebtReason `json:"reason,omitempty"`
	Amount   int64      `json:"amount,omitempty"`
	Payee    int        `json:"payee"` // player slot, NoPlayer for the bank
}

// Pending reports whether the phase blocks the turn from closing.
func (t TurnPhase) Pending() bool {
	switch t.Kind {
	case AwaitingPropertyDecision, AwaitingCardDraw, AwaitingPayment, AwaitingBankruptcy:
		return true
	}
	return false
}

type PlayerRecord struct {
	ID                    string    `json:"id"`
	CashBalance           int64     `json:"cash_balance"`
	NetWorth              int64     `json:"net_worth"`
	Position              int       `json:"position"`
	InJail                bool      `json:"in_jail"`
	JailTurns             int       `json:"jail_turns"`
	DoublesCount          int       `json:"doubles_count"`
	IsBankrupt            bool      `json:"is_bankrupt"`
	PropertiesOwned       []int     `json:"properties_owned"`
	GetOutOfJailCards     int       `json:"get_out_of_jail_cards"`
	Phase                 TurnPhase `json:"phase"`
	HasRolledDice         bool      `json:"has_rolled_dice"`
	LastDiceRoll          Dice      `json:"last_dice_roll"`
	TimeoutPenaltyCount   int       `json:"timeout_penalty_count"`
	TotalTimeoutPenalties int       `json:"total_timeout_penalties"`
	LastActionAt          time.Time `json:"last_action_at"`
}

func (p PlayerRecord) Clone() PlayerRecord {
	c := p
	c.PropertiesOwned = append([]int(nil), p.PropertiesOwned...)
	return c
}

func (p *PlayerRecord) Owns(pos int) bool {
	for _, owned := range p.PropertiesOwned {
		if owned == pos {
			return true
		}
	}
	return false
}
