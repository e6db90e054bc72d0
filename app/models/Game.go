package models

import "time"

// Game is the lobby row stored in postgres. The live economic state is a
// GameRecord kept in the game repository.
type Game struct {
	Id        string
	Name      string
	Status    string
	Type      string
	Winner    string
	CreatedAt time.Time `pg:"default:now()"`
}

type GameCreateDto struct {
	Name string
	Type string
}

type VerifyGameDto struct {
	Code    string
	User_id string
}

type GameStatus string

const (
	WaitingForPlayers GameStatus = "waiting"
	InProgress        GameStatus = "in progress"
	Finished          GameStatus = "finished"
)

const (
	MaxPlayers      = 4
	MinPlayers      = 2
	MaxHouses       = 32
	MaxHotels       = 12
	MaxActiveTrades = 20
	NoPlayer        = -1
)

// Settings are the per-game economic and timing rules.
type Settings struct {
	StartingCash        int64         `json:"starting_cash"`
	GoSalary            int64         `json:"go_salary"`
	JailFine            int64         `json:"jail_fine"`
	BankFloat           int64         `json:"bank_float"`
	EntryFee            int64         `json:"entry_fee"`
	TurnTimeout         time.Duration `json:"turn_timeout"`
	GracePeriod         time.Duration `json:"grace_period"`
	MaxTimeoutPenalties int           `json:"max_timeout_penalties"`
	TradeExpiry         time.Duration `json:"trade_expiry"`
}

func DefaultSettings() Settings {
	return Settings{
		StartingCash:        1500,
		GoSalary:            200,
		JailFine:            50,
		BankFloat:           20580,
		TurnTimeout:         120 * time.Second,
		GracePeriod:         30 * time.Second,
		MaxTimeoutPenalties: 3,
		TradeExpiry:         10 * time.Minute,
	}
}

// PropertyState is the mutable part of one board space.
type PropertyState struct {
	Owner       int  `json:"owner"` // player slot, NoPlayer when unowned
	Houses      int  `json:"houses"`
	HasHotel    bool `json:"has_hotel"`
	IsMortgaged bool `json:"is_mortgaged"`
}

func (p PropertyState) Owned() bool { return p.Owner != NoPlayer }

// Level is the development level: 0..4 houses, 5 for a hotel.
func (p PropertyState) Level() int {
	if p.HasHotel {
		return 5
	}
	return p.Houses
}

// AliveSet marks which player slots are still in the game.
type AliveSet uint8

func (a AliveSet) Has(slot int) bool { return slot >= 0 && slot < 8 && a&(1<<uint(slot)) != 0 }

func (a *AliveSet) Add(slot int) { *a |= 1 << uint(slot) }

func (a *AliveSet) Remove(slot int) { *a &^= 1 << uint(slot) }

func (a AliveSet) Count() int {
	n := 0
	for v := a; v != 0; v &= v - 1 {
		n++
	}
	return n
}

type GameRecord struct {
	ID              string                   `json:"id"`
	Creator         string                   `json:"creator"`
	Status          GameStatus               `json:"status"`
	Players         []PlayerRecord           `json:"players"`
	Alive           AliveSet                 `json:"alive"`
	CurrentTurn     int                      `json:"current_turn"`
	Winner          int                      `json:"winner"`
	BankBalance     int64                    `json:"bank_balance"`
	HousesRemaining int                      `json:"houses_remaining"`
	HotelsRemaining int                      `json:"hotels_remaining"`
	Properties      [BoardSize]PropertyState `json:"properties"`
	ActiveTrades    []TradeRecord            `json:"active_trades"`
	TradeSeq        int                      `json:"trade_seq"`
	TurnStartedAt   time.Time                `json:"turn_started_at"`
	Settings        Settings                 `json:"settings"`
	TotalPrizePool  int64                    `json:"total_prize_pool"`
	PrizeClaimed    bool                     `json:"prize_claimed"`
	CreatedAt       time.Time                `json:"created_at"`
	StartedAt       time.Time                `json:"started_at"`
	EndedAt         time.Time                `json:"ended_at"`
}

// CurrentPlayers is the number of non-eliminated slots.
func (g *GameRecord) CurrentPlayers() int { return g.Alive.Count() }

// Slot returns the slot index of id, or NoPlayer.
func (g *GameRecord) Slot(id string) int {
	for i := range g.Players {
		if g.Players[i].ID == id {
			return i
		}
	}
	return NoPlayer
}

func (g *GameRecord) Clone() *GameRecord {
	c := *g
	c.Players = make([]PlayerRecord, len(g.Players))
	for i := range g.Players {
		c.Players[i] = g.Players[i].Clone()
	}
	c.ActiveTrades = make([]TradeRecord, len(g.ActiveTrades))
	copy(c.ActiveTrades, g.ActiveTrades)
	return &c
}

// GameStateDto is the public view of a game sent to clients.
type GameStateDto struct {
	Id              string                   `json:"id"`
	Status          GameStatus               `json:"status"`
	CurrentTurn     string                   `json:"current_turn"`
	Winner          string                   `json:"winner,omitempty"`
	Players         []PlayerDto              `json:"players"`
	BankBalance     int64                    `json:"bank_balance"`
	HousesRemaining int                      `json:"houses_remaining"`
	HotelsRemaining int                      `json:"hotels_remaining"`
	Properties      [BoardSize]PropertyState `json:"properties"`
	Trades          []TradeRecord            `json:"trades"`
	TurnDeadline    time.Time                `json:"turn_deadline"`
	PrizePool       int64                    `json:"prize_pool"`
}
