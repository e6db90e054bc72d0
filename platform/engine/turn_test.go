package engine

import (
	"testing"
	"time"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/board"
	"github.com/stretchr/testify/require"
)

func TestChanceParkingTicket(t *testing.T) {
	g := startGame(t, "alice", "bob")

	require.NoError(t, g.RollDice("alice", dice(3, 4), at(time.Second)))
	alice := player(g, 0)
	require.Equal(t, 7, alice.Position)
	require.Equal(t, models.AwaitingCardDraw, alice.Phase.Kind)
	require.Equal(t, models.ChanceDeck, alice.Phase.Deck)

	require.ErrorIs(t, g.EndTurn("alice", at(2*time.Second)), ErrMustHandleSpecialSpace)
	require.ErrorIs(t, g.DrawCommunityChestCard("alice", 0, at(2*time.Second)), ErrWrongDeck)
	require.ErrorIs(t, g.DrawChanceCard("alice", 16, at(2*time.Second)), ErrInvalidCardIndex)

	require.NoError(t, g.DrawChanceCard("alice", 15, at(3*time.Second)))
	alice = player(g, 0)
	require.Equal(t, int64(1450), alice.CashBalance)
	require.Equal(t, models.Resolved, alice.Phase.Kind)
	require.Equal(t, int64(20630), g.rec.BankBalance)

	require.NoError(t, g.EndTurn("alice", at(4*time.Second)))
	require.Equal(t, 1, g.rec.CurrentTurn)
	require.False(t, player(g, 0).HasRolledDice)
	require.Equal(t, at(4*time.Second), g.rec.TurnStartedAt)
}

func TestRollPreconditions(t *testing.T) {
	g := startGame(t, "alice", "bob")

	require.ErrorIs(t, g.RollDice("bob", dice(1, 2), t0), ErrNotPlayerTurn)
	require.ErrorIs(t, g.RollDice("alice", dice(0, 7), t0), ErrInvalidDice)
	require.ErrorIs(t, g.EndTurn("alice", t0), ErrHasNotRolledDice)

	require.NoError(t, g.RollDice("alice", dice(4, 6), t0))
	require.Equal(t, board.JailPosition, player(g, 0).Position)
	require.False(t, player(g, 0).InJail)
	require.ErrorIs(t, g.RollDice("alice", dice(1, 2), t0), ErrAlreadyRolledDice)
}

func TestDoubles(t *testing.T) {
	t.Run("a double earns another roll", func(t *testing.T) {
		g := startGame(t, "alice", "bob")
		require.NoError(t, g.RollDice("alice", dice(5, 5), t0))
		alice := player(g, 0)
		require.Equal(t, 1, alice.DoublesCount)
		require.False(t, alice.HasRolledDice)
		require.ErrorIs(t, g.EndTurn("alice", t0), ErrHasNotRolledDice)

		require.NoError(t, g.RollDice("alice", dice(1, 2), t0))
		alice = player(g, 0)
		require.Equal(t, 0, alice.DoublesCount)
		require.Equal(t, 13, alice.Position)
		require.True(t, alice.HasRolledDice)
	})

	t.Run("third double goes to jail without moving", func(t *testing.T) {
		g := startGame(t, "alice", "bob")
		require.NoError(t, g.RollDice("alice", dice(5, 5), t0))
		require.NoError(t, g.RollDice("alice", dice(5, 5), t0))
		require.Equal(t, 20, player(g, 0).Position)

		require.NoError(t, g.RollDice("alice", dice(5, 5), t0))
		alice := player(g, 0)
		require.True(t, alice.InJail)
		require.Equal(t, board.JailPosition, alice.Position)
		require.Equal(t, 0, alice.DoublesCount)
		require.Equal(t, 1, g.rec.CurrentTurn)
	})
}

func TestPassingGo(t *testing.T) {
	g := startGame(t, "alice", "bob")
	g.rec.Players[0].Position = 38

	require.NoError(t, g.RollDice("alice", dice(1, 2), t0))
	alice := player(g, 0)
	require.Equal(t, 1, alice.Position)
	require.Equal(t, int64(1700), alice.CashBalance)
	require.Equal(t, models.AwaitingPropertyDecision, alice.Phase.Kind)
	require.Equal(t, 1, alice.Phase.Position)
}

func TestPassingGoWithAShortBank(t *testing.T) {
	g := startGame(t, "alice", "bob")
	g.rec.Players[0].Position = 38
	g.rec.BankBalance = 50

	require.NoError(t, g.RollDice("alice", dice(1, 2), t0))
	alice := player(g, 0)
	require.Equal(t, 1, alice.Position)
	require.Equal(t, int64(1550), alice.CashBalance)
	require.Equal(t, int64(1550), alice.NetWorth)
	require.Zero(t, g.rec.BankBalance)
}

func TestGoToJailSpace(t *testing.T) {
	g := startGame(t, "alice", "bob")
	g.rec.Players[0].Position = 27

	require.NoError(t, g.RollDice("alice", dice(1, 2), t0))
	alice := player(g, 0)
	require.True(t, alice.InJail)
	require.Equal(t, board.JailPosition, alice.Position)
	require.Equal(t, int64(1500), alice.CashBalance)
	require.Equal(t, 1, g.rec.CurrentTurn)
}

func jailed(t *testing.T, turns int) *Game {
	g := startGame(t, "alice", "bob")
	g.rec.Players[0].Position = board.JailPosition
	g.rec.Players[0].InJail = true
	g.rec.Players[0].JailTurns = turns
	return g
}

func TestJail(t *testing.T) {
	t.Run("failed escape keeps the player jailed", func(t *testing.T) {
		g := jailed(t, 0)
		require.NoError(t, g.RollDice("alice", dice(1, 2), t0))
		alice := player(g, 0)
		require.True(t, alice.InJail)
		require.Equal(t, 1, alice.JailTurns)
		require.Equal(t, board.JailPosition, alice.Position)
		require.Equal(t, 1, g.rec.CurrentTurn)
	})

	t.Run("doubles escape and move without another roll", func(t *testing.T) {
		g := jailed(t, 1)
		require.NoError(t, g.RollDice("alice", dice(2, 2), t0))
		alice := player(g, 0)
		require.False(t, alice.InJail)
		require.Equal(t, 14, alice.Position)
		require.True(t, alice.HasRolledDice)
		require.Equal(t, 0, alice.DoublesCount)
	})

	t.Run("third failure pays the fine and moves", func(t *testing.T) {
		g := jailed(t, 2)
		require.NoError(t, g.RollDice("alice", dice(1, 2), t0))
		alice := player(g, 0)
		require.False(t, alice.InJail)
		require.Equal(t, 13, alice.Position)
		require.Equal(t, int64(1450), alice.CashBalance)
		require.Equal(t, 0, g.rec.CurrentTurn)
	})

	t.Run("third failure without cash leaves a debt", func(t *testing.T) {
		g := jailed(t, 2)
		give(g, 0, 1)
		g.rec.Players[0].CashBalance = 20

		require.NoError(t, g.RollDice("alice", dice(1, 2), t0))
		alice := player(g, 0)
		require.True(t, alice.InJail)
		require.Equal(t, models.AwaitingBankruptcy, alice.Phase.Kind)
		require.Equal(t, models.FineDebt, alice.Phase.Reason)
		require.Equal(t, int64(20), alice.CashBalance)
		require.Equal(t, 0, g.rec.CurrentTurn)
		require.ErrorIs(t, g.EndTurn("alice", t0), ErrMustDeclareBankruptcy)
		require.ErrorIs(t, g.SettleDebt("alice", t0), ErrInsufficientFunds)

		require.NoError(t, g.MortgageProperty("alice", 1, t0))
		require.NoError(t, g.SettleDebt("alice", t0))
		alice = player(g, 0)
		require.False(t, alice.InJail)
		require.Equal(t, int64(0), alice.CashBalance)
		require.Equal(t, 13, alice.Position)
		require.Equal(t, models.AwaitingPropertyDecision, alice.Phase.Kind)
	})

	t.Run("pay the fine before rolling", func(t *testing.T) {
		g := jailed(t, 0)
		require.NoError(t, g.PayJailFine("alice", t0))
		require.False(t, player(g, 0).InJail)
		require.Equal(t, int64(1450), player(g, 0).CashBalance)

		require.NoError(t, g.RollDice("alice", dice(1, 2), t0))
		require.Equal(t, 13, player(g, 0).Position)
	})

	t.Run("use a card", func(t *testing.T) {
		g := jailed(t, 0)
		require.ErrorIs(t, g.UseJailCard("alice", t0), ErrNoJailCards)
		g.rec.Players[0].GetOutOfJailCards = 1
		require.NoError(t, g.UseJailCard("alice", t0))
		alice := player(g, 0)
		require.False(t, alice.InJail)
		require.Equal(t, 0, alice.GetOutOfJailCards)
	})

	t.Run("only jailed players can buy out", func(t *testing.T) {
		g := startGame(t, "alice", "bob")
		require.ErrorIs(t, g.PayJailFine("alice", t0), ErrNotInJail)
	})
}

func TestTurnOrderSkipsEliminatedSlots(t *testing.T) {
	g := startGame(t, "alice", "bob", "carol")
	require.NoError(t, g.DeclareBankruptcy("bob", t0))

	require.NoError(t, g.RollDice("alice", dice(4, 6), t0))
	require.NoError(t, g.EndTurn("alice", t0))
	require.Equal(t, 2, g.rec.CurrentTurn)

	require.NoError(t, g.RollDice("carol", dice(4, 6), t0))
	require.NoError(t, g.EndTurn("carol", t0))
	require.Equal(t, 0, g.rec.CurrentTurn)
}

func TestTurnAlwaysMovesToAnotherLiveSlot(t *testing.T) {
	g := startGame(t, "alice", "bob", "carol", "dave")
	ids := []string{"alice", "bob", "carol", "dave"}
	for i := 0; i < 8; i++ {
		cur := g.rec.CurrentTurn
		require.NoError(t, g.RollDice(ids[cur], dice(4, 6), t0), "turn %d", i)
		require.NoError(t, g.EndTurn(ids[cur], t0))
		require.NotEqual(t, cur, g.rec.CurrentTurn)
		require.True(t, g.rec.Alive.Has(g.rec.CurrentTurn))
		g.rec.Players[cur].Position = 0
	}
}
