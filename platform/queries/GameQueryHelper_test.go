package queries

import (
	"testing"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/engine"
	"github.com/stretchr/testify/require"
)

func startedRecord(t *testing.T) *models.GameRecord {
	rec := newRecord(t, "abc")
	g := engine.New(rec)
	require.NoError(t, g.Join("bob", t0))
	require.NoError(t, g.Start("alice", t0))
	return rec
}

func TestIsUserTurn(t *testing.T) {
	rec := newRecord(t, "abc")
	require.False(t, IsUserTurn(rec, "alice"), "not started")

	rec = startedRecord(t)
	require.True(t, IsUserTurn(rec, "alice"))
	require.False(t, IsUserTurn(rec, "bob"))
	require.False(t, IsUserTurn(rec, "mallory"))
}

func TestStateView(t *testing.T) {
	rec := startedRecord(t)
	view := StateView(rec, map[string]string{"alice": "alice@example.com"})

	require.Equal(t, "abc", view.Id)
	require.Equal(t, "alice", view.CurrentTurn)
	require.Empty(t, view.Winner)
	require.Equal(t, t0.Add(rec.Settings.TurnTimeout), view.TurnDeadline)
	require.Len(t, view.Players, 2)
	require.Equal(t, "alice@example.com", view.Players[0].Username)
	require.Equal(t, "bob", view.Players[1].Username)
	require.Equal(t, int64(1500), view.Players[1].Balance)
	require.Equal(t, models.AwaitingRoll, view.Players[0].Phase.Kind)
	require.Equal(t, int64(20580), view.BankBalance)

	require.NoError(t, engine.New(rec).DeclareBankruptcy("bob", t0))
	view = StateView(rec, nil)
	require.Equal(t, models.Finished, view.Status)
	require.Equal(t, "alice", view.Winner)
	require.Empty(t, view.CurrentTurn)
	require.True(t, view.Players[1].Bankrupt)
}

func TestSlotID(t *testing.T) {
	rec := startedRecord(t)
	require.Equal(t, "bob", SlotID(rec, 1))
	require.Empty(t, SlotID(rec, models.NoPlayer))
	require.Empty(t, SlotID(rec, 3))
}
