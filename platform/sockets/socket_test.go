package socket

import (
	"context"
	"testing"
	"time"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/auth"
	"github.com/DedS3t/monopoly-engine/platform/engine"
	"github.com/DedS3t/monopoly-engine/platform/queries"
	jwt "github.com/form3tech-oss/jwt-go"
	"github.com/stretchr/testify/require"
)

var (
	t0     = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	secret = []byte("test-secret")
)

func token(t *testing.T, user string, key []byte) string {
	t.Helper()
	tok := jwt.New(jwt.SigningMethodHS256)
	tok.Claims.(jwt.MapClaims)["user_id"] = user
	s, err := tok.SignedString(key)
	require.NoError(t, err)
	return s
}

// scripted hands out a fixed sequence of rolls and card indexes.
type scripted struct {
	rolls []models.Dice
	cards []int
}

func (s *scripted) Roll() models.Dice {
	d := s.rolls[0]
	s.rolls = s.rolls[1:]
	return d
}

func (s *scripted) Draw(n int) int {
	idx := s.cards[0] % n
	s.cards = s.cards[1:]
	return idx
}

type fixture struct {
	srv   *Server
	games *queries.MemoryGames
	lobby *queries.MemoryLobby
	dice  *scripted
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		games: queries.NewMemoryGames(),
		lobby: queries.NewMemoryLobby(),
		dice:  &scripted{},
		now:   t0,
	}
	srv, err := NewServer(f.games, f.lobby, f.dice, secret)
	require.NoError(t, err)
	srv.clock = func() time.Time { return f.now }
	f.srv = srv

	ctx := context.Background()
	for _, id := range []string{"alice", "bob"} {
		require.NoError(t, f.lobby.CreateUser(ctx, models.User{Id: id, Email: id + "@example.com"}))
	}
	require.NoError(t, f.lobby.CreateGame(ctx, models.Game{Id: "g1", Status: string(models.WaitingForPlayers)}))
	require.NoError(t, f.lobby.CreatePlayer(ctx, models.Player{Game_id: "g1", User_id: "alice", Username: "alice@example.com"}))
	rec, err := engine.Initialize("g1", "alice", models.DefaultSettings(), t0)
	require.NoError(t, err)
	require.NoError(t, f.games.Create(ctx, rec))
	return f
}

func (f *fixture) do(t *testing.T, event, user string, mod ...func(*request)) (*models.GameRecord, interface{}) {
	t.Helper()
	req := request{GameID: "g1", UserID: user}
	for _, m := range mod {
		m(&req)
	}
	rec, result, err := f.srv.apply(context.Background(), event, req)
	require.NoError(t, err)
	return rec, result
}

func (f *fixture) started(t *testing.T) {
	t.Helper()
	_, err := f.srv.join(context.Background(), request{GameID: "g1", UserID: "bob"})
	require.NoError(t, err)
	f.do(t, "start-game", "alice")
}

func TestDecodeTakesCallerFromToken(t *testing.T) {
	f := newFixture(t)

	req, err := f.srv.decode(`{"game_id":"g1","token":"` + token(t, "bob", secret) + `"}`)
	require.NoError(t, err)
	require.Equal(t, "bob", req.UserID)

	_, err = f.srv.decode(`{"game_id":"g1","user_id":"alice","token":"` + token(t, "bob", secret) + `"}`)
	require.ErrorIs(t, err, ErrIdentityMismatch)

	_, err = f.srv.decode(`{"game_id":"g1","user_id":"alice"}`)
	require.ErrorIs(t, err, auth.ErrInvalidToken)
	_, err = f.srv.decode(`{"game_id":"g1","token":"` + token(t, "alice", []byte("forged")) + `"}`)
	require.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = f.srv.decode(`{"token":"` + token(t, "bob", secret) + `"}`)
	require.ErrorIs(t, err, ErrMalformed)
	_, err = f.srv.decode(`not json`)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestEnforcerIsTheTokenHolder(t *testing.T) {
	f := newFixture(t)
	f.started(t)
	f.now = t0.Add(3 * time.Minute)

	// alice cannot pose as bob to end her own stalled turn
	_, err := f.srv.decode(`{"game_id":"g1","user_id":"bob","token":"` + token(t, "alice", secret) + `"}`)
	require.ErrorIs(t, err, ErrIdentityMismatch)

	req, err := f.srv.decode(`{"game_id":"g1","token":"` + token(t, "alice", secret) + `"}`)
	require.NoError(t, err)
	_, _, err = f.srv.apply(context.Background(), "force-end-turn", req)
	require.ErrorIs(t, err, engine.ErrEnforcerIsActingPlayer)
}

func TestJoinAndStart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec, err := f.srv.join(ctx, request{GameID: "g1", UserID: "bob"})
	require.NoError(t, err)
	require.Len(t, rec.Players, 2)

	seats, err := f.lobby.ListPlayers(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, seats, 2)

	_, err = f.srv.join(ctx, request{GameID: "nope", UserID: "bob"})
	require.ErrorIs(t, err, queries.ErrGameNotFound)
	_, err = f.srv.join(ctx, request{GameID: "g1", UserID: "ghost"})
	require.ErrorIs(t, err, queries.ErrUserNotFound)

	rec, _ = f.do(t, "start-game", "alice")
	require.Equal(t, models.InProgress, rec.Status)
	open, err := f.lobby.OpenGames(ctx)
	require.NoError(t, err)
	require.Empty(t, open)
}

func TestRollBuyAndEndTurn(t *testing.T) {
	f := newFixture(t)
	f.started(t)

	f.dice.rolls = []models.Dice{{1, 2}}
	rec, result := f.do(t, "roll-dice", "alice")
	require.Equal(t, models.Dice{1, 2}, result)
	require.Equal(t, 3, rec.Players[0].Position)
	require.Equal(t, models.AwaitingPropertyDecision, rec.Players[0].Phase.Kind)

	rec, _ = f.do(t, "request-buy", "alice", func(r *request) { r.Pos = 3 })
	require.Equal(t, 0, rec.Properties[3].Owner)
	require.Equal(t, int64(1440), rec.Players[0].CashBalance)

	rec, _ = f.do(t, "end-turn", "alice")
	require.Equal(t, 1, rec.CurrentTurn)
}

func TestRefusedActionLeavesGameUntouched(t *testing.T) {
	f := newFixture(t)
	f.started(t)

	f.dice.rolls = []models.Dice{{3, 4}}
	_, _, err := f.srv.apply(context.Background(), "roll-dice", request{GameID: "g1", UserID: "bob"})
	require.ErrorIs(t, err, engine.ErrNotPlayerTurn)

	_, _, err = f.srv.apply(context.Background(), "teleport", request{GameID: "g1", UserID: "alice"})
	require.ErrorIs(t, err, ErrUnknownEvent)

	rec, err := f.games.Get(context.Background(), "g1")
	require.NoError(t, err)
	require.Equal(t, 0, rec.Players[1].Position)
	require.False(t, rec.Players[1].HasRolledDice)
}

func TestDrawCard(t *testing.T) {
	f := newFixture(t)
	f.started(t)

	// 2 is community chest
	f.dice.rolls = []models.Dice{{1, 1}}
	rec, _ := f.do(t, "roll-dice", "alice")
	require.Equal(t, models.AwaitingCardDraw, rec.Players[0].Phase.Kind)
	require.Equal(t, models.CommunityChestDeck, rec.Players[0].Phase.Deck)

	f.dice.cards = []int{0}
	rec, result := f.do(t, "draw-card", "alice")
	require.IsType(t, models.Card{}, result)
	require.NotEqual(t, models.AwaitingCardDraw, rec.Players[0].Phase.Kind)
}

func TestTradeFlow(t *testing.T) {
	f := newFixture(t)
	f.started(t)

	f.dice.rolls = []models.Dice{{1, 2}}
	f.do(t, "roll-dice", "alice")
	f.do(t, "request-buy", "alice", func(r *request) { r.Pos = 3 })

	pos := 3
	_, result := f.do(t, "propose-trade", "alice", func(r *request) {
		r.Offer = models.TradeOffer{
			Receiver:         "bob",
			Shape:            models.PropertyForMoney,
			ProposerProperty: &pos,
			ReceiverMoney:    100,
		}
	})
	id, ok := result.(string)
	require.True(t, ok)

	rec, result := f.do(t, "accept-trade", "bob", func(r *request) { r.TradeID = id })
	require.Equal(t, models.TradeAccepted, result.(models.TradeRecord).Status)
	require.Equal(t, 1, rec.Properties[3].Owner)
	require.Equal(t, int64(1400), rec.Players[1].CashBalance)
	require.Empty(t, rec.ActiveTrades)
}

func TestSweepTrades(t *testing.T) {
	f := newFixture(t)
	f.started(t)

	_, result := f.do(t, "propose-trade", "alice", func(r *request) {
		r.Offer = models.TradeOffer{Receiver: "bob", Shape: models.MoneyOnly, ProposerMoney: 50}
	})
	require.NotEmpty(t, result)

	ctx := context.Background()
	require.NoError(t, f.srv.SweepTrades(ctx))
	rec, err := f.games.Get(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, rec.ActiveTrades, 1)

	f.now = t0.Add(rec.Settings.TradeExpiry)
	require.NoError(t, f.srv.SweepTrades(ctx))
	rec, err = f.games.Get(ctx, "g1")
	require.NoError(t, err)
	require.Empty(t, rec.ActiveTrades)
}

func TestLeaveForfeitsAndRecordsWinner(t *testing.T) {
	f := newFixture(t)
	f.started(t)
	ctx := context.Background()

	rec, err := f.srv.leave(ctx, request{GameID: "g1", UserID: "bob"})
	require.NoError(t, err)
	require.Equal(t, models.Finished, rec.Status)
	require.Equal(t, 0, rec.Winner)

	require.True(t, f.lobby.VerifyGame(ctx, "g1"))
	open, err := f.lobby.OpenGames(ctx)
	require.NoError(t, err)
	require.Empty(t, open)

	_, result := f.do(t, "claim-prize", "alice")
	require.Equal(t, int64(0), result)
}

func TestTimeoutEnforcement(t *testing.T) {
	f := newFixture(t)
	f.started(t)

	_, _, err := f.srv.apply(context.Background(), "force-end-turn", request{GameID: "g1", UserID: "bob"})
	require.ErrorIs(t, err, engine.ErrTimeoutNotReached)

	f.now = t0.Add(3 * time.Minute)
	rec, _ := f.do(t, "force-end-turn", "bob")
	require.Equal(t, 1, rec.CurrentTurn)
	require.Equal(t, 1, rec.Players[0].TimeoutPenaltyCount)
}
