package socket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/auth"
	"github.com/DedS3t/monopoly-engine/platform/board"
	"github.com/DedS3t/monopoly-engine/platform/engine"
	"github.com/DedS3t/monopoly-engine/platform/queries"
	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

const requestTimeout = 5 * time.Second

var (
	ErrUnknownEvent     = errors.New("unknown event")
	ErrMalformed        = errors.New("malformed request")
	ErrIdentityMismatch = errors.New("user does not match token")
)

// Roller supplies dice and card indexes. *dice.Source satisfies it.
type Roller interface {
	Roll() models.Dice
	Draw(n int) int
}

// request is the payload every participant event carries. The caller is
// taken from Token, the same bearer token the HTTP routes accept.
type request struct {
	GameID  string            `json:"game_id"`
	Token   string            `json:"token"`
	UserID  string            `json:"user_id"`
	Pos     int               `json:"pos"`
	TradeID string            `json:"trade_id"`
	Target  string            `json:"target"`
	Offer   models.TradeOffer `json:"offer"`
}

type Server struct {
	io     *socketio.Server
	games  queries.GameRepository
	lobby  queries.Lobby
	dice   Roller
	clock  func() time.Time
	secret []byte
	log    *logrus.Entry
}

func NewServer(games queries.GameRepository, lobby queries.Lobby, dice Roller, secret []byte) (*Server, error) {
	io, err := socketio.NewServer(nil)
	if err != nil {
		return nil, err
	}
	s := &Server{
		io:     io,
		games:  games,
		lobby:  lobby,
		dice:   dice,
		clock:  time.Now,
		secret: secret,
		log:    logrus.WithField("component", "socket"),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.io.OnConnect("/", func(c socketio.Conn) error {
		c.SetContext("")
		s.log.WithField("conn", c.ID()).Debug("connected")
		return nil
	})

	s.io.OnEvent("/", "join-game", func(c socketio.Conn, msg string) {
		req, ok := s.parse(c, msg)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		rec, err := s.join(ctx, req)
		if err != nil {
			s.fail(c, "join-game", req, err)
			return
		}
		c.Join(req.GameID)
		c.Emit("joined-game", fmt.Sprint(len(rec.Players)))
		s.Broadcast(ctx, rec)
	})

	s.io.OnEvent("/", "leave-game", func(c socketio.Conn, msg string) {
		req, ok := s.parse(c, msg)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		rec, err := s.leave(ctx, req)
		if err != nil {
			s.fail(c, "leave-game", req, err)
			return
		}
		c.Leave(req.GameID)
		s.Broadcast(ctx, rec)
	})

	for event := range actions {
		s.io.OnEvent("/", event, s.handle(event))
	}

	s.io.OnError("/", func(c socketio.Conn, err error) {
		s.log.WithError(err).Warn("socket error")
	})

	s.io.OnDisconnect("/", func(c socketio.Conn, reason string) {
		s.log.WithField("reason", reason).Debug("disconnected")
		c.LeaveAll()
	})
}

func (s *Server) parse(c socketio.Conn, msg string) (request, bool) {
	req, err := s.decode(msg)
	if err != nil {
		s.log.WithError(err).WithField("conn", c.ID()).Info("request rejected")
		c.Emit("error-message", err.Error())
		return req, false
	}
	return req, true
}

// decode unpacks an event payload and fills in the caller from its token.
// A user_id that disagrees with the token is refused.
func (s *Server) decode(msg string) (request, error) {
	var req request
	if err := json.Unmarshal([]byte(msg), &req); err != nil || req.GameID == "" {
		return req, ErrMalformed
	}
	user, err := auth.Verify(s.secret, req.Token)
	if err != nil {
		return req, err
	}
	if req.UserID != "" && req.UserID != user {
		return req, ErrIdentityMismatch
	}
	req.UserID = user
	return req, nil
}

func (s *Server) handle(event string) func(socketio.Conn, string) {
	return func(c socketio.Conn, msg string) {
		req, ok := s.parse(c, msg)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		rec, result, err := s.apply(ctx, event, req)
		if err != nil {
			s.fail(c, event, req, err)
			return
		}
		if result != nil {
			data, err := json.Marshal(result)
			if err == nil {
				c.Emit(event+"-result", string(data))
			}
		}
		s.Broadcast(ctx, rec)
	}
}

func (s *Server) fail(c socketio.Conn, event string, req request, err error) {
	s.log.WithError(err).WithFields(logrus.Fields{
		"event": event,
		"game":  req.GameID,
		"user":  req.UserID,
	}).Info("request refused")
	c.Emit("error-message", err.Error())
}

// apply runs one participant action under the game's lock.
func (s *Server) apply(ctx context.Context, event string, req request) (*models.GameRecord, interface{}, error) {
	act, ok := actions[event]
	if !ok {
		return nil, nil, ErrUnknownEvent
	}
	var result interface{}
	rec, err := s.games.Update(ctx, req.GameID, func(g *engine.Game) error {
		var err error
		result, err = act(s, g, req, s.clock())
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	s.syncLobby(ctx, event, rec)
	return rec, result, nil
}

func (s *Server) syncLobby(ctx context.Context, event string, rec *models.GameRecord) {
	var err error
	switch {
	case rec.Status == models.Finished:
		err = s.lobby.RecordWinner(ctx, rec.ID, queries.SlotID(rec, rec.Winner))
	case event == "start-game":
		err = s.lobby.SetStatus(ctx, rec.ID, models.InProgress)
	}
	if err != nil {
		s.log.WithError(err).WithField("game", rec.ID).Error("lobby update")
	}
}

func (s *Server) join(ctx context.Context, req request) (*models.GameRecord, error) {
	if !s.lobby.VerifyGame(ctx, req.GameID) {
		return nil, queries.ErrGameNotFound
	}
	user, err := s.lobby.GetUserData(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	rec, err := s.games.Update(ctx, req.GameID, func(g *engine.Game) error {
		return g.Join(req.UserID, s.clock())
	})
	if err != nil {
		return nil, err
	}
	err = s.lobby.CreatePlayer(ctx, models.Player{
		Game_id:  req.GameID,
		User_id:  req.UserID,
		Username: user.Email,
		Active:   true,
	})
	if err != nil {
		s.log.WithError(err).WithField("game", req.GameID).Error("create lobby player")
	}
	return rec, nil
}

// leave forfeits a running game. Seats in a game that has not started stay
// taken.
func (s *Server) leave(ctx context.Context, req request) (*models.GameRecord, error) {
	rec, err := s.games.Update(ctx, req.GameID, func(g *engine.Game) error {
		return g.DeclareBankruptcy(req.UserID, s.clock())
	})
	if err != nil {
		return nil, err
	}
	if err := s.lobby.DeletePlayer(ctx, req.UserID, req.GameID); err != nil {
		s.log.WithError(err).WithField("game", req.GameID).Error("delete lobby player")
	}
	s.syncLobby(ctx, "leave-game", rec)
	return rec, nil
}

// Broadcast sends the public state of rec to everyone in its room.
func (s *Server) Broadcast(ctx context.Context, rec *models.GameRecord) {
	names := map[string]string{}
	seats, err := s.lobby.ListPlayers(ctx, rec.ID)
	if err != nil {
		s.log.WithError(err).WithField("game", rec.ID).Warn("list lobby players")
	}
	for _, seat := range seats {
		names[seat.User_id] = seat.Username
	}
	data, err := json.Marshal(queries.StateView(rec, names))
	if err != nil {
		s.log.WithError(err).Error("encode state")
		return
	}
	s.io.BroadcastToRoom("/", rec.ID, "state", string(data))
	if rec.Status == models.Finished {
		s.io.BroadcastToRoom("/", rec.ID, "game-over", queries.SlotID(rec, rec.Winner))
	}
}

// SweepTrades expires stale offers in every stored game.
func (s *Server) SweepTrades(ctx context.Context) error {
	ids, err := s.games.IDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		var expired []models.TradeRecord
		rec, err := s.games.Update(ctx, id, func(g *engine.Game) error {
			var err error
			expired, err = g.ExpireTrades(s.clock())
			return err
		})
		if err != nil {
			s.log.WithError(err).WithField("game", id).Warn("trade sweep")
			continue
		}
		if len(expired) > 0 {
			s.log.WithFields(logrus.Fields{"game": id, "expired": len(expired)}).Info("trades expired")
			s.Broadcast(ctx, rec)
		}
	}
	return nil
}

func (s *Server) RunSweeper(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.SweepTrades(ctx); err != nil {
				s.log.WithError(err).Error("trade sweep")
			}
		}
	}
}

func (s *Server) Handler(origins []string) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
	})
	mux := http.NewServeMux()
	mux.Handle("/socket.io/", s.io)
	return c.Handler(mux)
}

func (s *Server) ListenAndServe(addr string, origins []string) error {
	go func() {
		if err := s.io.Serve(); err != nil {
			s.log.WithError(err).Error("socket.io serve")
		}
	}()
	defer s.io.Close()
	s.log.WithField("addr", addr).Info("socket server listening")
	return http.ListenAndServe(addr, s.Handler(origins))
}

func drawCard(s *Server, g *engine.Game, req request, now time.Time) (interface{}, error) {
	slot := g.Record().Slot(req.UserID)
	if slot == models.NoPlayer {
		return nil, engine.ErrPlayerNotFound
	}
	kind := g.Record().Players[slot].Phase.Deck
	if kind == "" {
		return nil, engine.ErrNoPendingCardDraw
	}
	deck, err := board.Deck(kind)
	if err != nil {
		return nil, err
	}
	idx := s.dice.Draw(len(deck))
	if kind == models.ChanceDeck {
		err = g.DrawChanceCard(req.UserID, idx, now)
	} else {
		err = g.DrawCommunityChestCard(req.UserID, idx, now)
	}
	if err != nil {
		return nil, err
	}
	return deck[idx], nil
}

type action func(s *Server, g *engine.Game, req request, now time.Time) (interface{}, error)

var actions = map[string]action{
	"start-game": func(_ *Server, g *engine.Game, req request, now time.Time) (interface{}, error) {
		return nil, g.Start(req.UserID, now)
	},
	"roll-dice": func(s *Server, g *engine.Game, req request, now time.Time) (interface{}, error) {
		d := s.dice.Roll()
		return d, g.RollDice(req.UserID, d, now)
	},
	"request-buy": func(_ *Server, g *engine.Game, req request, now time.Time) (interface{}, error) {
		return nil, g.BuyProperty(req.UserID, req.Pos, now)
	},
	"decline-buy": func(_ *Server, g *engine.Game, req request, now time.Time) (interface{}, error) {
		return nil, g.DeclineProperty(req.UserID, req.Pos, now)
	},
	"pay-rent": func(_ *Server, g *engine.Game, req request, now time.Time) (interface{}, error) {
		return nil, g.PayRent(req.UserID, req.Pos, now)
	},
	"pay-tax": func(_ *Server, g *engine.Game, req request, now time.Time) (interface{}, error) {
		return nil, g.PayTax(req.UserID, now)
	},
	"draw-card": drawCard,
	"buy-house": func(_ *Server, g *engine.Game, req request, now time.Time) (interface{}, error) {
		return nil, g.BuildHouse(req.UserID, req.Pos, now)
	},
	"buy-hotel": func(_ *Server, g *engine.Game, req request, now time.Time) (interface{}, error) {
		return nil, g.BuildHotel(req.UserID, req.Pos, now)
	},
	"sell-building": func(_ *Server, g *engine.Game, req request, now time.Time) (interface{}, error) {
		return nil, g.SellBuilding(req.UserID, req.Pos, now)
	},
	"mortgage": func(_ *Server, g *engine.Game, req request, now time.Time) (interface{}, error) {
		return nil, g.MortgageProperty(req.UserID, req.Pos, now)
	},
	"unmortgage": func(_ *Server, g *engine.Game, req request, now time.Time) (interface{}, error) {
		return nil, g.UnmortgageProperty(req.UserID, req.Pos, now)
	},
	"pay-out-jail": func(_ *Server, g *engine.Game, req request, now time.Time) (interface{}, error) {
		return nil, g.PayJailFine(req.UserID, now)
	},
	"use-jail-card": func(_ *Server, g *engine.Game, req request, now time.Time) (interface{}, error) {
		return nil, g.UseJailCard(req.UserID, now)
	},
	"settle-debt": func(_ *Server, g *engine.Game, req request, now time.Time) (interface{}, error) {
		return nil, g.SettleDebt(req.UserID, now)
	},
	"declare-bankruptcy": func(_ *Server, g *engine.Game, req request, now time.Time) (interface{}, error) {
		return nil, g.DeclareBankruptcy(req.UserID, now)
	},
	"end-turn": func(_ *Server, g *engine.Game, req request, now time.Time) (interface{}, error) {
		return nil, g.EndTurn(req.UserID, now)
	},
	"propose-trade": func(_ *Server, g *engine.Game, req request, now time.Time) (interface{}, error) {
		return g.CreateTrade(req.UserID, req.Offer, now)
	},
	"accept-trade": func(_ *Server, g *engine.Game, req request, now time.Time) (interface{}, error) {
		return g.AcceptTrade(req.UserID, req.TradeID, now)
	},
	"reject-trade": func(_ *Server, g *engine.Game, req request, now time.Time) (interface{}, error) {
		return g.RejectTrade(req.UserID, req.TradeID, now)
	},
	"cancel-trade": func(_ *Server, g *engine.Game, req request, now time.Time) (interface{}, error) {
		return g.CancelTrade(req.UserID, req.TradeID, now)
	},
	"force-end-turn": func(_ *Server, g *engine.Game, req request, now time.Time) (interface{}, error) {
		return nil, g.ForceEndTurn(req.UserID, now)
	},
	"force-bankruptcy": func(_ *Server, g *engine.Game, req request, now time.Time) (interface{}, error) {
		return nil, g.ForceBankruptcyForTimeout(req.UserID, req.Target, now)
	},
	"claim-prize": func(_ *Server, g *engine.Game, req request, now time.Time) (interface{}, error) {
		return g.ClaimPrize(req.UserID, now)
	},
}
