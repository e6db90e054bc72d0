package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/pkg"
	"github.com/DedS3t/monopoly-engine/platform/engine"
	"github.com/DedS3t/monopoly-engine/platform/queries"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Notifier pushes a changed game to its connected participants.
type Notifier interface {
	Broadcast(ctx context.Context, rec *models.GameRecord)
}

type GameController struct {
	Lobby  queries.Lobby
	Games  queries.GameRepository
	Rules  models.Settings
	Notify Notifier
	Clock  func() time.Time
}

func failure(c *fiber.Ctx, err error) error {
	var rule *engine.RuleError
	switch {
	case errors.As(err, &rule):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, queries.ErrGameNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, queries.ErrGameBusy):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	}
	logrus.WithError(err).Error("request failed")
	return c.SendStatus(fiber.StatusInternalServerError)
}

func (g *GameController) CreateGame(c *fiber.Ctx) error {
	user, ok := UserID(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}
	gameCreateDto := new(models.GameCreateDto)
	if err := c.BodyParser(gameCreateDto); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	owner, err := g.Lobby.GetUserData(ctx, user)
	if err != nil {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	game := models.Game{
		Id:     pkg.RandString(8),
		Name:   gameCreateDto.Name,
		Type:   gameCreateDto.Type,
		Status: string(models.WaitingForPlayers),
	}
	rec, err := engine.Initialize(game.Id, user, g.Rules, g.Clock())
	if err != nil {
		return failure(c, err)
	}
	if err := g.Games.Create(ctx, rec); err != nil {
		return failure(c, err)
	}
	if err := g.Lobby.CreateGame(ctx, game); err != nil {
		g.Games.Delete(ctx, game.Id)
		return failure(c, err)
	}
	err = g.Lobby.CreatePlayer(ctx, models.Player{
		User_id:  user,
		Game_id:  game.Id,
		Username: owner.Email,
		Active:   true,
	})
	if err != nil {
		logrus.WithError(err).WithField("game", game.Id).Error("seat creator")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": game.Id})
}

func (g *GameController) GetAllAvailGames(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	games, err := g.Lobby.OpenGames(ctx)
	if err != nil {
		return failure(c, err)
	}
	if games == nil {
		games = []models.Game{}
	}
	return c.JSON(games)
}

func (g *GameController) VerifyGame(c *fiber.Ctx) error {
	verifyGameDto := new(models.VerifyGameDto)
	if err := c.QueryParser(verifyGameDto); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	return c.JSON(fiber.Map{"status": g.Lobby.VerifyGame(ctx, verifyGameDto.Code)})
}

// FindAvailGame returns the oldest open game that still has a free seat.
func (g *GameController) FindAvailGame(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	games, err := g.Lobby.OpenGames(ctx)
	if err != nil {
		return failure(c, err)
	}
	for _, game := range games {
		rec, err := g.Games.Get(ctx, game.Id)
		if err != nil {
			continue
		}
		if rec.Status == models.WaitingForPlayers && len(rec.Players) < models.MaxPlayers {
			return c.JSON(fiber.Map{"id": game.Id})
		}
	}
	return c.SendStatus(fiber.StatusNotFound)
}

func (g *GameController) State(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	rec, err := g.Games.Get(ctx, c.Params("id"))
	if err != nil {
		return failure(c, err)
	}
	names := map[string]string{}
	seats, err := g.Lobby.ListPlayers(ctx, rec.ID)
	if err == nil {
		for _, seat := range seats {
			names[seat.User_id] = seat.Username
		}
	}
	return c.JSON(queries.StateView(rec, names))
}

// enforce runs an operation any participant may trigger on someone else's
// behalf, then pushes the result to the room.
func (g *GameController) enforce(c *fiber.Ctx, fn func(game *engine.Game, caller string, now time.Time) error) error {
	user, ok := UserID(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	rec, err := g.Games.Update(ctx, c.Params("id"), func(game *engine.Game) error {
		return fn(game, user, g.Clock())
	})
	if err != nil {
		return failure(c, err)
	}
	if rec.Status == models.Finished {
		if err := g.Lobby.RecordWinner(ctx, rec.ID, queries.SlotID(rec, rec.Winner)); err != nil {
			logrus.WithError(err).WithField("game", rec.ID).Error("record winner")
		}
	}
	if g.Notify != nil {
		g.Notify.Broadcast(ctx, rec)
	}
	return c.JSON(queries.StateView(rec, nil))
}

func (g *GameController) ForceEndTurn(c *fiber.Ctx) error {
	return g.enforce(c, func(game *engine.Game, caller string, now time.Time) error {
		return game.ForceEndTurn(caller, now)
	})
}

func (g *GameController) ForceBankruptcy(c *fiber.Ctx) error {
	target := c.Params("player")
	return g.enforce(c, func(game *engine.Game, caller string, now time.Time) error {
		return game.ForceBankruptcyForTimeout(caller, target, now)
	})
}

func (g *GameController) SweepTrades(c *fiber.Ctx) error {
	return g.enforce(c, func(game *engine.Game, _ string, now time.Time) error {
		_, err := game.ExpireTrades(now)
		return err
	})
}
