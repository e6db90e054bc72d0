package routes

import (
	"github.com/DedS3t/monopoly-engine/app/controllers"
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
)

func GameRoutes(a *fiber.App, games *controllers.GameController) {
	route := a.Group("/game")
	route.Get("/verify", games.VerifyGame)
	route.Get("/all", games.GetAllAvailGames)
	route.Get("/find", games.FindAvailGame)
	route.Get("/:id/state", games.State)
}

// PrivateRoutes registers everything behind the bearer token. Call it after
// the public groups.
func PrivateRoutes(a *fiber.App, games *controllers.GameController, secret []byte) {
	a.Use(jwtware.New(jwtware.Config{
		SigningKey: secret,
	}))

	a.Get("/user/cur", controllers.Cur)

	route := a.Group("/game")
	route.Post("/create", games.CreateGame)
	route.Post("/:id/force-end-turn", games.ForceEndTurn)
	route.Post("/:id/force-bankruptcy/:player", games.ForceBankruptcy)
	route.Post("/:id/trades/sweep", games.SweepTrades)
}
