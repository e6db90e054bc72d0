package routes

import (
	"github.com/DedS3t/monopoly-engine/app/controllers"
	"github.com/gofiber/fiber/v2"
)

func AuthRoutes(a *fiber.App, auth *controllers.AuthController) {
	route := a.Group("/user")

	route.Post("/register", auth.CreateUser)
	route.Post("/login", auth.Login)
}
