package main

import (
	"context"
	"time"

	"github.com/DedS3t/monopoly-engine/app/controllers"
	"github.com/DedS3t/monopoly-engine/pkg/routes"
	"github.com/DedS3t/monopoly-engine/platform/cache"
	"github.com/DedS3t/monopoly-engine/platform/config"
	"github.com/DedS3t/monopoly-engine/platform/database"
	"github.com/DedS3t/monopoly-engine/platform/dice"
	"github.com/DedS3t/monopoly-engine/platform/logging"
	"github.com/DedS3t/monopoly-engine/platform/queries"
	socket "github.com/DedS3t/monopoly-engine/platform/sockets"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"
)

const sweepEvery = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	logging.Init(cfg.LogLevel, cfg.LogFormat)

	seed := uint64(time.Now().UnixNano())
	rand.Seed(seed)

	var (
		games queries.GameRepository
		lobby queries.Lobby
	)
	switch cfg.Store {
	case config.StoreMemory:
		games = queries.NewMemoryGames()
		lobby = queries.NewMemoryLobby()
	default:
		db := database.PostgreSQLConnection(cfg.DB)
		defer db.Close()
		if err := database.CreateSchema(db); err != nil {
			logrus.WithError(err).Fatal("create schema")
		}
		pool := cache.CreateRedisPool(cfg.RedisURL)
		defer pool.Close()
		games = queries.NewRedisGames(pool, cfg.LockTTL)
		lobby = queries.NewPostgresLobby(db)
	}

	srv, err := socket.NewServer(games, lobby, dice.NewSource(seed), []byte(cfg.JWTSecret))
	if err != nil {
		logrus.WithError(err).Fatal("create socket server")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.RunSweeper(ctx, sweepEvery)
	go func() {
		if err := srv.ListenAndServe(cfg.SocketAddr, cfg.AllowedOrigins); err != nil {
			logrus.WithError(err).Fatal("socket server")
		}
	}()

	auth := &controllers.AuthController{
		Lobby:  lobby,
		Secret: []byte(cfg.JWTSecret),
		Clock:  time.Now,
	}
	gameCtl := &controllers.GameController{
		Lobby:  lobby,
		Games:  games,
		Rules:  cfg.Rules,
		Notify: srv,
		Clock:  time.Now,
	}

	app := fiber.New()
	app.Use(cors.New())
	routes.AuthRoutes(app, auth)
	routes.GameRoutes(app, gameCtl)
	routes.PrivateRoutes(app, gameCtl, []byte(cfg.JWTSecret))

	logrus.WithFields(logrus.Fields{"addr": cfg.HTTPAddr, "store": cfg.Store}).Info("http server listening")
	if err := app.Listen(cfg.HTTPAddr); err != nil {
		logrus.WithError(err).Fatal("http server")
	}
}
