package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/auth"
	"github.com/DedS3t/monopoly-engine/platform/queries"
	jwt "github.com/form3tech-oss/jwt-go"
	"github.com/gofiber/fiber/v2"
	uuid "github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	requestTimeout = 5 * time.Second
	tokenLifetime  = 72 * time.Hour
)

type AuthController struct {
	Lobby  queries.Lobby
	Secret []byte
	Clock  func() time.Time
}

func (a *AuthController) CreateUser(c *fiber.Ctx) error {
	userDto := new(models.UserDto)
	if err := c.BodyParser(userDto); err != nil || userDto.Email == "" || userDto.Pass == "" {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(userDto.Pass), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Error("hash password")
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	user := models.User{
		Id:       uuid.NewV4().String(),
		Email:    userDto.Email,
		Password: string(hash),
	}
	if err := a.Lobby.CreateUser(ctx, user); err != nil {
		logrus.WithError(err).WithField("email", userDto.Email).Info("create user refused")
		return c.SendStatus(fiber.StatusConflict)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": user.Id})
}

func (a *AuthController) Login(c *fiber.Ctx) error {
	userDto := new(models.UserDto)
	if err := c.BodyParser(userDto); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	user, err := a.Lobby.UserByEmail(ctx, userDto.Email)
	if errors.Is(err, queries.ErrUserNotFound) {
		return c.SendStatus(fiber.StatusUnauthorized)
	}
	if err != nil {
		logrus.WithError(err).Error("load user")
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(userDto.Pass)) != nil {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["user_id"] = user.Id
	claims["exp"] = a.Clock().Add(tokenLifetime).Unix()
	t, err := token.SignedString(a.Secret)
	if err != nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.JSON(fiber.Map{"access_token": t})
}

// UserID reads the caller from the token the jwt middleware verified.
func UserID(c *fiber.Ctx) (string, bool) {
	token, _ := c.Locals("user").(*jwt.Token)
	return auth.Subject(token)
}

func Cur(c *fiber.Ctx) error {
	id, ok := UserID(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}
	return c.SendString(id)
}
