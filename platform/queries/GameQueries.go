package queries

import (
	"context"
	"errors"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/go-pg/pg/v10"
)

var ErrUserNotFound = errors.New("user not found")

// Lobby is the relational side of the server: accounts, lobby games and who
// sits in them.
type Lobby interface {
	CreateUser(ctx context.Context, user models.User) error
	UserByEmail(ctx context.Context, email string) (models.User, error)
	GetUserData(ctx context.Context, id string) (models.User, error)
	CreateGame(ctx context.Context, game models.Game) error
	VerifyGame(ctx context.Context, id string) bool
	OpenGames(ctx context.Context) ([]models.Game, error)
	CreatePlayer(ctx context.Context, player models.Player) error
	ListPlayers(ctx context.Context, gameID string) ([]models.Player, error)
	DeletePlayer(ctx context.Context, userID, gameID string) error
	SetStatus(ctx context.Context, gameID string, status models.GameStatus) error
	RecordWinner(ctx context.Context, gameID, winner string) error
}

type PostgresLobby struct {
	db *pg.DB
}

func NewPostgresLobby(db *pg.DB) *PostgresLobby {
	return &PostgresLobby{db: db}
}

func (l *PostgresLobby) CreateUser(ctx context.Context, user models.User) error {
	_, err := l.db.ModelContext(ctx, &user).Insert()
	return err
}

func (l *PostgresLobby) UserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := l.db.ModelContext(ctx, &user).Where("email = ?", email).Select()
	if errors.Is(err, pg.ErrNoRows) {
		return user, ErrUserNotFound
	}
	return user, err
}

func (l *PostgresLobby) GetUserData(ctx context.Context, id string) (models.User, error) {
	user := models.User{Id: id}
	err := l.db.ModelContext(ctx, &user).WherePK().Select()
	if errors.Is(err, pg.ErrNoRows) {
		return user, ErrUserNotFound
	}
	return user, err
}

func (l *PostgresLobby) CreateGame(ctx context.Context, game models.Game) error {
	_, err := l.db.ModelContext(ctx, &game).Insert()
	return err
}

func (l *PostgresLobby) VerifyGame(ctx context.Context, id string) bool {
	game := &models.Game{Id: id}
	return l.db.ModelContext(ctx, game).WherePK().Select() == nil
}

func (l *PostgresLobby) OpenGames(ctx context.Context) ([]models.Game, error) {
	var games []models.Game
	err := l.db.ModelContext(ctx, &games).
		Where("status = ?", string(models.WaitingForPlayers)).
		Order("created_at ASC").
		Select()
	return games, err
}

func (l *PostgresLobby) CreatePlayer(ctx context.Context, player models.Player) error {
	_, err := l.db.ModelContext(ctx, &player).Insert()
	return err
}

func (l *PostgresLobby) ListPlayers(ctx context.Context, gameID string) ([]models.Player, error) {
	var players []models.Player
	err := l.db.ModelContext(ctx, &players).Where("game_id = ?", gameID).Select()
	return players, err
}

// DeletePlayer removes the seat and drops the lobby game once nobody is left
// in it.
func (l *PostgresLobby) DeletePlayer(ctx context.Context, userID, gameID string) error {
	player := new(models.Player)
	_, err := l.db.ModelContext(ctx, player).Where("user_id = ? and game_id = ?", userID, gameID).Delete()
	if err != nil {
		return err
	}
	return l.checkEmpty(ctx, gameID)
}

func (l *PostgresLobby) checkEmpty(ctx context.Context, gameID string) error {
	n, err := l.db.ModelContext(ctx, (*models.Player)(nil)).Where("game_id = ?", gameID).Count()
	if err != nil || n > 0 {
		return err
	}
	_, err = l.db.ModelContext(ctx, (*models.Game)(nil)).Where("id = ?", gameID).Delete()
	return err
}

func (l *PostgresLobby) SetStatus(ctx context.Context, gameID string, status models.GameStatus) error {
	game := &models.Game{Id: gameID}
	_, err := l.db.ModelContext(ctx, game).WherePK().Set("status = ?", string(status)).Update()
	return err
}

func (l *PostgresLobby) RecordWinner(ctx context.Context, gameID, winner string) error {
	game := &models.Game{Id: gameID}
	_, err := l.db.ModelContext(ctx, game).WherePK().
		Set("status = ?", string(models.Finished)).
		Set("winner = ?", winner).
		Update()
	return err
}
