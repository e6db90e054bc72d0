package queries

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/DedS3t/monopoly-engine/app/models"
)

var ErrDuplicate = errors.New("duplicate row")

// MemoryLobby is the lobby without postgres, for GAME_STORE=memory and
// tests.
type MemoryLobby struct {
	mu      sync.RWMutex
	users   map[string]models.User
	games   map[string]models.Game
	players map[string][]models.Player
	now     func() time.Time
}

func NewMemoryLobby() *MemoryLobby {
	return &MemoryLobby{
		users:   make(map[string]models.User),
		games:   make(map[string]models.Game),
		players: make(map[string][]models.Player),
		now:     time.Now,
	}
}

func (l *MemoryLobby) CreateUser(_ context.Context, user models.User) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, u := range l.users {
		if u.Email == user.Email {
			return ErrDuplicate
		}
	}
	if _, exists := l.users[user.Id]; exists {
		return ErrDuplicate
	}
	user.CreatedAt = l.now()
	l.users[user.Id] = user
	return nil
}

func (l *MemoryLobby) UserByEmail(_ context.Context, email string) (models.User, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, u := range l.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, ErrUserNotFound
}

func (l *MemoryLobby) GetUserData(_ context.Context, id string) (models.User, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	u, ok := l.users[id]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return u, nil
}

func (l *MemoryLobby) CreateGame(_ context.Context, game models.Game) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.games[game.Id]; exists {
		return ErrDuplicate
	}
	game.CreatedAt = l.now()
	l.games[game.Id] = game
	return nil
}

func (l *MemoryLobby) VerifyGame(_ context.Context, id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.games[id]
	return ok
}

func (l *MemoryLobby) OpenGames(_ context.Context) ([]models.Game, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var games []models.Game
	for _, g := range l.games {
		if g.Status == string(models.WaitingForPlayers) {
			games = append(games, g)
		}
	}
	sort.Slice(games, func(i, j int) bool {
		if games[i].CreatedAt.Equal(games[j].CreatedAt) {
			return games[i].Id < games[j].Id
		}
		return games[i].CreatedAt.Before(games[j].CreatedAt)
	})
	return games, nil
}

func (l *MemoryLobby) CreatePlayer(_ context.Context, player models.Player) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range l.players[player.Game_id] {
		if p.User_id == player.User_id {
			return ErrDuplicate
		}
	}
	l.players[player.Game_id] = append(l.players[player.Game_id], player)
	return nil
}

func (l *MemoryLobby) ListPlayers(_ context.Context, gameID string) ([]models.Player, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]models.Player(nil), l.players[gameID]...), nil
}

func (l *MemoryLobby) DeletePlayer(_ context.Context, userID, gameID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	seats := l.players[gameID][:0]
	for _, p := range l.players[gameID] {
		if p.User_id != userID {
			seats = append(seats, p)
		}
	}
	if len(seats) == 0 {
		delete(l.players, gameID)
		delete(l.games, gameID)
		return nil
	}
	l.players[gameID] = seats
	return nil
}

func (l *MemoryLobby) SetStatus(_ context.Context, gameID string, status models.GameStatus) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	g, ok := l.games[gameID]
	if !ok {
		return ErrGameNotFound
	}
	g.Status = string(status)
	l.games[gameID] = g
	return nil
}

func (l *MemoryLobby) RecordWinner(_ context.Context, gameID, winner string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	g, ok := l.games[gameID]
	if !ok {
		return ErrGameNotFound
	}
	g.Status = string(models.Finished)
	g.Winner = winner
	l.games[gameID] = g
	return nil
}
