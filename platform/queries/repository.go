package queries

import (
	"context"
	"errors"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/engine"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
	ErrGameBusy     = errors.New("game is locked by another operation")
)

// GameRepository holds the live GameRecord of every game. Update is the only
// way to change a record: it runs fn against the stored record while holding
// the game's lock and stores the result only when fn succeeds.
type GameRepository interface {
	Create(ctx context.Context, rec *models.GameRecord) error
	Get(ctx context.Context, id string) (*models.GameRecord, error)
	Update(ctx context.Context, id string, fn func(g *engine.Game) error) (*models.GameRecord, error)
	Delete(ctx context.Context, id string) error
	IDs(ctx context.Context) ([]string, error)
}
