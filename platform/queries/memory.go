package queries

import (
	"context"
	"sort"
	"sync"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/engine"
)

// MemoryGames keeps records in process. Callers always get copies.
type MemoryGames struct {
	games map[string]*models.GameRecord
	mu    sync.RWMutex
}

func NewMemoryGames() *MemoryGames {
	return &MemoryGames{games: make(map[string]*models.GameRecord)}
}

func (s *MemoryGames) Create(_ context.Context, rec *models.GameRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.games[rec.ID]; exists {
		return ErrGameExists
	}
	s.games[rec.ID] = rec.Clone()
	return nil
}

func (s *MemoryGames) Get(_ context.Context, id string) (*models.GameRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, exists := s.games[id]
	if !exists {
		return nil, ErrGameNotFound
	}
	return rec.Clone(), nil
}

func (s *MemoryGames) Update(ctx context.Context, id string, fn func(g *engine.Game) error) (*models.GameRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, exists := s.games[id]
	if !exists {
		return nil, ErrGameNotFound
	}
	work := rec.Clone()
	if err := fn(engine.New(work)); err != nil {
		return nil, err
	}
	s.games[id] = work
	return work.Clone(), nil
}

func (s *MemoryGames) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, id)
	return nil
}

func (s *MemoryGames) IDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.games))
	for id := range s.games {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
