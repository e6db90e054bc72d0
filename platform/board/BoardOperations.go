package board

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/DedS3t/monopoly-engine/app/models"
)

const (
	GoPosition       = 0
	JailPosition     = 10
	GoToJailPosition = 30
)

var (
	ErrInvalidPosition  = errors.New("invalid position")
	ErrInvalidCardIndex = errors.New("invalid card index")
	ErrUnknownDeck      = errors.New("unknown deck")
)

//go:embed properties.json
var propertiesJSON []byte

//go:embed cards.json
var cardsJSON []byte

// The catalog is parsed once and never mutated afterwards.
var (
	spaces [models.BoardSize]models.Space
	groups map[string][]int
	decks  map[models.Deck][]models.Card
)

func init() {
	if err := load(propertiesJSON, cardsJSON); err != nil {
		panic(err)
	}
}

func load(rawSpaces, rawCards []byte) error {
	var list []models.Space
	if err := json.Unmarshal(rawSpaces, &list); err != nil {
		return fmt.Errorf("parse properties: %w", err)
	}
	if len(list) != models.BoardSize {
		return fmt.Errorf("board has %d spaces, want %d", len(list), models.BoardSize)
	}
	var parsed [models.BoardSize]models.Space
	byGroup := make(map[string][]int)
	for i, space := range list {
		if space.Position != i {
			return fmt.Errorf("space %q at index %d has position %d", space.Name, i, space.Position)
		}
		if space.Type == models.StreetSpace && len(space.Rent) != models.StreetRentRows {
			return fmt.Errorf("street %q has %d rent rows", space.Name, len(space.Rent))
		}
		if space.Group != "" {
			byGroup[space.Group] = append(byGroup[space.Group], i)
		}
		parsed[i] = space
	}

	var byDeck map[models.Deck][]models.Card
	if err := json.Unmarshal(rawCards, &byDeck); err != nil {
		return fmt.Errorf("parse cards: %w", err)
	}
	for _, d := range []models.Deck{models.ChanceDeck, models.CommunityChestDeck} {
		if len(byDeck[d]) == 0 {
			return fmt.Errorf("deck %q is empty", d)
		}
	}

	spaces, groups, decks = parsed, byGroup, byDeck
	return nil
}

// LoadProperties returns a copy of the whole board.
func LoadProperties() []models.Space {
	out := make([]models.Space, 0, models.BoardSize)
	for _, space := range spaces {
		out = append(out, space)
	}
	return out
}

func ValidPosition(pos int) bool { return pos >= 0 && pos < models.BoardSize }

func GetByPos(pos int) (models.Space, error) {
	if !ValidPosition(pos) {
		return models.Space{}, ErrInvalidPosition
	}
	return spaces[pos], nil
}

// GroupMembers lists the positions sharing a color group (or the railroad and
// utility groups), in board order.
func GroupMembers(group string) []int {
	return append([]int(nil), groups[group]...)
}

func Deck(deck models.Deck) ([]models.Card, error) {
	cards, ok := decks[deck]
	if !ok {
		return nil, ErrUnknownDeck
	}
	return append([]models.Card(nil), cards...), nil
}

func GetCard(deck models.Deck, idx int) (models.Card, error) {
	cards, ok := decks[deck]
	if !ok {
		return models.Card{}, ErrUnknownDeck
	}
	if idx < 0 || idx >= len(cards) {
		return models.Card{}, ErrInvalidCardIndex
	}
	return cards[idx], nil
}

// NearestOf returns the first space of the given kind strictly ahead of from,
// wrapping past GO.
func NearestOf(from int, kind models.SpaceKind) (int, error) {
	if !ValidPosition(from) {
		return 0, ErrInvalidPosition
	}
	for step := 1; step <= models.BoardSize; step++ {
		pos := (from + step) % models.BoardSize
		if spaces[pos].Type == kind {
			return pos, nil
		}
	}
	return 0, fmt.Errorf("no space of kind %q", kind)
}
