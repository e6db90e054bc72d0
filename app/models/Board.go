package models

type SpaceKind string

const (
	StreetSpace    SpaceKind = "street"
	RailroadSpace  SpaceKind = "railroad"
	UtilitySpace   SpaceKind = "utility"
	TaxSpace       SpaceKind = "tax"
	CornerSpace    SpaceKind = "corner"
	ChanceSpace    SpaceKind = "chance"
	ChestSpace     SpaceKind = "chest"
	GoToJailSpace  SpaceKind = "gotojail"
	BoardSize                = 40
	StreetRentRows           = 6 // base, 1..4 houses, hotel
)

// Space is one static board definition. Rent holds the street rent table
// (base, 1..4 houses, hotel); railroads use Rent[0] as base rent.
type Space struct {
	Name      string    `json:"name"`
	Type      SpaceKind `json:"type"`
	Group     string    `json:"group"`
	Position  int       `json:"position"`
	Price     int64     `json:"price"`
	Rent      []int64   `json:"rent"`
	Mortgage  int64     `json:"mortgage"`
	HouseCost int64     `json:"housecost"`
	Tax       int64     `json:"tax"`
}

func (s Space) Purchasable() bool {
	switch s.Type {
	case StreetSpace, RailroadSpace, UtilitySpace:
		return s.Price > 0
	}
	return false
}

type Deck string

const (
	ChanceDeck         Deck = "chance"
	CommunityChestDeck Deck = "chest"
)

type CardAction string

const (
	CardChange      CardAction = "change"  // Payload added to cash (negative pays the bank)
	CardAdvance     CardAction = "advance" // move forward to Payload
	CardBack        CardAction = "back"    // move back Payload spaces
	CardJail        CardAction = "jail"
	CardJailFree    CardAction = "jailfree"
	CardCollectEach CardAction = "collecteach" // every other player pays Payload
	CardPayEach     CardAction = "payeach"     // pay every other player Payload
	CardRepairs     CardAction = "repairs"     // Payload per house, Extra per hotel
	CardNearest     CardAction = "nearest"     // advance to nearest space of kind Target
)

type Card struct {
	Info    string     `json:"info"`
	Action  CardAction `json:"action"`
	Payload int64      `json:"payload"`
	Extra   int64      `json:"extra"`
	Target  SpaceKind  `json:"target"`
}
