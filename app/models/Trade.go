package models

import "time"

type TradeShape string

const (
	MoneyOnly        TradeShape = "money_only"
	PropertyOnly     TradeShape = "property_only"
	MoneyForProperty TradeShape = "money_for_property"
	PropertyForMoney TradeShape = "property_for_money"
)

type TradeStatus string

const (
	TradePending   TradeStatus = "pending"
	TradeAccepted  TradeStatus = "accepted"
	TradeRejected  TradeStatus = "rejected"
	TradeCancelled TradeStatus = "cancelled"
	TradeExpired   TradeStatus = "expired"
)

// TradeOffer is what a proposer puts on the table. A nil property means no
// property on that side.
type TradeOffer struct {
	Receiver         string     `json:"receiver"`
	Shape            TradeShape `json:"shape"`
	ProposerMoney    int64      `json:"proposer_money"`
	ReceiverMoney    int64      `json:"receiver_money"`
	ProposerProperty *int       `json:"proposer_property,omitempty"`
	ReceiverProperty *int       `json:"receiver_property,omitempty"`
}

type TradeRecord struct {
	ID        string      `json:"id"`
	Proposer  string      `json:"proposer"`
	Offer     TradeOffer  `json:"offer"`
	Status    TradeStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	ExpiresAt time.Time   `json:"expires_at"`
}

func (t TradeRecord) Expired(now time.Time) bool { return !now.Before(t.ExpiresAt) }
