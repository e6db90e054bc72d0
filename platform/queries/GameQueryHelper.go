package queries

import (
	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/engine"
)

func IsUserTurn(rec *models.GameRecord, userID string) bool {
	if rec.Status != models.InProgress {
		return false
	}
	slot := rec.Slot(userID)
	return slot != models.NoPlayer && slot == rec.CurrentTurn
}

// SlotID maps a slot to its player id; the bank and empty slots map to "".
func SlotID(rec *models.GameRecord, slot int) string {
	if slot < 0 || slot >= len(rec.Players) {
		return ""
	}
	return rec.Players[slot].ID
}

// PlayerViews renders every seat. names maps player ids to display names;
// ids without a name are shown as is.
func PlayerViews(rec *models.GameRecord, names map[string]string) []models.PlayerDto {
	views := make([]models.PlayerDto, 0, len(rec.Players))
	for _, p := range rec.Players {
		name, ok := names[p.ID]
		if !ok {
			name = p.ID
		}
		views = append(views, models.PlayerDto{
			Id:         p.ID,
			Username:   name,
			Balance:    p.CashBalance,
			NetWorth:   p.NetWorth,
			Pos:        p.Position,
			Properties: append([]int{}, p.PropertiesOwned...),
			Jail:       p.InJail,
			Bankrupt:   p.IsBankrupt,
			Phase:      p.Phase,
		})
	}
	return views
}

func StateView(rec *models.GameRecord, names map[string]string) models.GameStateDto {
	view := models.GameStateDto{
		Id:              rec.ID,
		Status:          rec.Status,
		Players:         PlayerViews(rec, names),
		BankBalance:     rec.BankBalance,
		HousesRemaining: rec.HousesRemaining,
		HotelsRemaining: rec.HotelsRemaining,
		Properties:      rec.Properties,
		Trades:          append([]models.TradeRecord{}, rec.ActiveTrades...),
		PrizePool:       rec.TotalPrizePool,
	}
	switch rec.Status {
	case models.InProgress:
		view.CurrentTurn = SlotID(rec, rec.CurrentTurn)
		view.TurnDeadline = engine.New(rec).TurnDeadline()
	case models.Finished:
		view.Winner = SlotID(rec, rec.Winner)
	}
	return view
}
