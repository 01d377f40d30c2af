// Package badges defines the achievement badge catalog and records permanent
// unlocks keyed by badge id.
package badges

// Tier ranks a badge.
type Tier string

const (
	TierBronze   Tier = "BRONZE"
	TierSilver   Tier = "SILVER"
	TierGold     Tier = "GOLD"
	TierPlatinum Tier = "PLATINUM"
)

// Definition describes a badge earned by reaching a watched-movie threshold.
type Definition struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"desc"`
	Emoji       string `json:"emoji"`
	Threshold   int    `json:"threshold"`
	Tier        Tier   `json:"tier"`
}

var definitions = []Definition{
	{ID: "watched_10", Name: "영화 관람자", Description: "본 영화 10편 달성", Emoji: "🎟️", Threshold: 10, Tier: TierBronze},
	{ID: "watched_20", Name: "예비 시네필", Description: "본 영화 20편 달성", Emoji: "🍿", Threshold: 20, Tier: TierSilver},
	{ID: "watched_50", Name: "시네필", Description: "본 영화 50편 달성", Emoji: "🎬", Threshold: 50, Tier: TierGold},
	{ID: "watched_100", Name: "평론가", Description: "본 영화 100편 달성", Emoji: "📝", Threshold: 100, Tier: TierPlatinum},
}

// Definitions returns the catalog in ascending threshold order.
func Definitions() []Definition {
	return append([]Definition(nil), definitions...)
}

// DefinitionByID looks up a badge.
func DefinitionByID(id string) (Definition, bool) {
	for _, def := range definitions {
		if def.ID == id {
			return def, true
		}
	}
	return Definition{}, false
}
