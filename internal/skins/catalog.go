// Package skins is the static catalog of cosmetic skins for the ticket and
// watched views.
package skins

import "sort"

// Target is the view a skin applies to.
type Target string

const (
	TargetTicket  Target = "ticket"
	TargetWatched Target = "watched"
)

// Tier orders skins from COMMON to LEGENDARY.
type Tier string

const (
	TierCommon    Tier = "COMMON"
	TierRare      Tier = "RARE"
	TierEpic      Tier = "EPIC"
	TierLegendary Tier = "LEGENDARY"
)

var tierRank = map[Tier]int{
	TierCommon:    0,
	TierRare:      1,
	TierEpic:      2,
	TierLegendary: 3,
}

// Skin is one catalog entry. ClassName is the CSS class a UI applies.
type Skin struct {
	ID          string `json:"id"`
	Target      Target `json:"target"`
	Name        string `json:"name"`
	Description string `json:"desc"`
	Emoji       string `json:"emoji"`
	Tier        Tier   `json:"tier"`
	Price       int    `json:"price"`
	ClassName   string `json:"className"`
}

var catalog = []Skin{
	{ID: "ticket_vanilla", Target: TargetTicket, Name: "바닐라 티켓", Description: "깔끔한 기본 티켓 감성", Emoji: "🎟️", Tier: TierCommon, Price: 5, ClassName: "skin-ticket-vanilla"},
	{ID: "ticket_cinema_night", Target: TargetTicket, Name: "시네마 나이트", Description: "밤공기처럼 쿨한 극장 무드", Emoji: "🌙", Tier: TierRare, Price: 12, ClassName: "skin-ticket-cinema-night"},
	{ID: "ticket_popcorn_party", Target: TargetTicket, Name: "팝콘 파티", Description: "팝콘 튀는 축제 분위기", Emoji: "🍿", Tier: TierEpic, Price: 22, ClassName: "skin-ticket-popcorn-party"},
	{ID: "watched_polaroid", Target: TargetWatched, Name: "폴라로이드", Description: "한 장의 기록처럼 남기는 감성", Emoji: "📸", Tier: TierCommon, Price: 8, ClassName: "skin-watched-polaroid"},
	{ID: "watched_museum", Target: TargetWatched, Name: "뮤지엄", Description: "전시처럼 차분한 레이아웃", Emoji: "🖼️", Tier: TierRare, Price: 16, ClassName: "skin-watched-museum"},
	{ID: "watched_neon", Target: TargetWatched, Name: "네온 무드", Description: "심야 상영 네온 사인 느낌", Emoji: "✨", Tier: TierEpic, Price: 28, ClassName: "skin-watched-neon"},
}

// Targets lists every valid target.
func Targets() []Target {
	return []Target{TargetTicket, TargetWatched}
}

// All returns the catalog in definition order.
func All() []Skin {
	return append([]Skin(nil), catalog...)
}

// ByID looks up a skin.
func ByID(id string) (Skin, bool) {
	for _, s := range catalog {
		if s.ID == id {
			return s, true
		}
	}
	return Skin{}, false
}

// ByTarget returns skins for target in definition order.
func ByTarget(target Target) []Skin {
	out := make([]Skin, 0, len(catalog))
	for _, s := range catalog {
		if s.Target == target {
			out = append(out, s)
		}
	}
	return out
}

// ByTargetSorted orders ByTarget by tier, then price.
func ByTargetSorted(target Target) []Skin {
	out := ByTarget(target)
	sort.SliceStable(out, func(i, j int) bool {
		if ri, rj := tierRank[out[i].Tier], tierRank[out[j].Tier]; ri != rj {
			return ri < rj
		}
		return out[i].Price < out[j].Price
	})
	return out
}

// ValidTarget reports whether value names a target.
func ValidTarget(value string) bool {
	return value == string(TargetTicket) || value == string(TargetWatched)
}
