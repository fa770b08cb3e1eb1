package mau

import (
	"fmt"
	"strconv"
)

// LeaderboardCategory selects the counter a leaderboard is ordered by.
type LeaderboardCategory string

const (
	CategoryGems  LeaderboardCategory = "gems"
	CategoryGames LeaderboardCategory = "games"
	CategoryWins  LeaderboardCategory = "wins"
	CategoryCards LeaderboardCategory = "cards"
)

func (c LeaderboardCategory) Valid() bool {
	switch c {
	case CategoryGems, CategoryGames, CategoryWins, CategoryCards:
		return true
	}
	return false
}

// ParseCategory maps a category name to a LeaderboardCategory.
func ParseCategory(s string) (LeaderboardCategory, error) {
	c := LeaderboardCategory(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown leaderboard category %q", s)
	}
	return c, nil
}

// RoomStatus is driven by the server; the client only observes it.
type RoomStatus string

const (
	RoomIdle  RoomStatus = "idle"
	RoomGame  RoomStatus = "game"
	RoomEnded RoomStatus = "ended"
)

func (s RoomStatus) Valid() bool {
	switch s {
	case RoomIdle, RoomGame, RoomEnded:
		return true
	}
	return false
}

type CardColor int

const (
	ColorRed CardColor = iota
	ColorOrange
	ColorYellow
	ColorGreen
	ColorCyan
	ColorBlue
	ColorBlack
	ColorCream
)

var colorNames = [...]string{"red", "orange", "yellow", "green", "cyan", "blue", "black", "cream"}

func (c CardColor) Valid() bool {
	return c >= ColorRed && c <= ColorCream
}

func (c CardColor) String() string {
	if !c.Valid() {
		return fmt.Sprintf("CardColor(%d)", int(c))
	}
	return colorNames[c]
}

// ParseColor accepts either a color name or its numeric value.
func ParseColor(s string) (CardColor, error) {
	for i, name := range colorNames {
		if s == name {
			return CardColor(i), nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && CardColor(n).Valid() {
		return CardColor(n), nil
	}
	return 0, fmt.Errorf("unknown card color %q", s)
}

type CardBehavior string

const (
	BehaviorNumber    CardBehavior = "number"
	BehaviorTake      CardBehavior = "take"
	BehaviorPut       CardBehavior = "put"
	BehaviorDelta     CardBehavior = "delta"
	BehaviorTwist     CardBehavior = "twist"
	BehaviorRotate    CardBehavior = "rotate"
	BehaviorTurn      CardBehavior = "turn"
	BehaviorReverse   CardBehavior = "reverse"
	BehaviorWildColor CardBehavior = "wild+color"
	BehaviorWildTake  CardBehavior = "wild+take"
)

func (b CardBehavior) Valid() bool {
	switch b {
	case BehaviorNumber, BehaviorTake, BehaviorPut, BehaviorDelta, BehaviorTwist,
		BehaviorRotate, BehaviorTurn, BehaviorReverse, BehaviorWildColor, BehaviorWildTake:
		return true
	}
	return false
}
