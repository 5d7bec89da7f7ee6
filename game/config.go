package game

import "time"

// Config holds per-session gameplay parameters. Defaults mirror the mobile
// client's settings so both ends agree on deadlines without negotiation.
type Config struct {
	TotalRounds           int
	MaxPlayers            int
	WordChoiceCount       int
	RoundDuration         time.Duration
	WordSelectionDuration time.Duration

	// Rating phase lasts RatingDurationPerRater per non-drawer, capped.
	RatingDurationPerRater time.Duration
	MaxRatingDuration      time.Duration

	// Disconnected players keep their seat for ReconnectGrace before the
	// tick handler removes them.
	ReconnectGrace time.Duration

	// Minimum spacing between guesses from the same player.
	GuessInterval time.Duration

	BasePoints    int // flat award for a correct guess
	DrawerBonus   int // flat award to the drawer per correct guess
	PointsPerStar int // rating stars -> points at rating completion
	MinRating     int
	MaxRating     int

	TickInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		TotalRounds:            3,
		MaxPlayers:             8,
		WordChoiceCount:        3,
		RoundDuration:          80 * time.Second,
		WordSelectionDuration:  15 * time.Second,
		RatingDurationPerRater: 30 * time.Second,
		MaxRatingDuration:      2 * time.Minute,
		ReconnectGrace:         30 * time.Second,
		GuessInterval:          500 * time.Millisecond,
		BasePoints:             100,
		DrawerBonus:            50,
		PointsPerStar:          10,
		MinRating:              1,
		MaxRating:              3,
		TickInterval:           time.Second,
	}
}
