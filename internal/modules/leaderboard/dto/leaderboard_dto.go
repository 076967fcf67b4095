package dto

// LeaderboardEntry is one ranked player. Rank is 1-based.
type LeaderboardEntry struct {
	Rank      int     `json:"rank"`
	Username  string  `json:"username"`
	Points    int     `json:"points"`
	AvatarURL *string `json:"avatarUrl"`
}
