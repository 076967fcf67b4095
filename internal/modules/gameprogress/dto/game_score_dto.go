package dto

import (
	"encoding/json"
	"time"
)

type SaveGameScoreRequest struct {
	GameType  string       `json:"gameType"`
	Level     *json.Number `json:"level"`
	Score     *json.Number `json:"score"`
	Completed bool         `json:"completed"`
}

type GetGameScoreQuery struct {
	GameType string `form:"gameType"`
	Level    string `form:"level"`
}

// GameScoreSubmission is a parsed SaveGameScoreRequest.
type GameScoreSubmission struct {
	GameType  string
	Level     int
	Score     int
	Completed bool
}

type SubmitResult struct {
	BestScore    int  `json:"bestScore"`
	PointsToAdd  int  `json:"pointsToAdd"`
	WasNewRecord bool `json:"wasNewRecord"`
}

type GameScore struct {
	BestScore int  `json:"bestScore"`
	Completed bool `json:"completed"`
}

type GameProgressResponse struct {
	GameType  string    `json:"gameType"`
	Level     int       `json:"level"`
	BestScore int       `json:"bestScore"`
	Completed bool      `json:"completed"`
	UpdatedAt time.Time `json:"updatedAt"`
}
