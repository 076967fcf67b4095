package dto

import (
	"encoding/json"
	"time"
)

type SaveCompletionRequest struct {
	GameType  string       `json:"gameType"`
	QuizScore *json.Number `json:"quizScore"`
}

// Snapshot is the current state of a user's four milestones.
type Snapshot struct {
	Soccer       bool       `json:"soccer"`
	Rocket       bool       `json:"rocket"`
	Asteroid     bool       `json:"asteroid"`
	Quiz         bool       `json:"quiz"`
	QuizScore    float64    `json:"quizScore"`
	AllCompleted bool       `json:"allCompleted"`
	CompletedAt  *time.Time `json:"completedAt"`
}

type MilestoneResult struct {
	// QuizCompleted reports whether this call passed the quiz threshold.
	QuizCompleted bool
	Completion    Snapshot
}
