package dto

import "encoding/json"

// SavePointsRequest accepts points as a JSON number or a numeric string.
type SavePointsRequest struct {
	Points *json.Number `json:"points"`
}

type PointsSummary struct {
	MaxPoints   int   `json:"maxPoints"`
	TotalPoints int   `json:"totalPoints"`
	Events      int64 `json:"events"`
}
