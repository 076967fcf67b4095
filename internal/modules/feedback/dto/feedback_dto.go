package dto

import "time"

type CreateFeedbackRequest struct {
	Note string `json:"note" form:"note"`
}

type DeleteFeedbackRequest struct {
	ID uint `uri:"id" binding:"required"`
}

type FeedbackResponse struct {
	ID        uint      `json:"id"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"createdAt"`
}
