package dto

type SearchPlayersQuery struct {
	Query string `form:"q"`
	Limit int    `form:"limit"`
}

type PlayerResult struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}
