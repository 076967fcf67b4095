package service

import (
	"encoding/json"
	"fmt"

	"anoa.com/newtongame/internal/entity"
	"anoa.com/newtongame/internal/modules/search/dto"
	"anoa.com/newtongame/pkg/logger"
	"github.com/meilisearch/meilisearch-go"
)

const playersIndex = "players"

// PlayerIndex is a full-text index of players.
type PlayerIndex interface {
	IndexPlayer(user *entity.User) error
	SearchPlayers(query string, limit int) ([]dto.PlayerResult, error)
}

type meiliPlayerIndex struct {
	client meilisearch.ServiceManager
	log    *logger.Logger
}

type meiliPlayerDoc struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

func NewMeiliPlayerIndex(client meilisearch.ServiceManager, log *logger.Logger) PlayerIndex {
	if log == nil {
		log = logger.Nop()
	}
	idx := &meiliPlayerIndex{client: client, log: log}
	idx.initIndex()
	return idx
}

func (m *meiliPlayerIndex) initIndex() {
	searchable := []string{"username"}
	if _, err := m.client.Index(playersIndex).UpdateSearchableAttributes(&searchable); err != nil {
		m.log.Warn("failed to update players searchable attributes", "error", err)
		return
	}
	m.log.Info("meilisearch players index initialized")
}

func (m *meiliPlayerIndex) IndexPlayer(user *entity.User) error {
	doc := meiliPlayerDoc{
		ID:       user.ID.String(),
		Username: user.Username,
	}
	if user.AvatarURL != nil {
		doc.AvatarURL = *user.AvatarURL
	}

	task, err := m.client.Index(playersIndex).AddDocuments([]meiliPlayerDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	m.log.Debug("indexed player", "user_id", doc.ID, "task_uid", task.TaskUID)
	return nil
}

func (m *meiliPlayerIndex) SearchPlayers(query string, limit int) ([]dto.PlayerResult, error) {
	raw, err := m.client.Index(playersIndex).SearchRaw(query, &meilisearch.SearchRequest{
		Limit: int64(limit),
	})
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("empty meilisearch response")
	}

	var resp struct {
		Hits []meiliPlayerDoc `json:"hits"`
	}
	if err := json.Unmarshal(*raw, &resp); err != nil {
		return nil, fmt.Errorf("decode meilisearch hits: %w", err)
	}

	results := make([]dto.PlayerResult, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		results = append(results, dto.PlayerResult{
			ID:        hit.ID,
			Username:  hit.Username,
			AvatarURL: hit.AvatarURL,
		})
	}
	return results, nil
}

func strPtr(s string) *string {
	return &s
}
