package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"anoa.com/newtongame/internal/modules/completion/repository"
	completionService "anoa.com/newtongame/internal/modules/completion/service"
	"anoa.com/newtongame/internal/testutil"
	"anoa.com/newtongame/pkg/database"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func newRouter(t *testing.T) (*gin.Engine, uuid.UUID) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.DB(t)
	user := testutil.SeedUser(t, context.Background(), db, "ada")
	h := NewCompletionHandler(completionService.NewCompletionService(database.NewTransactor(db), repository.NewCompletionRepository(db)))

	r := gin.New()
	auth := func(c *gin.Context) {
		if id := c.GetHeader("X-Test-User"); id != "" {
			c.Set("user_id", id)
		}
	}
	r.POST("/save-completion", auth, h.SaveCompletion)
	r.GET("/get-completion", auth, h.GetCompletion)
	return r, user.ID
}

func do(r *gin.Engine, method, path, body string, userID uuid.UUID) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != uuid.Nil {
		req.Header.Set("X-Test-User", userID.String())
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestSaveCompletionQuiz(t *testing.T) {
	r, userID := newRouter(t)

	w, body := do(r, http.MethodPost, "/save-completion", `{"gameType":"quiz","quizScore":"79.9"}`, userID)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if body["quizCompleted"] != false {
		t.Fatalf("expected quiz not completed: %v", body)
	}

	w, body = do(r, http.MethodPost, "/save-completion", `{"gameType":"quiz","quizScore":80}`, userID)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	completion := body["completion"].(map[string]any)
	if body["quizCompleted"] != true || completion["quiz"] != true || completion["quizScore"].(float64) != 80 {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestSaveCompletionInvalidInput(t *testing.T) {
	r, userID := newRouter(t)

	for _, body := range []string{
		`{}`,
		`{"gameType":"chess"}`,
		`{"gameType":"quiz"}`,
		`{"gameType":"quiz","quizScore":"high"}`,
	} {
		w, _ := do(r, http.MethodPost, "/save-completion", body, userID)
		if w.Code != http.StatusNotAcceptable {
			t.Fatalf("%s: expected 406, got %d", body, w.Code)
		}
	}
}

func TestGetCompletion(t *testing.T) {
	r, userID := newRouter(t)

	w, body := do(r, http.MethodGet, "/get-completion", "", userID)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	completion := body["completion"].(map[string]any)
	if completion["soccer"] != false || completion["allCompleted"] != false || completion["completedAt"] != nil {
		t.Fatalf("expected defaults: %v", completion)
	}

	do(r, http.MethodPost, "/save-completion", `{"gameType":"asteroid"}`, userID)
	_, body = do(r, http.MethodGet, "/get-completion", "", userID)
	if body["completion"].(map[string]any)["asteroid"] != true {
		t.Fatalf("expected asteroid completed: %v", body)
	}

	w, _ = do(r, http.MethodGet, "/get-completion", "", uuid.Nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}
