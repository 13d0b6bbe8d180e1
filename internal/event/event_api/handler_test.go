package event_api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ms-barpos/internal/database/dbtest"
	"ms-barpos/internal/event"
	"ms-barpos/internal/event/db"
	"ms-barpos/internal/logger"
	"ms-barpos/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedStats struct{ stats models.EventStats }

func (f fixedStats) LiveStats(ctx context.Context, eventID string) (models.EventStats, error) {
	return f.stats, nil
}

func setupRouter(t *testing.T) http.Handler {
	svc := event.NewEventService(&db.DB{Bun: dbtest.New(t)}, nil, nil, logger.Nop(), "Bar Night")
	svc.Stats = fixedStats{stats: models.EventStats{TotalCustomers: 1, ParticipantRevenue: 1000, TotalRevenue: 1000}}
	h := &Handler{EventService: svc, Logger: logger.Nop()}
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) (int, map[string]interface{}) {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec.Code, resp
}

func TestEventLifecycle(t *testing.T) {
	r := setupRouter(t)

	code, resp := do(t, r, http.MethodGet, "/events/active", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Nil(t, resp["data"])

	code, _ = do(t, r, http.MethodPost, "/events/active/complete", "")
	assert.Equal(t, http.StatusConflict, code)

	code, resp = do(t, r, http.MethodPost, "/events", `{"name":"Summer"}`)
	require.Equal(t, http.StatusCreated, code)
	id := resp["data"].(map[string]interface{})["id"].(string)

	code, _ = do(t, r, http.MethodPost, "/events", `{"name":"Winter"}`)
	assert.Equal(t, http.StatusConflict, code)

	code, resp = do(t, r, http.MethodPost, "/events/active/ensure", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, id, resp["data"].(map[string]interface{})["id"])

	code, resp = do(t, r, http.MethodPost, "/events/active/complete", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "completed", resp["data"].(map[string]interface{})["status"])
	assert.Equal(t, float64(1000), resp["data"].(map[string]interface{})["totalRevenue"])

	_, resp = do(t, r, http.MethodGet, "/events/history", "")
	assert.Len(t, resp["data"], 1)

	code, _ = do(t, r, http.MethodGet, "/events/"+id, "")
	assert.Equal(t, http.StatusOK, code)

	code, _ = do(t, r, http.MethodGet, "/events/unknown", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCreateEventValidation(t *testing.T) {
	r := setupRouter(t)
	code, _ := do(t, r, http.MethodPost, "/events", `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, code)
}
