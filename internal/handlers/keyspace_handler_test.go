package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"kv-cache-api/internal/auth"
	"kv-cache-api/internal/database"
	"kv-cache-api/internal/keyspace"
	"kv-cache-api/internal/middleware"
	"kv-cache-api/internal/models"
	"kv-cache-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// apiRouter wires the protected keyspace/key routes over a fresh in-memory
// database and returns a valid bearer token.
func apiRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	database.DB = db
	_, err = keyspace.Init(db, nil)
	require.NoError(t, err)

	r := gin.New()
	api := r.Group("/api")
	api.Use(middleware.JWTAuthMiddleware())
	api.POST("/keyspaces", CreateKeyspace)
	api.GET("/keyspaces", ListKeyspaces)
	api.DELETE("/keyspaces/:name", DeleteKeyspace)
	api.PATCH("/keyspaces/:name", ConfigureKeyspace)
	api.GET("/keyspaces/:name/stats", KeyspaceStats)
	api.POST("/keyspaces/:name/flush", FlushKeyspace)
	api.GET("/keyspaces/:name/keys", ListKeys)
	api.PUT("/keyspaces/:name/keys/:key", PutKey)
	api.GET("/keyspaces/:name/keys/:key", GetKey)
	api.DELETE("/keyspaces/:name/keys/:key", DeleteKey)

	token, err := auth.GenerateToken("u-1", "alice")
	require.NoError(t, err)
	return r, token
}

func doJSON(r *gin.Engine, token, method, path string, payload []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateKeyspace_Success(t *testing.T) {
	r, token := apiRouter(t)

	body, _ := json.Marshal(map[string]any{
		"name":            "sessions",
		"expireMs":        60000,
		"sweepIntervalMs": 5000,
		"limit":           100,
	})
	w := doJSON(r, token, http.MethodPost, "/api/keyspaces", body)
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Keyspace
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Equal(t, "sessions", created.Name)
	require.Equal(t, int64(60000), created.ExpireMs)

	_, ok := keyspace.GetManager().Get("sessions")
	require.True(t, ok)
}

func TestCreateKeyspace_Duplicate(t *testing.T) {
	r, token := apiRouter(t)

	body, _ := json.Marshal(map[string]any{"name": "dup"})
	require.Equal(t, http.StatusCreated, doJSON(r, token, http.MethodPost, "/api/keyspaces", body).Code)
	require.Equal(t, http.StatusConflict, doJSON(r, token, http.MethodPost, "/api/keyspaces", body).Code)
}

func TestCreateKeyspace_RejectsNegativePolicy(t *testing.T) {
	r, token := apiRouter(t)

	body, _ := json.Marshal(map[string]any{"name": "bad", "expireMs": -5})
	w := doJSON(r, token, http.MethodPost, "/api/keyspaces", body)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListKeyspaces(t *testing.T) {
	r, token := apiRouter(t)

	for _, name := range []string{"b", "a"} {
		body, _ := json.Marshal(map[string]any{"name": name})
		require.Equal(t, http.StatusCreated, doJSON(r, token, http.MethodPost, "/api/keyspaces", body).Code)
	}

	w := doJSON(r, token, http.MethodGet, "/api/keyspaces", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Keyspaces []models.Keyspace `json:"keyspaces"`
		Count     int               `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Count)
	require.Equal(t, "a", resp.Keyspaces[0].Name)
}

func TestDeleteKeyspace(t *testing.T) {
	r, token := apiRouter(t)

	body, _ := json.Marshal(map[string]any{"name": "gone"})
	require.Equal(t, http.StatusCreated, doJSON(r, token, http.MethodPost, "/api/keyspaces", body).Code)

	require.Equal(t, http.StatusOK, doJSON(r, token, http.MethodDelete, "/api/keyspaces/gone", nil).Code)
	require.Equal(t, http.StatusNotFound, doJSON(r, token, http.MethodDelete, "/api/keyspaces/gone", nil).Code)
}

func TestConfigureKeyspace(t *testing.T) {
	r, token := apiRouter(t)

	body, _ := json.Marshal(map[string]any{"name": "tunable"})
	require.Equal(t, http.StatusCreated, doJSON(r, token, http.MethodPost, "/api/keyspaces", body).Code)

	patch, _ := json.Marshal(map[string]any{"expireMs": 30000})
	w := doJSON(r, token, http.MethodPatch, "/api/keyspaces/tunable", patch)
	require.Equal(t, http.StatusOK, w.Code)

	var def models.Keyspace
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &def))
	require.Equal(t, int64(30000), def.ExpireMs)

	w = doJSON(r, token, http.MethodPatch, "/api/keyspaces/missing", patch)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestKeyspaceStatsAndFlush(t *testing.T) {
	r, token := apiRouter(t)

	body, _ := json.Marshal(map[string]any{"name": "counters"})
	require.Equal(t, http.StatusCreated, doJSON(r, token, http.MethodPost, "/api/keyspaces", body).Code)

	require.Equal(t, http.StatusOK, doJSON(r, token, http.MethodPut, "/api/keyspaces/counters/keys/a", []byte(`1`)).Code)
	require.Equal(t, http.StatusOK, doJSON(r, token, http.MethodPut, "/api/keyspaces/counters/keys/b", []byte(`2`)).Code)

	w := doJSON(r, token, http.MethodGet, "/api/keyspaces/counters/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats struct {
		Stats struct {
			Size  int    `json:"size"`
			Added uint64 `json:"added"`
		} `json:"stats"`
		Sweeping bool `json:"sweeping"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	require.Equal(t, 2, stats.Stats.Size)
	require.Equal(t, uint64(2), stats.Stats.Added)
	require.False(t, stats.Sweeping)

	require.Equal(t, http.StatusOK, doJSON(r, token, http.MethodPost, "/api/keyspaces/counters/flush", nil).Code)

	w = doJSON(r, token, http.MethodGet, "/api/keyspaces/counters/stats", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	require.Equal(t, 0, stats.Stats.Size)
}
