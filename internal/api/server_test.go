package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LydenCypher/Cut-Royale-Bot-Discord/internal/storage"
)

type stubStore struct {
	games      []*storage.Game
	players    []*storage.Player
	gamesErr   error
	playersErr error
}

func (s *stubStore) ListOpenGames(context.Context) ([]*storage.Game, error) {
	return s.games, s.gamesErr
}

func (s *stubStore) ListPlayers(context.Context) ([]*storage.Player, error) {
	return s.players, s.playersErr
}

type stubImager struct {
	url string
	err error
}

func (s *stubImager) GenerateImage(_ context.Context, prompt, theme string) (string, error) {
	return s.url, s.err
}

func newTestServer(store Store, imager Imager) *httptest.Server {
	gin.SetMode(gin.TestMode)
	s := &Server{store: store, imager: imager}
	return httptest.NewServer(s.Router())
}

func TestRoot(t *testing.T) {
	ts := newTestServer(&stubStore{}, &stubImager{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Cut Royale Discord Bot API", body["message"])
}

func TestListGames(t *testing.T) {
	store := &stubStore{
		games: []*storage.Game{
			{ID: "g1", Status: storage.StatusWaiting, Mode: "solo", Era: "modern"},
			{ID: "g2", Status: storage.StatusActive, Mode: "duo", Era: "zombie"},
		},
	}
	ts := newTestServer(store, &stubImager{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/games")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var games []*storage.Game
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&games))
	require.Len(t, games, 2)
	assert.Equal(t, "g1", games[0].ID)
	assert.Equal(t, storage.StatusActive, games[1].Status)
}

func TestListGamesEmpty(t *testing.T) {
	ts := newTestServer(&stubStore{}, &stubImager{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/games")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var games []*storage.Game
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&games))
	assert.Empty(t, games)
}

func TestListGamesError(t *testing.T) {
	ts := newTestServer(&stubStore{gamesErr: errors.New("db down")}, &stubImager{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/games")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestListPlayers(t *testing.T) {
	store := &stubStore{
		players: []*storage.Player{
			{ID: "p1", Username: "Alice", Stats: storage.Stats{Wins: 3}},
		},
	}
	ts := newTestServer(store, &stubImager{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/players")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var players []*storage.Player
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&players))
	require.Len(t, players, 1)
	assert.Equal(t, "Alice", players[0].Username)
	assert.Equal(t, 3, players[0].Stats.Wins)
}

func TestGenerateImage(t *testing.T) {
	ts := newTestServer(&stubStore{}, &stubImager{url: "https://img.example/1.png"})
	defer ts.Close()

	body, _ := json.Marshal(map[string]string{"prompt": "victory", "game_context": "zombie"})
	resp, err := http.Post(ts.URL+"/api/generate_image", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Success  bool   `json:"success"`
		ImageURL string `json:"image_url"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.Success)
	assert.Equal(t, "https://img.example/1.png", result.ImageURL)
}

func TestGenerateImageMissingPrompt(t *testing.T) {
	ts := newTestServer(&stubStore{}, &stubImager{})
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/generate_image", "application/json", bytes.NewReader([]byte(`{}`)))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGenerateImageFailure(t *testing.T) {
	ts := newTestServer(&stubStore{}, &stubImager{err: errors.New("service unavailable")})
	defer ts.Close()

	body, _ := json.Marshal(map[string]string{"prompt": "victory"})
	resp, err := http.Post(ts.URL+"/api/generate_image", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
