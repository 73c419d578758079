//go:build integration_test

package demo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/edoxia/crayons/internal/domain"
)

const (
	baseURL   = "http://localhost:8080"
	redisAddr = "localhost:6379"
)

// TestGameShow drives a small game end to end against a running server:
// roster, start, one full turn per queue entry, podium. Run with a local
// redis and the server listening on :8080.
func TestGameShow(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	subscribeCues(t, ctx)

	call(t, http.MethodPost, "/v1/session/new", nil)
	call(t, http.MethodPut, "/v1/session/roster", map[string]any{
		"teams": []map[string]any{
			{"name": "Rouges", "color": "#e63946", "players": []string{"P1", "P2"}},
			{"name": "Bleus", "color": "#457b9d", "players": []string{"Q1"}},
		},
	})
	s := call(t, http.MethodPost, "/v1/session/start", map[string]any{"question_count": 5})
	require.Equal(t, domain.PhasePlaying, s.Phase)

	for s.Phase == domain.PhasePlaying {
		if s.BuzzerGatePending {
			s = call(t, http.MethodPost, "/v1/session/buzzer-gate", nil)
			continue
		}

		if turn := s.TurnQueue[s.CurrentTurnIndex]; turn.Kind == domain.TurnBuzzer {
			s = call(t, http.MethodPost, "/v1/turn/buzzer-team", map[string]any{"team_index": 0})
		}

		if s.CurrentQuestion.Kind == domain.QuestionMCQ {
			call(t, http.MethodPost, "/v1/turn/option", map[string]any{"index": s.CurrentQuestion.CorrectIndex})
			call(t, http.MethodPost, "/v1/turn/suspense", nil)
			call(t, http.MethodPost, "/v1/turn/reveal", nil)

			require.Eventually(t, func() bool {
				return getSession(t).Step == domain.StepReveal
			}, 10*time.Second, 100*time.Millisecond, "waiting for the pre-reveal flash")
		} else {
			call(t, http.MethodPost, "/v1/turn/suspense", nil)
			call(t, http.MethodPost, "/v1/turn/reveal", nil)
			call(t, http.MethodPost, "/v1/turn/decision", map[string]any{"is_correct": true})
		}

		s = call(t, http.MethodPost, "/v1/turn/advance", nil)
		t.Logf("advanced: phase=%s turn=%d level=%d", s.Phase, s.CurrentTurnIndex, s.Level)
	}

	require.Equal(t, domain.PhaseFinished, s.Phase)

	var podium struct {
		Entries []struct {
			TeamName string `json:"team_name"`
			Score    int    `json:"score"`
		} `json:"entries"`
	}
	resp, err := http.Get(baseURL + "/v1/podium/" + s.SessionID)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&podium))
	require.NotEmpty(t, podium.Entries)
	t.Logf("podium: %+v", podium.Entries)
}

func subscribeCues(t *testing.T, ctx context.Context) {
	rc := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{redisAddr}})
	sub := rc.Subscribe(ctx, "crayons:cues")
	t.Cleanup(func() { _ = sub.Close() })

	go func() {
		for msg := range sub.Channel() {
			t.Logf("cue: %s", msg.Payload)
		}
	}()
}

func call(t *testing.T, method, path string, body map[string]any) domain.GameSession {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, baseURL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, fmt.Sprintf("%s %s", method, path))

	var s domain.GameSession
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&s))
	return s
}

func getSession(t *testing.T) domain.GameSession {
	t.Helper()

	resp, err := http.Get(baseURL + "/v1/session")
	require.NoError(t, err)
	defer resp.Body.Close()

	var s domain.GameSession
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&s))
	return s
}
