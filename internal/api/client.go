package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sawdustofmind/matchday-predictor/internal/log"
	"github.com/sawdustofmind/matchday-predictor/internal/models"
)

// Client talks to the remote prediction API. It keeps no credentials of its own;
// authenticated calls take the bearer token explicitly.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// WithHTTPClient replaces the underlying transport client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

func (c *Client) Register(ctx context.Context, creds models.Credentials) (*models.Account, error) {
	var out models.Account
	if err := c.do(ctx, http.MethodPost, "/register", "", creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, creds models.Credentials) (string, error) {
	var out models.TokenResponse
	if err := c.do(ctx, http.MethodPost, "/login", "", creds, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("%w: login response carried no access token", ErrServer)
	}
	return out.AccessToken, nil
}

func (c *Client) Matches(ctx context.Context, token string) ([]models.Match, error) {
	var out []models.Match
	if err := c.do(ctx, http.MethodGet, "/matches", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) MyPredictions(ctx context.Context, token string) ([]models.Prediction, error) {
	var out []models.Prediction
	if err := c.do(ctx, http.MethodGet, "/my-predictions", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreatePrediction(ctx context.Context, token string, matchID, home, away int) error {
	body := models.ScorePair{MatchID: matchID, HomeScore: home, AwayScore: away}
	return c.do(ctx, http.MethodPost, "/predictions", token, body, nil)
}

func (c *Client) UpdatePrediction(ctx context.Context, token string, predictionID, home, away int) error {
	body := models.ScorePair{HomeScore: home, AwayScore: away}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/predictions/%d", predictionID), token, body, nil)
}

// MatchPredictions lists every user's prediction for a match. The API only
// serves it once the match has started.
func (c *Client) MatchPredictions(ctx context.Context, token string, matchID int) ([]models.MatchPrediction, error) {
	var out []models.MatchPrediction
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/matches/%d/predictions", matchID), token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Leaderboard(ctx context.Context, token string) ([]models.LeaderboardEntry, error) {
	var out []models.LeaderboardEntry
	if err := c.do(ctx, http.MethodGet, "/leaderboard", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	url := c.baseURL + path

	var body io.Reader
	if in != nil {
		jsonData, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal %s %s body: %w", method, path, err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrNetwork, method, path, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Error("Failed to close response body", zap.String("path", path), zap.Error(closeErr))
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading %s %s response: %w", ErrNetwork, method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newError(resp.StatusCode, respBody)
		log.Debug("Prediction API returned an error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("detail", apiErr.Detail),
		)
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: decoding %s %s response: %w", ErrServer, method, path, err)
	}
	return nil
}
