// Package predict implements create-or-update of a user's score prediction.
package predict

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sawdustofmind/matchday-predictor/internal/api"
	"github.com/sawdustofmind/matchday-predictor/internal/log"
	"github.com/sawdustofmind/matchday-predictor/internal/models"
	"github.com/sawdustofmind/matchday-predictor/internal/scoring"
)

const (
	MinScore = 0
	MaxScore = 20
)

// Remote is the part of the prediction API the editor needs.
type Remote interface {
	Matches(ctx context.Context, token string) ([]models.Match, error)
	MyPredictions(ctx context.Context, token string) ([]models.Prediction, error)
	CreatePrediction(ctx context.Context, token string, matchID, home, away int) error
	UpdatePrediction(ctx context.Context, token string, predictionID, home, away int) error
}

// ErrStaleBoard marks a prediction that was saved while the reload after it
// failed. The board returned with it predates the save.
var ErrStaleBoard = errors.New("prediction saved but board reload failed")

// FieldError is a rejected form value. It matches api.ErrValidation.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error {
	return api.ErrValidation
}

// ParseScore validates a raw form value.
func ParseScore(field, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, &FieldError{Field: field, Message: "enter a score"}
	}
	if !isDigits(raw) {
		return 0, &FieldError{Field: field, Message: "must be a whole number"}
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &FieldError{Field: field, Message: fmt.Sprintf("must be between %d and %d", MinScore, MaxScore)}
	}
	if n < MinScore || n > MaxScore {
		return 0, &FieldError{Field: field, Message: fmt.Sprintf("must be between %d and %d", MinScore, MaxScore)}
	}
	return n, nil
}

// isDigits rejects signs, which strconv.Atoi would otherwise accept.
func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// ParseScores validates both sides of a score pair.
func ParseScores(rawHome, rawAway string) (home, away int, err error) {
	home, err = ParseScore("home", rawHome)
	if err != nil {
		return 0, 0, err
	}
	away, err = ParseScore("away", rawAway)
	if err != nil {
		return 0, 0, err
	}
	return home, away, nil
}

// Board is the caller's joined view of matches and own predictions.
type Board struct {
	Matches []models.Match
	Mine    map[int]models.Prediction
}

func (b *Board) Match(id int) (models.Match, bool) {
	for _, m := range b.Matches {
		if m.ID == id {
			return m, true
		}
	}
	return models.Match{}, false
}

func (b *Board) Prediction(matchID int) (models.Prediction, bool) {
	p, ok := b.Mine[matchID]
	return p, ok
}

type Editor struct {
	remote Remote
	now    func() time.Time
}

func NewEditor(remote Remote, now func() time.Time) *Editor {
	if now == nil {
		now = time.Now
	}
	return &Editor{remote: remote, now: now}
}

// Load fetches matches and own predictions concurrently. Either failure fails
// the whole load so callers never see half a board.
func (e *Editor) Load(ctx context.Context, token string) (*Board, error) {
	var (
		matches []models.Match
		mine    []models.Prediction
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		matches, err = e.remote.Matches(gctx, token)
		if err != nil {
			return fmt.Errorf("loading matches: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		mine, err = e.remote.MyPredictions(gctx, token)
		if err != nil {
			return fmt.Errorf("loading predictions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Board{Matches: matches, Mine: scoring.IndexByMatch(mine)}, nil
}

// Save creates the caller's prediction for a match or updates the existing
// one. It reports whether a new prediction was created.
func (e *Editor) Save(ctx context.Context, token string, board *Board, matchID, home, away int) (bool, error) {
	if home < MinScore || home > MaxScore || away < MinScore || away > MaxScore {
		return false, &FieldError{Field: "score", Message: fmt.Sprintf("must be between %d and %d", MinScore, MaxScore)}
	}

	match, ok := board.Match(matchID)
	if !ok {
		return false, fmt.Errorf("match %d: %w", matchID, api.ErrNotFound)
	}
	if scoring.Started(e.now(), match.StartTime.Time) {
		return false, fmt.Errorf("match %d kicked off at %s: %w", matchID, match.StartTime.Format(time.RFC3339), api.ErrConflict)
	}

	existing, update := board.Prediction(matchID)
	var err error
	if update {
		err = e.remote.UpdatePrediction(ctx, token, existing.ID, home, away)
	} else {
		err = e.remote.CreatePrediction(ctx, token, matchID, home, away)
	}
	if err != nil {
		return false, e.reclassify(err, match)
	}

	log.Debug("Prediction saved",
		zap.Int("match_id", matchID),
		zap.Int("home", home),
		zap.Int("away", away),
		zap.Bool("created", !update),
	)
	return !update, nil
}

// Submit saves a prediction and reloads the board so the caller continues from
// the API's state. On a conflict the reloaded board comes back with the error.
// When the save went through but the reload did not, the old board comes back
// with an error matching ErrStaleBoard.
func (e *Editor) Submit(ctx context.Context, token string, board *Board, matchID, home, away int) (*Board, error) {
	if _, err := e.Save(ctx, token, board, matchID, home, away); err != nil {
		if errors.Is(err, api.ErrConflict) {
			return e.reloadAfterConflict(ctx, token, err)
		}
		return nil, err
	}
	next, err := e.Load(ctx, token)
	if err != nil {
		return board, fmt.Errorf("%w: %w", ErrStaleBoard, err)
	}
	return next, nil
}

// reclassify turns a plain 400 into a conflict once kickoff has passed: the
// API reports "match started" as a bad request.
func (e *Editor) reclassify(err error, match models.Match) error {
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || !errors.Is(err, api.ErrValidation) {
		return err
	}
	if scoring.Started(e.now(), match.StartTime.Time) {
		return apiErr.Reclassify(api.ErrConflict)
	}
	return err
}

func (e *Editor) reloadAfterConflict(ctx context.Context, token string, cause error) (*Board, error) {
	board, err := e.Load(ctx, token)
	if err != nil {
		log.Warn("Reload after conflict failed", zap.Error(err))
		return nil, cause
	}
	return board, cause
}
