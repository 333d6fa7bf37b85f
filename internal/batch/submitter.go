package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sawdustofmind/matchday-predictor/internal/api"
	"github.com/sawdustofmind/matchday-predictor/internal/log"
	"github.com/sawdustofmind/matchday-predictor/internal/predict"
)

// Report counts what a run did.
type Report struct {
	Submitted int
	Failed    int
}

type Submitter struct {
	editor *predict.Editor
	token  string
	speed  time.Duration
}

// NewSubmitter sends through editor as the holder of token, waiting at least
// speed between two submissions.
func NewSubmitter(editor *predict.Editor, token string, speed time.Duration) *Submitter {
	return &Submitter{editor: editor, token: token, speed: speed}
}

// Run submits every line from lines until the channel closes or ctx is done.
// A failed line is logged and counted; the run carries on with the next one.
func (s *Submitter) Run(ctx context.Context, lines <-chan Line) (Report, error) {
	var report Report

	board, err := s.editor.Load(ctx, s.token)
	if err != nil {
		return report, fmt.Errorf("loading matches: %w", err)
	}

	lastSent := time.Time{}
	for {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return report, nil
			}

			now := time.Now()
			if !lastSent.IsZero() && now.Sub(lastSent) < s.speed {
				select {
				case <-ctx.Done():
					return report, ctx.Err()
				case <-time.After(s.speed - now.Sub(lastSent)):
				}
			}
			lastSent = time.Now()

			l := log.With(
				zap.Int("line_number", line.Number),
				zap.Int("match_id", line.MatchID),
			)

			next, err := s.editor.Submit(ctx, s.token, board, line.MatchID, line.Home, line.Away)
			if next != nil {
				board = next
			}
			if errors.Is(err, predict.ErrStaleBoard) {
				report.Submitted++
				l.Warn("Submitted prediction, continuing with a stale board", zap.Error(err))
				continue
			}
			if err != nil {
				if errors.Is(err, api.ErrAuthentication) {
					// every following line would fail the same way
					return report, err
				}
				report.Failed++
				l.Error("Failed to submit prediction", zap.String("reason", api.Message(err)), zap.Error(err))
				continue
			}

			report.Submitted++
			l.Info("Submitted prediction", zap.Int("home", line.Home), zap.Int("away", line.Away))
		}
	}
}
