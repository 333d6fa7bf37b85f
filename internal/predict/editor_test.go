package predict

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawdustofmind/matchday-predictor/internal/api"
	"github.com/sawdustofmind/matchday-predictor/internal/models"
)

var now = time.Date(2026, time.June, 10, 12, 0, 0, 0, time.UTC)

// fakeRemote keeps one prediction per match the way the prediction API does.
type fakeRemote struct {
	mu          sync.Mutex
	matches     []models.Match
	predictions []models.Prediction
	nextID      int
	calls       []string
	createErr   error
	matchesErr  error
	mineErr     error
	onCreate    func()
}

func (f *fakeRemote) Matches(context.Context, string) ([]models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "matches")
	return append([]models.Match(nil), f.matches...), f.matchesErr
}

func (f *fakeRemote) MyPredictions(context.Context, string) ([]models.Prediction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "mine")
	return append([]models.Prediction(nil), f.predictions...), f.mineErr
}

func (f *fakeRemote) CreatePrediction(_ context.Context, _ string, matchID, home, away int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "create")
	if f.onCreate != nil {
		f.onCreate()
	}
	if f.createErr != nil {
		return f.createErr
	}
	for _, p := range f.predictions {
		if p.MatchID == matchID {
			return errors.New("duplicate prediction")
		}
	}
	f.nextID++
	f.predictions = append(f.predictions, models.Prediction{ID: f.nextID, MatchID: matchID, PredictionHome: home, PredictionAway: away})
	return nil
}

func (f *fakeRemote) UpdatePrediction(_ context.Context, _ string, predictionID, home, away int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "update")
	for i := range f.predictions {
		if f.predictions[i].ID == predictionID {
			f.predictions[i].PredictionHome = home
			f.predictions[i].PredictionAway = away
			return nil
		}
	}
	return errors.New("unknown prediction")
}

func (f *fakeRemote) called(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func match(id int, kickoff time.Time) models.Match {
	return models.Match{ID: id, HomeTeam: "Polska", AwayTeam: "Niemcy", StartTime: models.Timestamp{Time: kickoff}}
}

func newEditor(remote *fakeRemote) *Editor {
	return NewEditor(remote, func() time.Time { return now })
}

func TestParseScores(t *testing.T) {
	home, away, err := ParseScores(" 2", "0 ")
	require.NoError(t, err)
	assert.Equal(t, 2, home)
	assert.Equal(t, 0, away)

	bad := [][2]string{
		{"", "1"},
		{"1", ""},
		{"-1", "0"},
		{"21", "0"},
		{"two", "0"},
		{"1.5", "0"},
		{"+5", "0"},
		{"0", "-0"},
		{"99999999999999999999", "0"},
	}
	for _, in := range bad {
		_, _, err := ParseScores(in[0], in[1])
		require.Error(t, err, "%q", in)
		assert.True(t, errors.Is(err, api.ErrValidation))
	}

	_, err = ParseScore("home", "20")
	assert.NoError(t, err)
}

func TestSubmitTwiceUpdatesInsteadOfDuplicating(t *testing.T) {
	remote := &fakeRemote{matches: []models.Match{match(1, now.Add(time.Hour))}}
	ed := newEditor(remote)
	ctx := context.Background()

	board, err := ed.Load(ctx, "tok")
	require.NoError(t, err)

	board, err = ed.Submit(ctx, "tok", board, 1, 2, 1)
	require.NoError(t, err)
	p, ok := board.Prediction(1)
	require.True(t, ok)
	assert.Equal(t, "2:1", p.Score())

	board, err = ed.Submit(ctx, "tok", board, 1, 0, 0)
	require.NoError(t, err)

	assert.Equal(t, 1, remote.called("create"))
	assert.Equal(t, 1, remote.called("update"))
	assert.Len(t, remote.predictions, 1)
	p, _ = board.Prediction(1)
	assert.Equal(t, "0:0", p.Score())
}

func TestSubmitRejectsOutOfRangeWithoutNetwork(t *testing.T) {
	remote := &fakeRemote{matches: []models.Match{match(1, now.Add(time.Hour))}}
	ed := newEditor(remote)

	board := &Board{Matches: remote.matches}
	_, err := ed.Submit(context.Background(), "tok", board, 1, -1, 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrValidation))
	assert.Empty(t, remote.calls)
}

func TestSubmitStartedMatchIsConflict(t *testing.T) {
	remote := &fakeRemote{matches: []models.Match{match(1, now.Add(-time.Minute))}}
	ed := newEditor(remote)

	board := &Board{Matches: remote.matches}
	fresh, err := ed.Submit(context.Background(), "tok", board, 1, 1, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrConflict))
	assert.Equal(t, 0, remote.called("create"))
	require.NotNil(t, fresh, "view is refreshed after a conflict")
	assert.Empty(t, fresh.Mine)
}

func TestServerRejectsJustStartedMatch(t *testing.T) {
	kickoff := now.Add(time.Second)
	remote := &fakeRemote{matches: []models.Match{match(1, kickoff)}}
	clock := now
	ed := NewEditor(remote, func() time.Time { return clock })

	board, err := ed.Load(context.Background(), "tok")
	require.NoError(t, err)

	// kickoff passes while the request is in flight and the API answers 400
	remote.onCreate = func() { clock = kickoff.Add(time.Second) }
	remote.createErr = api.NewError(400, "Cannot predict after kickoff")

	fresh, err := ed.Submit(context.Background(), "tok", board, 1, 3, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrConflict))
	assert.Equal(t, "Cannot predict after kickoff", api.Message(err))
	assert.Empty(t, remote.predictions, "no row added")
	require.NotNil(t, fresh)
	assert.Empty(t, fresh.Mine)
}

func TestServerValidationStaysValidation(t *testing.T) {
	remote := &fakeRemote{matches: []models.Match{match(1, now.Add(time.Hour))}}
	remote.createErr = api.NewError(400, "Prediction already exists")
	ed := newEditor(remote)

	board := &Board{Matches: remote.matches}
	fresh, err := ed.Submit(context.Background(), "tok", board, 1, 3, 0)
	assert.True(t, errors.Is(err, api.ErrValidation))
	assert.Nil(t, fresh)
}

func TestLoadFailsWhenEitherFetchFails(t *testing.T) {
	remote := &fakeRemote{matchesErr: api.ErrServer}
	_, err := newEditor(remote).Load(context.Background(), "tok")
	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrServer))
}

func TestSubmitUnknownMatch(t *testing.T) {
	remote := &fakeRemote{}
	_, err := newEditor(remote).Submit(context.Background(), "tok", &Board{}, 42, 1, 1)
	assert.True(t, errors.Is(err, api.ErrNotFound))
}

func TestSaveReportsCreateThenUpdate(t *testing.T) {
	remote := &fakeRemote{matches: []models.Match{match(5, now.Add(time.Hour))}}
	ed := newEditor(remote)
	ctx := context.Background()

	board, err := ed.Load(ctx, "tok")
	require.NoError(t, err)
	created, err := ed.Save(ctx, "tok", board, 5, 1, 0)
	require.NoError(t, err)
	assert.True(t, created)

	board, err = ed.Load(ctx, "tok")
	require.NoError(t, err)
	created, err = ed.Save(ctx, "tok", board, 5, 1, 1)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestSubmitReportsStaleBoardAfterSave(t *testing.T) {
	remote := &fakeRemote{matches: []models.Match{match(1, now.Add(time.Hour))}}
	remote.onCreate = func() { remote.mineErr = api.NewError(500, "down") }
	ed := newEditor(remote)
	ctx := context.Background()

	board, err := ed.Load(ctx, "tok")
	require.NoError(t, err)

	next, err := ed.Submit(ctx, "tok", board, 1, 2, 1)
	require.ErrorIs(t, err, ErrStaleBoard)
	assert.ErrorIs(t, err, api.ErrServer)
	assert.Same(t, board, next)
	assert.Equal(t, 1, remote.called("create"))
}
