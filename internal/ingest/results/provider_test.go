package results

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/claude/runplan/internal/models"
)

type mockStore struct {
	mock.Mock
	plan *models.Plan
}

// UpdatePlan applies fn to a copy and keeps it only when fn succeeds.
func (m *mockStore) UpdatePlan(ctx context.Context, id uuid.UUID, userID int, fn func(*models.Plan) error) (*models.Plan, error) {
	args := m.Called(id, userID)
	if err := args.Error(0); err != nil {
		return nil, err
	}
	work := *m.plan
	work.FitnessUpdates = append([]models.FitnessUpdate(nil), m.plan.FitnessUpdates...)
	if err := fn(&work); err != nil {
		return nil, err
	}
	m.plan = &work
	return m.plan, nil
}

func testProvider(store *mockStore) *Provider {
	return NewProvider(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestIngestAppliesResultsInOrder(t *testing.T) {
	id := uuid.New()
	store := &mockStore{plan: &models.Plan{ID: id, Name: "10K"}}
	store.On("UpdatePlan", id, 7).Return(nil).Once()

	res, err := testProvider(store).Ingest(context.Background(), id, 7,
		strings.NewReader("5K;22:00;parkrun\n10K;44:00;club race\n"))
	require.NoError(t, err)
	store.AssertExpectations(t)

	assert.Equal(t, 2, res.ResultsReceived)
	assert.Equal(t, 2, res.ResultsApplied)
	require.Len(t, res.FitnessUpdates, 2)
	assert.Nil(t, res.FitnessUpdates[0].PreviousScore, "first result seeds the model")
	require.NotNil(t, res.FitnessUpdates[1].PreviousScore)
	assert.Equal(t, "club race", res.FitnessUpdates[1].Source)

	require.NotNil(t, store.plan.Zones)
	assert.Len(t, store.plan.Zones.Results, 2)
	assert.Len(t, store.plan.FitnessUpdates, 2)
	require.NotNil(t, res.FitnessScore)
	assert.Equal(t, *store.plan.Zones.FitnessScore, *res.FitnessScore)
}

func TestIngestEmptyUpload(t *testing.T) {
	store := &mockStore{}
	res, err := testProvider(store).Ingest(context.Background(), uuid.New(), 1, strings.NewReader("# nothing yet\n"))
	require.NoError(t, err)
	assert.Zero(t, res.ResultsApplied)
	store.AssertNotCalled(t, "UpdatePlan", mock.Anything, mock.Anything)
}

func TestIngestRejectsBadFileBeforeTouchingPlan(t *testing.T) {
	store := &mockStore{}
	_, err := testProvider(store).Ingest(context.Background(), uuid.New(), 1, strings.NewReader("5K;22:00\nmarathon;soon\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	store.AssertNotCalled(t, "UpdatePlan", mock.Anything, mock.Anything)
}

func TestIngestPropagatesStoreErrors(t *testing.T) {
	id := uuid.New()
	missing := errors.New("plan not found")
	store := &mockStore{}
	store.On("UpdatePlan", id, 1).Return(missing)

	_, err := testProvider(store).Ingest(context.Background(), id, 1, strings.NewReader("5K;22:00\n"))
	assert.ErrorIs(t, err, missing)
}
