package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"healthcare-app-server/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCanceller struct {
	mock.Mock
}

func (m *mockCanceller) CancelStalePending(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func TestNewSweeperRejectsBadSchedule(t *testing.T) {
	_, err := NewSweeper("every now and then", time.UTC, new(mockCanceller), logger.Discard())
	assert.Error(t, err)
}

func TestSweeperRunCallsTarget(t *testing.T) {
	target := new(mockCanceller)
	target.On("CancelStalePending", mock.Anything).Return(2, nil).Once()

	s, err := NewSweeper("*/15 * * * *", time.UTC, target, logger.Discard())
	require.NoError(t, err)

	s.Run()
	target.AssertExpectations(t)
}

func TestSweeperRunSurvivesErrors(t *testing.T) {
	target := new(mockCanceller)
	target.On("CancelStalePending", mock.Anything).Return(0, errors.New("db down")).Once()

	s, err := NewSweeper("@every 1h", time.UTC, target, logger.Discard())
	require.NoError(t, err)

	assert.NotPanics(t, s.Run)
	target.AssertExpectations(t)
}

func TestSweeperStartStop(t *testing.T) {
	s, err := NewSweeper("@every 1h", time.UTC, new(mockCanceller), logger.Discard())
	require.NoError(t, err)

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
