package sweep_scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockSweeper struct {
	mock.Mock
}

func (m *MockSweeper) SweepOverdues(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func TestScheduler_Start(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name    string
		results []error
	}{
		{name: "sweeps repeatedly", results: []error{nil, nil}},
		{name: "keeps going after a failed sweep", results: []error{errors.New("db down"), nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sweeper := new(MockSweeper)
			swept := make(chan struct{}, len(tt.results)+8)
			for i, res := range tt.results {
				sweeper.On("SweepOverdues", mock.Anything).Return(i, res).Run(func(mock.Arguments) {
					swept <- struct{}{}
				}).Once()
			}
			sweeper.On("SweepOverdues", mock.Anything).Return(0, nil).Run(func(mock.Arguments) {
				select {
				case swept <- struct{}{}:
				default:
				}
			})

			scheduler := NewScheduler(sweeper, 5*time.Millisecond, logger)
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})
			go func() {
				scheduler.Start(ctx)
				close(done)
			}()

			for range tt.results {
				select {
				case <-swept:
				case <-time.After(time.Second):
					t.Fatal("sweep did not run")
				}
			}

			cancel()
			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("scheduler did not stop after cancel")
			}
		})
	}
}
