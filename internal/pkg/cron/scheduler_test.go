package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduler_RunsImmediatelyAndStops(t *testing.T) {
	s := NewScheduler()
	var runs atomic.Int32
	s.AddJob("count", time.Hour, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	// Act
	s.Start(context.Background())
	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	s.Stop()
	s.Stop()

	// Assert
	assert.Equal(t, int32(1), runs.Load())
}

func TestScheduler_RunOnceReturnsFirstError(t *testing.T) {
	s := NewScheduler()
	boom := errors.New("boom")
	var second bool
	s.AddJob("fails", time.Minute, func(ctx context.Context) error { return boom })
	s.AddJob("runs", time.Minute, func(ctx context.Context) error {
		second = true
		return nil
	})

	// Act
	err := s.RunOnce(context.Background())

	// Assert
	assert.ErrorIs(t, err, boom)
	assert.True(t, second)
}
