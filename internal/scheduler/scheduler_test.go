package scheduler

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddJob_InvalidSchedule(t *testing.T) {
	s := New(zerolog.Nop())
	err := s.AddJob("not a schedule", NewFuncJob("noop", func() error { return nil }))
	assert.Error(t, err)
}

func TestAddJob_ValidSchedule(t *testing.T) {
	s := New(zerolog.Nop())
	err := s.AddJob("@hourly", NewFuncJob("noop", func() error { return nil }))
	assert.NoError(t, err)
}

func TestRunNow(t *testing.T) {
	s := New(zerolog.Nop())

	ran := false
	job := NewFuncJob("cycle", func() error {
		ran = true
		return nil
	})
	require.NoError(t, s.RunNow(job))
	assert.True(t, ran)
	assert.Equal(t, "cycle", job.Name())

	failing := NewFuncJob("failing", func() error { return errors.New("boom") })
	assert.Error(t, s.RunNow(failing))
}
