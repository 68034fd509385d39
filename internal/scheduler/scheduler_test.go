package scheduler

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name string
	runs atomic.Int32
	err  error
}

func (j *countingJob) Run() error {
	j.runs.Add(1)
	return j.err
}

func (j *countingJob) Name() string {
	return j.name
}

func TestScheduler_AddJob(t *testing.T) {
	s := New(zerolog.Nop())

	err := s.AddJob("0 0 6 * * *", &countingJob{name: "daily"})
	require.NoError(t, err)
	assert.Equal(t, 1, s.JobCount())
}

func TestScheduler_AddJob_InvalidSchedule(t *testing.T) {
	s := New(zerolog.Nop())

	err := s.AddJob("not a schedule", &countingJob{name: "broken"})
	assert.Error(t, err)
	assert.Equal(t, 0, s.JobCount())
}

func TestScheduler_AddJob_ReplacesByName(t *testing.T) {
	s := New(zerolog.Nop())

	require.NoError(t, s.AddJob("0 0 6 * * *", &countingJob{name: "daily"}))
	require.NoError(t, s.AddJob("0 0 7 * * *", &countingJob{name: "daily"}))

	// Same name twice is one registration, not two
	assert.Equal(t, 1, s.JobCount())
}

func TestScheduler_RunNow(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{name: "manual"}

	require.NoError(t, s.RunNow(job))
	assert.Equal(t, int32(1), job.runs.Load())

	job.err = fmt.Errorf("boom")
	assert.Error(t, s.RunNow(job))
}
