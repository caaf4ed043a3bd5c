package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDailySpec(t *testing.T) {
	spec, err := buildDailySpec("09:05")
	require.NoError(t, err)
	assert.Equal(t, "0 5 9 * * *", spec)

	for _, bad := range []string{"9", "24:00", "12:60", "aa:bb", ""} {
		_, err := buildDailySpec(bad)
		assert.Error(t, err, bad)
	}
}

func TestOnceSchedule(t *testing.T) {
	at := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	s := onceSchedule{at: at}
	assert.Equal(t, at, s.Next(at.Add(-time.Minute)))
	assert.True(t, s.Next(at).IsZero())
	assert.True(t, s.Next(at.Add(time.Second)).IsZero())
}

func TestScheduleOnceFires(t *testing.T) {
	s := NewSchedulerService(time.UTC)
	s.Start()
	defer s.Stop()

	fired := make(chan struct{}, 2)
	s.ScheduleOnce(time.Now().Add(200*time.Millisecond), func() { fired <- struct{}{} })

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not fire")
	}
	select {
	case <-fired:
		t.Fatal("job fired twice")
	case <-time.After(300 * time.Millisecond):
	}
}
