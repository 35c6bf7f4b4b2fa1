package clock_test

import (
	"testing"
	"time"

	"github.com/notepress/notepress/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreeze(t *testing.T) {
	point := time.Date(2023, time.Month(9), 1, 12, 30, 0, 0, time.UTC)
	testClock := clock.FreezeAt(point)
	defer clock.Unfreeze()

	require.Equal(t, point, clock.Now())

	testClock.FastForward(1 * time.Hour)
	assert.Equal(t, point.Add(1*time.Hour), clock.Now())
}

func TestUnfreeze(t *testing.T) {
	point := time.Date(2023, time.Month(9), 1, 12, 30, 0, 0, time.UTC)
	clock.FreezeAt(point)
	clock.Unfreeze()
	assert.NotEqual(t, point, clock.Now())
}
