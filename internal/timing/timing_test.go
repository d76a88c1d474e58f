package timing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dauphin-lang/dauphin/internal/timing"
)

func TestEstimateIsFlatRegardlessOfHints(t *testing.T) {
	assert.Equal(t, timing.Coefficient, timing.Estimate(timing.SizeHints{}))
	assert.Equal(t, timing.Coefficient, timing.Estimate(timing.SizeHints{Length: 1000, Known: true}))
}

func TestDynamicDataRoundTripsWithoutError(t *testing.T) {
	data, err := timing.GenerateDynamicData()
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.NoError(t, timing.UseDynamicData(data))
}
