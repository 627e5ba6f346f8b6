package censored

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/lejarx/ncov-incubation/common"
	"github.com/lejarx/ncov-incubation/model"
)

func TestBootstrapCollectsReplicates(t *testing.T) {
	t.Parallel()

	ds := syntheticDataset(40, 1.6, 0.4, 21)
	rng := rand.New(rand.NewSource(1))

	boot, err := Bootstrap(context.Background(), ds, LogNormalFamily{}, 50, rng)
	require.NoError(t, err)

	assert.Equal(t, 50, boot.Attempted)
	assert.Equal(t, 50, boot.Succeeded()+boot.Failed)
	assert.True(t, boot.Reliable)
	for _, params := range boot.Replicates {
		assert.Len(t, params, 2)
	}
}

func TestBootstrapDeterministicForSeed(t *testing.T) {
	t.Parallel()

	ds := syntheticDataset(30, 1.6, 0.4, 13)

	first, err := Bootstrap(context.Background(), ds, LogNormalFamily{}, 25,
		rand.New(rand.NewSource(99)))
	require.NoError(t, err)
	second, err := Bootstrap(context.Background(), ds, LogNormalFamily{}, 25,
		rand.New(rand.NewSource(99)))
	require.NoError(t, err)

	require.Equal(t, first.Succeeded(), second.Succeeded())
	assert.Equal(t, first.Replicates, second.Replicates)

	// A different seed resamples differently.
	third, err := Bootstrap(context.Background(), ds, LogNormalFamily{}, 25,
		rand.New(rand.NewSource(100)))
	require.NoError(t, err)
	assert.NotEqual(t, first.Replicates, third.Replicates)
}

func TestBootstrapInvalidArguments(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(1))

	_, err := Bootstrap(context.Background(), &model.Dataset{}, LogNormalFamily{}, 10, rng)
	assert.ErrorIs(t, err, common.ErrorEmptyDataset)

	ds := syntheticDataset(10, 1.6, 0.4, 2)
	_, err = Bootstrap(context.Background(), ds, LogNormalFamily{}, 0, rng)
	assert.ErrorIs(t, err, common.ErrorInvalidValue)
}

func TestBootstrapReliabilityThreshold(t *testing.T) {
	t.Parallel()

	// Fewer successes than MinReliableReplicates can never be reliable,
	// even when every replicate converges.
	ds := syntheticDataset(20, 1.6, 0.4, 17)
	boot, err := Bootstrap(context.Background(), ds, LogNormalFamily{},
		MinReliableReplicates-1, rand.New(rand.NewSource(4)))
	require.NoError(t, err)
	assert.False(t, boot.Reliable)
}
