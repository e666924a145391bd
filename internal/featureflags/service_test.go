package featureflags_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecobalance/ecobalance/internal/featureflags"
)

type failingRepo struct{}

func (failingRepo) GetFlag(context.Context, string) (*featureflags.Flag, error) {
	return nil, errors.New("connection refused")
}

func (failingRepo) GetAllFlags(context.Context) (map[string]*featureflags.Flag, error) {
	return nil, errors.New("connection refused")
}

func (failingRepo) SetFlag(context.Context, *featureflags.Flag) error {
	return errors.New("connection refused")
}

func newService(repo featureflags.Repository) *featureflags.Service {
	return featureflags.NewService(featureflags.ServiceConfig{
		Repository: repo,
		Logger:     zerolog.Nop(),
		CacheTTL:   time.Minute,
	})
}

func TestService_DefaultsEnabled(t *testing.T) {
	svc := newService(featureflags.NewInMemoryRepository())
	ctx := context.Background()

	for _, key := range []string{
		featureflags.FlagAttributionFeed,
		featureflags.FlagAPIDemo,
		featureflags.FlagChartRendering,
		featureflags.FlagPersistView,
	} {
		assert.True(t, svc.IsEnabled(ctx, key), key)
	}
	assert.False(t, svc.IsEnabled(ctx, "unknown"))
}

func TestService_SetFlag(t *testing.T) {
	svc := newService(featureflags.NewInMemoryRepository())
	ctx := context.Background()

	require.NoError(t, svc.SetFlag(ctx, &featureflags.Flag{Key: featureflags.FlagAPIDemo, Value: false}))
	assert.False(t, svc.IsEnabled(ctx, featureflags.FlagAPIDemo))

	flags := svc.ListFlags(ctx)
	require.Len(t, flags, 4)
	assert.Equal(t, featureflags.FlagAPIDemo, flags[0].Key)
	assert.Equal(t, false, flags[0].Value)
}

func TestService_RepositoryFailureUsesDefaults(t *testing.T) {
	svc := newService(failingRepo{})
	ctx := context.Background()

	assert.True(t, svc.IsEnabled(ctx, featureflags.FlagChartRendering))
	assert.Len(t, svc.ListFlags(ctx), 4)
	assert.Error(t, svc.SetFlag(ctx, &featureflags.Flag{Key: "x", Value: true}))
}

func TestService_NilEnablesEverything(t *testing.T) {
	var svc *featureflags.Service
	assert.True(t, svc.IsEnabled(context.Background(), featureflags.FlagAttributionFeed))
}

func TestParseOverrides(t *testing.T) {
	flags, err := featureflags.ParseOverrides(" api_demo=false, chart_rendering=1,")
	require.NoError(t, err)
	require.Len(t, flags, 2)
	assert.Equal(t, "api_demo", flags[0].Key)
	assert.Equal(t, false, flags[0].Value)
	assert.Equal(t, true, flags[1].Value)

	_, err = featureflags.ParseOverrides("api_demo")
	assert.Error(t, err)
	_, err = featureflags.ParseOverrides("api_demo=maybe")
	assert.Error(t, err)

	none, err := featureflags.ParseOverrides("")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestService_Apply(t *testing.T) {
	svc := newService(nil)
	ctx := context.Background()

	overrides, err := featureflags.ParseOverrides("attribution_feed=false")
	require.NoError(t, err)
	require.NoError(t, svc.Apply(ctx, overrides))
	assert.False(t, svc.IsEnabled(ctx, featureflags.FlagAttributionFeed))
}

func TestFlag_BoolValue(t *testing.T) {
	var nilFlag *featureflags.Flag
	assert.True(t, nilFlag.BoolValue(true))
	assert.True(t, (&featureflags.Flag{Value: float64(1)}).BoolValue(false))
	assert.False(t, (&featureflags.Flag{Value: "yes"}).BoolValue(false))
}
