package navigation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecobalance/ecobalance/internal/events"
	"github.com/ecobalance/ecobalance/internal/navigation"
	"github.com/ecobalance/ecobalance/internal/preferences"
)

type brokenPrefs struct{}

func (brokenPrefs) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("down")
}
func (brokenPrefs) Set(context.Context, string, string) error { return errors.New("down") }
func (brokenPrefs) Delete(context.Context, string) error      { return errors.New("down") }

func TestNavigator_DefaultsToDashboard(t *testing.T) {
	topic := events.NewTopic[string](events.TopicViewChanged, zerolog.Nop())
	var seen []string
	topic.Subscribe(func(v string) { seen = append(seen, v) })

	nav := navigation.New(navigation.Config{Topic: topic, Logger: zerolog.Nop()})
	require.NoError(t, nav.Initialize(context.Background()))

	assert.Equal(t, navigation.ViewDashboard, nav.Current())
	assert.Equal(t, []string{"dashboard"}, seen)
}

func TestNavigator_Show(t *testing.T) {
	ctx := context.Background()
	prefs := preferences.NewMemoryStore(0, 0)
	nav := navigation.New(navigation.Config{Prefs: prefs, Logger: zerolog.Nop()})

	require.NoError(t, nav.Show(ctx, navigation.ViewMethodology))
	assert.Equal(t, navigation.ViewMethodology, nav.Current())

	stored, ok, _ := prefs.Get(ctx, preferences.KeyCurrentView)
	assert.True(t, ok)
	assert.Equal(t, "methodology", stored)

	assert.ErrorIs(t, nav.Show(ctx, "settings"), navigation.ErrUnknownView)
	assert.Equal(t, navigation.ViewMethodology, nav.Current())
}

func TestNavigator_RestoresPersistedView(t *testing.T) {
	ctx := context.Background()
	prefs := preferences.NewMemoryStore(0, 0)
	require.NoError(t, prefs.Set(ctx, preferences.KeyCurrentView, navigation.ViewComparison))

	nav := navigation.New(navigation.Config{Prefs: prefs, Logger: zerolog.Nop()})
	require.NoError(t, nav.Initialize(ctx))
	assert.Equal(t, navigation.ViewComparison, nav.Current())
}

func TestNavigator_IgnoresInvalidPersistedView(t *testing.T) {
	ctx := context.Background()
	prefs := preferences.NewMemoryStore(0, 0)
	require.NoError(t, prefs.Set(ctx, preferences.KeyCurrentView, "bogus"))

	nav := navigation.New(navigation.Config{Prefs: prefs, Logger: zerolog.Nop()})
	require.NoError(t, nav.Initialize(ctx))
	assert.Equal(t, navigation.ViewDashboard, nav.Current())
}

func TestNavigator_PreferenceFailuresAreNotFatal(t *testing.T) {
	nav := navigation.New(navigation.Config{Prefs: brokenPrefs{}, Logger: zerolog.Nop()})
	require.NoError(t, nav.Initialize(context.Background()))
	require.NoError(t, nav.Show(context.Background(), navigation.ViewDataSources))
	assert.Equal(t, navigation.ViewDataSources, nav.Current())
}
