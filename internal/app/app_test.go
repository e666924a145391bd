package app_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ecobalance/ecobalance/internal/app"
	"github.com/ecobalance/ecobalance/internal/attribution"
	"github.com/ecobalance/ecobalance/internal/charts"
	"github.com/ecobalance/ecobalance/internal/datastore"
	"github.com/ecobalance/ecobalance/internal/detail"
	"github.com/ecobalance/ecobalance/internal/navigation"
	"github.com/ecobalance/ecobalance/internal/preferences"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubModule struct {
	name      string
	initErr   error
	updateErr error
	honorCtx  bool
	inits     atomic.Int32
	updates   atomic.Int32
	entered   chan struct{}
	release   chan struct{}
}

func (p *stubModule) Name() string { return p.name }

func (p *stubModule) Initialize(context.Context) error {
	p.inits.Add(1)
	return p.initErr
}

func (p *stubModule) Update(ctx context.Context) error {
	p.updates.Add(1)
	if p.entered != nil {
		p.entered <- struct{}{}
		<-p.release
	}
	if p.honorCtx {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return p.updateErr
}

func newApp(t *testing.T) *app.App {
	t.Helper()
	store := datastore.New(datastore.Config{
		Source: attribution.NewFileSource(filepath.Join("..", "..", attribution.DefaultLocation)),
		Logger: zerolog.Nop(),
	})
	a := app.New(app.Config{
		Store:  store,
		Prefs:  preferences.NewMemoryStore(0, 0),
		Logger: zerolog.Nop(),
	})
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })
	return a
}

func TestApp_Start(t *testing.T) {
	a := newApp(t)
	assert.Equal(t, app.StateUninitialized, a.State())

	require.NoError(t, a.Start(context.Background()))

	st := a.Status()
	assert.Equal(t, app.StateReady, st.State)
	assert.True(t, st.Initialized)
	assert.True(t, st.DataLoaded)
	assert.Equal(t, 9, st.CitiesCount)
	assert.Equal(t, navigation.ViewDashboard, st.CurrentView)
	assert.Equal(t, datastore.OriginFeed, st.DataOrigin)

	assert.Equal(t, "london", a.Dashboard().View().Summary.TopPerformer.ID)
	assert.Len(t, a.Comparison().Options(), 9)
	assert.Len(t, a.Sources().View().Cards, 9)
	_, err := a.Charts().SVG(charts.KindScores)
	assert.NoError(t, err)

	assert.ErrorIs(t, a.Start(context.Background()), app.ErrAlreadyStarted)
}

func TestApp_StartFailure(t *testing.T) {
	a := newApp(t)
	failing := &stubModule{name: "failing", initErr: errors.New("boom")}
	after := &stubModule{name: "after"}
	a.Register(failing)
	a.Register(after)

	err := a.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initialize failing")

	assert.Equal(t, app.StateFailed, a.State())
	assert.False(t, a.Status().Initialized)
	assert.Zero(t, after.inits.Load())

	banner := a.Banner().State()
	assert.True(t, banner.Visible)
	assert.Equal(t, app.MessageStartFailed, banner.Message)

	assert.ErrorIs(t, a.Refresh(context.Background()), app.ErrNotReady)

	// Modules initialized before the failure keep working.
	assert.True(t, a.Serving())
	assert.True(t, a.Initialized("dashboard"))
	assert.True(t, a.Initialized("charts"))
	assert.False(t, a.Initialized("failing"))
	assert.False(t, a.Initialized("after"))
	assert.Equal(t, []string{"navigation", "detail", "dashboard", "comparison", "sources", "charts"}, a.Status().Modules)

	require.NoError(t, a.ShowView(context.Background(), navigation.ViewComparison))
	assert.Equal(t, navigation.ViewComparison, a.Navigator().Current())
	require.NoError(t, a.SelectCity("paris"))
	require.NotNil(t, a.Detail().Current())
	assert.Equal(t, "paris", a.Detail().Current().City.ID)
}

func TestApp_RefreshOutlivesCallerContext(t *testing.T) {
	a := newApp(t)
	watcher := &stubModule{name: "watcher", honorCtx: true}
	a.Register(watcher)
	require.NoError(t, a.Start(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, a.Refresh(ctx))
	assert.Equal(t, int32(1), watcher.updates.Load())
	assert.Equal(t, datastore.OriginFeed, a.Store().Snapshot().Origin())
}

func TestApp_RefreshBeforeStart(t *testing.T) {
	a := newApp(t)
	assert.ErrorIs(t, a.Refresh(context.Background()), app.ErrNotReady)
	assert.ErrorIs(t, a.SelectCity("paris"), app.ErrNotReady)
	assert.ErrorIs(t, a.ShowView(context.Background(), navigation.ViewComparison), app.ErrNotReady)
}

func TestApp_RefreshKeepsView(t *testing.T) {
	ctx := context.Background()
	a := newApp(t)
	p := &stubModule{name: "stub"}
	a.Register(p)
	require.NoError(t, a.Start(ctx))

	require.NoError(t, a.ShowView(ctx, navigation.ViewComparison))
	before := a.Status().LastRefresh

	require.NoError(t, a.Refresh(ctx))
	assert.Equal(t, navigation.ViewComparison, a.Status().CurrentView)
	assert.Equal(t, int32(1), p.updates.Load())
	assert.False(t, a.Status().LastRefresh.Before(before))
	assert.False(t, a.Banner().State().Visible)
}

func TestApp_RefreshFailureShowsBanner(t *testing.T) {
	ctx := context.Background()
	a := newApp(t)
	a.Register(&stubModule{name: "flaky", updateErr: errors.New("stale")})
	require.NoError(t, a.Start(ctx))

	err := a.Refresh(ctx)
	require.Error(t, err)
	assert.Equal(t, app.StateReady, a.State())
	assert.Equal(t, app.MessageRefreshFailed, a.Banner().State().Message)
}

func TestApp_ConcurrentRefreshesShareOneRun(t *testing.T) {
	ctx := context.Background()
	a := newApp(t)
	p := &stubModule{name: "slow", entered: make(chan struct{}), release: make(chan struct{})}
	a.Register(p)
	require.NoError(t, a.Start(ctx))

	var wg sync.WaitGroup
	errs := make(chan error, 3)
	wg.Add(1)
	go func() {
		defer wg.Done()
		errs <- a.Refresh(ctx)
	}()
	<-p.entered

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- a.Refresh(ctx)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(p.release)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), p.updates.Load())
}

func TestApp_RequestRefresh(t *testing.T) {
	a := newApp(t)
	p := &stubModule{name: "stub"}
	a.Register(p)
	require.NoError(t, a.Start(context.Background()))

	var origin string
	a.Bus().DataReloaded.Subscribe(func(o string) { origin = o })

	a.RequestRefresh("test")
	assert.Equal(t, int32(1), p.updates.Load())
	assert.Equal(t, string(datastore.OriginFeed), origin)
}

func TestApp_SelectCityOpensDetail(t *testing.T) {
	a := newApp(t)
	require.NoError(t, a.Start(context.Background()))

	require.NoError(t, a.SelectCity("amsterdam"))
	v := a.Detail().Current()
	require.NotNil(t, v)
	assert.Equal(t, "Amsterdam", v.City.Name)
	require.NotNil(t, v.City.DataSources)

	assert.ErrorIs(t, a.SelectCity("gotham"), detail.ErrCityNotFound)

	require.NoError(t, a.Charts().Select("rome"))
	assert.Equal(t, "rome", a.Detail().Current().City.ID)
}

func TestApp_Shutdown(t *testing.T) {
	ctx := context.Background()
	a := newApp(t)
	require.NoError(t, a.Start(ctx))
	a.Banner().Show("something")

	require.NoError(t, a.Shutdown(ctx))
	assert.Equal(t, app.StateUninitialized, a.State())
	assert.Nil(t, a.Charts().Series())
	assert.False(t, a.Banner().State().Visible)
	assert.Zero(t, a.Bus().CitySelected.Len())
	assert.Zero(t, a.Bus().RefreshRequested.Len())
	assert.False(t, a.Initialized("dashboard"))
	assert.Empty(t, a.Status().Modules)
}
