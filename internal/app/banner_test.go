package app_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ecobalance/ecobalance/internal/app"
)

func TestBanner_AutoDismiss(t *testing.T) {
	b := app.NewBanner(30 * time.Millisecond)
	b.Show("first")

	st := b.State()
	assert.True(t, st.Visible)
	assert.Equal(t, "first", st.Message)
	assert.Equal(t, 30*time.Millisecond, st.ExpiresAt.Sub(st.ShownAt))

	assert.Eventually(t, func() bool { return !b.State().Visible }, time.Second, 5*time.Millisecond)
}

func TestBanner_NewMessageRestartsCountdown(t *testing.T) {
	b := app.NewBanner(80 * time.Millisecond)
	b.Show("first")
	time.Sleep(50 * time.Millisecond)
	b.Show("second")
	time.Sleep(50 * time.Millisecond)

	st := b.State()
	assert.True(t, st.Visible)
	assert.Equal(t, "second", st.Message)

	b.Dismiss()
}

func TestBanner_Dismiss(t *testing.T) {
	b := app.NewBanner(time.Hour)
	b.Show("stuck")
	b.Dismiss()
	assert.False(t, b.State().Visible)
	b.Dismiss()
}

func TestBanner_DefaultTTL(t *testing.T) {
	b := app.NewBanner(0)
	b.Show("x")
	st := b.State()
	assert.Equal(t, app.DefaultBannerTTL, st.ExpiresAt.Sub(st.ShownAt))
	b.Dismiss()
}
