package syncer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hubview/internal/hub"
	"hubview/internal/icons"
	"hubview/internal/syncer"
	"hubview/internal/testutil"
	"hubview/internal/view"
)

const testToken = "token"

func newEngine(fake *testutil.FakeHub, token string) *syncer.Engine {
	return syncer.New(syncer.Options{
		URL:   fake.URL(),
		Token: token,
		Dial:  hub.DialOptions{ReceiveTimeout: 100 * time.Millisecond, DialTimeout: 2 * time.Second},
	})
}

func start(t *testing.T, engine *syncer.Engine) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- engine.Run(ctx) }()
	t.Cleanup(cancel)
	return cancel, done
}

func waitUpdate(t *testing.T, engine *syncer.Engine, match func(syncer.Update) bool) syncer.Update {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case update, ok := <-engine.Updates():
			if !ok {
				t.Fatalf("updates closed before match; last %+v", engine.Latest())
			}
			if match(update) {
				return update
			}
		case <-timeout:
			t.Fatalf("timed out waiting for update; last %+v", engine.Latest())
		}
	}
}

func isLive(u syncer.Update) bool { return u.Phase == syncer.PhaseLive }

func stateOf(u syncer.Update, entityID string) string {
	row, _ := u.Model.Entity(entityID)
	return row.State
}

func TestEngineAppliesDeltas(t *testing.T) {
	fake := testutil.NewFakeHub(t, testToken)
	testutil.SeedHome(fake)
	engine := newEngine(fake, testToken)
	cancel, done := start(t, engine)

	live := waitUpdate(t, engine, isLive)
	assert.Equal(t, "2025.1.0", live.HubVersion)
	assert.Equal(t, icons.ToggleOff, stateOf(live, "light.kitchen"))
	assert.Equal(t, 3, live.Model.Len())
	_, hasDiagnostic := live.Model.Entity("sensor.signal")
	assert.False(t, hasDiagnostic)

	sub := fake.WaitFor(t, hub.CommandSubscribeEntities, 2*time.Second)
	include, _ := sub["include"].(map[string]any)
	assert.ElementsMatch(t, []any{"light.kitchen", "button.doorbell", "sensor.power"}, include["entities"])

	require.NoError(t, fake.Event(testutil.CommandID(sub), map[string]any{
		"c": map[string]any{
			"light.kitchen": map[string]any{"+": map[string]any{"s": "on"}},
			"sensor.power":  map[string]any{"+": map[string]any{"a": map[string]any{"friendly_name": "Power"}}},
		},
	}))
	patched := waitUpdate(t, engine, func(u syncer.Update) bool {
		return stateOf(u, "light.kitchen") == icons.ToggleOn
	})
	assert.Greater(t, patched.Model.Version, live.Model.Version)
	assert.Equal(t, "120.00W", stateOf(patched, "sensor.power"), "attribute-only changes are skipped")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatalf("engine did not stop")
	}
	final := waitUpdate(t, engine, func(u syncer.Update) bool { return u.Phase == syncer.PhaseStopped })
	assert.NoError(t, final.Err)
	_, open := <-engine.Updates()
	assert.False(t, open)
}

func TestEngineSubmitsIntents(t *testing.T) {
	fake := testutil.NewFakeHub(t, testToken)
	testutil.SeedHome(fake)
	engine := newEngine(fake, testToken)
	start(t, engine)
	waitUpdate(t, engine, isLive)

	ctx := context.Background()
	require.NoError(t, engine.Submit(ctx, view.Intent{EntityID: "light.kitchen", Action: view.ActionToggle}))
	call := fake.WaitFor(t, hub.CommandCallService, 2*time.Second)
	assert.Equal(t, "light", call["domain"])
	assert.Equal(t, "toggle", call["service"])
	assert.Equal(t, map[string]any{"entity_id": "light.kitchen"}, call["target"])

	update := waitUpdate(t, engine, func(u syncer.Update) bool { return u.Status != "" })
	assert.False(t, update.StatusErr)

	err := engine.Submit(ctx, view.Intent{EntityID: "sensor.power", Action: view.ActionPress})
	assert.Error(t, err)
}

func TestEngineServiceFailureIsNotFatal(t *testing.T) {
	fake := testutil.NewFakeHub(t, testToken)
	testutil.SeedHome(fake)
	fake.Handle(hub.CommandCallService, func(map[string]any) testutil.Reply {
		return testutil.Fail("not_found", "Service button.press not found")
	})
	engine := newEngine(fake, testToken)
	_, done := start(t, engine)
	waitUpdate(t, engine, isLive)

	require.NoError(t, engine.Submit(context.Background(), view.Intent{EntityID: "button.doorbell", Action: view.ActionPress}))
	update := waitUpdate(t, engine, func(u syncer.Update) bool { return u.StatusErr })
	assert.Contains(t, update.Status, "button.doorbell")
	assert.Equal(t, syncer.PhaseLive, update.Phase)

	select {
	case err := <-done:
		t.Fatalf("engine stopped: %v", err)
	default:
	}
}

func TestEngineAuthFailureIsTerminal(t *testing.T) {
	fake := testutil.NewFakeHub(t, testToken)
	engine := newEngine(fake, "wrong")
	_, done := start(t, engine)

	var authErr *hub.AuthError
	select {
	case err := <-done:
		require.ErrorAs(t, err, &authErr)
	case <-time.After(5 * time.Second):
		t.Fatalf("engine did not stop")
	}
	final := waitUpdate(t, engine, func(u syncer.Update) bool { return u.Phase == syncer.PhaseStopped })
	require.ErrorAs(t, final.Err, &authErr)
	assert.ErrorIs(t, engine.Submit(context.Background(), view.Intent{EntityID: "light.kitchen", Action: view.ActionToggle}), syncer.ErrNotRunning)
}

func TestEngineConnectionLossIsTerminal(t *testing.T) {
	fake := testutil.NewFakeHub(t, testToken)
	testutil.SeedHome(fake)
	engine := newEngine(fake, testToken)
	_, done := start(t, engine)
	waitUpdate(t, engine, isLive)

	fake.Disconnect()
	select {
	case err := <-done:
		var connErr *hub.ConnectionError
		require.ErrorAs(t, err, &connErr)
	case <-time.After(5 * time.Second):
		t.Fatalf("engine did not stop")
	}
}

func TestEngineStartupFailure(t *testing.T) {
	fake := testutil.NewFakeHub(t, testToken)
	testutil.SeedHome(fake)
	fake.Handle(hub.CommandGetStates, func(map[string]any) testutil.Reply {
		return testutil.Fail("unknown_error", "boom")
	})
	engine := newEngine(fake, testToken)
	_, done := start(t, engine)

	select {
	case err := <-done:
		var startupErr *hub.StartupError
		require.ErrorAs(t, err, &startupErr)
		assert.Equal(t, hub.CommandGetStates, startupErr.Step)
	case <-time.After(5 * time.Second):
		t.Fatalf("engine did not stop")
	}
}

func TestEngineSnapshot(t *testing.T) {
	fake := testutil.NewFakeHub(t, testToken)
	testutil.SeedHome(fake)
	engine := newEngine(fake, testToken)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	model, reg, err := engine.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Home", reg.Config.Value().LocationName)
	require.Len(t, model.Groups, 3)
	assert.Equal(t, "Kitchen", model.Groups[0].Label)
	assert.NotContains(t, fake.CommandTypes(), hub.CommandSubscribeEntities)
}
