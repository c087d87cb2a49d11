package syncer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hubview/internal/logging"
	"hubview/internal/registry"
	"hubview/internal/types"
	"hubview/internal/view"
)

func TestApplyIgnoresEmptyEvent(t *testing.T) {
	var buf bytes.Buffer
	engine := New(Options{})
	reg := registry.New()
	model := view.Model{Version: 3}

	next, err := engine.apply(reg, model, types.EntityEvent{}, logging.New(&buf, logging.Debug))
	require.NoError(t, err)
	assert.Equal(t, 3, next.Version)
	assert.False(t, reg.States.IsLoaded())
	assert.Empty(t, buf.String())
	select {
	case u := <-engine.pub.C():
		t.Fatalf("unexpected update published: %+v", u)
	default:
	}
}

func TestApplyLogsSkippedRecords(t *testing.T) {
	var buf bytes.Buffer
	engine := New(Options{})
	reg := registry.New()
	model := view.Model{Version: 3}

	next, err := engine.apply(reg, model, types.EntityEvent{
		Changes: map[string]types.EntityChange{"sensor.power": {}},
	}, logging.New(&buf, logging.Debug))
	require.NoError(t, err)
	assert.Equal(t, 3, next.Version)
	assert.Contains(t, buf.String(), "delta_skipped")
}
