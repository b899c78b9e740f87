package trainer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUIController_PanicsOnNilDependencies(t *testing.T) {
	session := newFakeSession("w1")
	model, _ := newTestModel(t, session)

	assert.Panics(t, func() { NewUIController(nil, session, discardLogger()) })
	assert.Panics(t, func() { NewUIController(model, nil, discardLogger()) })
	assert.Panics(t, func() { NewUIController(model, session, nil) })
}

func TestUIController_OnPlanSelected(t *testing.T) {
	session := newFakeSession("w1")
	model, _ := newTestModel(t, session)
	model.SetMode(UIModePlanSelection)
	controller := NewUIController(model, session, discardLogger())

	controller.OnPlanSelected(1)

	assert.Equal(t, []string{"w2"}, session.selectedKeys())
	assert.Equal(t, "w2", model.GetPreferredPlan())
	assert.Equal(t, UIModeSession, model.GetUIState().Mode)
}

func TestUIController_OnPlanSelected_InvalidIndex(t *testing.T) {
	session := newFakeSession("w1")
	model, _ := newTestModel(t, session)
	model.SetMode(UIModePlanSelection)
	controller := NewUIController(model, session, discardLogger())

	controller.OnPlanSelected(-1)
	controller.OnPlanSelected(len(testCatalog))

	assert.Empty(t, session.selectedKeys())
	assert.Equal(t, UIModePlanSelection, model.GetUIState().Mode)
}

func TestUIController_OnPlanSelected_SelectionFailure(t *testing.T) {
	session := newFakeSession("w1")
	session.failWith = errSelectFailed
	model, _ := newTestModel(t, session)
	model.SetMode(UIModePlanSelection)
	controller := NewUIController(model, session, discardLogger())

	controller.OnPlanSelected(1)

	assert.Equal(t, "", model.GetPreferredPlan())
	assert.Equal(t, UIModePlanSelection, model.GetUIState().Mode)
}

func TestUIController_SessionControls(t *testing.T) {
	session := newFakeSession("w1")
	model, _ := newTestModel(t, session)
	controller := NewUIController(model, session, discardLogger())

	controller.ToggleSession()
	controller.ToggleSession()
	controller.ResetSession()

	session.mu.Lock()
	defer session.mu.Unlock()
	assert.Equal(t, 2, session.toggles)
	assert.Equal(t, 1, session.resets)
}

func TestUIController_ModeChangeAndEscape(t *testing.T) {
	session := newFakeSession("w1")
	model, _ := newTestModel(t, session)
	controller := NewUIController(model, session, discardLogger())

	controller.OnModeChange(UIModePlanSelection)
	assert.Equal(t, UIModePlanSelection, model.GetUIState().Mode)

	ch := make(chan struct{}, 1)
	unregister := model.ListenToCloseApplication(ch)
	defer unregister()

	controller.OnEscapeKey()
	select {
	case <-ch:
	case <-time.After(time.Second):
		require.Fail(t, "Timeout waiting for close request")
	}
}

func TestGetUIModeByKey(t *testing.T) {
	mode, ok := GetUIModeByKey('1')
	require.True(t, ok)
	assert.Equal(t, UIModePlanSelection, mode)

	mode, ok = GetUIModeByKey('2')
	require.True(t, ok)
	assert.Equal(t, UIModeSession, mode)

	_, ok = GetUIModeByKey('9')
	assert.False(t, ok)

	info, ok := GetUIModeInfo(UIModeSession)
	require.True(t, ok)
	assert.Equal(t, "Session", info.DisplayName)
}
