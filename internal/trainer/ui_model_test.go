package trainer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowaak/interval-trainer/internal/sequencer"
)

func newTestModel(t *testing.T, session *fakeSession) (*UIModel, chan string) {
	t.Helper()
	logChan := make(chan string, 16)
	model := NewUIModel(session, testCatalog, t.TempDir(), discardLogger(), logChan)
	t.Cleanup(model.Shutdown)
	return model, logChan
}

func TestNewUIModel_PanicsOnNilDependencies(t *testing.T) {
	logChan := make(chan string)
	assert.Panics(t, func() { NewUIModel(nil, testCatalog, t.TempDir(), discardLogger(), logChan) })
	assert.Panics(t, func() { NewUIModel(newFakeSession("w1"), testCatalog, t.TempDir(), nil, logChan) })
	assert.Panics(t, func() { NewUIModel(newFakeSession("w1"), testCatalog, t.TempDir(), discardLogger(), nil) })
}

func TestUIModel_InitialState(t *testing.T) {
	model, _ := newTestModel(t, newFakeSession("w2"))

	assert.Equal(t, UIModeSession, model.GetUIState().Mode)
	assert.Equal(t, "w2", model.GetSession().PlanKey)
	assert.Len(t, model.GetPlans(), 2)
	assert.Equal(t, "", model.GetPreferredPlan())
}

func TestUIModel_RelaysSessionSnapshots(t *testing.T) {
	session := newFakeSession("w1")
	model, _ := newTestModel(t, session)

	ch := make(chan sequencer.Snapshot, 8)
	unregister := model.ListenToSession(ch)
	defer unregister()

	// Give the relay goroutine time to register with the session
	require.Eventually(t, func() bool { return session.snapshots.ListenerCount() == 1 }, time.Second, 5*time.Millisecond)

	session.publish(sequencer.Snapshot{PlanKey: "w2", RemainingSeconds: 42, IsRunning: true, Status: sequencer.StatusRunning})

	select {
	case snapshot := <-ch:
		assert.Equal(t, "w2", snapshot.PlanKey)
		assert.Equal(t, 42, snapshot.RemainingSeconds)
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for session snapshot")
	}
	assert.Equal(t, 42, model.GetSession().RemainingSeconds)
}

func TestUIModel_SetModeNotifiesOnChangeOnly(t *testing.T) {
	model, _ := newTestModel(t, newFakeSession("w1"))

	ch := make(chan UIState, 4)
	unregister := model.ListenToUIState(ch)
	defer unregister()

	model.SetMode(UIModeSession)
	model.SetMode(UIModePlanSelection)

	select {
	case state := <-ch:
		assert.Equal(t, UIModePlanSelection, state.Mode)
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for UI state")
	}
	select {
	case state := <-ch:
		t.Errorf("Unexpected UI state: %+v", state)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestUIModel_LogTail(t *testing.T) {
	model, logChan := newTestModel(t, newFakeSession("w1"))

	logChan <- "one"
	logChan <- "two"
	logChan <- "three"

	require.Eventually(t, func() bool { return len(model.GetLogTail(10)) == 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"two", "three"}, model.GetLogTail(2))
	assert.Empty(t, model.GetLogTail(0))
}

func TestUIModel_RequestCloseApplication(t *testing.T) {
	model, _ := newTestModel(t, newFakeSession("w1"))

	ch := make(chan struct{}, 1)
	unregister := model.ListenToCloseApplication(ch)
	defer unregister()

	model.RequestCloseApplication()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for close request")
	}
}

func TestUIModelPersistence_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	p := newUIModelPersistence(dir, discardLogger())
	assert.Equal(t, "", p.getPreferredPlan())

	p.setPreferredPlan("w2")

	raw, err := os.ReadFile(filepath.Join(dir, "ui_state.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"preferred_plan_key": "w2"}`, string(raw))

	assert.Equal(t, "w2", LoadPreferredPlan(dir, discardLogger()))
}

func TestUIModelPersistence_CorruptFileIsIgnored(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ui_state.json"), []byte("{not json"), 0644))

	assert.Equal(t, "", LoadPreferredPlan(dir, discardLogger()))
}

func TestUIModelPersistence_CreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	p := newUIModelPersistence(dir, discardLogger())
	p.setPreferredPlan("w1")

	assert.FileExists(t, filepath.Join(dir, "ui_state.json"))
}
