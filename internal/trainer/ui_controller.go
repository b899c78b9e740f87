package trainer

import (
	"log"

	"github.com/lowaak/interval-trainer/internal/sequencer"
)

// Session is the control surface the UI drives. *sequencer.Sequencer satisfies it.
type Session interface {
	SelectPlan(key string) error
	Toggle()
	Reset()
	State() sequencer.Snapshot
}

// UIController handles UI events and coordinates with the UIModel
type UIController struct {
	model   *UIModel
	session Session
	logger  *log.Logger
}

// NewUIController creates a new UIController with the given dependencies
func NewUIController(model *UIModel, session Session, logger *log.Logger) *UIController {
	if model == nil {
		panic("UIController: model cannot be nil")
	}
	if session == nil {
		panic("UIController: session cannot be nil")
	}
	if logger == nil {
		panic("UIController: logger cannot be nil")
	}
	return &UIController{
		model:   model,
		session: session,
		logger:  logger,
	}
}

// OnPlanSelected switches the session to the plan at index in the plan list
// and shows the session page
func (c *UIController) OnPlanSelected(index int) {
	catalog := c.model.GetPlans()
	if index < 0 || index >= len(catalog) {
		c.logger.Printf("Invalid plan index: %d", index)
		return
	}

	plan := catalog[index]
	if err := c.session.SelectPlan(plan.Key); err != nil {
		c.logger.Printf("Plan selection failed: %v", err)
		return
	}
	c.model.SetPreferredPlan(plan.Key)
	c.model.SetMode(UIModeSession)
}

// ToggleSession starts, pauses, or resumes the session
func (c *UIController) ToggleSession() {
	c.session.Toggle()
}

// ResetSession rewinds the session to the first phase, stopped
func (c *UIController) ResetSession() {
	c.session.Reset()
}

// OnModeChange handles when the user requests a mode change
func (c *UIController) OnModeChange(mode UIMode) {
	if info, ok := GetUIModeInfo(mode); ok {
		c.logger.Printf("Switching to %s mode", info.DisplayName)
	}
	c.model.SetMode(mode)
}

// OnEscapeKey handles when the Escape key is pressed
func (c *UIController) OnEscapeKey() {
	c.model.RequestCloseApplication()
}
