package trainer

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"golang.org/x/text/message"

	"github.com/lowaak/interval-trainer/internal/i18n"
	"github.com/lowaak/interval-trainer/internal/plans"
	"github.com/lowaak/interval-trainer/internal/sequencer"
)

// Page names for tview.Pages
const (
	pagePlanSelection = "plan_selection"
	pageSession       = "session"
)

// CursesUIViewImpl implements UIViewImpl using tview (curses-based terminal UI)
type CursesUIViewImpl struct {
	logger      *log.Logger
	app         *tview.Application
	model       *UIModel
	printer     *message.Printer
	currentMode UIMode

	// Root container that holds all pages
	pages *tview.Pages

	// Shared components (visible in all modes)
	logView  *tview.TextView
	mainFlex *tview.Flex // Main layout: mode content on left, logs on right

	// Plan Selection mode components
	planSelectionFlex       *tview.Flex
	planSelectionTabWidgets []*tview.Box
	planList                *tview.List
	planDetailsPanel        *tview.TextView
	catalog                 []plans.Plan

	// Session mode components
	sessionFlex       *tview.Flex
	sessionTabWidgets []*tview.Box
	phasePanel        *tview.TextView
	upcomingPanel     *tview.TextView
}

// NewCursesUIView creates the terminal view. printer localizes every label.
func NewCursesUIView(logger *log.Logger, app *tview.Application, model *UIModel, printer *message.Printer) *CursesUIViewImpl {
	if printer == nil {
		printer = i18n.Printer("")
	}
	return &CursesUIViewImpl{
		logger:      logger,
		app:         app,
		model:       model,
		printer:     printer,
		currentMode: model.GetUIState().Mode,
	}
}

// Initialize sets up the tview widgets
func (ui *CursesUIViewImpl) Initialize(controller *UIController) {
	// Note: Don't use SetChangedFunc with app.Draw() on the log view. The
	// BaseUIView's event listeners already call Draw() after updating content.
	ui.logView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	ui.logView.SetBorder(true).SetTitle(" Logs ")

	// Create pages container for mode switching
	ui.pages = tview.NewPages()

	ui.initPlanSelectionMode(controller)
	ui.initSessionMode()

	ui.pages.AddPage(pagePlanSelection, ui.planSelectionFlex, true, ui.currentMode == UIModePlanSelection)
	ui.pages.AddPage(pageSession, ui.sessionFlex, true, ui.currentMode == UIModeSession)

	// Create main layout: pages on left, logs on right
	ui.mainFlex = tview.NewFlex().
		AddItem(ui.pages, 0, 3, true).
		AddItem(ui.logView, 0, 2, false)
	ui.mainFlex.SetBorder(true).SetTitle(fmt.Sprintf(" %s ", ui.printer.Sprintf(i18n.KeyTitle)))

	ui.setFocusForCurrentMode()
}

// initPlanSelectionMode sets up the plan list and the phase breakdown panel
func (ui *CursesUIViewImpl) initPlanSelectionMode(controller *UIController) {
	instructionsText := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	instructionsText.SetText(ui.helpLine(i18n.KeyPlansHelp))

	ui.planList = tview.NewList().
		ShowSecondaryText(true).
		SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
			ui.logger.Printf("UI: Plan selected: index=%d, name=%s", index, mainText)
			controller.OnPlanSelected(index)
		}).
		SetChangedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
			ui.updatePlanDetailsDisplay(index)
		})
	ui.planList.SetBorder(true).SetTitle(fmt.Sprintf(" %s ", ui.printer.Sprintf(i18n.KeyChoosePlan)))

	ui.planDetailsPanel = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	ui.planDetailsPanel.SetBorder(true)
	ui.updatePlanDetailsDisplay(-1)

	ui.planSelectionTabWidgets = append(ui.planSelectionTabWidgets, ui.planList.Box, ui.planDetailsPanel.Box)

	columns := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(ui.planList, 0, 1, true).
		AddItem(ui.planDetailsPanel, 0, 1, false)

	ui.planSelectionFlex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(instructionsText, 1, 0, false).
		AddItem(columns, 0, 1, true)
}

// initSessionMode sets up the countdown panel and the upcoming phases list
func (ui *CursesUIViewImpl) initSessionMode() {
	instructionsText := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	instructionsText.SetText(ui.helpLine(i18n.KeySessionHelp))

	ui.phasePanel = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	ui.phasePanel.SetBorder(true)

	ui.upcomingPanel = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	ui.upcomingPanel.SetBorder(true).SetTitle(fmt.Sprintf(" %s ", ui.printer.Sprintf(i18n.KeyUpcoming)))

	ui.sessionTabWidgets = append(ui.sessionTabWidgets, ui.phasePanel.Box, ui.upcomingPanel.Box)

	ui.sessionFlex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(instructionsText, 1, 0, false).
		AddItem(ui.phasePanel, 0, 2, true).
		AddItem(ui.upcomingPanel, upcomingRows+4, 0, false)
}

// helpLine highlights the key names in a localized help string.
func (ui *CursesUIViewImpl) helpLine(key string) string {
	parts := strings.Split(ui.printer.Sprintf(key), "  |  ")
	for i, part := range parts {
		if name, rest, ok := strings.Cut(part, " "); ok {
			parts[i] = fmt.Sprintf("[yellow]%s[white] %s", tview.Escape(name), tview.Escape(rest))
		}
	}
	return strings.Join(parts, "  |  ")
}

// SetPlanList populates the plan selection list
func (ui *CursesUIViewImpl) SetPlanList(catalog []plans.Plan, selectedKey string) {
	ui.catalog = catalog
	ui.planList.Clear()

	selectedIdx := 0
	for i, plan := range catalog {
		if plan.Key == selectedKey {
			selectedIdx = i
		}
		secondary := fmt.Sprintf("%d × %s", len(plan.Phases), formatDuration(plan.TotalDuration()))
		ui.planList.AddItem(tview.Escape(plan.Name), secondary, 0, nil)
	}

	if len(catalog) > 0 {
		ui.planList.SetCurrentItem(selectedIdx)
		ui.updatePlanDetailsDisplay(selectedIdx)
	} else {
		ui.updatePlanDetailsDisplay(-1)
	}
}

// formatDuration formats a plan length for display
func formatDuration(d time.Duration) string {
	minutes := int(d.Round(time.Minute).Minutes())
	if minutes >= 60 {
		hours := minutes / 60
		mins := minutes % 60
		if mins > 0 {
			return fmt.Sprintf("%dh %dm", hours, mins)
		}
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%d min", minutes)
}

// updatePlanDetailsDisplay lists the phases of the highlighted plan
func (ui *CursesUIViewImpl) updatePlanDetailsDisplay(index int) {
	if ui.planDetailsPanel == nil {
		return
	}

	if index < 0 || index >= len(ui.catalog) {
		ui.planDetailsPanel.SetTitle("")
		ui.planDetailsPanel.SetText("\n  [gray]" + tview.Escape(ui.printer.Sprintf(i18n.KeyChoosePlan)) + "[white]\n")
		return
	}

	plan := ui.catalog[index]
	ui.planDetailsPanel.SetTitle(fmt.Sprintf(" %s ", tview.Escape(plan.Name)))

	var text strings.Builder
	text.WriteString("\n")
	text.WriteString(fmt.Sprintf("  [gray]%s[white]\n\n",
		tview.Escape(ui.printer.Sprintf(i18n.KeyTotal, sequencer.FormatClock(int(plan.TotalDuration().Seconds()))))))
	for i, phase := range plan.Phases {
		text.WriteString(fmt.Sprintf("  %2d. [%s]%-6s[white] %5s  %s\n",
			i+1,
			kindColor(phase.Kind),
			tview.Escape(i18n.KindLabel(ui.printer, phase.Kind)),
			sequencer.FormatClock(phase.Duration),
			tview.Escape(phase.Name)))
	}
	ui.planDetailsPanel.SetText(text.String())
}

// UpdateSession renders the countdown and the upcoming phases
func (ui *CursesUIViewImpl) UpdateSession(snapshot sequencer.Snapshot) {
	if ui.phasePanel == nil || ui.upcomingPanel == nil {
		return
	}
	ui.phasePanel.SetTitle(fmt.Sprintf(" %s ", tview.Escape(snapshot.PlanName)))
	ui.phasePanel.SetText(ui.formatPhaseDisplay(snapshot))
	ui.upcomingPanel.SetText(ui.formatUpcomingDisplay(snapshot))
}

// formatPhaseDisplay formats the current phase, countdown, and status
func (ui *CursesUIViewImpl) formatPhaseDisplay(snapshot sequencer.Snapshot) string {
	if snapshot.PhaseCount == 0 {
		return ""
	}

	phase := snapshot.CurrentPhase
	color := kindColor(phase.Kind)

	var text strings.Builder
	text.WriteString("\n")
	text.WriteString(fmt.Sprintf("[%s::b]%s[-::-]\n", color, tview.Escape(phase.Name)))
	text.WriteString(fmt.Sprintf("[%s]%s[white]\n\n", color, tview.Escape(i18n.KindLabel(ui.printer, phase.Kind))))
	text.WriteString(fmt.Sprintf("[yellow::b]%s[-::-]\n\n", sequencer.FormatClock(snapshot.RemainingSeconds)))
	text.WriteString(fmt.Sprintf("[gray]%s[white]\n",
		tview.Escape(ui.printer.Sprintf(i18n.KeyPhaseOf, snapshot.PhaseIndex+1, snapshot.PhaseCount))))
	text.WriteString(ui.formatStatus(snapshot.Status))
	text.WriteString("\n")

	if snapshot.PrepareFor != "" {
		text.WriteString(fmt.Sprintf("\n[orange::b]%s[-::-]\n",
			tview.Escape(ui.printer.Sprintf(i18n.KeyPrepareFor, snapshot.PrepareFor))))
	}
	return text.String()
}

func (ui *CursesUIViewImpl) formatStatus(status sequencer.Status) string {
	switch status {
	case sequencer.StatusRunning:
		return "[green]" + tview.Escape(ui.printer.Sprintf(i18n.KeyRunning)) + "[white]"
	case sequencer.StatusCompleted:
		return "[cyan]" + tview.Escape(ui.printer.Sprintf(i18n.KeyCompleted)) + "[white]"
	default:
		return "[gray]" + tview.Escape(ui.printer.Sprintf(i18n.KeyPaused)) + "[white]"
	}
}

// formatUpcomingDisplay lists the next few phases, or the finish line
func (ui *CursesUIViewImpl) formatUpcomingDisplay(snapshot sequencer.Snapshot) string {
	upcoming := snapshot.Preview(upcomingRows)

	var text strings.Builder
	for _, phase := range upcoming {
		text.WriteString(fmt.Sprintf("  [%s]%-6s[white] %5s  %s\n",
			kindColor(phase.Kind),
			tview.Escape(i18n.KindLabel(ui.printer, phase.Kind)),
			sequencer.FormatClock(phase.Duration),
			tview.Escape(phase.Name)))
	}
	if len(upcoming) < upcomingRows && snapshot.Status != sequencer.StatusCompleted {
		text.WriteString("  [green]" + tview.Escape(ui.printer.Sprintf(i18n.KeyFinish)) + "[white]\n")
	}
	return text.String()
}

// SetMode switches the UI to the specified mode
func (ui *CursesUIViewImpl) SetMode(mode UIMode) {
	if ui.currentMode == mode {
		return
	}

	ui.currentMode = mode

	switch mode {
	case UIModePlanSelection:
		ui.pages.SwitchToPage(pagePlanSelection)
	case UIModeSession:
		ui.pages.SwitchToPage(pageSession)
	}

	ui.setFocusForCurrentMode()
}

// GetCurrentMode returns the currently active UI mode
func (ui *CursesUIViewImpl) GetCurrentMode() UIMode {
	return ui.currentMode
}

// setFocusForCurrentMode sets focus to the first widget in the current mode
func (ui *CursesUIViewImpl) setFocusForCurrentMode() {
	if widgets := ui.getTabWidgetsForCurrentMode(); len(widgets) > 0 {
		ui.app.SetFocus(widgets[0])
	}
}

// getTabWidgetsForCurrentMode returns the tab widgets for the current mode
func (ui *CursesUIViewImpl) getTabWidgetsForCurrentMode() []*tview.Box {
	switch ui.currentMode {
	case UIModePlanSelection:
		return ui.planSelectionTabWidgets
	case UIModeSession:
		return ui.sessionTabWidgets
	default:
		return nil
	}
}

// SetupKeyboardHandlers sets up keyboard event handlers
func (ui *CursesUIViewImpl) SetupKeyboardHandlers(controller *UIController) {
	ui.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		// Number keys for mode switching
		if event.Key() == tcell.KeyRune {
			if mode, ok := GetUIModeByKey(event.Rune()); ok {
				// Delegate to controller - it will update the model, which will notify us
				controller.OnModeChange(mode)
				return nil
			}
		}

		// Tab to switch focus between widgets in current mode
		if event.Key() == tcell.KeyTab {
			widgets := ui.getTabWidgetsForCurrentMode()
			widgetCount := len(widgets)
			for i := 0; i < widgetCount; i++ {
				if widgets[i].HasFocus() {
					ui.app.SetFocus(widgets[(i+1)%widgetCount])
					break
				}
			}
			return nil
		}

		// Escape to quit
		if event.Key() == tcell.KeyEscape {
			controller.OnEscapeKey()
			return nil
		}

		if ui.currentMode == UIModeSession && event.Key() == tcell.KeyRune {
			switch event.Rune() {
			case KeyToggleSession:
				controller.ToggleSession()
				return nil
			case KeyResetSession, 'R':
				controller.ResetSession()
				return nil
			}
		}

		return event
	})
}

// GetLogViewHeight returns the visible height of the log view
func (ui *CursesUIViewImpl) GetLogViewHeight() int {
	_, _, _, height := ui.logView.GetInnerRect()
	return height
}

// ClearLogView clears the log view
func (ui *CursesUIViewImpl) ClearLogView() {
	ui.logView.Clear()
}

// WriteLogLine writes a line to the log view
func (ui *CursesUIViewImpl) WriteLogLine(line string) error {
	_, err := fmt.Fprint(ui.logView, tview.Escape(line))
	return err
}

// Draw refreshes/redraws the UI
func (ui *CursesUIViewImpl) Draw() error {
	ui.app.Draw()
	return nil
}

// Run starts the UI and blocks until it exits
func (ui *CursesUIViewImpl) Run() error {
	// SetRoot must be called before setting focus, otherwise focus may be reset
	ui.app.SetRoot(ui.mainFlex, true)
	ui.setFocusForCurrentMode()
	return ui.app.Run()
}

// Stop stops the UI framework
func (ui *CursesUIViewImpl) Stop() {
	ui.app.Stop()
}
