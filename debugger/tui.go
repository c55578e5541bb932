package debugger

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// TUI is the text user interface wrapping a Debugger: a register panel,
// a memory panel, an output log, and a single command input line.
type TUI struct {
	Debugger *Debugger
	App      *tview.Application

	MainLayout   *tview.Flex
	RegisterView *tview.TextView
	MemoryView   *tview.TextView
	OutputView   *tview.TextView
	CommandInput *tview.InputField

	MemoryAddress uint32
	MemorySize    uint32
}

// NewTUI creates a TUI over dbg.
func NewTUI(dbg *Debugger) *TUI {
	t := &TUI{
		Debugger:   dbg,
		App:        tview.NewApplication(),
		MemorySize: 64,
	}
	t.initializeViews()
	t.buildLayout()
	t.setupKeyBindings()
	t.RefreshAll()
	return t
}

func (t *TUI) initializeViews() {
	t.RegisterView = tview.NewTextView().SetDynamicColors(true)
	t.RegisterView.SetBorder(true).SetTitle(" Registers ")

	t.MemoryView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.MemoryView.SetBorder(true).SetTitle(" Memory ")

	t.OutputView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().SetLabel("> ").SetFieldWidth(0)
	t.CommandInput.SetBorder(true).SetTitle(" Command ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
}

func (t *TUI) buildLayout() {
	top := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(t.RegisterView, 0, 1, false).
		AddItem(t.MemoryView, 0, 1, false)

	t.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(top, 0, 3, false).
		AddItem(t.OutputView, 0, 2, false).
		AddItem(t.CommandInput, 3, 0, true)
}

func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF10:
			t.runCommand("step")
			return nil
		case tcell.KeyF5:
			t.runCommand("continue")
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		}
		return event
	})
}

func (t *TUI) handleCommand(key tcell.Key) {
	if key != tcell.KeyEnter {
		return
	}
	cmd := t.CommandInput.GetText()
	t.CommandInput.SetText("")
	if cmd == "quit" || cmd == "q" {
		t.App.Stop()
		return
	}
	t.runCommand(cmd)
}

func (t *TUI) runCommand(cmd string) {
	output, err := t.Debugger.ExecuteCommand(cmd)
	if err != nil {
		fmt.Fprintf(t.OutputView, "[red]error:[white] %v\n", err)
	}
	if output != "" {
		fmt.Fprintf(t.OutputView, "%s\n", output)
	}
	t.RefreshAll()
}

// RefreshAll redraws every panel from current CPU/memory state.
func (t *TUI) RefreshAll() {
	snap := t.Debugger.Host.Snapshot()
	t.RegisterView.SetText(RegisterText(snap))

	if data, err := t.Debugger.Host.ReadMemory(t.MemoryAddress, t.MemorySize); err == nil {
		t.MemoryView.SetText(formatHexDump(t.MemoryAddress, data))
	}
	t.App.Draw()
}

// Run starts the TUI event loop, blocking until the user quits.
func (t *TUI) Run() error {
	return t.App.SetRoot(t.MainLayout, true).SetFocus(t.CommandInput).Run()
}
