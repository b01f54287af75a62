package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/caseflow-cli/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/caseflow-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/caseflow-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/caseflow-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/caseflow-cli/internal/core/domain"
)

// traceBarWidth is the widest duration bar in the trace panel.
const traceBarWidth = 30

// Options configures a session.
type Options struct {
	// CaseID is the case every operation targets.
	CaseID string

	// Payload is sent on underwrite. Defaults to domain.DefaultUnderwritePayload.
	Payload *domain.UnderwritePayload

	// Overwrite replaces previously indexed evidence.
	Overwrite bool

	// Watcher supplies the document text. Optional; without it extract is disabled.
	Watcher *DocumentWatcher
}

// App is the session screen following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports     *Ports
	ctx       context.Context
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	help      help.Model
	spinner   spinner.Model
	statusBar *status.Bar

	caseID    string
	payload   domain.UnderwritePayload
	overwrite bool

	watcher *DocumentWatcher
	docText string
	docErr  error

	modelVersion string
	topK         int

	// pending is the operation in flight, empty when idle.
	pending messages.Operation

	// localErr holds failures that never reached the workflow.
	localErr error

	showHelp bool
	width    int
	height   int
	ready    bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a session screen for one case.
func NewApp(ports *Ports, opts Options) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}
	if strings.TrimSpace(opts.CaseID) == "" {
		return nil, &domain.ValidationError{Field: "case_id", Reason: "case id is required"}
	}

	payload := domain.DefaultUnderwritePayload()
	if opts.Payload != nil {
		payload = *opts.Payload
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	a := &App{
		ports:     ports,
		ctx:       context.Background(),
		styles:    s,
		keymap:    km,
		help:      help.New(),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(s.Subtitle)),
		statusBar: status.NewBar(s, km),
		caseID:    opts.CaseID,
		payload:   payload,
		overwrite: opts.Overwrite,
		watcher:   opts.Watcher,
	}
	a.refreshSettings()
	return a, nil
}

// WithContext sets the context passed to workflow calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.SetWindowTitle("caseflow - " + a.caseID)}
	if a.watcher != nil {
		cmds = append(cmds, a.watcher.Load, a.watcher.Next())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.statusBar.SetWidth(msg.Width)
		a.help.Width = msg.Width
		return a, nil

	case tea.KeyMsg:
		return a, a.handleKey(msg.String())

	case spinner.TickMsg:
		if a.pending == "" {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case messages.OperationCompleted:
		a.pending = ""
		// Busy rejections leave the workflow untouched, so show them here
		if errors.Is(msg.Err, domain.ErrWorkflowBusy) {
			a.localErr = msg.Err
		}
		return a, nil

	case messages.DocumentLoaded:
		a.docText = msg.Text
		a.docErr = msg.Err
		if msg.Reload && a.watcher != nil {
			return a, a.watcher.Next()
		}
		return a, nil

	case messages.SettingsChanged:
		a.refreshSettings()
		return a, nil
	}
	return a, nil
}

func (a *App) handleKey(keyStr string) tea.Cmd {
	switch {
	case keymap.Matches(keyStr, a.keymap.Quit):
		return tea.Quit
	case keymap.Matches(keyStr, a.keymap.Help):
		a.showHelp = !a.showHelp
		return nil
	}

	if a.pending != "" {
		return nil
	}

	switch {
	case keymap.Matches(keyStr, a.keymap.NewSession):
		a.localErr = a.ports.Workflow.Reset()
		return nil
	case keymap.Matches(keyStr, a.keymap.Extract):
		return a.dispatch(messages.OpExtract)
	case keymap.Matches(keyStr, a.keymap.Index):
		return a.dispatch(messages.OpIndex)
	case keymap.Matches(keyStr, a.keymap.Underwrite):
		return a.dispatch(messages.OpUnderwrite)
	case keymap.Matches(keyStr, a.keymap.Trace):
		return a.dispatch(messages.OpTrace)
	case keymap.Matches(keyStr, a.keymap.Replay):
		return a.dispatch(messages.OpReplay)
	}
	return nil
}

// dispatch marks op pending and runs it off the update loop.
func (a *App) dispatch(op messages.Operation) tea.Cmd {
	a.localErr = nil
	if op == messages.OpExtract && a.docText == "" {
		a.localErr = ErrNoDocument
		if a.docErr != nil {
			a.localErr = a.docErr
		}
		return nil
	}
	a.pending = op
	return tea.Batch(a.spinner.Tick, a.operation(op))
}

// operation builds the command for op. Inputs are captured now so a
// reload mid-flight cannot change what is sent.
func (a *App) operation(op messages.Operation) tea.Cmd {
	ctx := a.ctx
	wf := a.ports.Workflow
	caseID := a.caseID

	var run func() error
	switch op {
	case messages.OpExtract:
		text := a.docText
		filename := "document.txt"
		if a.watcher != nil {
			filename = filepath.Base(a.watcher.Path())
		}
		run = func() error {
			_, err := wf.Extract(ctx, caseID, filename, domain.ContentTypePlainText, text)
			return err
		}
	case messages.OpIndex:
		overwrite := a.overwrite
		run = func() error {
			_, err := wf.IndexEvidence(ctx, caseID, overwrite)
			return err
		}
	case messages.OpUnderwrite:
		payload, modelVersion, topK := a.payload, a.modelVersion, a.topK
		run = func() error {
			_, err := wf.Underwrite(ctx, caseID, payload, modelVersion, topK)
			return err
		}
	case messages.OpTrace:
		run = func() error {
			_, err := wf.FetchTrace(ctx, caseID, "")
			return err
		}
	case messages.OpReplay:
		run = func() error {
			_, err := wf.Replay(ctx, caseID, "")
			return err
		}
	default:
		return nil
	}

	return func() tea.Msg {
		return messages.OperationCompleted{Op: op, Err: run()}
	}
}

func (a *App) refreshSettings() {
	a.modelVersion = domain.DefaultModelVersion
	a.topK = domain.DefaultTopK
	if a.ports.Settings == nil {
		return
	}
	settings, err := a.ports.Settings.Get()
	if err != nil {
		a.localErr = fmt.Errorf("load settings: %w", err)
		return
	}
	a.modelVersion = settings.Underwrite.ModelVersion
	a.topK = settings.Underwrite.TopK
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	snap := a.ports.Workflow.Snapshot()
	a.updateStatusBar(&snap)

	sections := []string{
		a.styles.Title.Render("caseflow") + "  " + a.styles.Muted.Render("case "+a.caseID),
		a.renderSession(&snap),
		a.renderDecision(&snap),
		a.renderReplay(&snap),
		a.renderTrace(&snap),
	}
	if a.showHelp {
		a.help.ShowAll = true
		sections = append(sections, a.help.View(a.keymap))
	}
	sections = append(sections, a.statusBar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (a *App) updateStatusBar(snap *domain.Snapshot) {
	switch {
	case a.pending != "":
		a.statusBar.SetState(status.StateBusy)
		a.statusBar.SetActivity(a.spinner.View())
		a.statusBar.SetMessage(snap.Phase.Description())
	case a.localErr != nil:
		a.statusBar.SetState(status.StateError)
		a.statusBar.SetMessage(a.localErr.Error())
	case snap.Err != "":
		a.statusBar.SetState(status.StateError)
		a.statusBar.SetMessage(snap.Err)
	default:
		a.statusBar.Clear()
		a.statusBar.SetMessage(snap.Status)
	}
}

func (a *App) renderSession(snap *domain.Snapshot) string {
	doc := "(none)"
	if snap.DocumentID != "" {
		doc = snap.DocumentID
	}
	source := "(no file)"
	if a.watcher != nil {
		source = a.watcher.Path()
		if a.docErr != nil {
			source += " " + a.styles.Error.Render("unreadable")
		} else {
			source += fmt.Sprintf(" (%d bytes)", len(a.docText))
		}
	}
	rows := []string{
		a.styles.Subtitle.Render("Session"),
		a.styles.Row("Document file", source),
		a.styles.Row("Document ID", doc),
		a.styles.Row("Model", fmt.Sprintf("%s (top_k %d)", a.modelVersion, a.topK)),
	}
	return a.styles.Panel.Render(strings.Join(rows, "\n"))
}

func (a *App) renderDecision(snap *domain.Snapshot) string {
	rows := []string{a.styles.Subtitle.Render("Decision")}
	r := snap.Original
	if r == nil {
		rows = append(rows, a.styles.Muted.Render("Press u to underwrite."))
		return a.styles.Panel.Render(strings.Join(rows, "\n"))
	}

	rows = append(rows,
		a.styles.Row("Decision", a.styles.Decision(r.Decision).Render(r.Decision)),
		a.styles.Row("Risk score", r.RiskScore.String()),
		a.styles.Row("Request ID", r.RequestID),
		a.styles.Row("Policy", fmt.Sprintf("%s (%s)", r.Policy.PolicyID, r.Policy.Decision)),
	)
	if r.Justification.Summary != "" {
		rows = append(rows, a.styles.Row("Summary", r.Justification.Summary))
	}
	if ids := r.CitationChunkIDs(); len(ids) > 0 {
		rows = append(rows, a.styles.Row("Citations", strings.Join(ids, ", ")))
	}
	return a.styles.Panel.Render(strings.Join(rows, "\n"))
}

func (a *App) renderReplay(snap *domain.Snapshot) string {
	rows := []string{a.styles.Subtitle.Render("Replay")}
	if snap.Replay == nil || snap.Comparison == nil {
		rows = append(rows, a.styles.Muted.Render("Press r to replay the current request."))
		return a.styles.Panel.Render(strings.Join(rows, "\n"))
	}

	rows = append(rows,
		a.styles.Verdict(snap.Comparison.Pass)+" "+snap.Comparison.Message,
		a.styles.Row("Decision", snap.Replay.Decision),
		a.styles.Row("Risk score", snap.Replay.RiskScore.String()),
	)
	for _, m := range snap.Comparison.Mismatches {
		rows = append(rows, a.styles.Error.Render(
			fmt.Sprintf("  %s: %s -> %s", m.Field, m.Original, m.Replay)))
	}
	return a.styles.Panel.Render(strings.Join(rows, "\n"))
}

func (a *App) renderTrace(snap *domain.Snapshot) string {
	rows := []string{a.styles.Subtitle.Render(fmt.Sprintf("Trace (%d nodes)", len(snap.Trace)))}
	if len(snap.Trace) == 0 {
		rows = append(rows, a.styles.Muted.Render("No trace loaded."))
		return a.styles.Panel.Render(strings.Join(rows, "\n"))
	}
	rows = append(rows, traceLines(snap.Trace, a.styles)...)
	return a.styles.Panel.Render(strings.Join(rows, "\n"))
}

// traceLines renders nodes in execution order with bars scaled to the slowest.
func traceLines(nodes []domain.TraceNode, s *styles.Styles) []string {
	var slowest float64
	nameWidth := 0
	for _, n := range nodes {
		if n.DurationMS > slowest {
			slowest = n.DurationMS
		}
		if len(n.NodeName) > nameWidth {
			nameWidth = len(n.NodeName)
		}
	}

	lines := make([]string, 0, len(nodes))
	for _, n := range nodes {
		bar := 0
		if slowest > 0 {
			bar = int(n.DurationMS / slowest * traceBarWidth)
		}
		lines = append(lines, fmt.Sprintf("%-*s %9.1f ms %s",
			nameWidth, n.NodeName, n.DurationMS, s.Subtitle.Render(strings.Repeat("█", bar))))
	}
	return lines
}

// Pending returns the operation in flight, empty when idle.
func (a *App) Pending() messages.Operation {
	return a.pending
}

// Err returns the last error that did not reach the workflow.
func (a *App) Err() error {
	return a.localErr
}

// SetDimensions sets the terminal dimensions (for testing).
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.statusBar.SetWidth(width)
}
