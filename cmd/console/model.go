package main

import (
	stderrors "errors"
	"fmt"
	"log/slog"

	"bark-console/internal/bankapi"
	"bark-console/internal/models"
	"bark-console/internal/services"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type screen int

const (
	screenLogin screen = iota
	screenDashboard
)

type overlay int

const (
	overlayNone overlay = iota
	overlayTransfer
	overlayCreate
)

type appDeps struct {
	client  bankapi.ClientInterface
	logger  *slog.Logger
	metrics services.MetricsRecorderInterface
}

type appModel struct {
	deps appDeps
	th   theme

	width  int
	height int

	screen  screen
	overlay overlay

	// login form
	agentInput    textinput.Model
	passwordInput textinput.Model
	loginFocus    int
	loggingIn     bool

	workspace *consoleWorkspace
	agentName string

	cursor int
	spin   spinner.Model
	busy   int

	// transfer form
	toInput            textinput.Model
	amountInput        textinput.Model
	transferFocus      int
	submittingTransfer bool

	// create-account form
	users           []models.User
	userCursor      int
	numberInput     textinput.Model
	depositInput    textinput.Model
	createFocus     int
	creatingAccount bool

	status      string
	statusIsErr bool
}

func newAppModel(deps appDeps) appModel {
	agent := textinput.New()
	agent.Placeholder = "agent name"
	agent.CharLimit = 150
	agent.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'

	to := textinput.New()
	to.Placeholder = "destination account number"
	to.CharLimit = 19

	amount := textinput.New()
	amount.Placeholder = "amount, e.g. 25.00"
	amount.CharLimit = 16

	number := textinput.New()
	number.Placeholder = "new 16-digit account number"
	number.CharLimit = 19

	deposit := textinput.New()
	deposit.Placeholder = "initial deposit"
	deposit.CharLimit = 16

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return appModel{
		deps:          deps,
		th:            defaultTheme(),
		screen:        screenLogin,
		agentInput:    agent,
		passwordInput: password,
		toInput:       to,
		amountInput:   amount,
		numberInput:   number,
		depositInput:  deposit,
		spin:          spin,
	}
}

func (m appModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch t := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = t.Width
		m.height = t.Height
		return m, nil

	case spinner.TickMsg:
		if m.busy == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(t)
		return m, cmd

	case loginDoneMsg:
		return m.onLoginDone(t)

	case directoryLoadedMsg:
		return m.onDirectoryLoaded(t)

	case selectionLoadedMsg:
		return m.onSelectionLoaded(t)

	case usersLoadedMsg:
		return m.onUsersLoaded(t)

	case transferDoneMsg:
		return m.onTransferDone(t)

	case accountCreatedMsg:
		return m.onAccountCreated(t)

	case tea.KeyMsg:
		return m.onKey(t)
	}

	return m.updateInputs(msg)
}

func (m appModel) onLoginDone(t loginDoneMsg) (tea.Model, tea.Cmd) {
	m.loggingIn = false
	m.busy--

	if t.err != nil {
		if bankapi.IsAuthError(t.err) {
			return m.withError("Login failed. Please check your credentials"), nil
		}
		return m.withError(displayError(t.err)), nil
	}

	m.workspace = t.workspace
	m.agentName = t.agentName
	m.screen = screenDashboard
	m.passwordInput.SetValue("")
	m.status = ""
	m.statusIsErr = false

	return m.startWork(loadDirectoryCmd(m.workspace))
}

func (m appModel) onDirectoryLoaded(t directoryLoadedMsg) (tea.Model, tea.Cmd) {
	m.busy--

	if t.err != nil {
		if m.isSessionDead(t.err) {
			return m.backToLogin()
		}
		// The snapshot keeps the previous accounts plus the recorded error;
		// the view renders both.
		return m, nil
	}

	snapshot := m.workspace.Directory.Snapshot()
	if m.cursor >= len(snapshot.Accounts) {
		m.cursor = 0
	}
	return m, nil
}

func (m appModel) onSelectionLoaded(t selectionLoadedMsg) (tea.Model, tea.Cmd) {
	m.busy--

	if t.err != nil {
		// A superseded completion lost the race to a newer select; the view
		// already shows the winner.
		if stderrors.Is(t.err, services.ErrSelectionSuperseded) {
			return m, nil
		}
		if m.isSessionDead(t.err) {
			return m.backToLogin()
		}
		return m.withError(displayError(t.err)), nil
	}

	return m, nil
}

func (m appModel) onUsersLoaded(t usersLoadedMsg) (tea.Model, tea.Cmd) {
	m.busy--

	if t.err != nil {
		if m.isSessionDead(t.err) {
			return m.backToLogin()
		}
		m.overlay = overlayNone
		return m.withError(displayError(t.err)), nil
	}

	m.users = t.users
	if m.userCursor >= len(m.users) {
		m.userCursor = 0
	}
	return m, nil
}

func (m appModel) onTransferDone(t transferDoneMsg) (tea.Model, tea.Cmd) {
	m.busy--
	m.submittingTransfer = false

	if t.err != nil {
		if m.isSessionDead(t.err) {
			return m.backToLogin()
		}
		return m.withError(displayError(t.err)), nil
	}

	m.overlay = overlayNone
	m.toInput.SetValue("")
	m.amountInput.SetValue("")

	if t.result.RefreshFailed {
		m.status = "Transfer submitted; press r to refresh account data"
	} else {
		m.status = fmt.Sprintf("Transfer %s submitted", t.result.Transfer.ID)
	}
	m.statusIsErr = false
	return m, nil
}

func (m appModel) onAccountCreated(t accountCreatedMsg) (tea.Model, tea.Cmd) {
	m.busy--
	m.creatingAccount = false

	if t.err != nil {
		if m.isSessionDead(t.err) {
			return m.backToLogin()
		}
		return m.withError(displayError(t.err)), nil
	}

	m.overlay = overlayNone
	m.numberInput.SetValue("")
	m.depositInput.SetValue("")
	m.status = fmt.Sprintf("Account %s created", models.FormatAccountNumber(t.account.AccountNumber))
	m.statusIsErr = false
	return m, nil
}

func (m appModel) onKey(t tea.KeyMsg) (tea.Model, tea.Cmd) {
	if t.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	switch {
	case m.screen == screenLogin:
		return m.onLoginKey(t)
	case m.overlay == overlayTransfer:
		return m.onTransferKey(t)
	case m.overlay == overlayCreate:
		return m.onCreateKey(t)
	}
	return m.onDashboardKey(t)
}

func (m appModel) onLoginKey(t tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch t.Type {
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		m.loginFocus = 1 - m.loginFocus
		if m.loginFocus == 0 {
			m.agentInput.Focus()
			m.passwordInput.Blur()
		} else {
			m.passwordInput.Focus()
			m.agentInput.Blur()
		}
		return m, nil

	case tea.KeyEnter:
		if m.loggingIn {
			return m, nil
		}
		if m.agentInput.Value() == "" || m.passwordInput.Value() == "" {
			return m.withError("Agent name and password are required"), nil
		}
		m.loggingIn = true
		return m.startWork(loginCmd(m.deps, m.agentInput.Value(), m.passwordInput.Value()))
	}

	return m.updateInputs(t)
}

func (m appModel) onDashboardKey(t tea.KeyMsg) (tea.Model, tea.Cmd) {
	snapshot := m.workspace.Directory.Snapshot()

	switch t.String() {
	case "q":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "down", "j":
		if m.cursor < len(snapshot.Accounts)-1 {
			m.cursor++
		}
		return m, nil

	case "enter":
		if len(snapshot.Accounts) == 0 {
			return m, nil
		}
		return m.startWork(selectAccountCmd(m.workspace, snapshot.Accounts[m.cursor].ID))

	case "esc":
		m.workspace.Selection.Deselect()
		return m, nil

	case "r":
		return m.startWork(loadDirectoryCmd(m.workspace))

	case "t":
		if m.workspace.Selection.Current() == nil {
			return m.withError("Select an account first"), nil
		}
		m.overlay = overlayTransfer
		m.transferFocus = 0
		m.toInput.Focus()
		m.amountInput.Blur()
		return m, nil

	case "n":
		m.overlay = overlayCreate
		m.createFocus = 0
		m.numberInput.Blur()
		m.depositInput.Blur()
		return m.startWork(loadUsersCmd(m.workspace))
	}

	return m, nil
}

func (m appModel) onTransferKey(t tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch t.Type {
	case tea.KeyEsc:
		m.overlay = overlayNone
		return m, nil

	case tea.KeyTab, tea.KeyShiftTab:
		m.transferFocus = 1 - m.transferFocus
		if m.transferFocus == 0 {
			m.toInput.Focus()
			m.amountInput.Blur()
		} else {
			m.amountInput.Focus()
			m.toInput.Blur()
		}
		return m, nil

	case tea.KeyEnter:
		// One submission at a time; a second Enter must not move money twice.
		if m.submittingTransfer {
			return m, nil
		}
		m.submittingTransfer = true
		return m.startWork(submitTransferCmd(m.workspace, m.toInput.Value(), m.amountInput.Value()))
	}

	return m.updateInputs(t)
}

func (m appModel) onCreateKey(t tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch t.Type {
	case tea.KeyEsc:
		m.overlay = overlayNone
		return m, nil

	case tea.KeyTab:
		m.createFocus = (m.createFocus + 1) % 3
		m.syncCreateFocus()
		return m, nil

	case tea.KeyShiftTab:
		m.createFocus = (m.createFocus + 2) % 3
		m.syncCreateFocus()
		return m, nil

	case tea.KeyLeft:
		if m.createFocus == 0 && m.userCursor > 0 {
			m.userCursor--
		}
		return m, nil

	case tea.KeyRight:
		if m.createFocus == 0 && m.userCursor < len(m.users)-1 {
			m.userCursor++
		}
		return m, nil

	case tea.KeyEnter:
		if m.creatingAccount {
			return m, nil
		}
		if len(m.users) == 0 {
			return m.withError("No known users to open an account for"), nil
		}
		m.creatingAccount = true
		return m.startWork(createAccountCmd(
			m.workspace,
			m.users[m.userCursor].ID,
			m.numberInput.Value(),
			m.depositInput.Value(),
		))
	}

	return m.updateInputs(t)
}

func (m *appModel) syncCreateFocus() {
	m.numberInput.Blur()
	m.depositInput.Blur()
	switch m.createFocus {
	case 1:
		m.numberInput.Focus()
	case 2:
		m.depositInput.Focus()
	}
}

func (m appModel) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	for _, input := range []*textinput.Model{
		&m.agentInput, &m.passwordInput,
		&m.toInput, &m.amountInput,
		&m.numberInput, &m.depositInput,
	} {
		*input, cmd = input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// startWork runs cmd and keeps the spinner ticking while anything is in
// flight.
func (m appModel) startWork(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	m.busy++
	return m, tea.Batch(cmd, m.spin.Tick)
}

func (m appModel) withError(message string) appModel {
	m.status = message
	m.statusIsErr = true
	return m
}

// isSessionDead reports whether err means the upstream rejected the session's
// token; the console then falls back to the login screen.
func (m appModel) isSessionDead(err error) bool {
	return bankapi.IsAuthError(err)
}

func (m appModel) backToLogin() (tea.Model, tea.Cmd) {
	m.screen = screenLogin
	m.overlay = overlayNone
	m.submittingTransfer = false
	m.creatingAccount = false
	m.workspace = nil
	m.agentName = ""
	m.cursor = 0
	m.loginFocus = 1
	m.agentInput.Blur()
	m.passwordInput.Focus()
	m.passwordInput.SetValue("")
	return m.withError("Session expired. Please sign in again"), nil
}

// displayError renders an error the way the status line shows it, preferring
// the upstream's own message.
func displayError(err error) string {
	if detail := bankapi.UpstreamDetail(err); detail != "" {
		return detail
	}
	if stderrors.Is(err, bankapi.ErrUpstreamUnavailable) {
		return "The banking API is temporarily unavailable"
	}
	return err.Error()
}
