package main

import (
	"fmt"
	"strings"

	"bark-console/internal/models"

	"github.com/charmbracelet/lipgloss"
)

func (m appModel) View() string {
	var b strings.Builder

	b.WriteString(m.th.Header.Render("bark-console"))
	if m.agentName != "" {
		b.WriteString(m.th.Muted.Render("  signed in as " + m.agentName))
	}
	b.WriteString("\n\n")

	switch {
	case m.screen == screenLogin:
		b.WriteString(m.loginView())
	case m.overlay == overlayTransfer:
		b.WriteString(m.transferView())
	case m.overlay == overlayCreate:
		b.WriteString(m.createView())
	default:
		b.WriteString(m.dashboardView())
	}

	b.WriteString("\n")
	b.WriteString(m.statusView())
	return b.String()
}

func (m appModel) loginView() string {
	var b strings.Builder

	b.WriteString(m.th.Label.Render("Agent sign-in") + "\n\n")
	b.WriteString("  " + m.agentInput.View() + "\n")
	b.WriteString("  " + m.passwordInput.View() + "\n\n")

	if m.loggingIn {
		b.WriteString("  " + m.spin.View() + " signing in...\n")
	} else {
		b.WriteString(m.th.Muted.Render("  tab: switch field   enter: sign in   ctrl+c: quit") + "\n")
	}

	return m.th.Frame.Render(b.String())
}

func (m appModel) dashboardView() string {
	snapshot := m.workspace.Directory.Snapshot()

	left := m.accountListView(snapshot.Accounts, snapshot.Loading)
	right := m.detailView()

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)

	help := m.th.Muted.Render(
		"up/down: move   enter: select   esc: deselect   r: refresh   t: transfer   n: new account   q: quit")

	var errLine string
	if snapshot.LastError != "" {
		errLine = "\n" + m.th.Danger.Render(snapshot.LastError)
	}

	return body + errLine + "\n" + help
}

func (m appModel) accountListView(accounts []models.Account, loading bool) string {
	var b strings.Builder

	title := "Accounts"
	if loading {
		title += " " + m.spin.View()
	}
	b.WriteString(m.th.Label.Render(title) + "\n")

	if len(accounts) == 0 {
		b.WriteString(m.th.Muted.Render("no accounts loaded") + "\n")
	}

	for i, account := range accounts {
		line := fmt.Sprintf("%-20s %s %12s",
			account.Name,
			account.MaskedNumber(),
			account.Balance.StringFixed(2))

		if i == m.cursor {
			b.WriteString(m.th.Selected.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	return m.th.Panel.Render(b.String())
}

func (m appModel) detailView() string {
	state := m.workspace.Selection.State()

	var b strings.Builder
	b.WriteString(m.th.Label.Render("Selected account") + "\n")

	if state.Loading {
		b.WriteString(m.spin.View() + " loading...\n")
	}

	if state.Selection == nil {
		if !state.Loading {
			b.WriteString(m.th.Muted.Render("nothing selected") + "\n")
		}
		return m.th.Panel.Render(b.String())
	}

	account := state.Selection.Account
	b.WriteString(m.th.Accent.Render(account.Name) + "\n")
	b.WriteString(models.FormatAccountNumber(account.AccountNumber) + "\n")
	b.WriteString("Balance: " + m.th.Success.Render(account.Balance.StringFixed(2)) + "\n\n")

	b.WriteString(m.th.Label.Render("Recent transfers") + "\n")
	if len(state.Selection.Transfers) == 0 {
		b.WriteString(m.th.Muted.Render("none") + "\n")
	}
	for _, transfer := range state.Selection.Transfers {
		direction := "->"
		other := transfer.ToAccount
		if transfer.ToAccount == account.AccountNumber {
			direction = "<-"
			other = transfer.FromAccount
		}
		b.WriteString(fmt.Sprintf("%s %s  %s\n",
			direction,
			models.MaskAccountNumber(other),
			transfer.Amount.StringFixed(2)))
	}

	return m.th.Panel.Render(b.String())
}

func (m appModel) transferView() string {
	var b strings.Builder

	source := "selected account"
	if current := m.workspace.Selection.Current(); current != nil {
		source = current.Account.MaskedNumber()
	}
	b.WriteString(m.th.Label.Render("Transfer from "+source) + "\n\n")
	b.WriteString("  " + m.toInput.View() + "\n")
	b.WriteString("  " + m.amountInput.View() + "\n\n")

	if m.submittingTransfer {
		b.WriteString("  " + m.spin.View() + " submitting...\n")
	} else {
		b.WriteString(m.th.Muted.Render("  tab: switch field   enter: submit   esc: cancel") + "\n")
	}

	return m.th.Frame.Render(b.String())
}

func (m appModel) createView() string {
	var b strings.Builder

	b.WriteString(m.th.Label.Render("Open account") + "\n\n")

	owner := "loading users..."
	if len(m.users) > 0 {
		user := m.users[m.userCursor]
		owner = user.DisplayName()
	}
	ownerLine := "  owner: " + owner
	if m.createFocus == 0 {
		ownerLine = m.th.Accent.Render(ownerLine + "  (left/right to change)")
	}
	b.WriteString(ownerLine + "\n")
	b.WriteString("  " + m.numberInput.View() + "\n")
	b.WriteString("  " + m.depositInput.View() + "\n\n")

	if m.creatingAccount {
		b.WriteString("  " + m.spin.View() + " creating...\n")
	} else {
		b.WriteString(m.th.Muted.Render("  tab: next field   enter: create   esc: cancel") + "\n")
	}

	return m.th.Frame.Render(b.String())
}

func (m appModel) statusView() string {
	if m.status == "" {
		return ""
	}
	if m.statusIsErr {
		return m.th.Danger.Render(m.status)
	}
	return m.th.Success.Render(m.status)
}
