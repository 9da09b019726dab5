package main

import (
	"context"
	"sync"
	"time"

	"bark-console/internal/bankapi"
	"bark-console/internal/models"
	"bark-console/internal/services"

	tea "github.com/charmbracelet/bubbletea"
)

const commandTimeout = 15 * time.Second

// Messages completing async work. Every upstream call runs as a tea.Cmd; the
// model only ever mutates state inside Update.

type loginDoneMsg struct {
	workspace *consoleWorkspace
	agentName string
	err       error
}

type directoryLoadedMsg struct {
	err error
}

type selectionLoadedMsg struct {
	accountID string
	err       error
}

type usersLoadedMsg struct {
	users []models.User
	err   error
}

type transferDoneMsg struct {
	result *services.TransferResult
	err    error
}

type accountCreatedMsg struct {
	account *models.Account
	err     error
}

// consoleCredential carries the signed-in agent's upstream token. The client
// fires Invalidate on a 401; the model notices the typed auth error on the
// failing command and falls back to the login screen, so nothing else is
// needed here beyond the one-shot guard.
type consoleCredential struct {
	token string
	once  sync.Once
}

func (c *consoleCredential) Token() string { return c.token }

func (c *consoleCredential) Invalidate() {
	c.once.Do(func() {})
}

// consoleWorkspace is the in-process equivalent of a gateway workspace: the
// credential-bound client plus the stateful services hanging off it.
type consoleWorkspace struct {
	Client    bankapi.ClientInterface
	Directory services.DirectoryServiceInterface
	Selection services.SelectionServiceInterface
	Transfers services.TransferServiceInterface
	Creator   services.AccountCreationServiceInterface
}

func loginCmd(deps appDeps, agentName, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		token, err := deps.client.Login(ctx, agentName, password)
		if err != nil {
			return loginDoneMsg{err: err}
		}

		bound := deps.client.WithCredential(&consoleCredential{token: token})
		directory := services.NewDirectoryService(bound, deps.logger, deps.metrics)
		selection := services.NewSelectionService(bound, deps.logger, deps.metrics)

		workspace := &consoleWorkspace{
			Client:    bound,
			Directory: directory,
			Selection: selection,
			Transfers: services.NewTransferService(bound, directory, selection, deps.logger, deps.metrics),
			Creator:   services.NewAccountCreationService(bound, directory, deps.logger, deps.metrics),
		}

		return loginDoneMsg{workspace: workspace, agentName: agentName}
	}
}

func loadDirectoryCmd(workspace *consoleWorkspace) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		return directoryLoadedMsg{err: workspace.Directory.Load(ctx)}
	}
}

func selectAccountCmd(workspace *consoleWorkspace, accountID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		return selectionLoadedMsg{accountID: accountID, err: workspace.Selection.Select(ctx, accountID)}
	}
}

func loadUsersCmd(workspace *consoleWorkspace) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		users, err := workspace.Creator.Users(ctx)
		return usersLoadedMsg{users: users, err: err}
	}
}

func submitTransferCmd(workspace *consoleWorkspace, toAccount, amount string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		result, err := workspace.Transfers.Submit(ctx, services.TransferRequest{
			ToAccountNumber: toAccount,
			Amount:          amount,
		})
		return transferDoneMsg{result: result, err: err}
	}
}

func createAccountCmd(workspace *consoleWorkspace, userID, accountNumber, deposit string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		account, err := workspace.Creator.Create(ctx, services.AccountCreationRequest{
			UserID:         userID,
			AccountNumber:  accountNumber,
			InitialDeposit: deposit,
		})
		return accountCreatedMsg{account: account, err: err}
	}
}
