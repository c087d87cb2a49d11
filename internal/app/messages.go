package app

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"hubview/internal/syncer"
	"hubview/internal/view"
)

type updateMsg syncer.Update

type updatesClosedMsg struct{}

type submitResultMsg struct {
	intent view.Intent
	err    error
}

func waitForUpdate(ch <-chan syncer.Update) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-ch
		if !ok {
			return updatesClosedMsg{}
		}
		return updateMsg(update)
	}
}

func submitCmd(ctx context.Context, engine Engine, intent view.Intent) tea.Cmd {
	return func() tea.Msg {
		return submitResultMsg{intent: intent, err: engine.Submit(ctx, intent)}
	}
}
