package cli

import (
	"context"
	"errors"

	coreapp "propinfo/internal/core/app"
	"propinfo/internal/core/propertyinfo"

	tea "github.com/charmbracelet/bubbletea"
)

func runUI(ctx context.Context, app *coreapp.App, class string, hints propertyinfo.Context) error {
	m := initialModel(class)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	sendReport := func() {
		report, err := app.Describe(ctx, class, hints)
		p.Send(reportMsg{report: report, err: err})
	}

	app.SetUpdateHandler(func(coreapp.Update) {
		sendReport()
	})

	go sendReport()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
