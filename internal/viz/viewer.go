package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// chart margin for the y-axis labels and panel border
const axisMargin = 16

type viewer struct {
	series Series
	opts   ChartOptions
	title  string
	footer string
	chart  string
	err    error
}

func newViewer(s Series, title, footer string, opts ChartOptions) viewer {
	v := viewer{series: s, opts: opts, title: title, footer: footer}
	v.render()
	return v
}

func (v *viewer) render() {
	v.chart, v.err = RenderChart(v.series, v.opts)
}

func (v viewer) Init() tea.Cmd { return nil }

func (v viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return v, tea.Quit
		case "s":
			v.opts.HideSusceptible = !v.opts.HideSusceptible
			v.render()
		case "i":
			v.opts.HideInfected = !v.opts.HideInfected
			v.render()
		}
	case tea.WindowSizeMsg:
		if w := msg.Width - axisMargin; w > 10 {
			v.opts.Width = w
		}
		if h := msg.Height - 10; h > 4 {
			v.opts.Height = h
		}
		v.render()
	}
	return v, nil
}

func (v viewer) View() string {
	if v.err != nil {
		return fmt.Sprintf("error: %v\n", v.err)
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(v.title))
	b.WriteString("\n")
	b.WriteString(Panel.Render(v.chart))
	b.WriteString("\n")
	if v.footer != "" {
		b.WriteString(v.footer)
		b.WriteString("\n")
	}
	b.WriteString(KeyHint.Render("s/i toggle susceptible/infected  q quit"))
	b.WriteString("\n")
	return b.String()
}

// Show opens a full-screen chart and blocks until the user quits.
func Show(s Series, title, footer string, opts ChartOptions) error {
	if err := s.Validate(); err != nil {
		return err
	}
	opts.Color = true
	_, err := tea.NewProgram(newViewer(s, title, footer, opts), tea.WithAltScreen()).Run()
	return err
}
