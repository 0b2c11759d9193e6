package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/camdaq/pcoclient/pco"
)

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderProgress())
	b.WriteString("\n")
	b.WriteString(m.renderDetails())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	parts := []string{m.styles.Logo.Render("pcoctl")}

	status := m.snapshot.Status
	badge := m.styles.StatusStyle(status).Render("● " + strings.ToUpper(string(status)))
	switch {
	case status.Running(), status == pco.StatusStarting,
		status == pco.StatusStopping, status == pco.StatusKilling:
		badge = m.spin.View() + " " + badge
	}
	parts = append(parts, badge)

	if m.serviceName != "" {
		parts = append(parts, m.styles.MutedText.Render(m.serviceName))
	}
	if m.endpoint != "" {
		parts = append(parts, m.styles.FaintText.Render(m.endpoint))
	}
	if m.snapshot.RunID > 0 {
		parts = append(parts, m.styles.MutedText.Render(fmt.Sprintf("run %d", m.snapshot.RunID)))
	}
	if !m.lastUpdated.IsZero() {
		parts = append(parts, m.styles.FaintText.Render(m.lastUpdated.Format("15:04:05")))
	}

	header := strings.Join(parts, "  ")

	if m.snapshot.IsOffline() {
		header += "\n" + m.styles.DangerText.Render("WRITER SERVICE UNREACHABLE") +
			"  " + m.styles.WarningText.Render("retrying...")
	} else if m.snapshot.LastError != nil {
		header += "\n" + m.styles.DangerText.Render("ERROR") + " " +
			m.styles.DangerText.Render(truncate(m.snapshot.LastError.Error(), 80))
	}
	return header
}

func (m Model) renderProgress() string {
	p := m.snapshot.Progress()

	var b strings.Builder
	if p.Requested > 0 {
		b.WriteString(fmt.Sprintf("  %s %s %s\n",
			m.styles.MutedText.Render("received"),
			m.receivedBar.ViewAs(p.ReceivedRatio()),
			m.styles.Text.Render(fmt.Sprintf("%d/%d", p.Received, p.Requested))))
		b.WriteString(fmt.Sprintf("  %s  %s %s\n",
			m.styles.MutedText.Render("written"),
			m.writtenBar.ViewAs(p.WrittenRatio()),
			m.styles.Text.Render(fmt.Sprintf("%d/%d", p.Written, p.Requested))))
	} else {
		b.WriteString(fmt.Sprintf("  %s %s   %s %s\n",
			m.styles.MutedText.Render("received"),
			m.styles.Text.Render(fmt.Sprintf("%d", p.Received)),
			m.styles.MutedText.Render("written"),
			m.styles.Text.Render(fmt.Sprintf("%d", p.Written))))
	}
	return b.String()
}

func (m Model) renderDetails() string {
	stats := m.snapshot.Stats
	if stats == nil {
		return "  " + m.styles.FaintText.Render("waiting for statistics...") + "\n"
	}

	var b strings.Builder
	row := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(fmt.Sprintf("  %s %s\n",
			m.styles.MutedText.Render(fmt.Sprintf("%-9s", label)),
			m.styles.Text.Render(value)))
	}

	row("dataset", stats.DatasetName)
	row("output", truncate(stats.OutputFile, 70))
	if stats.WritingRate > 0 {
		row("rate", fmt.Sprintf("%.1f Hz", stats.WritingRate))
	}
	if stats.NLostFrames > 0 {
		b.WriteString(fmt.Sprintf("  %s %s\n",
			m.styles.MutedText.Render(fmt.Sprintf("%-9s", "lost")),
			m.styles.DangerText.Render(fmt.Sprintf("%d", stats.NLostFrames))))
	}
	if stats.DurationSec > 0 {
		row("duration", (time.Duration(stats.DurationSec * float64(time.Second))).Round(time.Millisecond).String())
	}
	return b.String()
}

func (m Model) renderFooter() string {
	return "  " + m.styles.FaintText.Render("q quit")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
