// Package logfmt colorizes journal output from the writer service for
// terminal display. Lines that do not look like journal entries pass
// through with only their level tokens highlighted.
package logfmt

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	timestampStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6272A4"))
	hostStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6272A4"))
	unitStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BE9FD"))

	levelStyles = map[string]lipgloss.Style{
		"debug":   lipgloss.NewStyle().Foreground(lipgloss.Color("#6272A4")),
		"info":    lipgloss.NewStyle().Foreground(lipgloss.Color("#50FA7B")).Bold(true),
		"warning": lipgloss.NewStyle().Foreground(lipgloss.Color("#F1FA8C")).Bold(true),
		"error":   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555")).Bold(true),
	}
)

// journalPattern matches the default journalctl short format:
//
//	Nov 13 10:05:57 xbl-daq-32.psi.ch pco_writer-pco2[9915]: [info] message
//
// Single-digit days are space padded, and the process identifier after
// the unit name is optional (systemd's own lines omit it sometimes).
var journalPattern = regexp.MustCompile(`^([A-Z][a-z]{2} +\d{1,2} \d{2}:\d{2}:\d{2}) (\S+) (\S+?(?:\[\d+\])?): (.*)$`)

// levelPattern matches bracketed severity tokens as emitted by the
// writer's logging backend, for example "[info]" or "[ERROR]".
var levelPattern = regexp.MustCompile(`(?i)\[(trace|debug|info|notice|warn|warning|err|error|critical|fatal)\]`)

// Colorize styles a full log blob, line by line. Line structure and
// trailing newlines are preserved.
func Colorize(log string) string {
	lines := strings.Split(log, "\n")
	for i, line := range lines {
		lines[i] = ColorizeLine(line)
	}
	return strings.Join(lines, "\n")
}

// ColorizeLine styles a single journal line. Malformed lines are
// returned with level tokens highlighted but otherwise unchanged.
func ColorizeLine(line string) string {
	if strings.TrimSpace(line) == "" {
		return line
	}
	m := journalPattern.FindStringSubmatch(line)
	if m == nil {
		return highlightLevels(line)
	}
	var b strings.Builder
	b.WriteString(timestampStyle.Render(m[1]))
	b.WriteByte(' ')
	b.WriteString(hostStyle.Render(m[2]))
	b.WriteByte(' ')
	b.WriteString(unitStyle.Render(m[3] + ":"))
	b.WriteByte(' ')
	b.WriteString(highlightLevels(m[4]))
	return b.String()
}

func highlightLevels(message string) string {
	return levelPattern.ReplaceAllStringFunc(message, func(token string) string {
		name := canonicalLevel(strings.Trim(token, "[]"))
		style, ok := levelStyles[name]
		if !ok {
			return token
		}
		return style.Render(token)
	})
}

func canonicalLevel(name string) string {
	switch strings.ToLower(name) {
	case "trace", "debug":
		return "debug"
	case "info", "notice":
		return "info"
	case "warn", "warning":
		return "warning"
	case "err", "error", "critical", "fatal":
		return "error"
	default:
		return ""
	}
}
