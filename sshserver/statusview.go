package sshserver

import (
	"fmt"
	"strings"

	"pkt.systems/intelhub/schema"
)

const (
	ansiReset  = "\x1b[0m"
	ansiDim    = "\x1b[2m"
	ansiGreen  = "\x1b[32m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[36m"
	ansiBold   = "\x1b[1m"
)

func statusColor(status schema.TabStatus) string {
	switch status {
	case schema.TabStatusOnline:
		return ansiGreen
	case schema.TabStatusOffline:
		return ansiRed
	case schema.TabStatusChecking:
		return ansiYellow
	case schema.TabStatusIntegrated:
		return ansiCyan
	default:
		return ""
	}
}

// renderStatusLines builds the read-only status table shown to SSH clients.
func renderStatusLines(resp schema.ListTabsResponse, width int) []string {
	if width < 40 {
		width = 40
	}
	labelWidth := 12
	for _, tab := range resp.Tabs {
		if len(tab.Label) > labelWidth {
			labelWidth = len(tab.Label)
		}
	}

	lines := []string{
		ansiBold + "intel hub" + ansiReset + ansiDim + "  tab status" + ansiReset,
		"",
	}
	for _, tab := range resp.Tabs {
		marker := "  "
		if tab.Key == resp.ActiveTab {
			marker = ansiBold + "> " + ansiReset
		}
		status := fmt.Sprintf("%s%-10s%s", statusColor(tab.Status), tab.Status, ansiReset)
		target := tab.URL
		if tab.Mode == schema.TabModeIntegrated && target == "" {
			target = ansiDim + "(integrated)" + ansiReset
		}
		line := fmt.Sprintf("%s%-*s  %s  %s", marker, labelWidth, tab.Label, status, target)
		if visibleLen(line) > width {
			line = truncateVisible(line, width)
		}
		lines = append(lines, line)
	}
	lines = append(lines, "", ansiDim+"r refresh all · q quit"+ansiReset)
	return lines
}

// visibleLen counts printable characters, skipping ANSI escape sequences.
func visibleLen(line string) int {
	count := 0
	inEscape := false
	for _, r := range line {
		switch {
		case inEscape:
			if r == 'm' {
				inEscape = false
			}
		case r == '\x1b':
			inEscape = true
		default:
			count++
		}
	}
	return count
}

func truncateVisible(line string, width int) string {
	var b strings.Builder
	count := 0
	inEscape := false
	for _, r := range line {
		switch {
		case inEscape:
			b.WriteRune(r)
			if r == 'm' {
				inEscape = false
			}
		case r == '\x1b':
			b.WriteRune(r)
			inEscape = true
		default:
			if count >= width {
				continue
			}
			b.WriteRune(r)
			count++
		}
	}
	return b.String() + ansiReset
}
