package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

var titleCaser = cases.Title(language.Und)

// stageLabel renders a stage name for humans: "ready_to_post" becomes
// "Ready To Post".
func stageLabel(stage string) string {
	return titleCaser.String(strings.ReplaceAll(strings.TrimSpace(stage), "_", " "))
}

// slaStatusLabel colors an SLA status when writing to a terminal.
func slaStatusLabel(status string, colorize bool) string {
	label := strings.ReplaceAll(status, "_", " ")
	if !colorize {
		return label
	}
	switch status {
	case "on_track":
		return ansiGreen + label + ansiReset
	case "due_soon":
		return ansiYellow + label + ansiReset
	case "overdue":
		return ansiRed + label + ansiReset
	default:
		return label
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// availabilityLabel summarizes who holds an item for queue listings.
func availabilityLabel(isMine, isAvailable bool, claimedBy string) string {
	switch {
	case isMine:
		return "mine"
	case isAvailable:
		return "available"
	case claimedBy != "":
		return fmt.Sprintf("locked by %s", claimedBy)
	default:
		return "locked"
	}
}
