package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	cliTitleStyle   = lipgloss.NewStyle().Bold(true)
	cliSuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cliAccentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	cliMutedStyle   = lipgloss.NewStyle().Faint(true)
	cliErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

func okay(msg string) {
	fmt.Println(cliSuccessStyle.Render("✔ " + msg))
}

func fail(msg string) {
	fmt.Fprintln(os.Stderr, cliErrorStyle.Render("✖ "+msg))
}
