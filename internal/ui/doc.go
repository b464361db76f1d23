// Package ui styles the status lines printed by the spotx CLI.
//
// A [Palette] is a small stylesheet of [lipgloss.Style] values. [Default] is the palette the CLI uses;
// [Plain] renders text unchanged for non-terminal output and tests.
package ui
