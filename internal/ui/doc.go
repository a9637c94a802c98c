// Package ui provides the styled line output dockmon prints outside the
// dashboard: the connect spinner, host tables and status symbols.
//
// Colors are ANSI codes so the output follows the terminal theme:
//
//	ColorSuccess   (green)  - Connected, written
//	ColorError     (red)    - Failures
//	ColorWarning   (yellow) - Paused containers, skipped steps
//	ColorInfo      (cyan)   - Informational values
//	ColorMuted     (gray)   - Secondary text, timing info
//
// The spinner is meant for one blocking step before the dashboard takes
// over the screen:
//
//	s := ui.NewSpinner("Connecting to unix:///var/run/docker.sock", os.Stderr)
//	s.Start()
//	err := client.Ping(ctx)
//	s.Finish(err)
//
// Everything degrades to plain text when lipgloss has no color profile,
// which the CLI arranges for --color never and non-terminal output.
package ui
