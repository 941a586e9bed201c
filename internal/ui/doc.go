// Package ui styles the CLI's terminal output with lipgloss.
//
// A [Palette] holds the named styles used for status lines:
//   - Title : section headers such as "Extracting setlists"
//   - OK : successful items (tagged video, resolved artist)
//   - Err : failed items
//   - Warn : skipped or not found items
//   - Help : secondary detail such as counts and URLs
//
// [Default] is the palette the commands use. [Palette.Progress] renders a single engine progress update as one line.
package ui
