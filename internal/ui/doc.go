// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for browsing a year-in-review report:
//  1. [LoadingView] : Watch the report build with live progress updates
//  2. [SectionListView] : Browse the report's sections
//  3. [DetailView] : Read a rendered section in full
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the ReviewEngine, providing non-blocking status reporting during the build.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
