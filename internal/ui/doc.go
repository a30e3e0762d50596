// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for collection export:
//  1. [FolderListView] : Browse and select a collection folder
//  2. [ReleaseListView] : Multi-select releases with space, toggle all with a, cycle sort with s
//  3. [ConfirmView] : Confirm the export operation
//  4. [ExportView] : Monitor real-time progress updates
//  5. [ResultView] : Display the output file and any skipped releases
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the CollectionEngine, providing non-blocking status reporting during exports.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
