// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for group discovery:
//  1. [QueryView] : Compose a search query and submit it
//  2. [ResultsView] : Browse, filter, page and select discovered groups
//  3. [ActorPickView] : Choose which account joins when several are ready
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Session updates flow through a channel from the search session, providing non-blocking status reporting while results stream in.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, space, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
