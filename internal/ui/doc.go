// Package ui provides shutter's terminal user interface.
//
// # Architecture Overview
//
// The UI is a single Bubble Tea program. The root Model composes:
//
//   - search.Model: query input and result list
//   - upload.Model: selected candidate, labels input
//   - filepicker.Model: directory browser feeding upload.Select
//   - notify.Center: the one transient status message
//
// The root holds no business rules of its own. It routes messages and
// draws the screen.
//
// # Message Routing
//
//  1. notify.ShowMsg goes to the notification center only
//  2. Key messages go to the focused pane, after the global bindings
//  3. Everything else is broadcast to all children, each of which ignores
//     what it does not own
//
// # Panes
//
// Tab cycles focus through the query input, the result list, the file
// picker, and the labels input. Enter submits in the query and labels
// panes; ctrl+u uploads from anywhere.
//
// # Package Structure
//
//   - app.go: Model, Options, routing, key handling, Run
//   - view.go: pane and notification rendering
//   - keys.go: key bindings and footer help
//   - help.go: full-screen help overlay
//   - theme.go: color palettes and styles
//   - layout.go: size thresholds
package ui
