package ui

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the width below which the panes stack vertically.
	LayoutCompactWidth = 100

	// LayoutMinWidth is the narrowest width the panes are sized for.
	LayoutMinWidth = 40
)

// Pane sizing.
const (
	// resultsMaxRows caps how many result lines are drawn at once.
	resultsMaxRows = 12

	// pickerRows is the height given to the file picker listing.
	pickerRows = 10

	helpModalWidth = 44
)
