package tui

type pageLayout struct {
	windowWidth  int
	windowHeight int
	formWidth    int
	inputHeight  int
	modalWidth   int
	previewCols  int
	previewRows  int
	historyRows  int
	helpRows     int
}

func newPageLayout() pageLayout {
	return pageLayout{
		formWidth:   76,
		inputHeight: 4,
		modalWidth:  70,
		previewCols: 60,
		previewRows: 10,
		historyRows: 8,
		helpRows:    12,
	}
}

// Update recomputes every region for a window of width x height cells.
func (l *pageLayout) Update(width, height int) {
	l.windowWidth = width
	l.windowHeight = height
	inner := width - formHorizontalMargin
	if inner < minFormWidth {
		inner = minFormWidth
	}
	l.formWidth = inner

	// Logo, tagline, fields, status bar and legend.
	const chrome = 18
	usable := height - chrome
	l.inputHeight = clamp(usable/4, 2, 8)

	// Modal border and padding take six columns and four rows.
	l.modalWidth = inner
	l.previewCols = clamp(inner-6, 10, 160)
	l.previewRows = clamp(usable/2, 4, 40)
	l.historyRows = clamp(usable/2, 3, 20)
	l.helpRows = clamp(usable/2, 6, 30)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
