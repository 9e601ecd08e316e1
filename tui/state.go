package tui

type state int

const (
	loadingState state = iota
	errorState
	searchState
	historyState
	itemsState
	detailsState
)
