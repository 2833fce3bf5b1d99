package ui

import (
	"strings"

	"llmchat/internal/history"
)

// Page is one of the three front-end views.
type Page int

const (
	PageChat Page = iota
	PageHistory
	PageData
)

// Pages lists the views in navigation order.
var Pages = []Page{PageChat, PageHistory, PageData}

func (p Page) String() string {
	switch p {
	case PageHistory:
		return "history"
	case PageData:
		return "data"
	default:
		return "chat"
	}
}

// Title is the navigation label of the page.
func (p Page) Title() string {
	switch p {
	case PageHistory:
		return "History"
	case PageData:
		return "Sample data"
	default:
		return "Chat"
	}
}

// ParsePage maps a page name back to a Page. Unknown names report false.
func ParsePage(s string) (Page, bool) {
	for _, p := range Pages {
		if strings.EqualFold(strings.TrimSpace(s), p.String()) {
			return p, true
		}
	}
	return PageChat, false
}

// ViewState is everything a template needs to render one page.
type ViewState struct {
	Page          Page
	Pages         []Page
	Title         string
	ModelName     string
	ChatAvailable bool
	LoadError     string
	Flash         string
	Error         string

	// Last is the most recent answer of this session (chat page).
	Last *history.Record
	// Records and Count back the history and data pages.
	Records []history.Record
	Count   int
}

// NewViewState returns the state of a fresh session.
func NewViewState(title string) ViewState {
	return ViewState{Page: PageChat, Pages: Pages, Title: title}
}

// WithPage switches the selected page.
func (v ViewState) WithPage(p Page) ViewState {
	v.Page = p
	return v
}

// WithFlash sets the informational banner.
func (v ViewState) WithFlash(msg string) ViewState {
	v.Flash = msg
	return v
}

// WithError sets the error banner.
func (v ViewState) WithError(msg string) ViewState {
	v.Error = msg
	return v
}

// WithModel records which model backs the chat page and whether it loaded.
func (v ViewState) WithModel(name string, loadErr error) ViewState {
	v.ModelName = name
	v.ChatAvailable = loadErr == nil
	v.LoadError = ""
	if loadErr != nil {
		v.LoadError = loadErr.Error()
	}
	return v
}
