package views

import (
	"html/template"
)

// NoticeLevel controls how a notice is styled
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is an inline message shown in place of, or next to, a visualization
type Notice struct {
	Level   NoticeLevel
	Message string
}

// ChartPanel is one chart on a page; Option is the serialized ECharts option
type ChartPanel struct {
	ID      string
	Heading string
	Option  template.JS
	Height  int
}

// MapPanel embeds the pre-rendered map document
type MapPanel struct {
	Heading  string
	Document string // placed in an iframe srcdoc, escaped by the template
	Height   int
}

// Stat is a labelled headline number
type Stat struct {
	Label string
	Value string
}

// Page is the render-ready state of one view
type Page struct {
	View     View
	Title    string
	Heading  string
	Intro    []string
	Stats    []Stat
	Charts   []ChartPanel
	Map      *MapPanel
	Notices  []Notice
	Sections []Section
	Degraded bool
}

// Section is a block of narrative text with optional bullet points.
// Markdown, when set, is rendered after Body and Bullets.
type Section struct {
	Heading  string
	Body     string
	Bullets  []string
	Markdown string
}

// NavItem is one entry of the view selector
type NavItem struct {
	Slug   string
	Label  string
	Active bool
}

// Nav returns the view selector with current marked active
func Nav(current View) []NavItem {
	items := make([]NavItem, 0, len(viewInfo))
	for _, v := range All() {
		items = append(items, NavItem{Slug: v.Slug(), Label: v.Label(), Active: v == current})
	}
	return items
}

// AddNotice appends a notice; error notices mark the page as degraded
func (p *Page) AddNotice(level NoticeLevel, message string) {
	p.Notices = append(p.Notices, Notice{Level: level, Message: message})
	if level == NoticeError {
		p.Degraded = true
	}
}
