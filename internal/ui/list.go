package ui

import (
	"github.com/charmbracelet/bubbles/list"
)

var _ list.Item = sectionItem{}

// sectionItem wraps one rendered report section to implement [list.Item].
type sectionItem struct {
	title string
	desc  string
	body  string
}

func (i sectionItem) FilterValue() string { return i.title }
func (i sectionItem) Title() string       { return i.title }
func (i sectionItem) Description() string { return i.desc }
