// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Command swfview is an interactive terminal browser over the method
// bodies of every ABC unit embedded in an SWF file: a left-hand list of
// method indices, a right-hand disassembly pane for whichever one is
// selected.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/saferwall/swfabc"
	"github.com/saferwall/swfabc/swf"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	mnemonicStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	addressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
)

// bodyItem adapts one method body for display in the bubbles/list widget.
type bodyItem struct {
	unitName string
	index    int
	body     abc.MethodBody
}

func (i bodyItem) Title() string {
	return fmt.Sprintf("%s: method %d", i.unitName, i.body.MethodIndex)
}

func (i bodyItem) Description() string {
	return fmt.Sprintf("%d bytes, %d locals, %d exceptions",
		len(i.body.Code), i.body.LocalCount, len(i.body.Exceptions))
}

func (i bodyItem) FilterValue() string { return i.Title() }

type model struct {
	list     list.Model
	viewport viewport.Model
	items    []bodyItem
	err      error
	ready    bool
}

func newModel(items []bodyItem) model {
	delegate := list.NewDefaultDelegate()
	l := list.New(toListItems(items), delegate, 0, 0)
	l.Title = "Method bodies"
	l.Styles.Title = titleStyle

	return model{list: l, items: items}
}

func toListItems(items []bodyItem) []list.Item {
	out := make([]list.Item, len(items))
	for i, it := range items {
		out[i] = it
	}
	return out
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		leftWidth := msg.Width / 3
		m.list.SetSize(leftWidth, msg.Height-2)
		m.viewport = viewport.New(msg.Width-leftWidth-4, msg.Height-2)
		m.ready = true
		m.refreshDisasm()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	prevIndex := m.list.Index()
	m.list, cmd = m.list.Update(msg)
	if m.list.Index() != prevIndex {
		m.refreshDisasm()
	}

	var vpCmd tea.Cmd
	m.viewport, vpCmd = m.viewport.Update(msg)

	return m, tea.Batch(cmd, vpCmd)
}

func (m *model) refreshDisasm() {
	if !m.ready || len(m.items) == 0 {
		return
	}
	item := m.items[m.list.Index()]
	stream, err := abc.Disassemble(item.body.Code)
	if err != nil {
		m.viewport.SetContent(errorStyle.Render(err.Error()))
		return
	}
	var lines string
	for _, inst := range stream.Instructions {
		lines += fmt.Sprintf("%s  %s %v\n",
			addressStyle.Render(fmt.Sprintf("%6d", inst.Address)),
			mnemonicStyle.Render(inst.Mnemonic), inst.Args)
	}
	m.viewport.SetContent(lines)
}

func (m model) View() string {
	if !m.ready {
		return "loading…"
	}
	left := m.list.View()
	right := paneStyle.Render(m.viewport.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func collectBodies(file *swf.File) []bodyItem {
	names := make([]string, 0, len(file.ABCs))
	for name := range file.ABCs {
		names = append(names, name)
	}
	sort.Strings(names)

	var items []bodyItem
	for _, name := range names {
		unit := file.ABCs[name]
		for i, b := range unit.Bodies {
			items = append(items, bodyItem{unitName: name, index: i, body: b})
		}
	}
	return items
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: swfview <file.swf>")
		os.Exit(1)
	}

	file, err := swf.Open(os.Args[1], nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "swfview:", err)
		os.Exit(1)
	}
	defer file.Close()

	items := collectBodies(file)
	if len(items) == 0 {
		fmt.Fprintln(os.Stderr, "swfview: no method bodies found")
		os.Exit(1)
	}

	p := tea.NewProgram(newModel(items), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "swfview:", err)
		os.Exit(1)
	}
}
