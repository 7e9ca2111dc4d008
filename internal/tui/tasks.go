package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"

	"taskr/internal/output"
	"taskr/internal/service"
)

const defaultBarWidth = 40

// taskView is the add input, progress bar and list cursor.
type taskView struct {
	input     textinput.Model
	bar       progress.Model
	cursor    int
	focusList bool
}

func newTaskView() *taskView {
	in := textinput.New()
	in.Placeholder = "Add a new task..."
	in.Prompt = "+ "
	in.CharLimit = 500
	in.Cursor.SetMode(cursor.CursorStatic)
	in.Focus()

	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(defaultBarWidth))

	return &taskView{input: in, bar: bar}
}

func (v *taskView) setFocusList(list bool) {
	v.focusList = list
	if list {
		v.input.Blur()
	} else {
		v.input.Focus()
	}
}

func (v *taskView) setWidth(w int) {
	w -= 4
	if w > 60 {
		w = 60
	}
	if w < 10 {
		w = 10
	}
	v.bar.Width = w
}

// clamp keeps the cursor inside a list of n tasks.
func (v *taskView) clamp(n int) {
	if v.cursor >= n {
		v.cursor = n - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
}

func (v *taskView) move(delta, n int) {
	v.cursor += delta
	v.clamp(n)
}

// selected returns the task under the cursor.
func (v *taskView) selected(tasks []service.Task) (service.Task, bool) {
	if len(tasks) == 0 {
		return service.Task{}, false
	}
	v.clamp(len(tasks))
	return tasks[v.cursor], true
}

func (v *taskView) view(tasks []service.Task, status string, busy, canLogout bool) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Tasks"))
	b.WriteString("\n")

	stats := output.Progress(tasks)
	b.WriteString(fmt.Sprintf("%s %d of %d\n", labelStyle.Render("Completed"), stats.Completed, stats.Total))
	b.WriteString(v.bar.ViewAs(stats.Ratio()))
	b.WriteString("\n\n")

	b.WriteString(v.input.View())
	b.WriteString("\n\n")

	if len(tasks) == 0 {
		b.WriteString(mutedStyle.Render(output.EmptyState))
		b.WriteString("\n")
	}
	v.clamp(len(tasks))
	for i, t := range tasks {
		marker := "  "
		if v.focusList && i == v.cursor {
			marker = cursorStyle.Render("> ")
		}
		text := t.Text
		if t.Completed {
			text = doneStyle.Render(text)
		}
		b.WriteString(fmt.Sprintf("%s%s %s\n", marker, output.Checkbox(t.Completed), text))
	}

	switch {
	case busy:
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("Working..."))
		b.WriteString("\n")
	case status != "":
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(status))
		b.WriteString("\n")
	}

	help := "enter: add · tab: select tasks · esc: quit"
	if v.focusList {
		help = "space/x: toggle · d: delete · ↑/↓: move · tab: add task · q: quit"
	}
	if canLogout {
		help += " · ctrl+l: log out"
	}
	b.WriteString(helpStyle.Render(help))
	return b.String()
}
