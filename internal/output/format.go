// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"taskr/internal/service"
)

// EmptyState is printed instead of a task list with no tasks.
const EmptyState = "No tasks yet. Add one above to get started!"

const (
	checkboxOpen = "[ ]"
	checkboxDone = "[x]"
)

// Stats summarises completion of a task list.
type Stats struct {
	Completed int
	Total     int
}

// Progress counts completed tasks.
func Progress(tasks []service.Task) Stats {
	s := Stats{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			s.Completed++
		}
	}
	return s
}

// Ratio returns Completed/Total in [0, 1], or 0 for an empty list.
func (s Stats) Ratio() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Completed) / float64(s.Total)
}

// Percent returns Ratio scaled to 0-100.
func (s Stats) Percent() float64 {
	return s.Ratio() * 100
}

// FormatProgress writes "Completed C of N (P%)".
func FormatProgress(w io.Writer, s Stats) {
	fmt.Fprintf(w, "Completed %d of %d (%.0f%%)\n", s.Completed, s.Total, s.Percent())
}

// Checkbox returns "[x]" for completed tasks and "[ ]" otherwise.
func Checkbox(completed bool) string {
	if completed {
		return checkboxDone
	}
	return checkboxOpen
}

// FormatTask formats a task line.
// Format: "{N:>4}  {[ ]|[x]} {TEXT}\n"
func FormatTask(w io.Writer, num int, task service.Task) {
	fmt.Fprintf(w, "%4d  %s %s\n", num, Checkbox(task.Completed), normalizeText(task.Text))
}

// FormatTaskWithID is FormatTask followed by the task id, for --ids output.
func FormatTaskWithID(w io.Writer, num int, task service.Task) {
	fmt.Fprintf(w, "%4d  %s %s  #%d\n", num, Checkbox(task.Completed), normalizeText(task.Text), task.ID)
}

// FormatTaskList writes every task numbered from 1, or EmptyState.
func FormatTaskList(w io.Writer, tasks []service.Task, withIDs bool) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, EmptyState)
		return
	}
	for i, t := range tasks {
		if withIDs {
			FormatTaskWithID(w, i+1, t)
		} else {
			FormatTask(w, i+1, t)
		}
	}
}

// normalizeText flattens newlines so each task stays on one line.
// Empty text becomes "(untitled)".
func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.ReplaceAll(text, "\n", " ")

	if strings.TrimSpace(text) == "" {
		return "(untitled)"
	}
	return text
}
