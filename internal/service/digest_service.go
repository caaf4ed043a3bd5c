package service

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"taskflow/internal/model"
)

// DigestService builds the periodic summary message sent to the owner.
type DigestService struct{}

func NewDigestService() *DigestService {
	return &DigestService{}
}

// Build renders open tasks by due date and the repeating ones, as Telegram HTML.
func (s *DigestService) Build(tasks []model.Task, now time.Time) string {
	var pending, recurring []model.Task
	for _, task := range tasks {
		if task.IsDone {
			continue
		}
		if task.Recurrence != model.RecurrenceNone {
			recurring = append(recurring, task)
			continue
		}
		pending = append(pending, task)
	}
	pending = SortTasks(pending, SortByDate)

	var builder strings.Builder
	builder.WriteString("📋 <b>Daily digest</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s · %d%% complete\n\n", now.Format("2006-01-02"), int(CompletionRate(tasks)*100)))

	builder.WriteString("🔥 <b>Open tasks</b>\n")
	if len(pending) == 0 {
		builder.WriteString("— nothing open\n")
	} else {
		for _, task := range pending {
			builder.WriteString(formatTask(task, now))
		}
	}

	builder.WriteString("\n♻️ <b>Repeating tasks</b>\n")
	if len(recurring) == 0 {
		builder.WriteString("— none\n")
	} else {
		sort.SliceStable(recurring, func(i, j int) bool {
			return recurring[i].Priority.Rank() < recurring[j].Priority.Rank()
		})
		for _, task := range recurring {
			builder.WriteString(formatRecurring(task))
		}
	}

	return strings.TrimSpace(builder.String())
}

func formatTask(task model.Task, now time.Time) string {
	var sb strings.Builder

	icon := "🟢"
	d := task.Date.In(now.Location())
	switch {
	case now.After(d):
		icon = "⚠️"
	case d.Sub(now) <= 48*time.Hour:
		icon = "⏳"
	}

	sb.WriteString(fmt.Sprintf("%s %s", icon, html.EscapeString(strings.TrimSpace(task.Title))))
	if name := strings.TrimSpace(task.Category); name != "" {
		sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(name)))
	}
	if task.Priority == model.PriorityHigh {
		sb.WriteString(" ❗")
	}

	if now.After(d) {
		sb.WriteString(fmt.Sprintf("\n   ⏰ %s — <b>overdue</b>", d.Format("2006-01-02 15:04")))
	} else {
		sb.WriteString(fmt.Sprintf("\n   ⏰ %s", d.Format("2006-01-02 15:04")))
	}

	if note, ok := task.Note.Get(); ok && strings.TrimSpace(note) != "" {
		sb.WriteString(fmt.Sprintf("\n   📝 %s", html.EscapeString(strings.TrimSpace(note))))
	}

	sb.WriteByte('\n')
	return sb.String()
}

func formatRecurring(task model.Task) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("♻️ %s", html.EscapeString(strings.TrimSpace(task.Title))))
	if name := strings.TrimSpace(task.Category); name != "" {
		sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(name)))
	}
	sb.WriteString(fmt.Sprintf("\n   🔁 %s", strings.ToLower(string(task.Recurrence))))
	sb.WriteByte('\n')
	return sb.String()
}
