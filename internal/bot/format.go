package bot

import (
	"fmt"
	"html"
	"strings"
	"time"
	"unicode"

	"taskflow/internal/classify"
	"taskflow/internal/model"
	"taskflow/internal/notify"
	"taskflow/internal/service"
)

const (
	iconDone     = "✔️"
	iconOpen     = "▫️"
	iconCategory = "folder.fill"
	defaultColor = "#8E8E93"
)

var priorityIcons = map[model.Priority]string{
	model.PriorityHigh:   "🔴",
	model.PriorityMedium: "🟠",
	model.PriorityLow:    "🟢",
}

// symbolEmoji maps stored icon names to something a chat can render.
var symbolEmoji = map[string]string{
	"briefcase.fill":         "💼",
	"person.fill":            "🧩",
	"music.note":             "🎵",
	"airplane":               "✈️",
	"book.fill":              "📚",
	"house.fill":             "🏠",
	"cart.fill":              "🛒",
	"heart.fill":             "🩺",
	"dollarsign.circle.fill": "💰",
}

func categoryIcon(icon string) string {
	if e, ok := symbolEmoji[icon]; ok {
		return e
	}
	return "📁"
}

func formatTaskLine(task model.Task, loc *time.Location) string {
	var sb strings.Builder
	mark := iconOpen
	if task.IsDone {
		mark = iconDone
	}
	sb.WriteString(fmt.Sprintf("%s %s %s <i>(%s)</i>", mark, priorityIcons[task.Priority],
		escape(normalizeTitle(task.Title)), escape(task.Category)))
	sb.WriteString(fmt.Sprintf("\n   ⏰ %s", task.Date.In(loc).Format("2006-01-02 15:04")))
	if task.Recurrence != model.RecurrenceNone {
		sb.WriteString(fmt.Sprintf(" · 🔁 %s", strings.ToLower(string(task.Recurrence))))
	}
	if task.HasReminder {
		sb.WriteString(" · 🔔")
	}
	if note, ok := task.Note.Get(); ok && strings.TrimSpace(note) != "" {
		sb.WriteString(fmt.Sprintf("\n   📝 %s", escape(strings.TrimSpace(note))))
	}
	sb.WriteByte('\n')
	return sb.String()
}

func formatTaskLines(tasks []model.Task, loc *time.Location) string {
	var sb strings.Builder
	for _, task := range tasks {
		sb.WriteString(formatTaskLine(task, loc))
	}
	return strings.TrimSpace(sb.String())
}

func formatCategories(categories []model.Category) string {
	var sb strings.Builder
	sb.WriteString("📂 <b>Categories</b>\n\n")
	for _, c := range categories {
		sb.WriteString(fmt.Sprintf("%s %s — %d/%d done", categoryIcon(c.Icon), escape(c.Name), c.CompletedCount, c.TaskCount))
		if c.IsCustom {
			sb.WriteString(" <i>(custom)</i>")
		}
		sb.WriteByte('\n')
	}
	return strings.TrimSpace(sb.String())
}

func formatSummary(s service.Summary) string {
	var sb strings.Builder
	sb.WriteString("📊 <b>Statistics</b>\n")
	sb.WriteString(fmt.Sprintf("Total: %d · Completed: %d · %d%%\n", s.Total, s.Completed, int(s.CompletionRate*100)))

	sb.WriteString("\n<b>By priority</b>\n")
	for _, p := range s.Priorities {
		sb.WriteString(fmt.Sprintf("%s %s: %d\n", priorityIcons[p.Priority], p.Priority, p.Count))
	}

	if len(s.Categories) > 0 {
		sb.WriteString("\n<b>By category</b>\n")
		for _, c := range s.Categories {
			sb.WriteString(fmt.Sprintf("• %s: %d/%d\n", escape(c.Name), c.Completed, c.Total))
		}
	}
	return strings.TrimSpace(sb.String())
}

func formatPrediction(title string, p classify.Prediction, loc *time.Location) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🔮 <b>%s</b>\n", escape(normalizeTitle(title))))
	sb.WriteString(fmt.Sprintf("Priority: %s %s\n", priorityIcons[p.Priority], p.Priority))
	sb.WriteString(fmt.Sprintf("Category: %s\n", escape(p.Category)))
	if date, ok := p.Date.Get(); ok {
		sb.WriteString(fmt.Sprintf("Date: %s\n", date.In(loc).Format("Mon 2006-01-02")))
	} else {
		sb.WriteString("Date: —\n")
	}
	sb.WriteString(fmt.Sprintf("Repeats: %s\n", strings.ToLower(string(p.Recurrence))))
	reminder := "off"
	if p.Reminder {
		reminder = "on"
	}
	sb.WriteString(fmt.Sprintf("Reminder: %s", reminder))
	return sb.String()
}

func formatNotification(n notify.Notification) string {
	return fmt.Sprintf("🔔 <b>%s</b>\n%s", escape(n.Title), escape(n.Body))
}

// categoryChoices puts the predicted category first, then the rest in stored order.
func categoryChoices(categories []model.Category, predicted string) []string {
	names := make([]string, 0, len(categories)+1)
	seen := false
	for _, c := range categories {
		if c.Name == predicted {
			seen = true
		}
	}
	if seen || predicted == classify.OtherCategory {
		names = append(names, predicted)
	}
	for _, c := range categories {
		if c.Name != predicted {
			names = append(names, c.Name)
		}
	}
	return names
}

// parseCategoryArgs splits "/addcategory" arguments. A trailing "#RRGGBB" word is
// taken as the color; anything else becomes the name.
func parseCategoryArgs(args string) (name, icon, color string) {
	words := strings.Fields(args)
	color = defaultColor
	if n := len(words); n > 1 && strings.HasPrefix(words[n-1], "#") {
		if rgb, err := model.ParseColor(words[n-1]); err == nil {
			color = rgb.Hex()
			words = words[:n-1]
		}
	}
	return strings.Join(words, " "), iconCategory, color
}

func shortTitle(title string, maxLen int) string {
	clean := strings.TrimSpace(strings.ReplaceAll(title, "\n", " "))
	clean = normalizeTitle(clean)
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func normalizeTitle(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	runes := []rune(value)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func escape(text string) string {
	return html.EscapeString(text)
}
