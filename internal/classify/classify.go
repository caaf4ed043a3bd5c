// Package classify guesses task fields from a free-text title using keyword
// heuristics. Every function is pure: the same input gives the same output.
package classify

import (
	"strings"
	"time"

	"taskflow/internal/model"
)

// OtherCategory is returned when no category keyword matches.
const OtherCategory = "Other"

const maxSuggestions = 5

// Priority scores the title and maps the score to a priority.
func Priority(title string) model.Priority {
	text := strings.ToLower(title)
	score := 0

	if strings.Contains(text, "meeting") && strings.Contains(text, "client") {
		score += 3
	}
	if strings.Contains(text, "deadline") && strings.Contains(text, "tomorrow") {
		score += 4
	}
	for _, kw := range highPriorityKeywords {
		if strings.Contains(text, kw) {
			score += 2
		}
	}
	for _, kw := range lowPriorityKeywords {
		if strings.Contains(text, kw) {
			score -= 2
		}
	}
	if strings.Contains(text, "today") || strings.Contains(text, "tomorrow") {
		score++
	}

	switch {
	case score >= 3:
		return model.PriorityHigh
	case score <= -2:
		return model.PriorityLow
	default:
		return model.PriorityMedium
	}
}

// Category returns the category whose keywords match most often, or
// OtherCategory when nothing matches.
func Category(title string) string {
	text := strings.ToLower(title)
	best, bestScore := OtherCategory, 0
	for _, entry := range categoryTable {
		score := 0
		for _, kw := range entry.keywords {
			if strings.Contains(text, kw) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = entry.name, score
		}
	}
	return best
}

// Date resolves relative day phrases against now.
func Date(title string, now time.Time) model.Optional[time.Time] {
	text := strings.ToLower(title)
	switch {
	case strings.Contains(text, "today"):
		return model.Some(now)
	case strings.Contains(text, "tomorrow"):
		return model.Some(now.AddDate(0, 0, 1))
	case strings.Contains(text, "next week"):
		return model.Some(now.AddDate(0, 0, 7))
	case strings.Contains(text, "weekend"):
		// Weekdays count Sunday=1 .. Saturday=7, so Saturday resolves to today.
		weekday := int(now.Weekday()) + 1
		return model.Some(now.AddDate(0, 0, 7-weekday))
	}
	return model.None[time.Time]()
}

// Recurrence reads "every day"/"daily", "every week"/"weekly" and
// "every month"/"monthly", checked in that order. Anything else is None.
func Recurrence(title string) model.Recurrence {
	text := strings.ToLower(title)
	switch {
	case strings.Contains(text, "every day") || strings.Contains(text, "daily"):
		return model.RecurrenceDaily
	case strings.Contains(text, "every week") || strings.Contains(text, "weekly"):
		return model.RecurrenceWeekly
	case strings.Contains(text, "every month") || strings.Contains(text, "monthly"):
		return model.RecurrenceMonthly
	}
	return model.RecurrenceNone
}

// Reminder reports whether the title mentions a time or an obligation that
// usually deserves a notification.
func Reminder(title string) bool {
	text := strings.ToLower(title)
	for _, kw := range reminderKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Suggestions completes a title starting with one of the known verbs. Words
// typed after the verb drop completions that already contain them.
func Suggestions(input string) []string {
	words := strings.Fields(strings.ToLower(input))
	if len(words) == 0 {
		return nil
	}

	var candidates []string
	for _, entry := range suggestionTable {
		if entry.verb == words[0] {
			candidates = entry.completions
			break
		}
	}

	context := strings.Join(words[1:], " ")
	out := make([]string, 0, maxSuggestions)
	for _, s := range candidates {
		if context != "" && strings.Contains(s, context) {
			continue
		}
		out = append(out, s)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

// ApplySuggestion replaces everything after the first word of input with s.
func ApplySuggestion(input, s string) string {
	words := strings.Fields(input)
	if len(words) == 0 {
		return s
	}
	return words[0] + " " + s
}
