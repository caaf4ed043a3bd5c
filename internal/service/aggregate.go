package service

import (
	"sort"

	"taskflow/internal/model"
)

// Recompute returns a copy of categories with TaskCount and CompletedCount
// derived from tasks. Tasks naming an unknown category count nowhere.
func Recompute(tasks []model.Task, categories []model.Category) []model.Category {
	type counts struct{ total, done int }
	byName := make(map[string]counts, len(categories))
	for _, task := range tasks {
		c := byName[task.Category]
		c.total++
		if task.IsDone {
			c.done++
		}
		byName[task.Category] = c
	}

	out := make([]model.Category, len(categories))
	for i, category := range categories {
		c := byName[category.Name]
		category.TaskCount = c.total
		category.CompletedCount = c.done
		out[i] = category
	}
	return out
}

// CompletionRate is completed/total, or 0 for an empty list.
func CompletionRate(tasks []model.Task) float64 {
	if len(tasks) == 0 {
		return 0
	}
	return float64(countDone(tasks)) / float64(len(tasks))
}

type PriorityCount struct {
	Priority model.Priority
	Count    int
}

// PriorityDistribution counts tasks per priority, always listing High,
// Medium and Low in that order.
func PriorityDistribution(tasks []model.Task) []PriorityCount {
	counts := make(map[model.Priority]int, len(model.Priorities))
	for _, task := range tasks {
		counts[task.Priority]++
	}
	out := make([]PriorityCount, 0, len(model.Priorities))
	for _, p := range model.Priorities {
		out = append(out, PriorityCount{Priority: p, Count: counts[p]})
	}
	return out
}

type CategoryStat struct {
	Name      string
	Total     int
	Completed int
}

// CategoryStats groups tasks by their category name, busiest first.
func CategoryStats(tasks []model.Task) []CategoryStat {
	index := make(map[string]int)
	var stats []CategoryStat
	for _, task := range tasks {
		i, ok := index[task.Category]
		if !ok {
			i = len(stats)
			index[task.Category] = i
			stats = append(stats, CategoryStat{Name: task.Category})
		}
		stats[i].Total++
		if task.IsDone {
			stats[i].Completed++
		}
	}
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].Total != stats[j].Total {
			return stats[i].Total > stats[j].Total
		}
		return stats[i].Name < stats[j].Name
	})
	return stats
}

// Summary is the statistics screen in one value.
type Summary struct {
	Total          int
	Completed      int
	CompletionRate float64
	Priorities     []PriorityCount
	Categories     []CategoryStat
}

func Summarize(tasks []model.Task) Summary {
	return Summary{
		Total:          len(tasks),
		Completed:      countDone(tasks),
		CompletionRate: CompletionRate(tasks),
		Priorities:     PriorityDistribution(tasks),
		Categories:     CategoryStats(tasks),
	}
}

func countDone(tasks []model.Task) int {
	n := 0
	for _, task := range tasks {
		if task.IsDone {
			n++
		}
	}
	return n
}
