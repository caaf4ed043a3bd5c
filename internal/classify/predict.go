package classify

import (
	"time"

	"taskflow/internal/model"
)

// Prediction bundles every guess for one title.
type Prediction struct {
	Priority    model.Priority
	Category    string
	Date        model.Optional[time.Time]
	Recurrence  model.Recurrence
	Reminder    bool
	Suggestions []string
}

// Predict runs all predictors. High priority always turns the reminder on.
func Predict(title string, now time.Time) Prediction {
	priority := Priority(title)
	return Prediction{
		Priority:    priority,
		Category:    Category(title),
		Date:        Date(title, now),
		Recurrence:  Recurrence(title),
		Reminder:    priority == model.PriorityHigh || Reminder(title),
		Suggestions: Suggestions(title),
	}
}

// Apply pre-fills a draft task. The draft's date is kept when no date was
// predicted.
func (p Prediction) Apply(task *model.Task) {
	task.Priority = p.Priority
	task.Category = p.Category
	task.Recurrence = p.Recurrence
	task.HasReminder = p.Reminder
	if date, ok := p.Date.Get(); ok {
		task.Date = date
	}
}

// Draft builds a validated task for title with every prediction applied.
func Draft(title string, now time.Time) (model.Task, error) {
	task, err := model.NewTask(title, now, OtherCategory, model.PriorityMedium)
	if err != nil {
		return model.Task{}, err
	}
	Predict(title, now).Apply(&task)
	return task, nil
}
