package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskflow/internal/classify"
	"taskflow/internal/model"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageTitle
	stageCategory
	stageNote
	stageEditTitle
	stageEditPriority
)

const (
	btnSkip         = "⏭️ Skip"
	btnKeep         = "👍 Keep"
	btnCancelDialog = "⏪ Cancel"
)

type conversationState struct {
	stage       conversationStage
	title       string
	suggestions []string
	prediction  classify.Prediction
	task        model.Task
	// editing means task already exists and is replaced on finish.
	editing bool
}

func (b *Bot) startNewTaskConversation(chatID int64) error {
	b.setConversation(&conversationState{stage: stageTitle})
	return b.sendWithReplyMarkup(chatID, "🆕 New task.\n<b>Step 1:</b> what needs doing?", cancelKeyboard())
}

func (b *Bot) startEditConversation(chatID int64, id string) error {
	task, ok := b.taskSvc.Task(id)
	if !ok {
		return b.sendText(chatID, "Task not found.")
	}
	b.setConversation(&conversationState{stage: stageEditTitle, task: task, editing: true})
	text := fmt.Sprintf("✏️ Editing «%s».\nSend a new title or press Keep.", escape(task.Title))
	return b.sendWithReplyMarkup(chatID, text, keepKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation()
	text := strings.TrimSpace(msg.Text)
	chatID := msg.Chat.ID

	if text == btnCancelDialog {
		b.clearConversation()
		return b.sendTextWithRemove(chatID, "⏪ Cancelled.")
	}

	switch state.stage {
	case stageTitle:
		if text == "" {
			return b.sendWithReplyMarkup(chatID, "The title cannot be empty.", cancelKeyboard())
		}
		state.title = text
		// A lone action verb gets completions before anything is predicted.
		if suggestions := classify.Suggestions(text); len(strings.Fields(text)) == 1 && len(suggestions) > 0 {
			state.suggestions = suggestions
			return b.sendWithReplyMarkup(chatID, "💡 Did you mean…", suggestionKeyboard(suggestions))
		}
		return b.askCategory(chatID, state)
	case stageEditTitle:
		if text == "" {
			return b.sendWithReplyMarkup(chatID, "The title cannot be empty.", keepKeyboard())
		}
		if text != btnKeep {
			state.task.Title = text
		}
		state.stage = stageEditPriority
		prompt := fmt.Sprintf("Priority is <b>%s</b>. Keep it or pick another.", state.task.Priority)
		return b.sendWithReplyMarkup(chatID, prompt, priorityKeyboard())
	case stageEditPriority:
		if text != btnKeep {
			priority, err := model.ParsePriority(text)
			if err != nil {
				return b.sendWithReplyMarkup(chatID, "Pick a priority from the keyboard.", priorityKeyboard())
			}
			state.task.Priority = priority
		}
		state.stage = stageCategory
		prompt := fmt.Sprintf("Category is <b>%s</b>. Keep it or pick another.", escape(state.task.Category))
		return b.sendWithReplyMarkup(chatID, prompt, b.categoryKeyboard(state.task.Category))
	case stageCategory:
		if text != btnKeep {
			category, ok := b.taskSvc.FindCategory(text)
			if !ok && !strings.EqualFold(text, classify.OtherCategory) {
				return b.sendWithReplyMarkup(chatID, "Pick a category from the keyboard.", b.categoryKeyboard(state.task.Category))
			}
			state.task.Category = classify.OtherCategory
			if ok {
				state.task.Category = category.Name
			}
		}
		state.stage = stageNote
		prompt := "📝 Add a note (or press Skip)."
		if state.editing {
			prompt = "📝 Send a new note, or Skip to keep the current one."
		}
		return b.sendWithReplyMarkup(chatID, prompt, skipKeyboard())
	case stageNote:
		if text != btnSkip && text != "" {
			state.task.Note = model.Some(text)
		}
		if state.editing {
			return b.finishTaskEdit(ctx, chatID, state.task)
		}
		return b.finishTaskCreation(ctx, chatID, state.task)
	}
	return nil
}

func (b *Bot) applySuggestion(chatID int64, raw string) error {
	state := b.getConversation()
	if state == nil || state.stage != stageTitle {
		return nil
	}
	idx, err := strconv.Atoi(raw)
	if err != nil || idx < 0 || idx >= len(state.suggestions) {
		return nil
	}
	state.title = classify.ApplySuggestion(state.title, state.suggestions[idx])
	return b.askCategory(chatID, state)
}

func (b *Bot) askCategory(chatID int64, state *conversationState) error {
	prediction := b.taskSvc.Predict(state.title)
	task, err := model.NewTask(state.title, b.taskSvc.Now(), classify.OtherCategory, model.PriorityMedium)
	if err != nil {
		b.clearConversation()
		return b.sendTextWithRemove(chatID, "The title cannot be empty.")
	}
	prediction.Apply(&task)

	state.prediction = prediction
	state.task = task
	state.stage = stageCategory

	text := formatPrediction(task.Title, prediction, b.loc) + "\n\n<b>Step 2:</b> keep the category or pick another."
	return b.sendWithReplyMarkup(chatID, text, b.categoryKeyboard(prediction.Category))
}

func (b *Bot) finishTaskCreation(ctx context.Context, chatID int64, task model.Task) error {
	b.clearConversation()
	saved, err := b.taskSvc.AddTask(ctx, task)
	if err != nil {
		return b.sendTextWithRemove(chatID, fmt.Sprintf("Could not save the task: %s", escape(err.Error())))
	}
	return b.sendTextWithRemove(chatID, "✅ <b>Task saved</b>\n"+formatTaskLine(saved, b.loc))
}

func (b *Bot) finishTaskEdit(ctx context.Context, chatID int64, task model.Task) error {
	b.clearConversation()
	saved, err := b.taskSvc.UpdateTask(ctx, task)
	if err != nil {
		return b.sendTextWithRemove(chatID, fmt.Sprintf("Could not update the task: %s", escape(err.Error())))
	}
	return b.sendTextWithRemove(chatID, "✏️ <b>Task updated</b>\n"+formatTaskLine(saved, b.loc))
}

func (b *Bot) setConversation(state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversation = state
}

func (b *Bot) getConversation() *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversation
}

func (b *Bot) hasConversation() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversation != nil && b.conversation.stage != stageNone
}

func (b *Bot) clearConversation() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversation = nil
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func keepKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnKeep),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func priorityKeyboard() tgbotapi.ReplyKeyboardMarkup {
	row := tgbotapi.NewKeyboardButtonRow()
	for _, p := range model.Priorities {
		row = append(row, tgbotapi.NewKeyboardButton(string(p)))
	}
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnKeep)),
		row,
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancelDialog)),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func skipKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

// categoryKeyboard lists the stored categories two per row behind a Keep button.
func (b *Bot) categoryKeyboard(predicted string) tgbotapi.ReplyKeyboardMarkup {
	rows := [][]tgbotapi.KeyboardButton{
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnKeep)),
	}
	names := categoryChoices(b.taskSvc.Categories(), predicted)
	for i := 0; i < len(names); i += 2 {
		row := tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(names[i]))
		if i+1 < len(names) {
			row = append(row, tgbotapi.NewKeyboardButton(names[i+1]))
		}
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancelDialog)))

	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func suggestionKeyboard(suggestions []string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, s := range suggestions {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(shortTitle(s, 40), cbSuggestPrefix+strconv.Itoa(i)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
