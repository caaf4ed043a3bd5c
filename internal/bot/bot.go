package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskflow/internal/logger"
	"taskflow/internal/model"
	"taskflow/internal/notify"
	"taskflow/internal/service"
	"taskflow/internal/transfer"
	"taskflow/internal/voice"
)

const (
	cbTogglePrefix    = "toggle:"
	cbDeletePrefix    = "delete:"
	cbDelCatPrefix    = "delcat:"
	cbSuggestPrefix   = "suggest:"
	cbEditPrefix      = "edit:"
	maxImportBytes    = 5 << 20
	exportFileName    = "tasks.json"
	importFailedReply = "Failed to import tasks"

	// Telegram rejects messages over 4096 characters.
	maxPageRunes = 3500
	maxPageTasks = 20
)

// client is the part of the Bot API the handlers use.
type client interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Bot is the chat front-end for a single owner.
type Bot struct {
	api       *tgbotapi.BotAPI
	client    client
	taskSvc   *service.TaskService
	digestSvc *service.DigestService
	dictation *voice.Dictation
	ownerID   int64
	loc       *time.Location
	http      *http.Client

	mu           sync.Mutex
	conversation *conversationState
}

// New connects to Telegram. provider may be nil when no recognizer is available.
func New(token string, ownerID int64, loc *time.Location, taskSvc *service.TaskService, digestSvc *service.DigestService, provider voice.Provider) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	logger.Get().Infow("bot authorized", "account", api.Self.UserName)

	b := newBot(api, ownerID, loc, taskSvc, digestSvc, provider)
	b.api = api
	return b, nil
}

func newBot(c client, ownerID int64, loc *time.Location, taskSvc *service.TaskService, digestSvc *service.DigestService, provider voice.Provider) *Bot {
	b := &Bot{
		client:    c,
		taskSvc:   taskSvc,
		digestSvc: digestSvc,
		ownerID:   ownerID,
		loc:       loc,
		http:      &http.Client{Timeout: 30 * time.Second},
	}
	b.dictation = voice.NewDictation(provider, b.onTranscript)
	return b
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	logger.Get().Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.dictation.Stop()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		b.handleUpdate(ctx, update)
	}

	return nil
}

// handleUpdate ignores every chat but the owner's. The task list is re-read
// first so edits made from the CLI show up.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		if !b.fromOwner(update.CallbackQuery.Message) {
			return
		}
		b.taskSvc.Refresh(ctx)
		if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
			logger.Get().Warnw("handle callback", "error", err)
		}
	case update.Message != nil:
		if !b.fromOwner(update.Message) {
			return
		}
		b.taskSvc.Refresh(ctx)
		if err := b.handleMessage(ctx, update.Message); err != nil {
			logger.Get().Warnw("handle message", "error", err)
		}
	}
}

func (b *Bot) fromOwner(msg *tgbotapi.Message) bool {
	return msg != nil && msg.Chat != nil && msg.Chat.ID == b.ownerID
}

// Deliver sends a due reminder to the owner; it is the notification sink's deliverer.
func (b *Bot) Deliver(_ context.Context, n notify.Notification) error {
	return b.sendText(b.ownerID, formatNotification(n))
}

// SendDigest sends the periodic summary to the owner.
func (b *Bot) SendDigest(ctx context.Context) error {
	b.taskSvc.Refresh(ctx)
	return b.sendText(b.ownerID, b.digestSvc.Build(b.taskSvc.Tasks(), time.Now().In(b.loc)))
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.Document != nil {
		return b.handleImport(ctx, msg)
	}

	if msg.IsCommand() {
		logger.Get().Infow("command", "name", msg.Command(), "args", msg.CommandArguments())
		return b.handleCommand(ctx, msg)
	}

	if b.hasConversation() {
		return b.handleConversation(ctx, msg)
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return nil
	}
	return b.quickAdd(ctx, msg.Chat.ID, text)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	args := strings.TrimSpace(msg.CommandArguments())
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "start", "help":
		return b.sendText(chatID, helpText)
	case "newtask":
		return b.startNewTaskConversation(chatID)
	case "tasks":
		return b.sendTaskList(chatID, args)
	case "search":
		return b.sendSearch(chatID, args)
	case "today":
		return b.sendDay(chatID, time.Now().In(b.loc))
	case "categories":
		return b.sendCategories(chatID)
	case "addcategory":
		return b.handleAddCategory(ctx, chatID, args)
	case "delcategory":
		return b.askDeleteCategory(chatID, args)
	case "stats":
		return b.sendText(chatID, formatSummary(b.taskSvc.Summary()))
	case "predict":
		if args == "" {
			return b.sendText(chatID, "Usage: /predict &lt;title&gt;")
		}
		return b.sendText(chatID, formatPrediction(args, b.taskSvc.Predict(args), b.loc))
	case "digest":
		return b.SendDigest(ctx)
	case "export":
		return b.handleExport(chatID)
	case "listen":
		return b.handleListen(ctx, chatID)
	case "stop":
		b.dictation.Stop()
		return b.sendText(chatID, "🎙 Stopped listening.")
	case "cancel":
		b.clearConversation()
		return b.sendTextWithRemove(chatID, "⏪ Cancelled.")
	default:
		return b.sendText(chatID, "Unknown command. See /help.")
	}
}

func (b *Bot) quickAdd(ctx context.Context, chatID int64, title string) error {
	task, err := b.taskSvc.CreateFromTitle(ctx, title)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not save the task: %s", escape(err.Error())))
	}
	return b.sendText(chatID, "✅ <b>Task saved</b>\n"+formatTaskLine(task, b.loc))
}

func (b *Bot) handleListen(ctx context.Context, chatID int64) error {
	if err := b.dictation.Start(ctx); err != nil {
		return b.sendText(chatID, fmt.Sprintf("🎙 %s", escape(b.dictation.Err())))
	}
	return b.sendText(chatID, "🎙 Listening… say the task, or /stop.")
}

// onTranscript runs on the dictation goroutine with the final utterance.
func (b *Bot) onTranscript(text string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := b.quickAdd(ctx, b.ownerID, text); err != nil {
		logger.Get().Warnw("voice task", "error", err)
	}
}

func (b *Bot) handleExport(chatID int64) error {
	data, err := b.taskSvc.ExportTasks()
	if err != nil {
		return b.sendText(chatID, "Failed to export tasks")
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: exportFileName, Bytes: data})
	doc.Caption = fmt.Sprintf("%d tasks", len(b.taskSvc.Tasks()))
	_, err = b.client.Send(doc)
	return err
}

func (b *Bot) handleImport(ctx context.Context, msg *tgbotapi.Message) error {
	url, err := b.client.GetFileDirectURL(msg.Document.FileID)
	if err != nil {
		return b.sendText(msg.Chat.ID, importFailedReply)
	}
	data, err := b.download(ctx, url)
	if err != nil {
		logger.Get().Warnw("download import", "error", err)
		return b.sendText(msg.Chat.ID, importFailedReply)
	}
	n, err := b.taskSvc.ImportTasks(ctx, data)
	if err != nil {
		logger.Get().Infow("import rejected", "file", msg.Document.FileName, "error", err)
		if errors.Is(err, transfer.ErrInvalidDocument) {
			return b.sendText(msg.Chat.ID, importFailedReply+": "+escape(err.Error()))
		}
		return b.sendText(msg.Chat.ID, importFailedReply)
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("📥 Imported %d tasks.", n))
}

func (b *Bot) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download: status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxImportBytes))
}

func (b *Bot) sendTaskList(chatID int64, category string) error {
	tasks := b.taskSvc.Tasks()
	title := "📋 <b>Tasks</b>"
	if category != "" {
		c, ok := b.taskSvc.FindCategory(category)
		if !ok {
			return b.sendText(chatID, fmt.Sprintf("No category named %s.", escape(category)))
		}
		tasks = service.Filter(tasks, c.Name, service.StatusAll, "")
		title = fmt.Sprintf("📂 <b>%s</b>", escape(c.Name))
	}
	if len(tasks) == 0 {
		return b.sendText(chatID, "No tasks yet. Just type one, or use /newtask.")
	}
	return b.sendTaskPages(chatID, title, tasks, true)
}

func (b *Bot) sendSearch(chatID int64, query string) error {
	if query == "" {
		return b.sendText(chatID, "Usage: /search &lt;text&gt;")
	}
	found := service.Filter(b.taskSvc.Tasks(), "", service.StatusAll, query)
	if len(found) == 0 {
		return b.sendText(chatID, "Nothing found.")
	}
	return b.sendTaskPages(chatID, "🔎 <b>Results</b>", found, false)
}

func (b *Bot) sendDay(chatID int64, day time.Time) error {
	tasks := service.SortTasks(service.TasksOn(b.taskSvc.Tasks(), day), service.SortByDate)
	if len(tasks) == 0 {
		return b.sendText(chatID, "Nothing due today.")
	}
	return b.sendTaskPages(chatID, fmt.Sprintf("🗓 <b>%s</b>", day.Format("Mon 2006-01-02")), tasks, false)
}

// sendTaskPages sends tasks as one message per page, each with the buttons
// for its own tasks when withButtons is set.
func (b *Bot) sendTaskPages(chatID int64, title string, tasks []model.Task, withButtons bool) error {
	pages := pageTasks(tasks, b.loc)
	for i, page := range pages {
		header := title
		if len(pages) > 1 {
			header = fmt.Sprintf("%s (%d/%d)", title, i+1, len(pages))
		}
		msg := tgbotapi.NewMessage(chatID, header+"\n\n"+formatTaskLines(page, b.loc))
		msg.ParseMode = tgbotapi.ModeHTML
		if withButtons {
			msg.ReplyMarkup = taskButtons(page)
		}
		if _, err := b.client.Send(msg); err != nil {
			return err
		}
	}
	return nil
}

// pageTasks splits tasks into pages of at most maxPageTasks tasks and about
// maxPageRunes characters. A single oversized task still gets its own page.
func pageTasks(tasks []model.Task, loc *time.Location) [][]model.Task {
	var pages [][]model.Task
	var page []model.Task
	size := 0
	for _, task := range tasks {
		n := utf8.RuneCountInString(formatTaskLine(task, loc))
		if len(page) > 0 && (len(page) == maxPageTasks || size+n > maxPageRunes) {
			pages = append(pages, page)
			page, size = nil, 0
		}
		page = append(page, task)
		size += n
	}
	if len(page) > 0 {
		pages = append(pages, page)
	}
	return pages
}

func taskButtons(tasks []model.Task) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(tasks))
	for _, task := range tasks {
		mark := "✅"
		if task.IsDone {
			mark = "↩️"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(mark+" "+shortTitle(task.Title, 24), cbTogglePrefix+task.ID),
			tgbotapi.NewInlineKeyboardButtonData("✏️", cbEditPrefix+task.ID),
			tgbotapi.NewInlineKeyboardButtonData("🗑", cbDeletePrefix+task.ID),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (b *Bot) sendCategories(chatID int64) error {
	categories := b.taskSvc.Categories()
	if len(categories) == 0 {
		return b.sendText(chatID, "No categories. Add one with /addcategory &lt;name&gt;.")
	}
	return b.sendText(chatID, formatCategories(categories))
}

func (b *Bot) handleAddCategory(ctx context.Context, chatID int64, args string) error {
	name, icon, color := parseCategoryArgs(args)
	category, err := b.taskSvc.AddCategory(ctx, name, icon, color)
	if err != nil {
		return b.sendText(chatID, "Usage: /addcategory &lt;name&gt; [#RRGGBB]")
	}
	return b.sendText(chatID, fmt.Sprintf("📂 Category <b>%s</b> added.", escape(category.Name)))
}

func (b *Bot) askDeleteCategory(chatID int64, name string) error {
	category, ok := b.taskSvc.FindCategory(name)
	if !ok {
		return b.sendText(chatID, fmt.Sprintf("No category named %s.", escape(name)))
	}
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"Delete <b>%s</b> and its %d tasks?", escape(category.Name), category.TaskCount))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🗑 Delete", cbDelCatPrefix+category.ID),
	))
	_, err := b.client.Send(msg)
	return err
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if !b.fromOwner(cb.Message) {
		return nil
	}
	if _, err := b.client.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		logger.Get().Debugw("callback ack", "error", err)
	}

	chatID := cb.Message.Chat.ID
	data := cb.Data
	switch {
	case strings.HasPrefix(data, cbTogglePrefix):
		task, err := b.taskSvc.ToggleDone(ctx, strings.TrimPrefix(data, cbTogglePrefix))
		if err != nil {
			return b.sendText(chatID, "Task not found.")
		}
		state := "reopened"
		if task.IsDone {
			state = "done"
		}
		return b.sendText(chatID, fmt.Sprintf("«%s» %s.", escape(task.Title), state))
	case strings.HasPrefix(data, cbDeletePrefix):
		if err := b.taskSvc.DeleteTask(ctx, strings.TrimPrefix(data, cbDeletePrefix)); err != nil {
			return b.sendText(chatID, "Task not found.")
		}
		return b.sendText(chatID, "🗑 Task deleted.")
	case strings.HasPrefix(data, cbDelCatPrefix):
		n, err := b.taskSvc.DeleteCategory(ctx, strings.TrimPrefix(data, cbDelCatPrefix))
		if err != nil {
			return b.sendText(chatID, "Category not found.")
		}
		return b.sendText(chatID, fmt.Sprintf("🗑 Category deleted with %d tasks.", n))
	case strings.HasPrefix(data, cbSuggestPrefix):
		return b.applySuggestion(chatID, strings.TrimPrefix(data, cbSuggestPrefix))
	case strings.HasPrefix(data, cbEditPrefix):
		return b.startEditConversation(chatID, strings.TrimPrefix(data, cbEditPrefix))
	}
	return nil
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.client.Send(msg)
	return err
}

func (b *Bot) sendTextWithRemove(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	_, err := b.client.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.client.Send(msg)
	return err
}

const helpText = "ℹ️ <b>TaskFlow</b>\n" +
	"Type any task and I'll guess its priority, category, date and reminder.\n\n" +
	"• /newtask — add a task step by step\n" +
	"• /tasks [category] — list tasks with done/edit/delete buttons\n" +
	"• /today — tasks due today\n" +
	"• /search &lt;text&gt; — search titles and notes\n" +
	"• /categories — categories with progress\n" +
	"• /addcategory &lt;name&gt; [#RRGGBB] — add a category\n" +
	"• /delcategory &lt;name&gt; — delete a category and its tasks\n" +
	"• /stats — completion statistics\n" +
	"• /predict &lt;title&gt; — show guesses without saving\n" +
	"• /digest — send the daily digest now\n" +
	"• /export — download tasks as JSON (send a JSON file back to import)\n" +
	"• /listen, /stop — voice input\n" +
	"• /cancel — cancel the current step"
