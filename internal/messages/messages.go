// Package messages holds the localized user-facing text.
package messages

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	MenuTitle         = "menu.title"
	MenuAdd           = "menu.add"
	MenuList          = "menu.list"
	MenuEdit          = "menu.edit"
	MenuDelete        = "menu.delete"
	MenuComplete      = "menu.complete"
	MenuExit          = "menu.exit"
	MenuPrompt        = "menu.prompt"
	MenuInvalidChoice = "menu.invalid_choice"
	MenuGoodbye       = "menu.goodbye"

	PromptTitle          = "prompt.title"
	PromptDescription    = "prompt.description"
	PromptEditID         = "prompt.edit_id"
	PromptNewTitle       = "prompt.new_title"
	PromptNewDescription = "prompt.new_description"
	PromptDeleteID       = "prompt.delete_id"
	PromptCompleteID     = "prompt.complete_id"

	ListHeader = "list.header"
	ListEmpty  = "list.empty"

	TaskAdded     = "task.added"
	TaskUpdated   = "task.updated"
	TaskDeleted   = "task.deleted"
	TaskCompleted = "task.completed"
	TaskNotFound  = "task.not_found"
	InvalidID     = "task.invalid_id"
	SaveFailed    = "task.save_failed"
	IDsExhausted  = "task.ids_exhausted"

	ValidateOK      = "validate.ok"
	ValidateMissing = "validate.missing"
	ValidateFailed  = "validate.failed"

	TUITitle       = "tui.title"
	TUIReloaded    = "tui.reloaded"
	TUIKeyUp       = "tui.key.up"
	TUIKeyDown     = "tui.key.down"
	TUIKeyComplete = "tui.key.complete"
	TUIKeyDelete   = "tui.key.delete"
	TUIKeyReload   = "tui.key.reload"
	TUIKeyQuit     = "tui.key.quit"
)

// Supported languages. The first entry is the fallback.
var Supported = []language.Tag{language.English, language.Ukrainian}

var entries = map[string]map[language.Tag]string{
	MenuTitle:         {language.English: "Task menu:", language.Ukrainian: "Меню завдань:"},
	MenuAdd:           {language.English: "1. Add task", language.Ukrainian: "1. Додати задачу"},
	MenuList:          {language.English: "2. List tasks", language.Ukrainian: "2. Переглянути завдання"},
	MenuEdit:          {language.English: "3. Edit task", language.Ukrainian: "3. Редагувати завдання"},
	MenuDelete:        {language.English: "4. Delete task", language.Ukrainian: "4. Видалити завдання"},
	MenuComplete:      {language.English: "5. Mark task as done", language.Ukrainian: "5. Відзначити завдання як виконане"},
	MenuExit:          {language.English: "6. Exit", language.Ukrainian: "6. Вийти"},
	MenuPrompt:        {language.English: "Choose an option: ", language.Ukrainian: "Виберіть опцію: "},
	MenuInvalidChoice: {language.English: "Invalid choice. Try again.", language.Ukrainian: "Неправильний вибір. Спробуйте знову."},
	MenuGoodbye:       {language.English: "Goodbye!", language.Ukrainian: "До побачення!"},

	PromptTitle:          {language.English: "Enter task title: ", language.Ukrainian: "Введіть назву задачі: "},
	PromptDescription:    {language.English: "Enter task description: ", language.Ukrainian: "Введіть опис задачі: "},
	PromptEditID:         {language.English: "Enter the ID of the task to edit: ", language.Ukrainian: "Введіть ID задачі для редагування: "},
	PromptNewTitle:       {language.English: "Enter new task title: ", language.Ukrainian: "Введіть нову назву задачі: "},
	PromptNewDescription: {language.English: "Enter new task description: ", language.Ukrainian: "Введіть новий опис завдання: "},
	PromptDeleteID:       {language.English: "Enter the ID of the task to delete: ", language.Ukrainian: "Введіть ID завдання для видалення: "},
	PromptCompleteID:     {language.English: "Enter the ID of the task to mark as done: ", language.Ukrainian: "Введіть ID завдання для позначки як виконаного: "},

	ListHeader: {language.English: "Tasks:", language.Ukrainian: "Список завдань:"},
	ListEmpty:  {language.English: "No tasks to show.", language.Ukrainian: "Немає завдань для відображення."},

	TaskAdded:     {language.English: "Task '%s' added!", language.Ukrainian: "Задача '%s' успішно додано!"},
	TaskUpdated:   {language.English: "Task #%s updated!", language.Ukrainian: "Задача #%s успішно оновлено!"},
	TaskDeleted:   {language.English: "Task #%s deleted!", language.Ukrainian: "Задача #%s успішно видалена!"},
	TaskCompleted: {language.English: "Task #%s marked as done!", language.Ukrainian: "Задача #%s відзначена як виконана!"},
	TaskNotFound:  {language.English: "Task with ID #%s not found.", language.Ukrainian: "Задача з ID #%s не знайдена."},
	InvalidID:     {language.English: "Invalid ID %q: enter a number.", language.Ukrainian: "Неправильний ID %q: введіть число."},
	SaveFailed:    {language.English: "Could not save tasks: %v", language.Ukrainian: "Не вдалося зберегти завдання: %v"},
	IDsExhausted:  {language.English: "Could not add task: no task ids left.", language.Ukrainian: "Не вдалося додати задачу: вільних ID немає."},

	ValidateOK:      {language.English: "%s: %d task(s), valid", language.Ukrainian: "%s: завдань %d, файл коректний"},
	ValidateMissing: {language.English: "%s: file does not exist (empty task list)", language.Ukrainian: "%s: файл не існує (порожній список)"},
	ValidateFailed:  {language.English: "%s: invalid", language.Ukrainian: "%s: файл некоректний"},

	TUITitle:       {language.English: "Tasks", language.Ukrainian: "Завдання"},
	TUIReloaded:    {language.English: "Reloaded.", language.Ukrainian: "Оновлено."},
	TUIKeyUp:       {language.English: "up", language.Ukrainian: "вгору"},
	TUIKeyDown:     {language.English: "down", language.Ukrainian: "вниз"},
	TUIKeyComplete: {language.English: "done", language.Ukrainian: "виконано"},
	TUIKeyDelete:   {language.English: "delete", language.Ukrainian: "видалити"},
	TUIKeyReload:   {language.English: "reload", language.Ukrainian: "оновити"},
	TUIKeyQuit:     {language.English: "quit", language.Ukrainian: "вийти"},
}

var cat = buildCatalog()

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(Supported[0]))
	for key, byLang := range entries {
		for tag, msg := range byLang {
			// Keys and texts are static; SetString only fails on an invalid tag.
			_ = b.SetString(tag, key, msg)
		}
	}
	return b
}

var matcher = language.NewMatcher(Supported)

// Printer formats localized messages.
type Printer struct {
	tag language.Tag
	p   *message.Printer
}

// New returns a printer for lang (a BCP 47 tag such as "en" or "uk").
// Unknown or unsupported languages fall back to English.
func New(lang string) *Printer {
	tag := Match(lang)
	return &Printer{
		tag: tag,
		p:   message.NewPrinter(tag, message.Catalog(cat)),
	}
}

// Match returns the supported language closest to lang.
func Match(lang string) language.Tag {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return Supported[0]
	}
	requested, err := language.Parse(lang)
	if err != nil {
		return Supported[0]
	}
	_, idx, conf := matcher.Match(requested)
	if conf == language.No {
		return Supported[0]
	}
	return Supported[idx]
}

// Language returns the language the printer renders.
func (p *Printer) Language() language.Tag {
	return p.tag
}

// Sprintf formats the message stored under key.
func (p *Printer) Sprintf(key string, args ...any) string {
	return p.p.Sprintf(key, args...)
}
