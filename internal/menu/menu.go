// Package menu implements the interactive numbered task menu.
//
// The menu reads one line per answer, calls exactly one store operation for
// each choice, and reports the outcome in the configured language. Bad input
// is reported and the menu is shown again; only a failed save ends the loop
// with an error.
package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nibzard/tasks-go/internal/messages"
	"github.com/nibzard/tasks-go/internal/store"
	"github.com/nibzard/tasks-go/internal/task"
)

// Choice is a menu entry number.
type Choice int

const (
	ChoiceAdd Choice = iota + 1
	ChoiceList
	ChoiceEdit
	ChoiceDelete
	ChoiceComplete
	ChoiceExit
)

// TaskStore is the set of store operations the menu drives.
type TaskStore interface {
	List() []task.Task
	Add(title, description string) (task.Task, error)
	Update(id int, title, description string) error
	Delete(id int) error
	MarkComplete(id int) error
}

const maxLineSize = 1 << 20

// errInputClosed ends the loop like the exit choice.
var errInputClosed = errors.New("input closed")

// Menu is the interactive loop.
type Menu struct {
	store TaskStore
	in    *bufio.Scanner
	out   io.Writer
	msg   *messages.Printer

	lines chan inputLine
	done  chan struct{}
}

type inputLine struct {
	text string
	err  error
}

// New returns a menu reading answers from in and writing to out.
func New(s TaskStore, in io.Reader, out io.Writer, msg *messages.Printer) *Menu {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)
	if msg == nil {
		msg = messages.New("")
	}
	return &Menu{
		store: s,
		in:    scanner,
		out:   out,
		msg:   msg,
	}
}

// Run shows the menu until the user exits, input ends, ctx is cancelled,
// or a save fails.
func (m *Menu) Run(ctx context.Context) error {
	m.startReader()
	defer close(m.done)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		m.printMenu()
		line, err := m.readLine(ctx, messages.MenuPrompt)
		if err != nil {
			return m.finish(err)
		}

		choice, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			m.println(messages.MenuInvalidChoice)
			continue
		}

		switch Choice(choice) {
		case ChoiceAdd:
			err = m.add(ctx)
		case ChoiceList:
			m.list()
		case ChoiceEdit:
			err = m.edit(ctx)
		case ChoiceDelete:
			err = m.remove(ctx)
		case ChoiceComplete:
			err = m.complete(ctx)
		case ChoiceExit:
			m.println(messages.MenuGoodbye)
			return nil
		default:
			m.println(messages.MenuInvalidChoice)
		}
		if err != nil {
			return m.finish(err)
		}
	}
}

// finish turns end of input into a normal exit.
func (m *Menu) finish(err error) error {
	if errors.Is(err, errInputClosed) {
		m.println(messages.MenuGoodbye)
		return nil
	}
	return err
}

func (m *Menu) printMenu() {
	fmt.Fprintln(m.out)
	for _, key := range []string{
		messages.MenuTitle,
		messages.MenuAdd,
		messages.MenuList,
		messages.MenuEdit,
		messages.MenuDelete,
		messages.MenuComplete,
		messages.MenuExit,
	} {
		m.println(key)
	}
}

func (m *Menu) add(ctx context.Context) error {
	title, err := m.readLine(ctx, messages.PromptTitle)
	if err != nil {
		return err
	}
	description, err := m.readLine(ctx, messages.PromptDescription)
	if err != nil {
		return err
	}

	t, err := m.store.Add(strings.TrimSpace(title), strings.TrimSpace(description))
	if errors.Is(err, store.ErrIDsExhausted) {
		m.println(messages.IDsExhausted)
		return nil
	}
	if err != nil {
		m.println(messages.SaveFailed, err)
		return err
	}
	m.println(messages.TaskAdded, t.Title)
	return nil
}

func (m *Menu) list() {
	fmt.Fprintln(m.out)
	m.println(messages.ListHeader)
	WriteList(m.out, m.msg, m.store.List())
}

func (m *Menu) edit(ctx context.Context) error {
	id, ok, err := m.readID(ctx, messages.PromptEditID)
	if err != nil || !ok {
		return err
	}
	title, err := m.readLine(ctx, messages.PromptNewTitle)
	if err != nil {
		return err
	}
	description, err := m.readLine(ctx, messages.PromptNewDescription)
	if err != nil {
		return err
	}

	err = m.store.Update(id, strings.TrimSpace(title), strings.TrimSpace(description))
	return m.report(id, err, messages.TaskUpdated)
}

func (m *Menu) remove(ctx context.Context) error {
	id, ok, err := m.readID(ctx, messages.PromptDeleteID)
	if err != nil || !ok {
		return err
	}
	return m.report(id, m.store.Delete(id), messages.TaskDeleted)
}

func (m *Menu) complete(ctx context.Context) error {
	id, ok, err := m.readID(ctx, messages.PromptCompleteID)
	if err != nil || !ok {
		return err
	}
	return m.report(id, m.store.MarkComplete(id), messages.TaskCompleted)
}

// report prints the outcome of an id-based operation. Only save failures
// are returned.
func (m *Menu) report(id int, err error, successKey string) error {
	return Report(m.out, m.msg, id, err, successKey)
}

// readID prompts for a task id. ok is false when the answer is not a number.
func (m *Menu) readID(ctx context.Context, promptKey string) (id int, ok bool, err error) {
	line, err := m.readLine(ctx, promptKey)
	if err != nil {
		return 0, false, err
	}
	id, convErr := strconv.Atoi(strings.TrimSpace(line))
	if convErr != nil {
		m.println(messages.InvalidID, strings.TrimSpace(line))
		return 0, false, nil
	}
	return id, true, nil
}

// startReader scans input on its own goroutine so a blocked read does not
// hold up cancellation.
func (m *Menu) startReader() {
	m.lines = make(chan inputLine)
	m.done = make(chan struct{})
	go func() {
		defer close(m.lines)
		for m.in.Scan() {
			select {
			case m.lines <- inputLine{text: m.in.Text()}:
			case <-m.done:
				return
			}
		}
		if err := m.in.Err(); err != nil {
			select {
			case m.lines <- inputLine{err: fmt.Errorf("read input: %w", err)}:
			case <-m.done:
			}
		}
	}()
}

func (m *Menu) readLine(ctx context.Context, promptKey string) (string, error) {
	fmt.Fprint(m.out, m.msg.Sprintf(promptKey))
	select {
	case <-ctx.Done():
		fmt.Fprintln(m.out)
		return "", ctx.Err()
	case l, ok := <-m.lines:
		if !ok {
			fmt.Fprintln(m.out)
			return "", errInputClosed
		}
		if l.err != nil {
			fmt.Fprintln(m.out)
			return "", l.err
		}
		return l.text, nil
	}
}

func (m *Menu) println(key string, args ...any) {
	fmt.Fprintln(m.out, m.msg.Sprintf(key, args...))
}

// WriteList prints tasks one per line, or the empty-list notice.
func WriteList(w io.Writer, msg *messages.Printer, tasks []task.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, msg.Sprintf(messages.ListEmpty))
		return
	}
	for _, t := range tasks {
		fmt.Fprintln(w, t.Render())
	}
}

// Report prints the outcome of an id-based store operation and returns err
// unless it is store.ErrNotFound.
func Report(w io.Writer, msg *messages.Printer, id int, err error, successKey string) error {
	switch {
	case err == nil:
		fmt.Fprintln(w, msg.Sprintf(successKey, strconv.Itoa(id)))
		return nil
	case errors.Is(err, store.ErrNotFound):
		fmt.Fprintln(w, msg.Sprintf(messages.TaskNotFound, strconv.Itoa(id)))
		return nil
	default:
		fmt.Fprintln(w, msg.Sprintf(messages.SaveFailed, err))
		return err
	}
}
