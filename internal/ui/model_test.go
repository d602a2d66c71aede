package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ppiankov/intentbot/internal/watch"
)

// Compile-time check: Model must satisfy tea.Model.
var _ tea.Model = Model{}

func echoHandler(text string) (string, error) {
	if text == "boom" {
		return "", errors.New("Error al procesar tu mensaje: prediction failed")
	}
	return "re: " + text, nil
}

func testOptions() Options {
	return Options{
		Greeting:    "¡Hola! Soy un chatbot.",
		Farewell:    "Gracias por conversar. ¡Hasta luego!",
		ExitKeyword: "exit",
	}
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	result, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return result.(Model)
}

// send types text, presses enter and runs the resulting command through Update
func send(t *testing.T, m Model, text string) Model {
	t.Helper()
	m = typeText(t, m, text)
	result, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = result.(Model)
	if cmd != nil {
		result, _ = m.Update(cmd())
		m = result.(Model)
	}
	return m
}

func TestModel_Init(t *testing.T) {
	m := New(echoHandler, testOptions())
	if cmd := m.Init(); cmd != nil {
		t.Errorf("Init() returned non-nil cmd without events")
	}
	if !strings.Contains(m.View(), "¡Hola! Soy un chatbot.") {
		t.Error("View() missing greeting")
	}
}

func TestModel_SubmitShowsReply(t *testing.T) {
	m := New(echoHandler, testOptions())
	m = send(t, m, "  hola  ")

	view := m.View()
	for _, want := range []string{userLabel, "hola", botLabel, "re: hola"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
	if len(m.input) != 0 {
		t.Errorf("input not cleared: %q", string(m.input))
	}
	if m.busy {
		t.Error("still busy after reply")
	}
}

func TestModel_EmptySubmitIgnored(t *testing.T) {
	m := New(echoHandler, testOptions())
	m = typeText(t, m, "   ")
	result, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = result.(Model)

	if cmd != nil {
		t.Error("blank input produced a command")
	}
	if len(m.history) != 1 {
		t.Errorf("history = %d entries, want greeting only", len(m.history))
	}
}

func TestModel_ErrorsGoToErrorArea(t *testing.T) {
	m := New(echoHandler, testOptions())
	m = send(t, m, "boom")

	if len(m.errors) != 1 {
		t.Fatalf("errors = %d, want 1", len(m.errors))
	}
	if !strings.Contains(m.View(), "prediction failed") {
		t.Error("View() missing error text")
	}
	if m.history[len(m.history)-1].kind != entryUser {
		t.Error("error must not be added as a bot reply")
	}

	// The conversation continues after an error
	m = send(t, m, "hola")
	if !strings.Contains(m.View(), "re: hola") {
		t.Error("reply after error missing")
	}
}

func TestModel_ExitEndsConversation(t *testing.T) {
	for _, word := range []string{"exit", "EXIT", " Exit "} {
		t.Run(word, func(t *testing.T) {
			m := New(echoHandler, testOptions())
			m = send(t, m, word)

			if !m.Ended() {
				t.Fatal("conversation not ended")
			}
			if !strings.Contains(m.View(), "¡Hasta luego!") {
				t.Error("View() missing farewell")
			}

			before := len(m.history)
			m = send(t, m, "hola")
			if len(m.history) != before {
				t.Error("input accepted after exit")
			}
		})
	}
}

func TestModel_QuitKeys(t *testing.T) {
	for _, key := range []tea.KeyType{tea.KeyCtrlC, tea.KeyEsc} {
		m := New(echoHandler, testOptions())
		_, cmd := m.Update(tea.KeyMsg{Type: key})
		if cmd == nil {
			t.Fatalf("%v: cmd = nil; want tea.Quit", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%v: cmd() is not tea.QuitMsg", key)
		}
	}

	// Quit still works after the conversation ended
	m := send(t, New(echoHandler, testOptions()), "exit")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("esc after exit did not quit")
	}
}

func TestModel_Editing(t *testing.T) {
	m := New(echoHandler, testOptions())
	m = typeText(t, m, "holaa")

	result, _ := m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m = result.(Model)
	result, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m = result.(Model)
	m = typeText(t, m, "mundo")

	if got := string(m.input); got != "hola mundo" {
		t.Errorf("input = %q, want %q", got, "hola mundo")
	}

	result, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlU})
	m = result.(Model)
	if len(m.input) != 0 {
		t.Error("ctrl+u did not clear input")
	}
}

func TestModel_OneMessageInFlight(t *testing.T) {
	m := New(echoHandler, testOptions())
	m = typeText(t, m, "hola")
	result, first := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = result.(Model)

	m = typeText(t, m, "adios")
	result, second := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = result.(Model)

	if first == nil || second != nil {
		t.Fatal("second submit must wait for the first reply")
	}
	if string(m.input) != "adios" {
		t.Errorf("pending input lost: %q", string(m.input))
	}
}

func TestModel_WarningsAndBatchEvents(t *testing.T) {
	events := make(chan watch.Event, 1)
	opts := testOptions()
	opts.Warnings = []string{"The training file data/intents_train.json is invalid"}
	opts.Events = events

	m := New(echoHandler, opts)
	// Wide enough that neither note wraps
	sized, _ := m.Update(tea.WindowSizeMsg{Width: 200, Height: 40})
	m = sized.(Model)
	if !strings.Contains(m.View(), "intents_train.json is invalid") {
		t.Error("View() missing warning")
	}

	cmd := m.Init()
	if cmd == nil {
		t.Fatal("Init() = nil with events channel")
	}
	events <- watch.Event{Path: "data/intents_train.json", Operation: watch.Created}
	result, next := m.Update(cmd())
	m = result.(Model)

	if !strings.Contains(m.View(), "merged on next start") {
		t.Error("View() missing batch note")
	}
	if next == nil {
		t.Error("watcher not re-armed after event")
	}

	close(events)
	if msg := next(); msg != nil {
		t.Errorf("closed channel produced %T", msg)
	}
}

func TestModel_ViewFitsHeight(t *testing.T) {
	m := New(echoHandler, testOptions())
	result, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 6})
	m = result.(Model)
	for i := 0; i < 5; i++ {
		m = send(t, m, "hola")
	}

	if lines := strings.Count(m.View(), "\n") + 1; lines > 6 {
		t.Errorf("View() has %d lines, want at most 6", lines)
	}
}
