package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/powerset/pkg/automaton"
	"github.com/matzehuels/powerset/pkg/automaton/transform"
)

var (
	listDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
	listInputStyle = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
)

// =============================================================================
// Walk - following a word through a DFA
// =============================================================================

// walk is the result of running a word through a DFA.
type walk struct {
	symbols  []automaton.Symbol
	states   []automaton.State // visited states, starting with the start state
	accepted bool
	reason   string // why the walk stopped early, empty if it consumed the word
}

// walkDFA follows input through dfa from its start state. The input is split
// into alphabet symbols by longest match. The walk stops at the first symbol
// outside the alphabet or without a transition.
func walkDFA(dfa *automaton.Automaton, input string) walk {
	w := walk{states: []automaton.State{dfa.Start()}}
	symbols, ok := transform.Words(dfa, input)
	if !ok {
		w.reason = "not in alphabet"
		return w
	}
	w.symbols = symbols

	cur := dfa.Start()
	for _, sym := range symbols {
		next, ok := dfa.Next(cur, sym)
		if !ok {
			w.reason = fmt.Sprintf("no transition on %s from q%d", sym, cur)
			return w
		}
		w.states = append(w.states, next)
		cur = next
	}
	w.accepted = dfa.IsAccept(cur)
	return w
}

// path renders the visited states as "q0 -a-> q1 -b-> q2".
func (w walk) path() string {
	var b strings.Builder
	for i, s := range w.states {
		if i > 0 {
			fmt.Fprintf(&b, " -%s-> ", w.symbols[i-1])
		}
		fmt.Fprintf(&b, "q%d", s)
	}
	return b.String()
}

// verdict renders the walk outcome with a status icon.
func (w walk) verdict() string {
	switch {
	case w.accepted:
		return styleIconSuccess.Render(iconSuccess) + " " + StyleSuccess.Render("accepted")
	case w.reason != "":
		return styleIconError.Render(iconError) + " rejected " + StyleDim.Render("("+w.reason+")")
	default:
		return styleIconError.Render(iconError) + " rejected"
	}
}

// =============================================================================
// SimulatorModel - Interactive word simulation
// =============================================================================

// SimulatorModel is the bubbletea model for stepping through a DFA as the
// user types. Enter records the current word and starts a new one.
type SimulatorModel struct {
	DFA     *automaton.Automaton
	Input   string
	History []string
}

// NewSimulatorModel creates a simulator for dfa.
func NewSimulatorModel(dfa *automaton.Automaton) SimulatorModel {
	return SimulatorModel{DFA: dfa}
}

func (m SimulatorModel) Init() tea.Cmd {
	return nil
}

func (m SimulatorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyBackspace:
			if r := []rune(m.Input); len(r) > 0 {
				m.Input = string(r[:len(r)-1])
			}
		case tea.KeyEnter:
			w := walkDFA(m.DFA, m.Input)
			word := m.Input
			if word == "" {
				word = "ε"
			}
			m.History = append(m.History, fmt.Sprintf("%s  %s", word, w.verdict()))
			m.Input = ""
		case tea.KeyRunes:
			m.Input += string(msg.Runes)
		}
	}
	return m, nil
}

func (m SimulatorModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Simulate"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("type symbols  ⌫ undo  ⏎ record  esc quit"))
	b.WriteString("\n\n")

	w := walkDFA(m.DFA, m.Input)
	b.WriteString("  word  " + listInputStyle.Render(m.Input) + "\n")
	b.WriteString("  path  " + StyleHighlight.Render(w.path()) + "\n")
	b.WriteString("        " + w.verdict() + "\n")

	if len(m.History) > 0 {
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render(strings.Repeat("-", 40)))
		b.WriteString("\n")
		for _, h := range m.History {
			b.WriteString("  " + h + "\n")
		}
	}
	return b.String()
}
