package transform_test

import (
	"fmt"

	"github.com/matzehuels/powerset/pkg/automaton"
	"github.com/matzehuels/powerset/pkg/automaton/transform"
)

func Example() {
	nfa, _, err := automaton.Validate(automaton.Def{
		States:   []int{0, 1, 2},
		Alphabet: []string{"a", "b"},
		Transitions: []automaton.DefTransition{
			{From: 0, Symbol: automaton.Sym("a"), To: automaton.Targets{0, 1}},
			{From: 0, Symbol: automaton.Sym("b"), To: automaton.Targets{0}},
			{From: 1, Symbol: automaton.Sym("b"), To: automaton.Targets{2}},
		},
		Start:  0,
		Accept: []int{2},
	})
	if err != nil {
		panic(err)
	}

	dfa := transform.Convert(nfa)
	fmt.Println(dfa)
	for _, s := range dfa.States() {
		fmt.Printf("%d = %s\n", s, automaton.FormatSet(dfa.Origin(s)))
	}

	min := transform.Minimize(dfa)
	fmt.Println(min.NumStates())
	// Output:
	// states={0,1,2} start=0 accept={2} 0-a->{1} 0-b->{0} 1-a->{1} 1-b->{2} 2-a->{1} 2-b->{0}
	// 0 = {0}
	// 1 = {0,1}
	// 2 = {0,2}
	// 3
}

func ExampleClosure() {
	nfa, _, _ := automaton.Validate(automaton.Def{
		States: []int{0, 1, 2},
		Transitions: []automaton.DefTransition{
			{From: 0, To: automaton.Targets{1}},
			{From: 1, To: automaton.Targets{2}},
			{From: 2, To: automaton.Targets{0}},
		},
		Start: 0,
	})
	fmt.Println(transform.Closure(nfa, []automaton.State{1}))
	// Output: [0 1 2]
}
