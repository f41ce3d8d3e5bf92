package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/powerset/pkg/errors"
)

const endsWithAB = `{
  "states": [0, 1, 2],
  "alphabet": ["a", "b"],
  "transitions": [[0, "a", [0, 1]], [0, "b", 0], [1, "b", 2]],
  "start": 0,
  "accept": [2]
}`

// isolate points config and cache lookups at fresh temp directories.
func isolate(t *testing.T) (configHome, cacheHome string) {
	t.Helper()
	configHome, cacheHome = t.TempDir(), t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	t.Setenv("XDG_CACHE_HOME", cacheHome)
	return configHome, cacheHome
}

// execute runs the root command with args and stdin and returns stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var logs, out bytes.Buffer
	root := New(&logs, LogInfo).RootCommand()
	root.SetOut(&out)
	root.SetErr(&logs)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRootCommand_Subcommands(t *testing.T) {
	root := New(os.Stderr, LogInfo).RootCommand()
	want := []string{"convert", "minimize", "render", "run", "serve", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestConvertCommand_Stdin(t *testing.T) {
	isolate(t)
	out, err := execute(t, endsWithAB, "convert", "-", "--no-cache")
	if err != nil {
		t.Fatalf("convert error: %v", err)
	}
	for _, want := range []string{`"states": [0,1,2]`, `[1,"b",2]`, `[2,"b",0]`, `"accept": [2]`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}
}

func TestConvertCommand_YAMLOutput(t *testing.T) {
	isolate(t)
	out, err := execute(t, endsWithAB, "convert", "-", "-f", "yaml", "--no-cache")
	if err != nil {
		t.Fatalf("convert error: %v", err)
	}
	if !strings.Contains(out, "- from: 1\n") || !strings.Contains(out, "to: 2") {
		t.Errorf("unexpected YAML output:\n%s", out)
	}
}

func TestConvertCommand_OutputFile(t *testing.T) {
	isolate(t)
	input := writeInput(t, "nfa.json", endsWithAB)
	output := filepath.Join(t.TempDir(), "dfa.toml")

	out, err := execute(t, "", "convert", input, "-o", output)
	if err != nil {
		t.Fatalf("convert error: %v", err)
	}
	if !strings.Contains(out, "Converted 3 states") || !strings.Contains(out, output) {
		t.Errorf("unexpected summary:\n%s", out)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), "[[transitions]]") {
		t.Errorf("output is not TOML:\n%s", data)
	}
}

func TestMinimizeCommand_Table(t *testing.T) {
	_, cacheHome := isolate(t)
	input := writeInput(t, "nfa.json", endsWithAB)

	out, err := execute(t, "", "minimize", input, "--table")
	if err != nil {
		t.Fatalf("minimize error: %v", err)
	}
	// Minimal states list the DFA states they merge.
	for _, want := range []string{"state", "origin", "{2}", "fresh"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}

	out, err = execute(t, "", "minimize", input, "--table")
	if err != nil {
		t.Fatalf("minimize error: %v", err)
	}
	if !strings.Contains(out, "cached") {
		t.Errorf("second run should be cached:\n%s", out)
	}

	out, err = execute(t, "", "cache", "path")
	if err != nil {
		t.Fatalf("cache path error: %v", err)
	}
	if got, want := strings.TrimSpace(out), filepath.Join(cacheHome, appName); got != want {
		t.Errorf("cache path = %q, want %q", got, want)
	}

	out, err = execute(t, "", "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear error: %v", err)
	}
	if !strings.Contains(out, "Cleared 1 cached entries") {
		t.Errorf("unexpected clear output:\n%s", out)
	}
}

func TestCacheClear_Empty(t *testing.T) {
	isolate(t)
	out, err := execute(t, "", "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear error: %v", err)
	}
	if !strings.Contains(out, "Cache is empty") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestConvertCommand_ConfigLimit(t *testing.T) {
	configHome, _ := isolate(t)
	dir := filepath.Join(configHome, appName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[limits]\nmax_states = 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := execute(t, endsWithAB, "convert", "-")
	if !errors.Is(err, errors.ErrCodeTooLarge) {
		t.Errorf("convert error = %v, want %s", err, errors.ErrCodeTooLarge)
	}

	// The flag wins over the config file.
	if _, err := execute(t, endsWithAB, "convert", "-", "--max-states", "3"); err != nil {
		t.Errorf("convert with --max-states error: %v", err)
	}
}

func TestConvertCommand_Errors(t *testing.T) {
	isolate(t)
	tests := []struct {
		name  string
		stdin string
		args  []string
		code  errors.Code
	}{
		{"missing file", "", []string{"convert", "nope.json"}, errors.ErrCodeFileNotFound},
		{"bad json", "{", []string{"convert", "-"}, errors.ErrCodeInvalidFormat},
		{"no states", `{"states": [], "start": 0}`, []string{"convert", "-"}, errors.ErrCodeInvalidAutomaton},
		{"bad format", endsWithAB, []string{"convert", "-", "-f", "xml"}, errors.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.stdin, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestRenderCommand_Stdout(t *testing.T) {
	isolate(t)
	out, err := execute(t, endsWithAB, "render", "-", "-f", "dot", "-o", "-", "--origins")
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if !strings.HasPrefix(out, "digraph G {") {
		t.Errorf("expected DOT output, got:\n%s", out)
	}
	if !strings.Contains(out, `label="q2\n{0,2}"`) {
		t.Errorf("DOT missing origin label:\n%s", out)
	}
}

func TestRenderCommand_File(t *testing.T) {
	isolate(t)
	input := writeInput(t, "nfa.json", endsWithAB)

	out, err := execute(t, "", "render", input, "-f", "dot", "--stage", "nfa")
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	path := strings.TrimSuffix(input, ".json") + ".dot"
	if !strings.Contains(out, path) {
		t.Errorf("output should list %s:\n%s", path, out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	// The NFA keeps its nondeterministic edge from q0.
	if !strings.Contains(string(data), `"q0" -> "q1" [label="a"]`) {
		t.Errorf("unexpected DOT:\n%s", data)
	}
}

func TestRenderCommand_Errors(t *testing.T) {
	isolate(t)
	tests := [][]string{
		{"render", "-", "--stage", "nfa2"},
		{"render", "-", "-f", "pdf"},
		{"render", "-", "-f", "dot,svg", "-o", "-"},
	}
	for _, args := range tests {
		if _, err := execute(t, endsWithAB, args...); err == nil {
			t.Errorf("%v should fail", args)
		}
	}
}

func TestRunCommand(t *testing.T) {
	isolate(t)
	out, err := execute(t, endsWithAB, "run", "-", "ab", "aab", "ba", "", "abc")
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want 5:\n%s", len(lines), out)
	}

	tests := []struct {
		line int
		want []string
	}{
		{0, []string{"accepted", "ab", "q0 -a-> q1 -b-> q2"}},
		{1, []string{"accepted", "aab", "q0 -a-> q1 -a-> q1 -b-> q2"}},
		{2, []string{"rejected", "ba", "q0 -b-> q0 -a-> q1"}},
		{3, []string{"rejected", "ε", "q0"}},
		{4, []string{"rejected", "not in alphabet"}},
	}
	for _, tt := range tests {
		for _, want := range tt.want {
			if !strings.Contains(lines[tt.line], want) {
				t.Errorf("line %d = %q, missing %q", tt.line, lines[tt.line], want)
			}
		}
	}
}

func TestRunCommand_InteractiveRejectsWords(t *testing.T) {
	isolate(t)
	if _, err := execute(t, endsWithAB, "run", "-", "--interactive", "ab"); err == nil {
		t.Error("run --interactive with words should fail")
	}
}

func TestCompletionCommand(t *testing.T) {
	isolate(t)
	out, err := execute(t, "", "completion", "bash")
	if err != nil {
		t.Fatalf("completion error: %v", err)
	}
	if !strings.Contains(out, "powerset") {
		t.Error("bash completion should mention powerset")
	}
}
