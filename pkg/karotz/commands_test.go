package karotz

import "testing"

func TestCommandTableSuccessRules(t *testing.T) {
	want := map[string]successRule{
		"get_free_space": returnIgnored,
		"sound_list":     returnIgnored,
		"wakeup":         returnIgnored,
		"status":         returnIgnored,
		"tts":            returnTrue,
	}
	seen := make(map[string]bool, len(commandTable))
	for _, cmd := range commandTable {
		if seen[cmd.name] {
			t.Fatalf("duplicate command %q", cmd.name)
		}
		seen[cmd.name] = true

		if _, err := SanitizePath(cmd.path); err != nil {
			t.Fatalf("command %q has invalid path %q: %v", cmd.name, cmd.path, err)
		}
		expected, ok := want[cmd.name]
		if !ok {
			expected = returnZero
		}
		if cmd.rule != expected {
			t.Fatalf("command %q rule = %s, want %s", cmd.name, cmd.rule, expected)
		}
	}
	if len(Commands()) != len(commandTable) {
		t.Fatalf("Commands() length mismatch")
	}
}

func TestRequestKeepsParameterOrder(t *testing.T) {
	base := newRequest(cmdEars).withInt("left", 1)
	a := base.withInt("right", 2)
	b := base.withInt("right", 3)

	if got := a.pathAndQuery(); got != "ears?left=1&right=2" {
		t.Fatalf("a = %s", got)
	}
	if got := b.pathAndQuery(); got != "ears?left=1&right=3" {
		t.Fatalf("b = %s", got)
	}
	if got := newRequest(cmdSleep).pathAndQuery(); got != "sleep" {
		t.Fatalf("sleep = %s", got)
	}
}

func TestResultRules(t *testing.T) {
	ok := &Result{Return: IntOf(0)}
	if !ok.succeeded(returnZero) || ok.succeeded(returnTrue) {
		t.Fatalf("unexpected rule evaluation for return=0")
	}
	tts := &TTSResult{Return: FlagOf(true)}
	if !tts.succeeded(returnTrue) || tts.succeeded(returnZero) {
		t.Fatalf("unexpected rule evaluation for tts")
	}
}
