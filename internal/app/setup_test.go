package app

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"price-loader/internal/config"
)

func testApp() *App {
	return NewApp(&config.Config{}, zerolog.Nop())
}

func TestConfirmResetAssumeYes(t *testing.T) {
	reset, err := testApp().confirmReset(SetupOptions{AssumeYes: true})
	if err != nil {
		t.Fatalf("assume-yes should not fail: %v", err)
	}
	if !reset {
		t.Fatal("assume-yes should confirm the reset")
	}
}

func TestConfirmResetPrompt(t *testing.T) {
	cases := []struct {
		answer string
		want   bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{" y \n", true},
		{"n\n", false},
		{"N\n", false},
		{"\n", false},
		{"yes\n", false},
	}

	for _, tc := range cases {
		var out bytes.Buffer
		reset, err := testApp().confirmReset(SetupOptions{
			Prompt: strings.NewReader(tc.answer),
			Output: &out,
		})
		if err != nil {
			t.Fatalf("answer %q: %v", tc.answer, err)
		}
		if reset != tc.want {
			t.Errorf("answer %q: got %v, want %v", tc.answer, reset, tc.want)
		}
		if !strings.Contains(out.String(), "Reset the database?") {
			t.Errorf("prompt text missing, got %q", out.String())
		}
	}
}

func TestConfirmResetNoPromptDefaultsToNo(t *testing.T) {
	reset, err := testApp().confirmReset(SetupOptions{})
	if err != nil {
		t.Fatalf("missing prompt should not fail: %v", err)
	}
	if reset {
		t.Fatal("without a prompt the destructive path must stay off")
	}
}
