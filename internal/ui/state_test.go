package ui

import (
	"errors"
	"testing"
)

func TestParsePage(t *testing.T) {
	for _, p := range Pages {
		got, ok := ParsePage(p.String())
		if !ok || got != p {
			t.Fatalf("ParsePage(%q) = %v,%v", p.String(), got, ok)
		}
	}
	if got, ok := ParsePage(" HISTORY "); !ok || got != PageHistory {
		t.Fatalf("case-insensitive parse failed: %v %v", got, ok)
	}
	if got, ok := ParsePage("settings"); ok || got != PageChat {
		t.Fatalf("unknown page should fall back to chat: %v %v", got, ok)
	}
}

func TestViewStateTransitions(t *testing.T) {
	base := NewViewState("Bot")
	if base.Page != PageChat || len(base.Pages) != 3 {
		t.Fatalf("unexpected initial state: %+v", base)
	}
	next := base.WithPage(PageData).WithFlash("saved")
	if next.Page != PageData || next.Flash != "saved" {
		t.Fatalf("transition failed: %+v", next)
	}
	if base.Page != PageChat || base.Flash != "" {
		t.Fatalf("transitions must not mutate the original: %+v", base)
	}
	failed := base.WithModel("gpt2.gguf", errors.New("no such file"))
	if failed.ChatAvailable || failed.LoadError != "no such file" {
		t.Fatalf("load error not reflected: %+v", failed)
	}
	ok := failed.WithModel("gpt2.gguf", nil)
	if !ok.ChatAvailable || ok.LoadError != "" {
		t.Fatalf("successful load not reflected: %+v", ok)
	}
}
