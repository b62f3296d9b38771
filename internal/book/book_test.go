package book

import (
	"strings"
	"testing"

	"github.com/tapestry-labs/tapestry/internal/memoir"
)

func testData() ([]memoir.Chapter, []memoir.Memory) {
	memories := []memoir.Memory{
		{ID: "m1", Prompt: "p1", Response: "raw response one", AIDraft: "polished passage one", Reflection: "it mattered"},
		{ID: "m2", Prompt: "p2", Response: "raw response two"},
		{ID: "m3", Prompt: "p3", Response: "raw response three"},
	}
	chapters := []memoir.Chapter{
		{
			ID: "c2", Title: "Later", Order: 1,
			MemoryIDs:   []string{"m3"},
			Transitions: map[string]string{},
		},
		{
			ID: "c1", Title: "Beginnings", Order: 0,
			Introduction: "an introduction",
			MemoryIDs:    []string{"m1", "m2", "gone"},
			Transitions:  map[string]string{"m1": "and then"},
		},
	}
	return chapters, memories
}

func TestRenderOrdersChaptersAndPrefersDrafts(t *testing.T) {
	chapters, memories := testData()
	b := Render(IntentMakeSense, chapters, memories)

	if b.Title != "Making Sense of My Life" {
		t.Fatalf("Title = %q", b.Title)
	}
	if len(b.Chapters) != 2 {
		t.Fatalf("len(Chapters) = %d, want 2", len(b.Chapters))
	}
	if b.Chapters[0].Title != "Beginnings" || b.Chapters[0].Number != 1 {
		t.Fatalf("first chapter = %q #%d, want Beginnings #1", b.Chapters[0].Title, b.Chapters[0].Number)
	}

	entries := b.Chapters[0].Entries
	if len(entries) != 2 {
		t.Fatalf("len(Entries) = %d, want 2 (dangling id skipped)", len(entries))
	}
	if entries[0].Body != "polished passage one" {
		t.Fatalf("Body = %q, want the AI draft", entries[0].Body)
	}
	if entries[1].Body != "raw response two" {
		t.Fatalf("Body = %q, want the raw response when no draft", entries[1].Body)
	}
	if entries[0].Transition != "and then" {
		t.Fatalf("Transition = %q, want keyed by the first memory", entries[0].Transition)
	}
}

func TestIntentTitles(t *testing.T) {
	cases := []struct {
		intent Intent
		want   string
	}{
		{IntentMakeSense, "Making Sense of My Life"},
		{IntentLeaveLegacy, "Stories for Those I Love"},
		{IntentExploreMemories, "A Journey Through Memory"},
		{Intent(""), "My Memoir"},
		{Intent("unknown"), "My Memoir"},
	}
	for _, tc := range cases {
		if got := tc.intent.Title(); got != tc.want {
			t.Fatalf("Title(%q) = %q, want %q", tc.intent, got, tc.want)
		}
	}
}

func TestExportLayout(t *testing.T) {
	chapters, memories := testData()
	text := Export(Render(IntentLeaveLegacy, chapters, memories))

	if !strings.HasPrefix(text, "Stories for Those I Love\n\n") {
		t.Fatalf("export should open with the book title, got %q", text[:40])
	}
	if !strings.Contains(text, "Chapter 1: Beginnings\n") {
		t.Fatalf("missing chapter header:\n%s", text)
	}
	underline := strings.Repeat("=", len("Beginnings")+15)
	if !strings.Contains(text, underline) {
		t.Fatalf("missing header underline %q", underline)
	}
	if !strings.Contains(text, "Reflection: it mattered") {
		t.Fatalf("missing prefixed reflection:\n%s", text)
	}
	if strings.Contains(text, "raw response one") {
		t.Fatalf("export used the raw response where a draft exists")
	}

	// Chapter order in the flat text follows the order index.
	if strings.Index(text, "Chapter 1: Beginnings") > strings.Index(text, "Chapter 2: Later") {
		t.Fatalf("chapters exported out of order")
	}
}

func TestExportFilename(t *testing.T) {
	b := Book{Title: "A Journey Through Memory"}
	if got := ExportFilename(b); got != "A_Journey_Through_Memory.txt" {
		t.Fatalf("ExportFilename() = %q", got)
	}
	b = Book{Title: "  My   Memoir  "}
	if got := ExportFilename(b); got != "My_Memoir.txt" {
		t.Fatalf("ExportFilename() = %q", got)
	}
}
