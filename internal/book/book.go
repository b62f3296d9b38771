package book

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tapestry-labs/tapestry/internal/memoir"
)

// Intent is the reader's stated reason for writing, chosen once and used to
// title the assembled book.
type Intent string

const (
	IntentMakeSense       Intent = "make-sense"
	IntentLeaveLegacy     Intent = "leave-legacy"
	IntentExploreMemories Intent = "explore-memories"
)

// Title maps the intent to the book title shown on the cover and used for
// the export filename.
func (i Intent) Title() string {
	switch i {
	case IntentMakeSense:
		return "Making Sense of My Life"
	case IntentLeaveLegacy:
		return "Stories for Those I Love"
	case IntentExploreMemories:
		return "A Journey Through Memory"
	default:
		return "My Memoir"
	}
}

// Entry is one memory rendered into the book: the AI draft when present,
// otherwise the raw response, plus the reflection and the transition that
// follows this memory.
type Entry struct {
	MemoryID   string `json:"memory_id"`
	Prompt     string `json:"prompt"`
	Body       string `json:"body"`
	Reflection string `json:"reflection,omitempty"`
	Transition string `json:"transition,omitempty"`
}

type RenderedChapter struct {
	Number       int     `json:"number"`
	Title        string  `json:"title"`
	Description  string  `json:"description,omitempty"`
	Introduction string  `json:"introduction,omitempty"`
	Entries      []Entry `json:"entries"`
}

type Book struct {
	Title    string            `json:"title"`
	Chapters []RenderedChapter `json:"chapters"`
}

// Render projects the chapters and memories into reading order. It is a pure
// read: chapters sorted by their order index, each memory rendered in the
// chapter's stored sequence. Memory ids that no longer resolve are skipped.
func Render(intent Intent, chapters []memoir.Chapter, memories []memoir.Memory) Book {
	byID := make(map[string]memoir.Memory, len(memories))
	for _, m := range memories {
		byID[m.ID] = m
	}

	ordered := append([]memoir.Chapter(nil), chapters...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Order < ordered[j].Order
	})

	b := Book{Title: intent.Title(), Chapters: []RenderedChapter{}}
	for i, c := range ordered {
		rc := RenderedChapter{
			Number:       i + 1,
			Title:        c.Title,
			Description:  c.Description,
			Introduction: c.Introduction,
			Entries:      []Entry{},
		}
		for _, id := range c.MemoryIDs {
			m, ok := byID[id]
			if !ok {
				continue
			}
			body := m.AIDraft
			if strings.TrimSpace(body) == "" {
				body = m.Response
			}
			rc.Entries = append(rc.Entries, Entry{
				MemoryID:   m.ID,
				Prompt:     m.Prompt,
				Body:       body,
				Reflection: m.Reflection,
				Transition: c.Transitions[m.ID],
			})
		}
		b.Chapters = append(b.Chapters, rc)
	}
	return b
}

// Export flattens the book into plain text: a chapter header with an `=`
// underline, the introduction, then each entry's body, reflection, and
// transition separated by blank lines.
func Export(b Book) string {
	var sb strings.Builder
	sb.WriteString(b.Title)
	sb.WriteString("\n\n")

	for _, c := range b.Chapters {
		header := fmt.Sprintf("Chapter %d: %s", c.Number, c.Title)
		sb.WriteString(header)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat("=", len(c.Title)+15))
		sb.WriteString("\n\n")

		if c.Introduction != "" {
			sb.WriteString(c.Introduction)
			sb.WriteString("\n\n")
		}
		for _, e := range c.Entries {
			sb.WriteString(e.Body)
			sb.WriteString("\n\n")
			if e.Reflection != "" {
				sb.WriteString("Reflection: ")
				sb.WriteString(e.Reflection)
				sb.WriteString("\n\n")
			}
			if e.Transition != "" {
				sb.WriteString(e.Transition)
				sb.WriteString("\n\n")
			}
		}
	}
	return sb.String()
}

// ExportFilename derives the download filename from the book title:
// whitespace runs become single underscores.
func ExportFilename(b Book) string {
	return strings.Join(strings.Fields(b.Title), "_") + ".txt"
}
