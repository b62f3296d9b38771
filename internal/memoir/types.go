package memoir

import "time"

// Memory is a single captured recollection.
type Memory struct {
	ID                 string     `json:"id"`
	Prompt             string     `json:"prompt"`
	Response           string     `json:"response"`
	FollowUps          []FollowUp `json:"follow_ups,omitempty"`
	AdditionalThoughts string     `json:"additional_thoughts,omitempty"`
	AIDraft            string     `json:"ai_draft,omitempty"`
	Reflection         string     `json:"reflection,omitempty"`
	Tone               string     `json:"tone,omitempty"`
	Tags               []string   `json:"tags"`
	Emotions           []string   `json:"emotions"`
	People             []string   `json:"people"`
	Timestamp          time.Time  `json:"timestamp"`
	MemoryDate         *time.Time `json:"memory_date,omitempty"`
	Category           string     `json:"category,omitempty"`
}

// FollowUp is one answered follow-up question. Answers are kept alongside the
// primary response, never concatenated into it.
type FollowUp struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// EffectiveDate is the date the memory is sorted by: the user-supplied
// occurrence date when present, otherwise the creation timestamp.
func (m Memory) EffectiveDate() time.Time {
	if m.MemoryDate != nil {
		return *m.MemoryDate
	}
	return m.Timestamp
}

// Chapter groups memories into a narrative unit. MemoryIDs are references;
// deleting a memory leaves them dangling, and readers must skip dangling ids.
type Chapter struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description,omitempty"`
	MemoryIDs    []string          `json:"memory_ids"`
	Introduction string            `json:"introduction,omitempty"`
	Transitions  map[string]string `json:"transitions"`
	Order        int               `json:"order"`
}

// References reports whether the chapter includes the given memory id.
func (c Chapter) References(memoryID string) bool {
	for _, id := range c.MemoryIDs {
		if id == memoryID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can hand out records without sharing
// backing slices with the owning collection.
func (m Memory) Clone() Memory {
	out := m
	out.FollowUps = append([]FollowUp(nil), m.FollowUps...)
	out.Tags = append([]string(nil), m.Tags...)
	out.Emotions = append([]string(nil), m.Emotions...)
	out.People = append([]string(nil), m.People...)
	if m.MemoryDate != nil {
		d := *m.MemoryDate
		out.MemoryDate = &d
	}
	return out
}

func (c Chapter) Clone() Chapter {
	out := c
	out.MemoryIDs = append([]string(nil), c.MemoryIDs...)
	out.Transitions = make(map[string]string, len(c.Transitions))
	for k, v := range c.Transitions {
		out.Transitions[k] = v
	}
	return out
}

func CloneMemories(ms []Memory) []Memory {
	out := make([]Memory, len(ms))
	for i, m := range ms {
		out[i] = m.Clone()
	}
	return out
}

func CloneChapters(cs []Chapter) []Chapter {
	out := make([]Chapter, len(cs))
	for i, c := range cs {
		out[i] = c.Clone()
	}
	return out
}

// NormalizeMemory is the migration step from the raw persisted shape to the
// current record shape: collection fields absent in older blobs become empty
// collections, optional scalars stay absent.
func NormalizeMemory(m Memory) Memory {
	if m.Tags == nil {
		m.Tags = []string{}
	}
	if m.Emotions == nil {
		m.Emotions = []string{}
	}
	if m.People == nil {
		m.People = []string{}
	}
	return m
}

func NormalizeChapter(c Chapter) Chapter {
	if c.MemoryIDs == nil {
		c.MemoryIDs = []string{}
	}
	if c.Transitions == nil {
		c.Transitions = map[string]string{}
	}
	return c
}

func NormalizeMemories(ms []Memory) []Memory {
	out := make([]Memory, len(ms))
	for i, m := range ms {
		out[i] = NormalizeMemory(m)
	}
	return out
}

func NormalizeChapters(cs []Chapter) []Chapter {
	out := make([]Chapter, len(cs))
	for i, c := range cs {
		out[i] = NormalizeChapter(c)
	}
	return out
}

// AppendUnique appends value to list unless an equal entry is already present.
// Comparison is case-sensitive; insertion order is preserved for display.
func AppendUnique(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}

// Dedupe keeps the first occurrence of each value, preserving order.
func Dedupe(list []string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		out = AppendUnique(out, v)
	}
	return out
}
