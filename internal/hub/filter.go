package hub

import (
	"sort"
	"strings"

	"github.com/tapestry-labs/tapestry/internal/memoir"
)

// Filters narrow the memory collection. Zero values (and "all" for the
// category) mean the dimension is not applied; active dimensions are ANDed.
type Filters struct {
	Category     string `json:"category,omitempty"`
	TagSubstring string `json:"tag,omitempty"`
	Emotion      string `json:"emotion,omitempty"`
	Person       string `json:"person,omitempty"`
}

// Order names a sort direction over effective dates.
type Order string

const (
	OrderNewest        Order = "newest"
	OrderOldest        Order = "oldest"
	OrderChronological Order = "chronological"
)

// Filter returns the memories matching every active dimension. Category,
// emotion, and person match exactly; the tag dimension matches any tag
// containing the query case-insensitively.
func Filter(ms []memoir.Memory, f Filters) []memoir.Memory {
	out := make([]memoir.Memory, 0, len(ms))
	for _, m := range ms {
		if !matches(m, f) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func matches(m memoir.Memory, f Filters) bool {
	if f.Category != "" && f.Category != "all" && m.Category != f.Category {
		return false
	}
	if f.Emotion != "" && !contains(m.Emotions, f.Emotion) {
		return false
	}
	if f.Person != "" && !contains(m.People, f.Person) {
		return false
	}
	if f.TagSubstring != "" {
		query := strings.ToLower(f.TagSubstring)
		found := false
		for _, tag := range m.Tags {
			if strings.Contains(strings.ToLower(tag), query) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

// Sort orders memories by effective date. Newest-first is the default;
// oldest and chronological are synonyms for ascending. The sort is stable so
// equal dates keep their insertion order.
func Sort(ms []memoir.Memory, order Order) []memoir.Memory {
	out := memoir.CloneMemories(ms)
	ascending := order == OrderOldest || order == OrderChronological
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].EffectiveDate(), out[j].EffectiveDate()
		if ascending {
			return a.Before(b)
		}
		return a.After(b)
	})
	return out
}

// Page is one window of the filtered, sorted collection.
type Page struct {
	Memories   []memoir.Memory `json:"memories"`
	Number     int             `json:"page"`
	Size       int             `json:"page_size"`
	Total      int             `json:"total"`
	TotalPages int             `json:"total_pages"`
}

// Paginate slices the collection into the requested 1-based page. Pages past
// the end come back empty rather than erroring.
func Paginate(ms []memoir.Memory, number, size int) Page {
	if size <= 0 {
		size = 10
	}
	if number <= 0 {
		number = 1
	}
	totalPages := (len(ms) + size - 1) / size
	start := (number - 1) * size
	end := start + size
	if start > len(ms) {
		start = len(ms)
	}
	if end > len(ms) {
		end = len(ms)
	}
	return Page{
		Memories:   ms[start:end],
		Number:     number,
		Size:       size,
		Total:      len(ms),
		TotalPages: totalPages,
	}
}

// Aggregates summarize the whole collection for filter pickers and the
// insights panel. They are computed over all memories, never the filtered
// subset.
type Aggregates struct {
	Tags        []string       `json:"tags"`
	Emotions    []string       `json:"emotions"`
	People      []string       `json:"people"`
	ByCategory  map[string]int `json:"by_category"`
	ByEmotion   map[string]int `json:"by_emotion"`
	PopularTags []string       `json:"popular_tags"`
}

// popularTagLimit caps the tag shortcuts shown alongside the filter menus.
const popularTagLimit = 5

func Aggregate(ms []memoir.Memory) Aggregates {
	agg := Aggregates{
		Tags:        []string{},
		Emotions:    []string{},
		People:      []string{},
		ByCategory:  map[string]int{},
		ByEmotion:   map[string]int{},
		PopularTags: []string{},
	}
	byTag := map[string]int{}
	for _, m := range ms {
		for _, t := range m.Tags {
			agg.Tags = memoir.AppendUnique(agg.Tags, t)
			byTag[t]++
		}
		for _, e := range m.Emotions {
			agg.Emotions = memoir.AppendUnique(agg.Emotions, e)
			agg.ByEmotion[e]++
		}
		for _, p := range m.People {
			agg.People = memoir.AppendUnique(agg.People, p)
		}
		if m.Category != "" {
			agg.ByCategory[m.Category]++
		}
	}
	sort.Strings(agg.Tags)
	sort.Strings(agg.Emotions)
	sort.Strings(agg.People)

	popular := append([]string(nil), agg.Tags...)
	sort.SliceStable(popular, func(i, j int) bool {
		return byTag[popular[i]] > byTag[popular[j]]
	})
	if len(popular) > popularTagLimit {
		popular = popular[:popularTagLimit]
	}
	agg.PopularTags = popular
	return agg
}
