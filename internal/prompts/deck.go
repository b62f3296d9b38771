package prompts

import (
	"errors"
	"math/rand"
	"strings"
	"sync"
)

var ErrUnknownCategory = errors.New("unknown prompt category")

// Universal follow-up questions, offered for every prompt.
var universalFollowUps = []string{
	"Who was with you during this memory?",
	"What happened next?",
	"How did this make you feel?",
	"What details do you remember most clearly?",
	"Why do you think this memory stayed with you?",
}

// trigger phrases scanned against the prompt text; a match contributes
// candidates tailored to that trigger ahead of the universal pool.
var contextualFollowUps = []struct {
	triggers  []string
	questions []string
}{
	{
		triggers: []string{"first"},
		questions: []string{
			"What made this first time so memorable?",
			"How did you feel in the moments leading up to it?",
		},
	},
	{
		triggers: []string{"challenging", "hardest", "difficult"},
		questions: []string{
			"What got you through it?",
			"What would you tell someone facing the same thing?",
		},
	},
	{
		triggers: []string{"person", "someone"},
		questions: []string{
			"What do you remember most about them?",
			"What would you say to them now?",
		},
	},
	{
		triggers: []string{"childhood", "young"},
		questions: []string{
			"What did the world feel like to you back then?",
			"Who else was part of your life at that time?",
		},
	},
}

// Deck draws prompts and follow-up questions. The random source is injected
// so tests can assert deterministic selection.
type Deck struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewDeck(rnd *rand.Rand) *Deck {
	return &Deck{rnd: rnd}
}

// Draw picks one prompt uniformly at random from the category's pool.
func (d *Deck) Draw(category string) (string, error) {
	pool := Pool(category)
	if len(pool) == 0 {
		return "", ErrUnknownCategory
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return pool[d.rnd.Intn(len(pool))], nil
}

// DrawAny picks from all pools combined, for when no category is selected.
func (d *Deck) DrawAny() string {
	var all []string
	for _, pool := range poolsByCategory {
		all = append(all, pool...)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return all[d.rnd.Intn(len(all))]
}

// FollowUps selects exactly two follow-up questions for the given prompt.
// Candidates from matched trigger phrases are pooled with the universal set,
// deduplicated, shuffled, and the first two taken.
func (d *Deck) FollowUps(prompt string) []string {
	lower := strings.ToLower(prompt)

	var pool []string
	for _, ctx := range contextualFollowUps {
		for _, trigger := range ctx.triggers {
			if strings.Contains(lower, trigger) {
				pool = append(pool, ctx.questions...)
				break
			}
		}
	}
	pool = append(pool, universalFollowUps...)
	pool = dedupe(pool)

	d.mu.Lock()
	d.rnd.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	d.mu.Unlock()

	return pool[:2]
}

func dedupe(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, v := range list {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
