package scribe

import (
	"fmt"
	"strings"
)

// Fixed fallback prose, returned whenever the generator is unreachable or
// unconfigured. Deterministic so callers and tests can rely on the output.

var draftFallbacks = map[string]string{
	"warm": `The memory comes back to me like a gentle wave - %s. There's something so tender about how our minds hold onto these moments, keeping them safe like treasures in a secret box. This memory feels like a warm embrace from the past, reminding me of the beauty that exists in the simple moments of being alive.

Each time I revisit this memory, I'm struck by how it continues to shape who I am. It's woven into the fabric of my being, a thread that connects my past self to who I've become. There's comfort in knowing that some experiences stay with us, becoming part of our inner landscape.`,

	"honest": `I remember this clearly: %s. It's funny how some memories stick with us while others fade away. This one has stayed, and I think that means something. It's part of who I am now, part of my story.

Sometimes the most important memories are the ones that feel ordinary but carry extraordinary meaning. They're the moments that, when we look back, we realize were actually turning points or simply beautiful instances of being human. This memory is one of those - simple, real, and somehow essential to understanding my journey.`,

	"poetic": `Like light filtering through leaves, this memory dances in my mind: %s. It blooms in the garden of remembrance, a delicate flower that time cannot wither. Each detail is a brushstroke on the canvas of my past, painting a picture of who I was in that moment, suspended in time like a photograph of the soul.

In the quiet chambers of memory, this moment lives on, breathing with the rhythm of remembrance. It speaks in whispers of who I was, who I am, and who I might become. Such is the poetry of our lived experience - each memory a verse in the epic poem of our existence.`,

	"humorous": `Oh, this takes me back! %s. Isn't it funny how our brains work? Of all the things I could remember - important dates, where I put my keys, the names of people I met five minutes ago - this is what stuck. But I'm glad it did; it makes me smile even now.

There's something wonderfully human about the memories we keep, the little moments that somehow become the big ones in the story of our lives. If our memories were a highlight reel, this would definitely make the cut - not because it was earth-shattering, but because it was perfectly, beautifully ordinary.`,

	"raw": `This memory cuts through me: %s. No sugar-coating, no pretty words to dress it up. It happened, and it mattered, and it's part of me now. Sometimes memories are like that - they don't ask permission to stay, they just do. And maybe that's exactly how it should be.

The truth is, this memory has weight. It carries something real, something that shaped me in ways I'm still figuring out. I won't pretend it was all beautiful or all painful - it just was. And in that rawness, in that unfiltered reality, there's something honest about the human experience that I can't ignore.`,
}

// FallbackDraft returns the canned passage for the tone, defaulting to warm
// for unknown tones. The warm template folds the response in lowercased, as a
// mid-sentence clause.
func FallbackDraft(response, tone string) string {
	tmpl, ok := draftFallbacks[tone]
	if !ok {
		tmpl = draftFallbacks["warm"]
		tone = "warm"
	}
	if tone == "warm" {
		response = strings.ToLower(response)
	}
	return fmt.Sprintf(tmpl, response)
}

// FallbackIntroduction returns the canned chapter introduction populated with
// the chapter title and optional description.
func FallbackIntroduction(title, description string) string {
	desc := ""
	if strings.TrimSpace(description) != "" {
		desc = description + " "
	}
	return fmt.Sprintf(`This chapter, "%s", brings together memories that share a common thread in the tapestry of my life. %sEach story here represents a moment that helped shape who I am today.

As I look back on these experiences, I'm struck by how they connect to form a larger narrative about growth, change, and the beautiful complexity of being human. These memories, when woven together, tell a story that's uniquely mine.`, title, desc)
}

// FallbackTransition returns the canned bridge sentence.
func FallbackTransition() string {
	return "Looking back now, I can see how one experience led to another, each memory building upon the last in the ongoing story of my life."
}
