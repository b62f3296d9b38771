package prompts

// Fixed prompt pools, keyed by memory category.
var poolsByCategory = map[string][]string{
	"childhood": {
		"What's a smell that takes you back to being a child?",
		"Describe your childhood bedroom in detail.",
		"What was your favorite hiding spot as a kid?",
		"Tell me about a toy that meant everything to you.",
		"What's a rule you broke as a child?",
		"Describe a typical Saturday morning when you were young.",
		"What scared you most as a child?",
		"Tell me about your first day of school.",
		"What was your favorite game to play outside?",
		"Describe a family tradition from your childhood.",
		"What's something you collected as a kid?",
		"Tell me about a time you got in trouble.",
		"What was your favorite book or story?",
		"Describe a childhood friend you'll never forget.",
		"What's a food that reminds you of being young?",
	},
	"family": {
		"Tell me about your grandmother's hands.",
		"What's a family story that gets told over and over?",
		"Describe a typical family dinner.",
		"What's something your parent always said?",
		"Tell me about a family vacation or trip.",
		"What's a family recipe that holds memories?",
		"Describe a family celebration or holiday.",
		"What's something you inherited that means a lot to you?",
		"Tell me about a family pet.",
		"What's a family photo that tells a story?",
		"Describe your family's morning routine.",
		"What's a family inside joke or saying?",
		"Tell me about a time your family came together during difficulty.",
		"What's something your family did differently from others?",
		"Describe a relative who influenced you.",
	},
	"love": {
		"Tell me about your first crush.",
		"What's a love letter or note you kept?",
		"Describe the moment you knew you were in love.",
		"What's a song that reminds you of someone special?",
		"Tell me about a first date that mattered.",
		"What's something romantic someone did for you?",
		"Describe a relationship that changed you.",
		"What's a fight you had that brought you closer?",
		"Tell me about saying goodbye to someone you loved.",
		"What's a piece of jewelry or gift that holds love?",
		"Describe a moment of unexpected tenderness.",
		"What's something you learned about love the hard way?",
		"Tell me about a love that didn't work out but taught you something.",
		"What's a way someone showed they cared without words?",
		"Describe a moment when you felt completely understood.",
	},
	"growth": {
		"Tell me about a time you surprised yourself.",
		"What's a mistake that taught you something important?",
		"Describe a moment when you stood up for yourself.",
		"What's something you were afraid of that you overcame?",
		"Tell me about a time you had to be brave.",
		"What's a skill you worked hard to learn?",
		"Describe a moment when you realized you'd grown up.",
		"What's something you believed that you no longer believe?",
		"Tell me about a time you had to start over.",
		"What's a piece of advice that changed your perspective?",
		"Describe a moment when you forgave someone (or yourself).",
		"What's something you're proud of that others might not notice?",
		"Tell me about a time you chose the harder path.",
		"What's a habit you changed that made a difference?",
		"Describe a moment when you realized your own strength.",
	},
	"challenges": {
		"Tell me about a time you felt completely lost.",
		"What's the hardest decision you've ever had to make?",
		"Describe a moment when everything seemed to fall apart.",
		"What's something you had to give up that was important to you?",
		"Tell me about a time you felt like giving up but didn't.",
		"What's a fear you still carry with you?",
		"Describe a moment when you felt misunderstood.",
		"What's something you wish you could do over?",
		"Tell me about a time you disappointed someone you cared about.",
		"What's a challenge that made you who you are today?",
		"Describe a moment when you felt completely alone.",
		"What's something you struggled with that others seemed to find easy?",
		"Tell me about a time when your world changed overnight.",
		"What's a burden you've carried that others don't know about?",
		"Describe a moment when you had to be stronger than you felt.",
	},
	"achievements": {
		"Tell me about a moment when you felt truly proud.",
		"What's something you accomplished that seemed impossible?",
		"Describe a time when your hard work paid off.",
		"What's a compliment you received that you'll never forget?",
		"Tell me about a goal you achieved against the odds.",
		"What's something you created that you're proud of?",
		"Describe a moment when you exceeded your own expectations.",
		"What's a skill you mastered through persistence?",
		"Tell me about a time you helped someone else succeed.",
		"What's an award or recognition that meant something to you?",
		"Describe a moment when you proved someone wrong (in a good way).",
		"What's something you built or made with your own hands?",
		"Tell me about a time you were a leader.",
		"What's a personal record or milestone you reached?",
		"Describe a moment when you realized you'd made a difference.",
	},
	"loss": {
		"Tell me about saying goodbye to someone important.",
		"What's something you lost that you still miss?",
		"Describe a place that's no longer there.",
		"What's a tradition that ended?",
		"Tell me about a pet you loved and lost.",
		"What's something you wish you'd said but never did?",
		"Describe a friendship that faded away.",
		"What's a dream you had to let go of?",
		"Tell me about the last time you saw someone important.",
		"What's something from your past you can never get back?",
		"Describe a moment when you realized something was over.",
		"What's a way you honor someone who's no longer here?",
		"Tell me about a time when 'normal' changed forever.",
		"What's something you took for granted until it was gone?",
		"Describe a moment when you had to say goodbye to who you used to be.",
	},
	"joy": {
		"Tell me about a moment of pure happiness.",
		"What's something that always makes you smile?",
		"Describe a celebration that was perfect.",
		"What's a surprise that delighted you?",
		"Tell me about a time you laughed until you cried.",
		"What's a simple pleasure that brings you joy?",
		"Describe a moment when you felt completely free.",
		"What's something beautiful you witnessed?",
		"Tell me about a time when everything felt right with the world.",
		"What's a gift you gave that made someone happy?",
		"Describe a moment of unexpected kindness.",
		"What's a tradition or ritual that brings you joy?",
		"Tell me about a time you felt grateful beyond words.",
		"What's a sound that makes you happy?",
		"Describe a moment when you felt truly alive.",
	},
	"lessons": {
		"What's something you learned too late?",
		"Tell me about a teacher who changed your life.",
		"What's a lesson you learned from a child?",
		"Describe a moment when you understood something important.",
		"What's something you wish you'd known earlier?",
		"Tell me about a time when you were wrong about someone.",
		"What's a piece of wisdom someone shared with you?",
		"Describe a moment when you learned something about yourself.",
		"What's something you learned from failure?",
		"Tell me about a book, movie, or story that taught you something.",
		"What's a lesson you learned from watching others?",
		"Describe a moment when you changed your mind about something important.",
		"What's something you learned about life from an unexpected source?",
		"Tell me about a time when you learned the value of patience.",
		"What's a truth you discovered that others might not understand?",
	},
}

// Pool returns the prompt pool for a category, nil if the category is unknown.
func Pool(category string) []string {
	return poolsByCategory[category]
}
