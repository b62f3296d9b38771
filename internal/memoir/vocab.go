package memoir

// Fixed vocabularies. Category and emotion values outside these lists are a
// data-quality concern for persisted records, not a crash; the capture and
// edit surfaces reject them at the point of action.

var Categories = []string{
	"childhood",
	"family",
	"love",
	"growth",
	"challenges",
	"achievements",
	"loss",
	"joy",
	"lessons",
}

var categoryLabels = map[string]string{
	"childhood":    "Childhood",
	"family":       "Family",
	"love":         "Love & Relationships",
	"growth":       "Personal Growth",
	"challenges":   "Challenges & Hardships",
	"achievements": "Achievements & Successes",
	"loss":         "Loss & Grief",
	"joy":          "Joy & Happiness",
	"lessons":      "Life Lessons",
}

var Emotions = []string{
	"joy",
	"pride",
	"love",
	"excitement",
	"contentment",
	"gratitude",
	"relief",
	"hope",
	"sadness",
	"grief",
	"regret",
	"fear",
	"anger",
	"frustration",
	"anxiety",
	"loneliness",
	"confusion",
	"determination",
	"curiosity",
	"peace",
}

var Tones = []string{"warm", "honest", "poetic", "humorous", "raw"}

func IsCategory(v string) bool { return contains(Categories, v) }
func IsEmotion(v string) bool  { return contains(Emotions, v) }
func IsTone(v string) bool     { return contains(Tones, v) }

// CategoryLabel returns the display label, or "Uncategorized" for unknown or
// empty values.
func CategoryLabel(v string) string {
	if label, ok := categoryLabels[v]; ok {
		return label
	}
	return "Uncategorized"
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
