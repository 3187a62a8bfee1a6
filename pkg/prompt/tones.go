package prompt

// DefaultTone is the fallback for unknown tone keys: fail closed to the most
// conservative template rather than rendering an empty instruction block.
const DefaultTone = "professional"

// toneInstructions maps each supported tone key to its fixed instruction block
var toneInstructions = map[string]string{
	"professional": "Write in a professional, respectful tone. Be direct and business-focused.",
	"casual":       "Write in a casual, friendly tone with a bit of personality. Use contractions, stay respectful and concise.",
	"friendly":     "Write in a warm, approachable tone while maintaining professionalism.",
	"direct":       "Write in a clear, straightforward tone. Get to the point quickly.",
	"empathetic":   "Write with understanding and emotional intelligence. Show genuine interest.",
	"assertive":    "Write with confidence and authority. Be persuasive but respectful.",
	"chaos":        "Write with bold creativity and humor. Break conventional rules while staying relevant. This is Off the Rails Mode - go completely wild with creativity while staying professional enough to work.",
}

// platformInstructions maps platform keys to formatting guidance
var platformInstructions = map[string]string{
	"linkedin":  "Format this as a LinkedIn message. Keep it professional and concise.",
	"email":     "Format this as a professional email. Include a clear subject line approach.",
	"twitter":   "Format this as a Twitter DM. Keep it very brief and engaging.",
	"instagram": "Format this as an Instagram DM. Keep it casual and visual-friendly.",
}

// scenarioContext maps scenario keys to a short context description
var scenarioContext = map[string]string{
	"b2b-sales":      "B2B sales introduction",
	"partnership":    "partnership inquiry",
	"recruiting":     "recruiting pitch",
	"startup-collab": "startup collaboration",
	"cold-intro":     "cold introduction",
}

// reasonText maps outreach purpose keys to prompt wording
var reasonText = map[string]string{
	"job":         "job opportunity",
	"partnership": "partnership opportunity",
	"sales":       "sales pitch",
	"intro":       "introduction",
	"other":       "outreach",
}

// SupportedTones returns all known tone keys
func SupportedTones() []string {
	tones := make([]string, 0, len(toneInstructions))
	for tone := range toneInstructions {
		tones = append(tones, tone)
	}
	return tones
}

// NormalizeTone maps unknown tone keys to the default template
func NormalizeTone(tone string) string {
	if _, ok := toneInstructions[tone]; ok {
		return tone
	}
	return DefaultTone
}
