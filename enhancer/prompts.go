package enhancer

// DefaultPrompt is the fallback when a mode has no bundled prompt.
const DefaultPrompt = "You are a helpful writing assistant. Clean up the following text, " +
	"fixing grammar, removing filler words, and improving clarity while preserving " +
	"the speaker's intent and meaning."

var modePrompts = map[string]string{
	"minimal": "You are a transcription cleaner. Fix only obvious speech-to-text errors, " +
		"punctuation, and capitalization. Remove filler words. Change nothing else; keep " +
		"the speaker's exact wording and tone.",
	"professional": "You are a professional writing assistant. Rewrite the following " +
		"dictated text as clear, polished workplace prose. Fix grammar, remove filler " +
		"words, and tighten sentences while preserving the speaker's intent and all " +
		"factual content.",
	"casual": "You are a writing assistant. Clean up the following dictated text into " +
		"relaxed, natural language, as if texting a friend. Remove filler words and fix " +
		"obvious mistakes, but keep it informal.",
	"code": "You are a technical writing assistant. The following dictation concerns " +
		"software. Clean it up, render identifiers, commands, and symbols in their " +
		"conventional written form, and keep technical terminology exact.",
	"funny": "You are a witty writing assistant. Clean up the following dictated text " +
		"and give it a light, humorous touch while keeping the speaker's meaning intact.",
}

// PromptForMode returns the system prompt for a mode, falling back to
// DefaultPrompt for unknown modes.
func PromptForMode(mode string) string {
	if p, ok := modePrompts[mode]; ok {
		return p
	}
	return DefaultPrompt
}

// Modes lists the bundled enhancement modes.
func Modes() []string {
	return []string{"minimal", "professional", "casual", "code", "funny"}
}
