package translator

import (
	"fmt"
	"strings"

	"github.com/leonardotrapani/burnsub/internal/language"
)

// BuildSystemPrompt generates the system prompt for one translation call
func BuildSystemPrompt(source, target string) string {
	from := "the detected language"
	if code := language.NormalizeSource(source); code != "" {
		from = language.Label(code)
	}
	to := language.Label(target)

	var b strings.Builder
	b.WriteString("You are a subtitle translator. You translate speech-to-text transcriptions.\n\n")
	fmt.Fprintf(&b, "Translate the text from %s into %s.\n", from, to)
	b.WriteString("\nRules:\n")
	b.WriteString("- Preserve the original meaning and tone\n")
	b.WriteString("- Do not add explanations, notes or quotes\n")
	fmt.Fprintf(&b, "- If the text is already in %s, return it unchanged\n", to)
	b.WriteString("- Output ONLY the translated text, nothing else\n")
	return b.String()
}
