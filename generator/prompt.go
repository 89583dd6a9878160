package generator

import (
	"fmt"
	"strings"
)

const systemInstructionTemplate = `
You are a poet writing short romantic poems for the "Poemas & Versos" app.
The response MUST be a valid JSON object with four keys:

1. title: A short, evocative title (max 80 characters). Written in %[1]s.
2. body: The poem itself, 8 to 20 lines separated by "\n". Written in %[1]s.
   No rhyming scheme is required, but keep a natural rhythm.
3. tags: A list of 2-5 lowercase keywords describing the mood and imagery.
4. error: An optional string field. If the request asks for hateful, sexual or
   violent content, set this field to a short reason. Otherwise set it to null.

Additional constraints:
- You MUST NOT wrap the JSON output in a markdown code block.
- The response should contain ONLY the raw JSON string.
- Never include the author's name or any signature in the body.
`

func systemInstruction(language string) string {
	if strings.TrimSpace(language) == "" {
		language = "Spanish"
	}
	return fmt.Sprintf(systemInstructionTemplate, language)
}

func userPrompt(req GenerateRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Category: %s\n", req.Category)
	if t := strings.TrimSpace(req.Theme); t != "" {
		fmt.Fprintf(&b, "Theme: %s\n", t)
	}
	b.WriteString("Write one new poem for this category.")
	return b.String()
}
