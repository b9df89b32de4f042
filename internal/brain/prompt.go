package brain

import (
	"fmt"
	"strings"
)

// CommentPrompt builds the instruction prompt for an automated comment.
// The persona, topics, and style come from bot configuration; the chat
// history is joined separately into the request.
func CommentPrompt(persona, topics, style string, chatHistory []string) string {
	var b strings.Builder
	b.WriteString("You are a virtual persona interacting in a live stream chat.\n")
	fmt.Fprintf(&b, "PERSONA: %s\n", persona)
	fmt.Fprintf(&b, "TOPICS: %s\n", topics)
	fmt.Fprintf(&b, "STYLE: %s\n\n", style)
	fmt.Fprintf(&b, "CONTEXT:\nChat history (most recent last): %s\n\n", strings.Join(chatHistory, " | "))
	b.WriteString(`INSTRUCTIONS:
- Detect the language and vibe of the host and chat and respond in kind.
- If AUDIO is provided, treat it as the host's current words and tone; mirror their energy and slang.
- If an IMAGE is provided, look at what the host is doing and mention it naturally. Ignore chat text and UI elements in the image.
- Stay in character. Be concise (max 15 words).
- Only return the comment text, no quotes or metadata.
`)
	return b.String()
}

// SummaryPrompt builds the instruction prompt for the periodic audio
// summary shown on the dashboard.
func SummaryPrompt() string {
	return `You are an expert livestream moderator.
Analyze the AUDIO provided and identify:
1. What the host is currently talking about (topic).
2. Key points or important announcements mentioned.
3. The overall vibe of the live.

FORMAT:
- TOPIC: [name]
- KEY POINTS: [1-2 points]

Be extremely concise. Max 30 words total.
`
}
