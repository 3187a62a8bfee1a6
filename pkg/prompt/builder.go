package prompt

import (
	"fmt"
	"strings"
)

// Fields carries the recipient and context details collected from the caller.
// Empty fields are omitted from the prompt, never rendered as blank
// placeholders.
type Fields struct {
	RecipientName string
	RecipientRole string
	CompanyName   string
	Reason        string
	CustomHook    string
	Tone          string
	Scenario      string
	Platform      string
	Language      string
}

// Build assembles the instruction text sent to the generation provider:
// tone instruction, platform format, structured recipient details, and a
// fixed constraints block. Pure assembly, no side effects.
func Build(f Fields) string {
	var b strings.Builder

	b.WriteString("You are an expert at writing high-converting cold outreach messages. ")

	tone := NormalizeTone(f.Tone)
	b.WriteString(toneInstructions[tone])
	b.WriteString(" ")

	if instr, ok := platformInstructions[f.Platform]; ok {
		b.WriteString(instr)
		b.WriteString(" ")
	}

	medium := f.Platform
	if medium == "" {
		medium = "message"
	}
	fmt.Fprintf(&b, "\n\nWrite a cold %s with the following details:\n", medium)

	fmt.Fprintf(&b, "- Recipient: %s", f.RecipientName)
	if f.RecipientRole != "" {
		fmt.Fprintf(&b, ", %s", f.RecipientRole)
	}
	if f.CompanyName != "" {
		fmt.Fprintf(&b, " at %s", f.CompanyName)
	}

	if f.Reason != "" {
		purpose := f.Reason
		if text, ok := reasonText[f.Reason]; ok {
			purpose = text
		}
		fmt.Fprintf(&b, "\n- Purpose: %s", purpose)
	}

	if f.Scenario != "" {
		context := f.Scenario
		if text, ok := scenarioContext[f.Scenario]; ok {
			context = text
		}
		fmt.Fprintf(&b, "\n- Context: %s", context)
	}

	if f.CustomHook != "" {
		fmt.Fprintf(&b, "\n- Hook/Reference: %s", f.CustomHook)
	}

	if f.Language != "" && !strings.EqualFold(f.Language, "english") {
		fmt.Fprintf(&b, "\n- Language: write the message in %s", f.Language)
	}

	b.WriteString(`

Requirements:
- Keep it concise (2-4 sentences max)
- Make it personal and relevant
- Include a clear call-to-action
- No generic templates or clichés
- Don't use "Hope this finds you well" or similar
- Return only the message text, no subject line or formatting

Generate the message:`)

	return b.String()
}
