package ai

import (
	"fmt"
	"strings"
)

const releaseSystemPromptTmpl = `You are writing the body of a social media post announcing a software release. Given the raw release notes, produce a bullet list of the most user-visible changes, one per line, each starting with "• ". Hard limit: %d characters total. If you must omit items to stay under the limit, end with a final line of exactly the form "...and N more" where N is the count of omitted items. No hashtags, no links, no preamble. Plain text only, no markdown.`

const weeklySystemPromptTmpl = `You are writing the body of a weekly recap social media post for a software product. Given the week's release notes, produce a bullet list of the most notable improvements across all releases, one per line, each starting with "• ". Hard limit: %d characters total. If you must omit items to stay under the limit, end with a final line of exactly the form "...and N more" where N is the count of omitted items. No hashtags, no links, no preamble. Plain text only, no markdown.`

const digestSystemPromptTmpl = `You are writing the body of a social media post digesting a product changelog. Given the changelog entries, produce a bullet list of the most interesting changes, one per line, each starting with "• ". Hard limit: %d characters total. If you must omit items to stay under the limit, end with a final line of exactly the form "...and N more" where N is the count of omitted items. No hashtags, no links, no preamble. Plain text only, no markdown.`

// SummarizePrompt builds the system and user prompts for a summarization
// request. The variant selects the framing; the budget is embedded in the
// system prompt as a hard instruction.
func SummarizePrompt(req Request) (systemPrompt string, userPrompt string) {
	switch req.Variant {
	case "weekly":
		systemPrompt = fmt.Sprintf(weeklySystemPromptTmpl, req.Budget)
	case "digest":
		systemPrompt = fmt.Sprintf(digestSystemPromptTmpl, req.Budget)
	default:
		systemPrompt = fmt.Sprintf(releaseSystemPromptTmpl, req.Budget)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Release: %s\n", req.Title)
	b.WriteString("Release Notes:\n")
	b.WriteString(req.Content)

	userPrompt = b.String()
	return systemPrompt, userPrompt
}

// cleanResponse strips markdown code fences and surrounding whitespace from
// a model response. Handles the common case where models wrap output in
// ``` ... ``` blocks despite instructions.
func cleanResponse(s string) string {
	s = strings.TrimSpace(s)

	if after, found := strings.CutPrefix(s, "```"); found {
		// Drop an optional language tag on the fence line.
		if idx := strings.Index(after, "\n"); idx >= 0 {
			after = after[idx+1:]
		}
		if idx := strings.LastIndex(after, "```"); idx >= 0 {
			after = after[:idx]
		}
		return strings.TrimSpace(after)
	}

	return s
}
