package ai

// ProviderConfig holds the configuration needed to create a summarizer.
type ProviderConfig struct {
	Provider string // "anthropic" | "openai"
	APIKey   string
	Model    string
}

// Request is one summarization call: release notes in, bullet list out.
type Request struct {
	Title   string // release/version label
	Content string // raw release-note text
	Budget  int    // maximum output length in characters
	Variant string // layout variant, selects the prompt ("release", "weekly", ...)
}
