package driven

// PromptStore provides access to the engine's prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name. If the prompt
	// is not found, implementations should return a sensible default or
	// an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptSearchQueries is the planning preamble. It instructs the
	// model to emit newline-separated search queries, or nothing at all
	// for greetings and identity questions.
	PromptSearchQueries = "search_queries"

	// PromptAnswerSystem is the generation preamble. It mandates cited,
	// context-grounded answers, an explicit not-grounded disclosure when
	// no context is supplied, and a polite refusal when no answer is
	// possible.
	PromptAnswerSystem = "answer_system"
)
