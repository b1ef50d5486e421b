package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/YusuphaJuwara/chatbotgermano/internal/core/ports/driven"
	"github.com/YusuphaJuwara/chatbotgermano/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads model prompts from user-editable files on disk.
// Prompts are loaded from a configurable directory with fallback to
// embedded defaults.
//
// The store uses lazy initialisation - files are only created when first
// accessed, not in the constructor. This makes testing easier and avoids
// unexpected I/O.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains embedded default prompts.
// These are used when user files don't exist and as the initial content
// for new files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptSearchQueries: `You are an AI assistant specialized in analyzing user requests and generating optimal search queries for a vector store. Your sole task is to produce search terms/phrases based on the user's input.

**Decision Rule:**
* If the user request is a simple greeting (e.g., "Hi", "Hello"), asks about your identity or function (e.g., "What is your name?", "What can you do?"), or is any other message that does not require retrieving specific information from a knowledge base, **your response must be an empty string. Do not generate any search queries.**
* For all other requests, proceed with generating search queries based on the user's input.

**Processing Instructions (if generating queries):**
1. Internally analyze the user's request step-by-step to deeply understand the underlying concepts and information needed.
2. If the user's request contains multiple distinct topics, entities, or questions, break them down into individual, manageable components.
3. For each identified component or overall concept, formulate ONE to THREE concise search queries optimized for retrieving relevant information from a vector database.

**Output Format:**
* If queries are generated (per the Decision Rule), provide *only* the search queries.
* List each query on a new line.
* Do not include any introductory text, explanations, conversational filler, or markdown formatting other than the queries themselves separated by newlines.
* If no queries are generated (per the Decision Rule), the output must be an empty string.`,

	driven.PromptAnswerSystem: `You are a helpful, knowledgeable, and honest AI assistant named 'Chatbot Germano'. You must always refer to yourself as 'Chatbot Germano'.
Your primary function is to answer user queries accurately and concisely.

**Processing Instructions:**
1. Before providing a response, internally process the user's request step-by-step to fully understand it.
2. If the user's message contains multiple distinct questions or requests, break them down into individual, manageable components. Address each component systematically in your response.

**Core Directive:** Answer the user's query **strictly using the provided context whenever possible**.

**Citation Requirement:**
* When you use information from the context documents, you **must always cite it**. **Do not fabricate or hallucinate anything**.

**Response Protocol:**
* **If the answer is found in the provided context:** Respond with citations grounded in the context.
* **If the answer is NOT found in the provided context (or context is empty):** **You must first clearly state that your answer is NOT grounded in the provided documents/context**. Then, provide an answer based on your general knowledge if possible.
* **If you cannot answer the question** (even with general knowledge), or if the question is unclear or inappropriate: Politely state that you cannot answer based on the available information or ask the user to rephrase.

**Output Format:**
* Respond concisely and directly in **clean Markdown format**.
* Avoid any conversational filler or unnecessary text before or after the main answer.`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.germano/prompts/.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first Load() call.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".germano", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and creates default files.
// Returns cached value if available, otherwise loads from file.
// Falls back to embedded default if file doesn't exist.
func (s *PromptStore) Load(name string) (string, error) {
	// Ensure directory and defaults exist (lazy init)
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		// Fall back to embedded defaults if init failed
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	// Check cache first (read lock)
	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	// Load from file (no lock held during I/O)
	prompt, err := s.loadFromFile(name)
	if err != nil {
		// Fall back to embedded default
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	// Cache the result (write lock)
	// Use double-check pattern to avoid overwriting concurrent loads
	s.mu.Lock()
	if _, ok := s.cache[name]; !ok {
		s.cache[name] = prompt
	} else {
		// Another goroutine loaded it first, use their value
		prompt = s.cache[name]
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Watch reloads prompts whenever files in the prompt directory change,
// so long-running processes pick up edits without a restart. Blocks
// until the context is cancelled.
func (s *PromptStore) Watch(ctx context.Context) error {
	// The directory must exist before it can be watched.
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		return s.initErr
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.promptDir); err != nil {
		return fmt.Errorf("watch %s: %w", s.promptDir, err)
	}
	logger.Debug("Watching prompt directory %s", s.promptDir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Remove) {
				logger.Info("Prompt file changed (%s), reloading", filepath.Base(event.Name))
				s.Reload()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Prompt watcher error: %v", err)
		}
	}
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and default files.
// Called once via sync.Once on first Load().
func (s *PromptStore) initialise() {
	// Create directory
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	// Create default prompt files (only if they don't exist)
	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	// Create README
	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	path := filepath.Join(s.promptDir, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# Germano Prompts

This directory contains customisable prompts used by the chat assistant.

## Files

- ` + "`search_queries.txt`" + ` - Decides whether a message needs retrieval and plans the search queries
- ` + "`answer_system.txt`" + ` - System prompt for the grounded answer generation

## Customisation

Edit any file to customise assistant behaviour. Long-running processes
(serve, tui) pick up changes immediately; one-shot commands on the next run.
`
	return os.WriteFile(path, []byte(content), 0600)
}
