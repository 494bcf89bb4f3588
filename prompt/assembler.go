package prompt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hupe1980/agentvault/agent"
	"github.com/hupe1980/agentvault/knowledge"
	"github.com/hupe1980/agentvault/logging"
	"github.com/hupe1980/agentvault/memory"
)

// Component names in assembly order.
const (
	ComponentAgent        = "agent"
	ComponentMemory       = "memory"
	ComponentContext      = "context"
	ComponentConversation = "conversation"
)

// Component is one budgeted slice of an assembled prompt.
type Component struct {
	Name      string `json:"name"`
	Text      string `json:"text"`
	Tokens    int    `json:"tokens"`
	Budget    int    `json:"budget"`
	Truncated bool   `json:"truncated"`
}

// Assembly is the result of a prompt build: the ordered component list plus
// the final concatenated system prompt.
type Assembly struct {
	Components   []Component `json:"components"`
	SystemPrompt string      `json:"system_prompt"`
}

// Tokens returns the estimated token total across all components.
func (a *Assembly) Tokens() int {
	total := 0
	for _, c := range a.Components {
		total += c.Tokens
	}
	return total
}

// Budgets holds the per-component and aggregate token budgets. The component
// budgets must sum to no more than Total.
type Budgets struct {
	Agent        int
	Memory       int
	Context      int
	Conversation int
	Total        int
}

// DefaultBudgets returns the calibrated defaults for the coarse token
// estimator (component sum 8000 == total).
func DefaultBudgets() Budgets {
	return Budgets{Agent: 2000, Memory: 1500, Context: 2500, Conversation: 2000, Total: 8000}
}

// Validate checks the sum-of-components constraint.
func (b Budgets) Validate() error {
	sum := b.Agent + b.Memory + b.Context + b.Conversation
	if sum > b.Total {
		return fmt.Errorf("component budgets (%d) exceed total budget (%d)", sum, b.Total)
	}
	return nil
}

// Options configures an Assembler.
type Options struct {
	// Budgets overrides the default token budgets.
	Budgets Budgets
	// Logger receives diagnostic output. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Assembler builds prompts from the documents inside an agent directory.
type Assembler struct {
	budgets Budgets
	logger  logging.Logger
}

// NewAssembler creates a prompt assembler with optional budget overrides.
func NewAssembler(optFns ...func(o *Options)) *Assembler {
	opts := Options{Budgets: DefaultBudgets(), Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Assembler{budgets: opts.Budgets, logger: opts.Logger}
}

// Assemble sequences the agent, memory and context components for the agent
// owning agentDir, applying per-component budgets and then the aggregate
// total.
func (a *Assembler) Assemble(ctx context.Context, agentDir string) (*Assembly, error) {
	return a.assemble(ctx, agentDir, "")
}

// AssembleWithHistory additionally appends a conversation component built
// from the supplied pre-formatted history text.
func (a *Assembler) AssembleWithHistory(ctx context.Context, agentDir, history string) (*Assembly, error) {
	return a.assemble(ctx, agentDir, history)
}

// SystemPromptOptions toggles optional components of a system prompt.
type SystemPromptOptions struct {
	ExcludeMemory  bool
	ExcludeContext bool
}

// SystemPrompt assembles and concatenates the prompt, optionally excluding
// the memory and/or context components.
func (a *Assembler) SystemPrompt(ctx context.Context, agentDir string, opts SystemPromptOptions) (string, error) {
	asm, err := a.Assemble(ctx, agentDir)
	if err != nil {
		return "", err
	}
	var parts []string
	for _, c := range asm.Components {
		if opts.ExcludeMemory && c.Name == ComponentMemory {
			continue
		}
		if opts.ExcludeContext && c.Name == ComponentContext {
			continue
		}
		parts = append(parts, c.Text)
	}
	return strings.Join(parts, "\n\n"), nil
}

func (a *Assembler) assemble(ctx context.Context, agentDir, history string) (*Assembly, error) {
	def, err := agent.ParseDir(agentDir)
	if err != nil {
		return nil, fmt.Errorf("assemble prompt: %w", err)
	}

	components := []Component{
		newComponent(ComponentAgent, FormatAgent(def), a.budgets.Agent),
	}

	if mem, err := memory.NewStore(agentDir).Load(ctx); err != nil {
		return nil, fmt.Errorf("assemble prompt: %w", err)
	} else if mem != nil {
		components = append(components, newComponent(ComponentMemory, FormatMemory(mem), a.budgets.Memory))
	}

	if raw, err := os.ReadFile(filepath.Join(agentDir, knowledge.SnapshotFile)); err == nil {
		components = append(components, newComponent(ComponentContext, FormatContext(string(raw)), a.budgets.Context))
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("assemble prompt: %w", err)
	}

	if history != "" {
		components = append(components, newComponent(ComponentConversation, history, a.budgets.Conversation))
	}

	components = a.applyTotalBudget(components)

	texts := make([]string, 0, len(components))
	for _, c := range components {
		texts = append(texts, c.Text)
	}
	return &Assembly{Components: components, SystemPrompt: strings.Join(texts, "\n\n")}, nil
}

// newComponent builds a component truncated to its own budget.
func newComponent(name, text string, budget int) Component {
	cut, truncated := TruncateToTokenLimit(text, budget)
	return Component{Name: name, Text: cut, Tokens: EstimateTokens(cut), Budget: budget, Truncated: truncated}
}

// applyTotalBudget trims components from the end until the aggregate fits the
// total budget. Later components (context, conversation) absorb the overflow
// so the agent identity survives intact.
func (a *Assembler) applyTotalBudget(components []Component) []Component {
	total := 0
	for _, c := range components {
		total += c.Tokens
	}
	for i := len(components) - 1; i >= 0 && total > a.budgets.Total; i-- {
		overflow := total - a.budgets.Total
		c := &components[i]
		allowance := c.Tokens - overflow
		if allowance < 0 {
			allowance = 0
		}
		cut, truncated := TruncateToTokenLimit(c.Text, allowance)
		total -= c.Tokens
		c.Text = cut
		c.Tokens = EstimateTokens(cut)
		c.Truncated = c.Truncated || truncated
		total += c.Tokens
	}
	return components
}
