package generation

import "strings"

// Strategy is a named prompt/output transform pair applied around
// generation. Implementations are stateless and safe to share.
type Strategy interface {
	Name() string
	// Prepare rewrites the prompt before inference.
	Prepare(prompt string) string
	// PostProcess rewrites the raw model output.
	PostProcess(output string) string
}

// Built-in strategy names.
const (
	StrategyDefault        = "default"
	StrategyDocumentation  = "documentation"
	StrategyTestGeneration = "test_generation"
)

type defaultStrategy struct{}

func (defaultStrategy) Name() string                 { return StrategyDefault }
func (defaultStrategy) Prepare(prompt string) string { return prompt }
func (defaultStrategy) PostProcess(out string) string { return out }

// tagStrategy prefixes the prompt with a bracketed tag and trims output.
type tagStrategy struct {
	name string
	tag  string
}

func (s tagStrategy) Name() string { return s.name }

func (s tagStrategy) Prepare(prompt string) string { return s.tag + " " + prompt }

func (s tagStrategy) PostProcess(out string) string { return strings.TrimSpace(out) }

// NewTagStrategy returns a strategy that prefixes prompts with tag.
func NewTagStrategy(name, tag string) Strategy {
	return tagStrategy{name: normalizeName(name), tag: tag}
}

// StrategySet is a fixed lookup table of strategies by lower-cased name.
type StrategySet struct {
	byName map[string]Strategy
	def    Strategy
}

// NewStrategySet returns the built-in strategies plus extra. An extra
// strategy replaces a built-in of the same name.
func NewStrategySet(extra ...Strategy) *StrategySet {
	s := &StrategySet{byName: make(map[string]Strategy), def: defaultStrategy{}}
	for _, st := range []Strategy{
		s.def,
		tagStrategy{name: StrategyDocumentation, tag: "[Documentation]"},
		tagStrategy{name: StrategyTestGeneration, tag: "[TestGen]"},
	} {
		s.byName[st.Name()] = st
	}
	for _, st := range extra {
		if st == nil {
			continue
		}
		s.byName[normalizeName(st.Name())] = st
	}
	return s
}

// Resolve returns the strategy named name, case-insensitively. Unknown
// names fall back to the default strategy.
func (s *StrategySet) Resolve(name string) Strategy {
	if st, ok := s.byName[normalizeName(name)]; ok {
		return st
	}
	return s.def
}

// Has reports whether name is a registered strategy.
func (s *StrategySet) Has(name string) bool {
	_, ok := s.byName[normalizeName(name)]
	return ok
}

// Names lists registered strategy names.
func (s *StrategySet) Names() []string {
	out := make([]string, 0, len(s.byName))
	for n := range s.byName {
		out = append(out, n)
	}
	return out
}

func normalizeName(name string) string { return strings.ToLower(strings.TrimSpace(name)) }
