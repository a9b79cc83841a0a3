package config

import (
	"sort"
)

// ModelAliases maps short model names to full model identifiers, per
// adapter, so `-a claude -m sonnet` picks the right Claude model.
type ModelAliases map[AdapterName]map[string]string

// DefaultAliases returns the built-in aliases.
func DefaultAliases() ModelAliases {
	return ModelAliases{
		DeepSeek: {
			"chat":     "deepseek-chat",
			"coder":    "deepseek-coder",
			"reasoner": "deepseek-reasoner",
		},
		OpenAI: {
			"fast": "gpt-3.5-turbo",
			"4o":   "gpt-4o",
			"mini": "gpt-4o-mini",
		},
		Gemini: {
			"pro":   "gemini-pro",
			"flash": "gemini-1.5-flash",
		},
		Claude: {
			"haiku":  "claude-3-haiku-20240307",
			"sonnet": "claude-3-5-sonnet-20240620",
			"opus":   "claude-3-opus-20240229",
		},
	}
}

// Resolve returns the model identifier for an alias of the adapter.
// If the input is not an alias, it returns the input unchanged.
func (a ModelAliases) Resolve(name AdapterName, modelOrAlias string) string {
	if canonical, ok := a[name][modelOrAlias]; ok {
		return canonical
	}
	return modelOrAlias
}

// IsAlias reports whether alias is defined for the adapter.
func (a ModelAliases) IsAlias(name AdapterName, alias string) bool {
	_, ok := a[name][alias]
	return ok
}

// Merge adds aliases for the adapter, replacing existing entries with the
// same name.
func (a ModelAliases) Merge(name AdapterName, aliases map[string]string) {
	if len(aliases) == 0 {
		return
	}
	if a[name] == nil {
		a[name] = make(map[string]string, len(aliases))
	}
	for k, v := range aliases {
		a[name][k] = v
	}
}

// List returns the adapter's aliases in sorted order.
func (a ModelAliases) List(name AdapterName) []string {
	aliases := make([]string, 0, len(a[name]))
	for k := range a[name] {
		aliases = append(aliases, k)
	}
	sort.Strings(aliases)
	return aliases
}
