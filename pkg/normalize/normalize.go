// Package normalize turns language-specific loop and early-exit syntax
// into language-neutral IR. Each supported language implements the
// Normalizer bundle; unsupported languages resolve to a no-op variant,
// so normalization can miss but never fail.
package normalize

import (
	sitter "github.com/smacker/go-tree-sitter"

	"cfglens/pkg/ir"
)

// Normalizer is the per-language normalization capability bundle.
// Both methods return nil when the node is not a construct the language
// variant recognizes; callers treat nil as "no IR", not as an error.
type Normalizer interface {
	// ForLoop normalizes a for-loop node into counter or iterator IR.
	ForLoop(node *sitter.Node, content []byte, loopID string) *ir.ForLoopIR

	// EarlyExit normalizes an unconditional early-exit construct
	// (panic/throw/raise/process-exit).
	EarlyExit(node *sitter.Node, content []byte, exitID string) *ir.EarlyExitIR
}

// ForLanguage resolves a language tag to its normalizer. Unknown tags get
// the no-op variant.
func ForLanguage(language string) Normalizer {
	switch language {
	case "rust":
		return rustNormalizer{}
	case "python":
		return pythonNormalizer{}
	case "go":
		return goNormalizer{}
	case "javascript", "typescript", "java", "c", "cpp":
		return cStyleNormalizer{language: language}
	default:
		return noopNormalizer{}
	}
}

// noopNormalizer is the default for languages without an implementation.
type noopNormalizer struct{}

func (noopNormalizer) ForLoop(*sitter.Node, []byte, string) *ir.ForLoopIR     { return nil }
func (noopNormalizer) EarlyExit(*sitter.Node, []byte, string) *ir.EarlyExitIR { return nil }
