package cleaner

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// ChainCleaner runs cleaners one after another, feeding each the previous
// output.
type ChainCleaner struct {
	cleaners []Cleaner
}

// NewChain creates a chain applied in argument order:
//
//	c := cleaner.NewChain(cleaner.NewStrip(), cleaner.NewCompact())
func NewChain(cleaners ...Cleaner) *ChainCleaner {
	return &ChainCleaner{cleaners: cleaners}
}

// Clean stops at the first failing cleaner and names it in the error.
func (c *ChainCleaner) Clean(content string) (string, error) {
	for _, cl := range c.cleaners {
		out, err := cl.Clean(content)
		if err != nil {
			return "", fmt.Errorf("%s: %w", cl.Name(), err)
		}
		content = out
	}
	return content, nil
}

// Name returns chain(a->b->...).
func (c *ChainCleaner) Name() string {
	names := lo.Map(c.cleaners, func(cl Cleaner, _ int) string { return cl.Name() })
	return "chain(" + strings.Join(names, "->") + ")"
}
