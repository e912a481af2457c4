package cleaner

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
)

var (
	// innermost {...} blocks: inline CSS rules and script bodies
	reBraceBlock = regexp2.MustCompile(`\{[^{}]*\}`, regexp2.None)
	// leftovers of stripped stylesheet selectors such as "css-1x2y:hover"
	reHoverArtifact = regexp2.MustCompile(`css[^{}]*hover`, regexp2.None)
	reSpaceRun      = regexp2.MustCompile(` +`, regexp2.None)
)

var lineBreaks = strings.NewReplacer("\n", " ", "\t", " ", "\r", " ")

// CompactCleaner flattens a page to a single line and drops brace
// delimited blocks so that embedded styles and scripts do not leak into
// cell text. Only the innermost level of braces is removed.
type CompactCleaner struct{}

// NewCompact creates a compacting cleaner.
func NewCompact() *CompactCleaner {
	return &CompactCleaner{}
}

// Clean replaces line breaks and tabs with spaces, blanks out brace blocks
// and hover artifacts, then collapses runs of spaces.
func (c *CompactCleaner) Clean(html string) (string, error) {
	out := lineBreaks.Replace(html)

	for _, re := range []*regexp2.Regexp{reBraceBlock, reHoverArtifact, reSpaceRun} {
		var err error
		out, err = re.Replace(out, " ", -1, -1)
		if err != nil {
			return "", fmt.Errorf("compact %q: %w", re.String(), err)
		}
	}
	return out, nil
}

// Name returns the cleaner type.
func (c *CompactCleaner) Name() string {
	return "compact"
}
