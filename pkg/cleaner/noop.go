package cleaner

// NoopCleaner hands the fetched page to the extractor as is. It backs
// --no-clean, where cell text must keep its original whitespace and braces.
type NoopCleaner struct{}

// NewNoop returns the pass-through cleaner.
func NewNoop() *NoopCleaner {
	return &NoopCleaner{}
}

// Clean never fails and never changes html.
func (c *NoopCleaner) Clean(html string) (string, error) {
	return html, nil
}

// Name identifies the cleaner in logs and chain names.
func (c *NoopCleaner) Name() string {
	return "noop"
}
