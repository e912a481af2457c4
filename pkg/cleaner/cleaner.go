// Package cleaner provides text transforms applied to raw HTML before
// table extraction.
//
// Cleaning is optional: the extractor accepts any HTML, so cleaners only
// need to leave the markup parseable.
package cleaner

// Cleaner transforms raw HTML into the text handed to the extractor.
type Cleaner interface {
	// Clean transforms the input HTML.
	Clean(html string) (string, error)

	// Name returns the cleaner type for logging/debugging.
	Name() string
}
