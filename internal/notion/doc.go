// Package notion provides a client and Markdown converter for Notion pages.
//
// The package covers:
//   - API client for listing block children, with bearer auth and throttling
//   - Extraction of the page identifier embedded in a Notion URL
//   - Conversion of a block sequence to Markdown
package notion
