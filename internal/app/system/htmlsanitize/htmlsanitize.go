// Package htmlsanitize strips dangerous markup from user-authored
// message bodies before they are stored.
package htmlsanitize

import "github.com/microcosm-cc/bluemonday"

// policy allows user-generated content: formatting, links (forced to
// rel=nofollow), and tables. Script, event handlers, and javascript:
// URLs are stripped.
var policy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("colspan", "rowspan").OnElements("td", "th")
	return p
}()

// Sanitize returns the input with disallowed markup removed.
func Sanitize(in string) string {
	return policy.Sanitize(in)
}
