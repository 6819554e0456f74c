package fragment

import "github.com/microcosm-cc/bluemonday"

// Allowlist is the fixed set of tags the pipeline trusts. Anything else
// coming back from the reconstruction service is a contract violation and
// is stripped, keeping only its text content.
var Allowlist = []string{"h1", "h2", "p", "br", "ul", "li", "strong"}

// policy allows exactly the allowlisted elements with no attributes.
var policy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(Allowlist...)
	return p
}()

// Sanitize enforces the tag allowlist on raw extractor output. Scripts,
// attributes and unknown elements are removed; their text survives where
// bluemonday keeps it (script/style bodies do not).
func Sanitize(raw string) string {
	return policy.Sanitize(raw)
}
