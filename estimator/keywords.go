package estimator

import "strings"

// KeywordTable classifies call sites by callee text. The tables are
// data, not code: config can replace them without touching the
// detection passes.
type KeywordTable struct {
	Network   []string `yaml:"network"`
	IO        []string `yaml:"io"`
	Inference []string `yaml:"inference"`
}

// DefaultKeywords returns the built-in callee keyword sets.
func DefaultKeywords() KeywordTable {
	return KeywordTable{
		// Network fetches, common HTTP client methods, raw request
		// calls, legacy async request calls.
		Network: []string{
			"fetch",
			"http.get",
			"http.post",
			"http.head",
			"client.do",
			"axios",
			"request",
			"xmlhttprequest",
		},
		// File read/write, filesystem-namespace calls, browser-style
		// persistent storage.
		IO: []string{
			"readfile",
			"writefile",
			"os.open",
			"os.create",
			"fs.",
			"localstorage",
		},
		// Named ML/AI framework calls plus generic inference verbs.
		Inference: []string{
			"tensorflow",
			"tf.",
			"torch",
			"predict",
			"inference",
		},
	}
}

// matches reports whether callee text matches any keyword in the set.
// Matching is case-insensitive substring containment over the rendered
// callee path, so qualified and bare spellings both hit.
func matches(callee string, keywords []string) bool {
	callee = strings.ToLower(callee)
	for _, kw := range keywords {
		if strings.Contains(callee, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
