// Package scrub redacts secrets from training data.
//
// Session transcripts routinely contain live tokens (GitHub OAuth, cloud
// API keys, private keys) that must never reach a training set or a
// repository. Scrubbing runs before deduplication so redaction normalizes
// content ahead of hash computation.
package scrub

import (
	"regexp"
	"strings"

	"github.com/MikeSquared-Agency/distill/internal/format"
)

// rule matches one secret format. When group is zero the whole match is
// replaced; otherwise only that submatch is, preserving the surrounding
// key/header text.
type rule struct {
	re          *regexp.Regexp
	replacement string
	group       int
}

var rules = []rule{
	// GitHub tokens
	{regexp.MustCompile(`gho_[A-Za-z0-9]{36,}`), "[GITHUB_OAUTH_REDACTED]", 0},
	{regexp.MustCompile(`ghp_[A-Za-z0-9]{36,}`), "[GITHUB_PAT_REDACTED]", 0},
	{regexp.MustCompile(`ghs_[A-Za-z0-9]{36,}`), "[GITHUB_SECRET_REDACTED]", 0},
	{regexp.MustCompile(`github_pat_[A-Za-z0-9_]{40,}`), "[GITHUB_PAT_REDACTED]", 0},

	// Google tokens
	{regexp.MustCompile(`ya29\.[A-Za-z0-9_-]{50,}`), "[GOOGLE_ACCESS_TOKEN_REDACTED]", 0},
	{regexp.MustCompile(`1//[A-Za-z0-9_-]{40,}`), "[GOOGLE_REFRESH_TOKEN_REDACTED]", 0},

	// Generic API keys in key-value context
	{regexp.MustCompile(`(?i)(?:api[_-]?key|apikey|secret|token|password|credential)[\s:=]+['"]?([A-Za-z0-9+/=_-]{32,})['"]?`), "[API_KEY_REDACTED]", 1},

	// AWS keys
	{regexp.MustCompile(`AKIA[A-Z0-9]{16}`), "[AWS_KEY_REDACTED]", 0},
	{regexp.MustCompile(`(?i)(?:aws_secret_access_key|secret_key)[\s:=]+['"]?([A-Za-z0-9+/=]{40})['"]?`), "[AWS_SECRET_REDACTED]", 1},

	// Anthropic / OpenAI keys
	{regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]{40,}`), "[ANTHROPIC_KEY_REDACTED]", 0},
	{regexp.MustCompile(`sk-[A-Za-z0-9]{32,}`), "[OPENAI_KEY_REDACTED]", 0},

	// SSH private keys
	{regexp.MustCompile(`(?s)-----BEGIN (?:RSA |EC |DSA |OPENSSH )?PRIVATE KEY-----.*?-----END (?:RSA |EC |DSA |OPENSSH )?PRIVATE KEY-----`), "[PRIVATE_KEY_REDACTED]", 0},

	// Bearer tokens in headers
	{regexp.MustCompile(`(?i)(?:Bearer|Authorization)[\s:]+['"]?([A-Za-z0-9._+/=-]{30,})['"]?`), "[BEARER_TOKEN_REDACTED]", 1},

	// Env-var token assignments
	{regexp.MustCompile(`GH_TOKEN[=\s]+([A-Za-z0-9_]{30,})`), "[GH_TOKEN_REDACTED]", 1},
}

// Text redacts all detected secrets from text. Returns the scrubbed text
// and the number of secrets found.
func Text(text string) (string, int) {
	total := 0
	for _, r := range rules {
		text, total = applyRule(text, r, total)
	}
	return text, total
}

func applyRule(text string, r rule, total int) (string, int) {
	out := r.re.ReplaceAllStringFunc(text, func(m string) string {
		if r.group == 0 {
			total++
			return r.replacement
		}
		sub := r.re.FindStringSubmatch(m)
		if len(sub) <= r.group || sub[r.group] == "" {
			return m
		}
		total++
		return strings.Replace(m, sub[r.group], r.replacement, 1)
	})
	return out, total
}

// Sample redacts secrets from every message of a training sample in place.
// Returns the total number of secrets found.
func Sample(s *format.Sample) int {
	total := 0
	for i := range s.Conversations {
		scrubbed, count := Text(s.Conversations[i].Value)
		if count > 0 {
			s.Conversations[i].Value = scrubbed
			total += count
		}
	}
	return total
}
