// Package dedup removes training samples whose assistant-authored content
// repeats an earlier sample's.
//
// Only gpt messages feed the hash: human prompts are frequently identical
// templated boilerplate across sessions (hook check, mail check) and must
// not suppress otherwise-distinct assistant behavior.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/MikeSquared-Agency/distill/internal/format"
)

// hashSep separates assistant messages before hashing.
const hashSep = "\n---\n"

// keyLen is the hex-digit width of the dedup key. 64 bits of digest is
// plenty at the target corpus scale; widen if collisions ever matter.
const keyLen = 16

// Set tracks dedup keys for one pipeline run. It is an explicit object,
// not ambient state, so per-role or test runs stay isolated.
type Set struct {
	seen map[string]struct{}
}

// NewSet returns an empty dedup set.
func NewSet() *Set {
	return &Set{seen: make(map[string]struct{})}
}

// ContentHash computes the dedup key over a sample's gpt messages.
func ContentHash(conversations []format.Message) string {
	var gptParts []string
	for _, msg := range conversations {
		if msg.From == "gpt" {
			gptParts = append(gptParts, msg.Value)
		}
	}

	sum := sha256.Sum256([]byte(strings.Join(gptParts, hashSep)))
	return hex.EncodeToString(sum[:])[:keyLen]
}

// Filter returns the samples whose content hash has not been seen before,
// preserving first-occurrence order. The set retains every key it sees, so
// filtering spans multiple calls on the same set.
func (s *Set) Filter(samples []format.Sample) []format.Sample {
	var unique []format.Sample
	for _, sample := range samples {
		h := ContentHash(sample.Conversations)
		if _, dup := s.seen[h]; dup {
			continue
		}
		s.seen[h] = struct{}{}
		unique = append(unique, sample)
	}
	return unique
}

// Len reports how many distinct keys the set has seen.
func (s *Set) Len() int {
	return len(s.seen)
}
