// Package roles maps session sources to canonical Gas Town agent roles and
// supplies the per-role system prompts used by the sample formatter.
//
// Directory naming convention:
//
//	-home-ubuntu-gt-mayor/                   → mayor
//	-home-ubuntu-gt-deacon/                  → deacon
//	-home-ubuntu-gt-deacon-dogs-boot/        → boot
//	-home-ubuntu-gt-{rig}-witness/           → witness
//	-home-ubuntu-gt-{rig}-refinery-rig/      → refinery
//	-home-ubuntu-gt-{rig}-crew-{name}-{rig}/ → crew
//	-home-ubuntu-gt-{rig}-polecats-{name}/   → polecat
//
// When the directory gives nothing away, the first human message often
// carries a "[GAS TOWN] role <- source" header.
package roles

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Unknown is the sentinel role for unclassifiable sessions.
const Unknown = "unknown"

// Canonical is the set of recognized Gas Town roles.
var Canonical = map[string]bool{
	"mayor":    true,
	"deacon":   true,
	"boot":     true,
	"witness":  true,
	"refinery": true,
	"polecat":  true,
	"crew":     true,
}

// Directory patterns ordered by specificity; first match wins.
var dirPatterns = []struct {
	re   *regexp.Regexp
	role string
}{
	{regexp.MustCompile(`-deacon-dogs-boot$`), "boot"},
	{regexp.MustCompile(`-deacon-dogs-`), "deacon"},
	{regexp.MustCompile(`-deacon$`), "deacon"},
	{regexp.MustCompile(`-mayor$`), "mayor"},
	{regexp.MustCompile(`-witness$`), "witness"},
	{regexp.MustCompile(`-refinery-`), "refinery"},
	{regexp.MustCompile(`-crew-`), "crew"},
	{regexp.MustCompile(`-polecats-`), "polecat"},
}

var contentPattern = regexp.MustCompile(`\[GAS TOWN\]\s+(\w+)\s+<-`)

// FromPath extracts the role from a session file's parent directory name.
// Returns "" if the directory is unrecognized.
func FromPath(sessionPath string) string {
	dirName := filepath.Base(filepath.Dir(sessionPath))
	for _, p := range dirPatterns {
		if p.re.MatchString(dirName) {
			return p.role
		}
	}
	return ""
}

// FromContent extracts the role from the first human-authored message.
// Returns "" if no recognizable header is present.
func FromContent(firstUserContent string) string {
	m := contentPattern.FindStringSubmatch(firstUserContent)
	if m == nil {
		return ""
	}
	role := strings.ToLower(m[1])
	if Canonical[role] {
		return role
	}
	return ""
}

// Tag determines the role for a session: path-based detection first, then
// content-based, then the Unknown sentinel.
func Tag(sessionPath, firstUserContent string) string {
	if role := FromPath(sessionPath); role != "" {
		return role
	}
	if firstUserContent != "" {
		if role := FromContent(firstUserContent); role != "" {
			return role
		}
	}
	return Unknown
}
