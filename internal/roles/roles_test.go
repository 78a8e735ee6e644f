package roles

import (
	"strings"
	"testing"
)

func TestFromPath(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"/home/u/.claude/projects/-home-ubuntu-gt-mayor/abc.jsonl", "mayor"},
		{"/home/u/.claude/projects/-home-ubuntu-gt-deacon/abc.jsonl", "deacon"},
		{"/home/u/.claude/projects/-home-ubuntu-gt-deacon-dogs-boot/abc.jsonl", "boot"},
		{"/home/u/.claude/projects/-home-ubuntu-gt-deacon-dogs-alpha/abc.jsonl", "deacon"},
		{"/home/u/.claude/projects/-home-ubuntu-gt-hauler-witness/abc.jsonl", "witness"},
		{"/home/u/.claude/projects/-home-ubuntu-gt-hauler-refinery-rig/abc.jsonl", "refinery"},
		{"/home/u/.claude/projects/-home-ubuntu-gt-hauler-crew-max-hauler/abc.jsonl", "crew"},
		{"/home/u/.claude/projects/-home-ubuntu-gt-hauler-polecats-nux/abc.jsonl", "polecat"},
		{"/home/u/.claude/projects/-home-ubuntu-other/abc.jsonl", ""},
	}
	for _, c := range cases {
		if got := FromPath(c.path); got != c.want {
			t.Errorf("FromPath(%q) = %q, want %q", c.path, got, c.want)
		}
	}
}

func TestFromContent(t *testing.T) {
	if got := FromContent("[GAS TOWN] mayor <- human\nCheck your hook."); got != "mayor" {
		t.Errorf("got %q, want mayor", got)
	}
	if got := FromContent("[GAS TOWN] intruder <- human"); got != "" {
		t.Errorf("non-canonical role accepted: %q", got)
	}
	if got := FromContent("plain message"); got != "" {
		t.Errorf("got %q for plain message", got)
	}
}

func TestTag_PathWinsOverContent(t *testing.T) {
	got := Tag("/p/-home-ubuntu-gt-mayor/s.jsonl", "[GAS TOWN] witness <- deacon")
	if got != "mayor" {
		t.Errorf("got %q, want path-derived mayor", got)
	}
}

func TestTag_ContentFallback(t *testing.T) {
	got := Tag("/p/unrecognized/s.jsonl", "[GAS TOWN] polecat <- deacon")
	if got != "polecat" {
		t.Errorf("got %q, want polecat", got)
	}
}

func TestTag_Unknown(t *testing.T) {
	if got := Tag("/p/unrecognized/s.jsonl", "hello"); got != Unknown {
		t.Errorf("got %q, want %q", got, Unknown)
	}
}

func TestSystemPrompt(t *testing.T) {
	for role := range Canonical {
		p := SystemPrompt(role)
		if !strings.HasPrefix(p, "[GAS TOWN ROLE: "+role+"]") {
			t.Errorf("prompt for %s has wrong header: %q", role, p[:40])
		}
	}
	if got := SystemPrompt("unknown"); !strings.HasPrefix(got, "[GAS TOWN ROLE: agent]") {
		t.Errorf("default prompt = %q", got[:40])
	}
}
