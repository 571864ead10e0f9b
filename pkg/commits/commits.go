// Package commits parses the conventional-commit records the changelog
// generator consumes.
//
// Records arrive either from a commit log fixture (one pipe-delimited
// record per line) or straight from `git log` via LogReader. Malformed
// records are fatal: a commit that cannot be attributed to a type and
// scope cannot be placed in the changelog.
package commits

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Commit type constants, ordered by changelog significance.
const (
	TypeFeat        = "feat"
	TypeEnhancement = "enhancement"
	TypeFix         = "fix"
	TypePerf        = "perf"
	TypeDocs        = "docs"
	TypeRefactor    = "refactor"
	TypeStyle       = "style"
	TypeTest        = "test"
	TypeChore       = "chore"
)

// Types lists the known commit types in changelog order.
var Types = []string{
	TypeFeat,
	TypeEnhancement,
	TypeFix,
	TypePerf,
	TypeDocs,
	TypeRefactor,
	TypeStyle,
	TypeTest,
	TypeChore,
}

var knownTypes = func() map[string]bool {
	m := make(map[string]bool, len(Types))
	for _, t := range Types {
		m[t] = true
	}
	return m
}()

// Commit is one parsed commit record.
type Commit struct {
	SHA          string
	Author       string
	Date         time.Time
	Type         string
	Scope        string
	Breaking     bool
	Description  string
	FilesChanged int
	Insertions   int
	Deletions    int
}

// ShortSHA returns the abbreviated hash used in rendered changelogs.
func (c Commit) ShortSHA() string {
	if len(c.SHA) <= 7 {
		return c.SHA
	}
	return c.SHA[:7]
}

// messageRe matches `type(scope)!: description`. Scope and `!` are optional.
var messageRe = regexp.MustCompile(`^([a-z]+)(?:\(([a-z0-9_ ]+)\))?(!)?: (.+)$`)

// ParseMessage decomposes a conventional commit subject line.
func ParseMessage(msg string) (ctype, scope, description string, breaking bool, err error) {
	m := messageRe.FindStringSubmatch(msg)
	if m == nil {
		return "", "", "", false, fmt.Errorf("commit message %q does not follow `type(scope)!: description`", msg)
	}
	ctype, scope, description = m[1], m[2], m[4]
	breaking = m[3] == "!"
	if !knownTypes[ctype] {
		return "", "", "", false, fmt.Errorf("commit message %q: unknown type %q", msg, ctype)
	}
	return ctype, scope, description, breaking, nil
}

// ParseRecord parses one pipe-delimited record:
//
//	sha|author|date|message|files_changed|insertions|deletions
func ParseRecord(line string) (Commit, error) {
	parts := strings.Split(line, "|")
	if len(parts) != 7 {
		return Commit{}, fmt.Errorf("commit record %q: want 7 pipe-delimited fields, got %d", line, len(parts))
	}

	sha := strings.TrimSpace(parts[0])
	if sha == "" {
		return Commit{}, fmt.Errorf("commit record %q: empty sha", line)
	}

	date, err := time.Parse(time.RFC3339, strings.TrimSpace(parts[2]))
	if err != nil {
		return Commit{}, fmt.Errorf("commit %s: invalid date: %w", sha, err)
	}

	ctype, scope, desc, breaking, err := ParseMessage(strings.TrimSpace(parts[3]))
	if err != nil {
		return Commit{}, fmt.Errorf("commit %s: %w", sha, err)
	}

	nums := make([]int, 3)
	for i, raw := range parts[4:7] {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return Commit{}, fmt.Errorf("commit %s: invalid stat %q: %w", sha, raw, err)
		}
		nums[i] = n
	}

	return Commit{
		SHA:          sha,
		Author:       strings.TrimSpace(parts[1]),
		Date:         date,
		Type:         ctype,
		Scope:        scope,
		Breaking:     breaking,
		Description:  desc,
		FilesChanged: nums[0],
		Insertions:   nums[1],
		Deletions:    nums[2],
	}, nil
}

// ParseLog reads a commit log, one record per line. Blank lines and
// `#` comment lines are skipped.
func ParseLog(r io.Reader) ([]Commit, error) {
	var commits []Commit
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		c, err := ParseRecord(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		commits = append(commits, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return commits, nil
}

// ValidateScopes checks every commit scope against the allowed set
// (component names plus the fixed non-component scopes).
func ValidateScopes(commits []Commit, allowed map[string]bool) error {
	for _, c := range commits {
		if c.Scope == "" {
			continue
		}
		if !allowed[c.Scope] {
			return fmt.Errorf("commit %s: unknown scope %q", c.ShortSHA(), c.Scope)
		}
	}
	return nil
}

// CommonScopes are the scopes accepted regardless of loaded components.
var CommonScopes = []string{"core", "config", "cli", "deps", "observability", "platforms", "security"}

// AllowedScopes builds the scope allow list from component names.
func AllowedScopes(componentNames map[string]bool) map[string]bool {
	allowed := make(map[string]bool, len(componentNames)+len(CommonScopes))
	for name := range componentNames {
		allowed[name] = true
	}
	for _, s := range CommonScopes {
		allowed[s] = true
	}
	return allowed
}

// GroupByType buckets commits by type, preserving input order.
func GroupByType(commits []Commit) map[string][]Commit {
	groups := make(map[string][]Commit)
	for _, c := range commits {
		groups[c.Type] = append(groups[c.Type], c)
	}
	return groups
}

// Breaking returns the breaking-change commits in input order.
func Breaking(commits []Commit) []Commit {
	var out []Commit
	for _, c := range commits {
		if c.Breaking {
			out = append(out, c)
		}
	}
	return out
}

// CountByScope tallies commits per scope, sorted by count descending
// then scope name. Scopeless commits count under "other".
func CountByScope(commits []Commit) []ScopeCount {
	tally := make(map[string]int)
	for _, c := range commits {
		scope := c.Scope
		if scope == "" {
			scope = "other"
		}
		tally[scope]++
	}
	counts := make([]ScopeCount, 0, len(tally))
	for scope, n := range tally {
		counts = append(counts, ScopeCount{Scope: scope, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Scope < counts[j].Scope
	})
	return counts
}

// ScopeCount is one entry of a per-scope tally.
type ScopeCount struct {
	Scope string
	Count int
}
