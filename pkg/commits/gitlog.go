package commits

import (
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// LogReader pulls commit records straight from a git repository instead
// of a commit log fixture.
type LogReader struct {
	WorkDir string
	Logger  *slog.Logger
}

// NewLogReader creates a reader for the repository at workDir.
func NewLogReader(workDir string, logger *slog.Logger) *LogReader {
	return &LogReader{WorkDir: workDir, Logger: logger}
}

// run executes a raw git command in the working directory.
func (r *LogReader) run(args ...string) (string, error) {
	if r.Logger != nil {
		r.Logger.Debug("executing git", "args", args, "dir", r.WorkDir)
	}

	cmd := exec.Command("git", args...)
	cmd.Dir = r.WorkDir

	out, err := cmd.CombinedOutput()
	output := string(out)

	if err != nil {
		return output, fmt.Errorf("git %s failed: %w\nOutput: %s", args[0], err, output)
	}

	return strings.TrimSpace(output), nil
}

// shortstatRe matches ` 3 files changed, 10 insertions(+), 2 deletions(-)`
// with any of the three counters optionally absent.
var shortstatRe = regexp.MustCompile(`(?:(\d+) files? changed)?(?:, )?(?:(\d+) insertions?\(\+\))?(?:, )?(?:(\d+) deletions?\(-\))?`)

// Read returns the commits in the given revision range (e.g.
// "v0.8.0..v0.9.0"), oldest first. Merge commits are excluded.
func (r *LogReader) Read(revRange string) ([]Commit, error) {
	args := []string{"log", "--no-merges", "--reverse", "--shortstat", "--pretty=format:%H|%an|%aI|%s"}
	if revRange != "" {
		args = append(args, revRange)
	}

	out, err := r.run(args...)
	if err != nil {
		return nil, err
	}

	var commits []Commit
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.Contains(line, "|") {
			c, err := parseLogLine(line)
			if err != nil {
				return nil, err
			}
			commits = append(commits, c)
			continue
		}

		// A stat line belongs to the most recent commit.
		if len(commits) == 0 {
			return nil, fmt.Errorf("git log: stat line %q before any commit", line)
		}
		files, ins, dels, ok := parseShortstat(line)
		if !ok {
			return nil, fmt.Errorf("git log: unrecognized stat line %q", line)
		}
		last := &commits[len(commits)-1]
		last.FilesChanged = files
		last.Insertions = ins
		last.Deletions = dels
	}

	return commits, nil
}

func parseLogLine(line string) (Commit, error) {
	parts := strings.SplitN(line, "|", 4)
	if len(parts) != 4 {
		return Commit{}, fmt.Errorf("git log: malformed line %q", line)
	}

	date, err := time.Parse(time.RFC3339, parts[2])
	if err != nil {
		return Commit{}, fmt.Errorf("commit %s: invalid date: %w", parts[0], err)
	}

	ctype, scope, desc, breaking, err := ParseMessage(parts[3])
	if err != nil {
		return Commit{}, fmt.Errorf("commit %s: %w", parts[0], err)
	}

	return Commit{
		SHA:         parts[0],
		Author:      parts[1],
		Date:        date,
		Type:        ctype,
		Scope:       scope,
		Breaking:    breaking,
		Description: desc,
	}, nil
}

func parseShortstat(line string) (files, insertions, deletions int, ok bool) {
	m := shortstatRe.FindStringSubmatch(line)
	if m == nil || (m[1] == "" && m[2] == "" && m[3] == "") {
		return 0, 0, 0, false
	}
	atoi := func(s string) int {
		if s == "" {
			return 0
		}
		n, _ := strconv.Atoi(s)
		return n
	}
	return atoi(m[1]), atoi(m[2]), atoi(m[3]), true
}
