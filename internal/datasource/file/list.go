package file

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReadList reads a job list: one job config path per line, in order.
// Blank lines are skipped and '#' starts a comment, either on its own line
// or after whitespace following a path. Relative paths are resolved against
// the list's directory so a list travels with its job files.
func ReadList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("file: job list: %w", err)
	}
	defer f.Close()

	dir := filepath.Dir(path)
	var jobs []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		entry := stripComment(sc.Text())
		if entry == "" {
			continue
		}
		if !filepath.IsAbs(entry) {
			entry = filepath.Join(dir, entry)
		}
		jobs = append(jobs, entry)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("file: job list %s: %w", path, err)
	}
	return jobs, nil
}

func stripComment(line string) string {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, "#") {
		return ""
	}
	if i := strings.Index(line, " #"); i >= 0 {
		line = line[:i]
	}
	if i := strings.Index(line, "\t#"); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}
