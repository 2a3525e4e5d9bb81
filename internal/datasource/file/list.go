package file

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadList reads a source list: one local path or http(s) URL per line.
// Blank lines and lines starting with '#' are skipped, order is preserved.
func ReadList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open list %s: %w", path, err)
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan list %s: %w", path, err)
	}
	return out, nil
}
