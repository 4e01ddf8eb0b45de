package report

import (
	"fmt"
	"strings"

	"github.com/natefinch/atomic"
)

// WriteFile writes the rendered report atomically so a crash mid-write never
// leaves a truncated report behind.
func WriteFile(path, content string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("report path is empty")
	}
	if err := atomic.WriteFile(path, strings.NewReader(content)); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}
