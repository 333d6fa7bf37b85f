// Package batch submits predictions read from a file, one line per match.
package batch

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sawdustofmind/matchday-predictor/internal/log"
	"github.com/sawdustofmind/matchday-predictor/internal/predict"
)

// Line is one prediction from a batch file: match_id,home,away.
type Line struct {
	Number  int
	MatchID int
	Home    int
	Away    int
}

func ParseFile(filePath string) ([]Line, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			log.Error("Failed to close file", zap.Error(closeErr))
		}
	}()

	return Parse(file)
}

// Parse reads batch lines. Blank lines and # comments are skipped, malformed
// lines are logged and skipped, and a match listed twice keeps its last line.
func Parse(r io.Reader) ([]Line, error) {
	scanner := bufio.NewScanner(r)

	// long lines are skipped as malformed instead of failing the file
	const maxCapacity = 10 * 1024 * 1024 // 10MB
	scanner.Buffer(make([]byte, 0, 64*1024), maxCapacity)

	byMatch := make(map[int]Line)
	lineNum := 0
	skipped := 0

	for scanner.Scan() {
		lineNum++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		line, err := parseLine(text)
		if err != nil {
			log.Warn("Skipping malformed line",
				zap.Int("line_number", lineNum),
				zap.String("line", clip(text)),
				zap.Error(err),
			)
			skipped++
			continue
		}
		line.Number = lineNum

		if prev, ok := byMatch[line.MatchID]; ok {
			log.Debug("Match listed again, keeping the later line",
				zap.Int("match_id", line.MatchID),
				zap.Int("dropped_line", prev.Number),
				zap.Int("line_number", lineNum),
			)
		}
		byMatch[line.MatchID] = line
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	lines := make([]Line, 0, len(byMatch))
	for _, l := range byMatch {
		lines = append(lines, l)
	}
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].Number < lines[j].Number
	})

	log.Info("Parsed batch", zap.Int("predictions", len(lines)), zap.Int("skipped", skipped))
	return lines, nil
}

func clip(s string) string {
	const maxLen = 80
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

func parseLine(text string) (Line, error) {
	fields := strings.Split(text, ",")
	if len(fields) != 3 {
		return Line{}, fmt.Errorf("want match_id,home,away, got %d fields", len(fields))
	}

	id, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil || id <= 0 {
		return Line{}, fmt.Errorf("invalid match id %q", fields[0])
	}
	home, away, err := predict.ParseScores(fields[1], fields[2])
	if err != nil {
		return Line{}, err
	}
	return Line{MatchID: id, Home: home, Away: away}, nil
}
