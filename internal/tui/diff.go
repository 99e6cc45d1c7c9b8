package tui

import (
	"strings"

	"github.com/1broseidon/vega/internal/config"
)

type diffKind int

const (
	diffRemoved diffKind = iota
	diffAdded
)

type diffLine struct {
	kind diffKind
	text string
}

// yamlSection is one top-level key of a marshaled config with its nested
// lines.
type yamlSection struct {
	key   string
	lines []string
}

// computeDiffLines diffs the YAML renderings of two configs key by key. Every
// top-level key whose rendering changed contributes its old lines as removed
// and its new lines as added. It returns nil when nothing changed.
func computeDiffLines(original, current *config.Config) []diffLine {
	if original == nil || current == nil {
		return nil
	}

	origBytes, err := config.Marshal(original)
	if err != nil {
		return nil
	}
	currBytes, err := config.Marshal(current)
	if err != nil {
		return nil
	}

	before := splitSections(string(origBytes))
	after := splitSections(string(currBytes))

	old := make(map[string]yamlSection, len(before))
	for _, s := range before {
		old[s.key] = s
	}

	var lines []diffLine
	seen := make(map[string]bool, len(after))
	for _, s := range after {
		seen[s.key] = true
		prev, ok := old[s.key]
		if ok && strings.Join(prev.lines, "\n") == strings.Join(s.lines, "\n") {
			continue
		}
		lines = appendSection(lines, diffRemoved, prev.lines)
		lines = appendSection(lines, diffAdded, s.lines)
	}
	for _, s := range before {
		if !seen[s.key] {
			lines = appendSection(lines, diffRemoved, s.lines)
		}
	}
	return lines
}

// splitSections groups YAML lines under the unindented key that opens them.
func splitSections(doc string) []yamlSection {
	var sections []yamlSection
	for _, line := range strings.Split(strings.TrimSpace(doc), "\n") {
		if line == "" {
			continue
		}
		nested := strings.HasPrefix(line, " ") || strings.HasPrefix(line, "-")
		if nested && len(sections) > 0 {
			last := &sections[len(sections)-1]
			last.lines = append(last.lines, line)
			continue
		}
		key, _, _ := strings.Cut(line, ":")
		sections = append(sections, yamlSection{key: key, lines: []string{line}})
	}
	return sections
}

func appendSection(lines []diffLine, kind diffKind, text []string) []diffLine {
	for _, t := range text {
		lines = append(lines, diffLine{kind: kind, text: t})
	}
	return lines
}
