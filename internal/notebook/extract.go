package notebook

import "strings"

// Transform rewrites a single source line. It must be pure: it is applied
// independently per line with no cross-line state.
type Transform func(line string) string

// ExtractScript flattens the code cells of doc into one runnable script.
// Lines starting with a magic marker ('%') or shell escape ('!') are dropped.
// When transform is non-nil it is applied to each surviving line after
// trailing whitespace is trimmed.
func ExtractScript(doc Document, transform Transform) string {
	var lines []string
	for _, cell := range doc.Cells {
		if cell.CellType != "code" {
			continue
		}
		for _, line := range cell.Source {
			if strings.HasPrefix(line, "%") || strings.HasPrefix(line, "!") {
				continue
			}
			if transform != nil {
				line = transform(strings.TrimRight(line, " \t\r\n"))
			}
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// ChainTransforms composes transforms left to right into one Transform.
func ChainTransforms(transforms ...Transform) Transform {
	if len(transforms) == 0 {
		return nil
	}
	return func(line string) string {
		for _, t := range transforms {
			line = t(line)
		}
		return line
	}
}

// ReplaceLiteral returns a Transform substituting old with new in each line.
func ReplaceLiteral(old, new string) Transform {
	return func(line string) string { return strings.ReplaceAll(line, old, new) }
}

// CommentOut returns a Transform that comments out any occurrence of stmt by
// prefixing it with "# ". Used to disable statements the harness environment
// cannot satisfy (plot rendering, explicit model load/unload).
func CommentOut(stmt string) Transform {
	return ReplaceLiteral(stmt, "# "+stmt)
}
