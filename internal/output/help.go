package output

import "strings"

// Semantic color roles for help output.
const (
	colorTitle       = bold + cyan
	colorSection     = bold + yellow
	colorPlaceholder = green
	colorFlag        = yellow
	colorDescription = dim
	colorExample     = cyan
)

// HelpTitle formats the main help title line.
func (w *Writer) HelpTitle(title string) {
	w.Println("%s", w.paint(colorTitle, title))
}

// HelpSection formats a section header (e.g., "Options:").
func (w *Writer) HelpSection(title string) {
	w.Lines("", w.paint(colorSection, title))
}

// HelpText prints an indented paragraph line.
func (w *Writer) HelpText(text string) {
	w.Println("  %s", text)
}

// HelpFlag formats a flag with its description.
func (w *Writer) HelpFlag(name, description string, width int) {
	if !w.color {
		w.Println("  %-*s  %s", width, name, description)
		return
	}
	padding := max(0, width-len(name))
	w.Println("  %s%s%s%s  %s%s%s", colorFlag, w.colorPlaceholders(name), reset,
		strings.Repeat(" ", padding), colorDescription, description, reset)
}

// HelpUsage formats usage lines.
func (w *Writer) HelpUsage(usage string) {
	if w.color {
		usage = w.colorPlaceholders(usage)
	}
	w.Println("  %s", usage)
}

// HelpExample formats an example command with description.
func (w *Writer) HelpExample(command, description string) {
	lines := []string{"  " + w.paint(colorExample, command)}
	if description != "" {
		lines = append(lines, "      "+w.paint(colorDescription, description))
	}
	w.Lines(lines...)
}

// colorPlaceholders highlights <placeholder> patterns in text.
func (w *Writer) colorPlaceholders(text string) string {
	var result strings.Builder
	i := 0
	for i < len(text) {
		if text[i] == '<' {
			end := strings.Index(text[i:], ">")
			if end != -1 {
				result.WriteString(reset)
				result.WriteString(colorPlaceholder)
				result.WriteString(text[i : i+end+1])
				result.WriteString(reset)
				i += end + 1
				continue
			}
		}
		result.WriteByte(text[i])
		i++
	}
	return result.String()
}
