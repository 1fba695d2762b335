package history

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// ValidFormat reports whether format names a supported export format.
func ValidFormat(format string) bool {
	return format == FormatJSON || format == FormatCSV
}

// Export renders sessions in the requested format.
func Export(sessions []Session, format string) (string, error) {
	switch format {
	case FormatJSON:
		return ExportJSON(sessions)
	case FormatCSV:
		return ExportCSV(sessions), nil
	default:
		return "", fmt.Errorf("unsupported export format %q", format)
	}
}

// ExportFilename builds the download name for an export, e.g.
// interview-sessions-2026-08-31.csv.
func ExportFilename(format string, now time.Time) string {
	return "interview-sessions-" + now.Format("2006-01-02") + "." + format
}

func ExportJSON(sessions []Session) (string, error) {
	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode sessions: %w", err)
	}
	return string(data), nil
}

// ExportCSV writes one row per question/answer pair. Values containing a
// comma, double quote, or newline are quoted with internal quotes doubled;
// all other values stay unquoted.
func ExportCSV(sessions []Session) string {
	rows := []string{"Session ID,Timestamp,Question,Answer,Code Snippets,Source,Mode,Provider"}
	for _, session := range sessions {
		for _, qa := range session.Questions {
			snippets := ""
			if len(qa.CodeSnippets) > 0 {
				if data, err := json.Marshal(qa.CodeSnippets); err == nil {
					snippets = string(data)
				}
			}
			row := []string{
				session.ID,
				qa.Timestamp.UTC().Format(time.RFC3339),
				escapeCSV(qa.Question),
				escapeCSV(qa.Answer),
				escapeCSV(snippets),
				qa.Source,
				qa.Mode,
				qa.Provider,
			}
			rows = append(rows, strings.Join(row, ","))
		}
	}
	return strings.Join(rows, "\n")
}

func escapeCSV(value string) string {
	escaped := strings.ReplaceAll(value, `"`, `""`)
	if strings.ContainsAny(escaped, ",\n\"") {
		return `"` + escaped + `"`
	}
	return escaped
}
