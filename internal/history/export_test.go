package history

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/antoniostano/candidly/internal/providers"
)

func TestExportCSVRoundTrip(t *testing.T) {
	question := "Given a list, say [1,2,3],\nhow would you reverse it \"in place\"?"
	answer := "Swap ends, walk inward."
	ts := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	sessions := []Session{{
		ID:        "s-1",
		StartTime: ts,
		Questions: []QuestionAnswer{{
			ID:        "q-1",
			Question:  question,
			Answer:    answer,
			Source:    "screen",
			Mode:      "full",
			Provider:  "gemini",
			Timestamp: ts,
			CodeSnippets: []providers.CodeSnippet{
				{Language: "python", Code: "xs.reverse()"},
			},
		}},
	}}

	out := ExportCSV(sessions)
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d rows, want header + 1", len(records))
	}
	row := records[1]
	if len(row) != 8 {
		t.Fatalf("row has %d columns: %v", len(row), row)
	}
	if row[0] != "s-1" {
		t.Fatalf("session id column = %q", row[0])
	}
	if row[1] != "2026-08-30T12:00:00Z" {
		t.Fatalf("timestamp column = %q", row[1])
	}
	if row[2] != question {
		t.Fatalf("question not recovered: %q", row[2])
	}
	if row[3] != answer {
		t.Fatalf("answer not recovered: %q", row[3])
	}
	if !strings.Contains(row[4], `"language":"python"`) {
		t.Fatalf("snippets column = %q", row[4])
	}
	if row[5] != "screen" || row[6] != "full" || row[7] != "gemini" {
		t.Fatalf("trailing columns wrong: %v", row[5:])
	}
}

func TestExportCSVPlainValuesUnquoted(t *testing.T) {
	sessions := []Session{{
		ID: "s-1",
		Questions: []QuestionAnswer{{
			Question:  "What is Go?",
			Answer:    "A language.",
			Source:    "audio",
			Mode:      "hints",
			Provider:  "openai",
			Timestamp: time.Unix(0, 0).UTC(),
		}},
	}}
	out := ExportCSV(sessions)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}
	if strings.Contains(lines[1], `"`) {
		t.Fatalf("plain values were quoted: %q", lines[1])
	}
}

func TestExportJSON(t *testing.T) {
	sessions := []Session{{ID: "s-1", Questions: []QuestionAnswer{}}}
	out, err := ExportJSON(sessions)
	if err != nil {
		t.Fatalf("export json: %v", err)
	}
	if !strings.Contains(out, `"id": "s-1"`) {
		t.Fatalf("json export missing session: %s", out)
	}
}

func TestExportDispatch(t *testing.T) {
	if _, err := Export(nil, "xml"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
	if !ValidFormat(FormatJSON) || !ValidFormat(FormatCSV) || ValidFormat("xml") {
		t.Fatalf("ValidFormat misclassifies formats")
	}
}

func TestExportFilename(t *testing.T) {
	now := time.Date(2026, 8, 31, 9, 30, 0, 0, time.UTC)
	if got := ExportFilename(FormatCSV, now); got != "interview-sessions-2026-08-31.csv" {
		t.Fatalf("filename = %q", got)
	}
}
