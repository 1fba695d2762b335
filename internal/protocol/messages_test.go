package protocol

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"
)

func TestParseAudioStream(t *testing.T) {
	audio := []byte{1, 2, 3, 4}
	raw := []byte(`{"type":"audio-stream","audioBuffer":"` + base64.StdEncoding.EncodeToString(audio) + `"}`)
	parsed, err := ParseClientMessage(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	msg, ok := parsed.(AudioStream)
	if !ok {
		t.Fatalf("parsed %T, want AudioStream", parsed)
	}
	decoded, err := msg.Audio()
	if err != nil {
		t.Fatalf("decode audio: %v", err)
	}
	if !bytes.Equal(decoded, audio) {
		t.Fatalf("audio round-trip mismatch")
	}
}

func TestParseGenerateAnswer(t *testing.T) {
	raw := []byte(`{"type":"generate-answer","question":"What is a channel?","mode":"hints","provider":"claude","context":{"enabled":true,"jobTitle":"Backend Engineer"}}`)
	parsed, err := ParseClientMessage(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	msg := parsed.(GenerateAnswer)
	if msg.Question != "What is a channel?" || msg.Mode != "hints" || msg.Provider != "claude" {
		t.Fatalf("fields wrong: %+v", msg)
	}
	if msg.Context == nil || !msg.Context.Enabled || msg.Context.JobTitle != "Backend Engineer" {
		t.Fatalf("context not decoded: %+v", msg.Context)
	}
}

func TestParseValidation(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty audio", `{"type":"audio-stream","audioBuffer":""}`},
		{"empty image", `{"type":"screenshot","imageBuffer":""}`},
		{"empty question", `{"type":"generate-answer","question":""}`},
		{"empty format", `{"type":"export-sessions","format":""}`},
	}
	for _, tc := range cases {
		if _, err := ParseClientMessage([]byte(tc.raw)); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestParseUnsupportedType(t *testing.T) {
	_, err := ParseClientMessage([]byte(`{"type":"mystery"}`))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("err = %v, want ErrUnsupportedType", err)
	}
	if _, err := ParseClientMessage([]byte(`not json`)); err == nil {
		t.Fatalf("expected envelope error for malformed frame")
	}
}

func TestParseBareCommands(t *testing.T) {
	for _, raw := range []string{
		`{"type":"pause-listening"}`,
		`{"type":"resume-listening"}`,
		`{"type":"mock-next-question"}`,
		`{"type":"stop-mock-interview"}`,
	} {
		if _, err := ParseClientMessage([]byte(raw)); err != nil {
			t.Fatalf("parse %s: %v", raw, err)
		}
	}
}

func TestOutboundEventWireFormat(t *testing.T) {
	ev := AnswerReady{
		Type:      TypeAnswerReady,
		Question:  "q",
		Answer:    "a",
		Mode:      "full",
		Provider:  "openai",
		Timestamp: 1700000000000,
	}
	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"type", "question", "answer", "mode", "provider", "timestamp"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("wire format missing %q: %s", key, data)
		}
	}
	if _, ok := decoded["codeSnippets"]; ok {
		t.Fatalf("empty codeSnippets should be omitted: %s", data)
	}
}
