package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/antoniostano/candidly/internal/config"
	"github.com/antoniostano/candidly/internal/conns"
	"github.com/antoniostano/candidly/internal/history"
	"github.com/antoniostano/candidly/internal/interview"
	"github.com/antoniostano/candidly/internal/observability"
	"github.com/antoniostano/candidly/internal/ocr"
	"github.com/antoniostano/candidly/internal/providers"
	"github.com/antoniostano/candidly/internal/speech"
)

type testEnv struct {
	server   *httptest.Server
	store    history.Store
	registry *conns.Registry
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	store, err := history.NewFileStore(t.TempDir(), 50, log)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	metrics := observability.NewMetrics(fmt.Sprintf("candidly_http_%d", time.Now().UnixNano()))
	perf := observability.NewStageWindow(16)
	registry := conns.NewRegistry()
	gateway := providers.NewGateway(log, providers.NewMockBackendNamed(providers.ProviderOpenAI))
	engines := ocr.NewRegistry("tesseract", ocr.NewMock("tesseract", "printed text"))
	stt := speech.NewMock("")

	orch := interview.NewOrchestrator(
		log, metrics, perf, registry, store, gateway, stt, engines,
		"1.0.0", providers.ProviderOpenAI, "gpt-4",
	)

	cfg := config.Config{
		AllowAnyOrigin: true,
		MockProvider:   providers.ProviderOpenAI,
		MockModel:      "gpt-4",
	}
	srv := New(cfg, log, registry, orch, store, gateway, engines, stt.Name(), metrics, perf)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return &testEnv{server: ts, store: store, registry: registry}
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t)

	var health map[string]any
	if code := getJSON(t, env.server.URL+"/healthz", &health); code != http.StatusOK {
		t.Fatalf("healthz status = %d", code)
	}
	if health["status"] != "ok" {
		t.Fatalf("healthz status field = %v", health["status"])
	}

	if code := getJSON(t, env.server.URL+"/readyz", nil); code != http.StatusOK {
		t.Fatalf("readyz status = %d", code)
	}
}

func TestListProviders(t *testing.T) {
	env := newTestEnv(t)

	var body struct {
		Generation    []string          `json:"generation"`
		OCR           []string          `json:"ocr"`
		Transcription string            `json:"transcription"`
		Defaults      map[string]string `json:"defaults"`
	}
	if code := getJSON(t, env.server.URL+"/v1/providers", &body); code != http.StatusOK {
		t.Fatalf("providers status = %d", code)
	}
	if len(body.Generation) != 1 || body.Generation[0] != providers.ProviderOpenAI {
		t.Fatalf("generation = %v", body.Generation)
	}
	if len(body.OCR) != 1 || body.OCR[0] != "tesseract" {
		t.Fatalf("ocr = %v", body.OCR)
	}
	if body.Transcription != "mock" {
		t.Fatalf("transcription = %q", body.Transcription)
	}
	if body.Defaults["ocr"] != "tesseract" {
		t.Fatalf("defaults = %v", body.Defaults)
	}
}

func TestSessionsREST(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	session, err := env.store.Create(ctx, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	qa := history.QuestionAnswer{Question: "What is a goroutine?", Answer: "A lightweight thread.", Source: "audio", Mode: "hints", Provider: "openai"}
	if err := env.store.Append(ctx, session.ID, qa); err != nil {
		t.Fatalf("Append: %v", err)
	}

	var list struct {
		Sessions []history.Session `json:"sessions"`
		Count    int               `json:"count"`
	}
	if code := getJSON(t, env.server.URL+"/v1/sessions", &list); code != http.StatusOK {
		t.Fatalf("list status = %d", code)
	}
	if list.Count != 1 || len(list.Sessions) != 1 {
		t.Fatalf("list count = %d", list.Count)
	}

	var got history.Session
	if code := getJSON(t, env.server.URL+"/v1/sessions/"+session.ID, &got); code != http.StatusOK {
		t.Fatalf("get status = %d", code)
	}
	if got.ID != session.ID || len(got.Questions) != 1 {
		t.Fatalf("got session %+v", got)
	}

	if code := getJSON(t, env.server.URL+"/v1/sessions/nope", nil); code != http.StatusNotFound {
		t.Fatalf("get unknown status = %d", code)
	}

	req, _ := http.NewRequest(http.MethodDelete, env.server.URL+"/v1/sessions/"+session.ID, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	if code := getJSON(t, env.server.URL+"/v1/sessions/"+session.ID, nil); code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d", code)
	}
}

func TestExportSessionsCSV(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	session, err := env.store.Create(ctx, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := env.store.Append(ctx, session.ID, history.QuestionAnswer{Question: "Why channels?", Answer: "Communication."}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	resp, err := http.Get(env.server.URL + "/v1/sessions/export?format=csv")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("content type = %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "interview-sessions-") || !strings.Contains(cd, ".csv") {
		t.Fatalf("content disposition = %q", cd)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Why channels?") {
		t.Fatalf("export body missing row: %s", body)
	}

	if code := getJSON(t, env.server.URL+"/v1/sessions/export?format=xml", nil); code != http.StatusBadRequest {
		t.Fatalf("bad format status = %d", code)
	}
}

func dialWS(t *testing.T, env *testEnv) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/v1/interview/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	// The hijacked handler goroutine outlives httptest.Server.Close; wait
	// for its teardown so file writes cannot race TempDir removal.
	t.Cleanup(func() {
		conn.Close()
		deadline := time.Now().Add(3 * time.Second)
		for env.registry.Count() > 0 && time.Now().Before(deadline) {
			time.Sleep(10 * time.Millisecond)
		}
		if n := env.registry.Count(); n != 0 {
			t.Errorf("connection still registered after close: %d", n)
		}
	})
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var event map[string]any
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read event: %v", err)
	}
	return event
}

func waitForEvent(t *testing.T, conn *websocket.Conn, eventType string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		event := readEvent(t, conn)
		if event["type"] == eventType {
			return event
		}
	}
	t.Fatalf("no %q event before deadline", eventType)
	return nil
}

func TestInterviewWebSocket(t *testing.T) {
	env := newTestEnv(t)
	conn := dialWS(t, env)

	connected := readEvent(t, conn)
	if connected["type"] != "connected" {
		t.Fatalf("first event = %v", connected["type"])
	}
	if connected["sessionId"] == "" {
		t.Fatal("connected event missing sessionId")
	}

	frame := map[string]any{
		"type":     "generate-answer",
		"question": "How does garbage collection work in Go?",
		"mode":     "hints",
	}
	if err := conn.WriteJSON(frame); err != nil {
		t.Fatalf("write: %v", err)
	}

	answer := waitForEvent(t, conn, "answer-ready")
	if answer["answer"] == "" {
		t.Fatal("answer-ready missing answer text")
	}
	if answer["question"] != frame["question"] {
		t.Fatalf("answer question = %v", answer["question"])
	}
}

func TestInterviewWebSocketInvalidFrame(t *testing.T) {
	env := newTestEnv(t)
	conn := dialWS(t, env)
	readEvent(t, conn) // connected

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"telepathy"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	event := waitForEvent(t, conn, "error")
	if event["code"] != "INVALID_REQUEST" {
		t.Fatalf("error code = %v", event["code"])
	}
}
