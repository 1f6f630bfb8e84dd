package server

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vuongthuydung/employee-support-chatbot/internal/models"
)

// recordingLineWriter records written lines and can fail after a set count.
type recordingLineWriter struct {
	lines     []string
	failAfter int // fail when len(lines) reaches this; 0 disables
}

func (w *recordingLineWriter) WriteLine(line string) error {
	if w.failAfter > 0 && len(w.lines) >= w.failAfter {
		return fmt.Errorf("connection reset")
	}
	w.lines = append(w.lines, line)
	return nil
}

func TestStreamLines_Order(t *testing.T) {
	w := &recordingLineWriter{}
	err := streamLines(context.Background(), w, "Line1\nLine2\nLine3", time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Line1", "Line2", "Line3"}
	if len(w.lines) != len(want) {
		t.Fatalf("got %d lines", len(w.lines))
	}
	for i := range want {
		if w.lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, w.lines[i], want[i])
		}
	}
}

func TestStreamLines_SingleLine(t *testing.T) {
	w := &recordingLineWriter{}
	start := time.Now()
	if err := streamLines(context.Background(), w, "only line", time.Second); err != nil {
		t.Fatal(err)
	}
	if len(w.lines) != 1 {
		t.Fatalf("got %d lines", len(w.lines))
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("single line should not wait for the pacing delay")
	}
}

func TestStreamLines_StopsOnWriteError(t *testing.T) {
	w := &recordingLineWriter{failAfter: 1}
	err := streamLines(context.Background(), w, "a\nb\nc", time.Millisecond)
	if err == nil {
		t.Fatal("expected write error")
	}
	if len(w.lines) != 1 {
		t.Errorf("wrote %d lines after disconnect, want 1", len(w.lines))
	}
}

func TestStreamLines_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := &recordingLineWriter{}
	err := streamLines(ctx, w, "a\nb", time.Minute)
	if err == nil {
		t.Fatal("expected context error")
	}
	if len(w.lines) != 1 {
		t.Errorf("wrote %d lines, want 1 before the interrupted pause", len(w.lines))
	}
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	return conn
}

func TestWS_StreamsAnswerLines(t *testing.T) {
	s := newTestServer(t, "Line1\nLine2\nLine3")
	if w := doRequest(s, uploadRequest(t, "doc.docx", makeDocx(t, "Content."))); w.Code != 200 {
		t.Fatalf("upload status=%d", w.Code)
	}
	ts := httptest.NewServer(s.Routes())
	defer ts.Close()
	conn := dialWS(t, ts)
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{"question": "What is in the doc?"}); err != nil {
		t.Fatal(err)
	}
	var got []string
	var stamps []time.Time
	for i := 0; i < 3; i++ {
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		got = append(got, string(msg))
		stamps = append(stamps, time.Now())
	}
	want := []string{"Line1", "Line2", "Line3"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("message %d = %q, want %q", i, got[i], want[i])
		}
	}
	// Consecutive lines are separated by the configured pacing delay (50ms in tests).
	if gap := stamps[2].Sub(stamps[1]); gap < 25*time.Millisecond {
		t.Errorf("lines arrived %v apart, expected pacing delay", gap)
	}
}

func TestWS_ErrorKeepsConnectionOpen(t *testing.T) {
	s := newTestServer(t, "An answer")
	if w := doRequest(s, uploadRequest(t, "doc.docx", makeDocx(t, "Content."))); w.Code != 200 {
		t.Fatalf("upload status=%d", w.Code)
	}
	ts := httptest.NewServer(s.Routes())
	defer ts.Close()
	conn := dialWS(t, ts)
	defer conn.Close()

	// Empty question: one error message, connection stays usable.
	if err := conn.WriteJSON(map[string]string{"question": "  "}); err != nil {
		t.Fatal(err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var errMsg map[string]string
	if err := conn.ReadJSON(&errMsg); err != nil {
		t.Fatal(err)
	}
	if errMsg["error"] == "" {
		t.Errorf("expected error message, got %v", errMsg)
	}

	if err := conn.WriteJSON(map[string]string{"question": "A real question?"}); err != nil {
		t.Fatal(err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	if string(msg) != "An answer" {
		t.Errorf("got %q", msg)
	}
}

func TestWS_ClientDisconnect(t *testing.T) {
	s := newTestServer(t, strings.Repeat("line\n", 20)+"end")
	if w := doRequest(s, uploadRequest(t, "doc.docx", makeDocx(t, "Content."))); w.Code != 200 {
		t.Fatalf("upload status=%d", w.Code)
	}
	ts := httptest.NewServer(s.Routes())
	defer ts.Close()
	conn := dialWS(t, ts)

	if err := conn.WriteJSON(map[string]string{"question": "stream it"}); err != nil {
		t.Fatal(err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatal(err)
	}
	// Drop the connection mid-stream; the server loop must stop cleanly.
	_ = conn.Close()
	ts.Close()
}

// fakeConn scripts a single question, then blocks reads until closed.
type fakeConn struct {
	mu     sync.Mutex
	lines  []string
	asked  bool
	closed chan struct{}
}

func (c *fakeConn) ReadJSON(v interface{}) error {
	c.mu.Lock()
	if !c.asked {
		c.asked = true
		c.mu.Unlock()
		v.(*models.Question).Question = "stream it"
		return nil
	}
	c.mu.Unlock()
	<-c.closed
	return fmt.Errorf("connection reset")
}

func (c *fakeConn) WriteJSON(v interface{}) error { return nil }

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, string(data))
	return nil
}

func (c *fakeConn) lineCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

func TestServeWS_DisconnectInterruptsPacing(t *testing.T) {
	s := newTestServer(t, "first\nsecond\nthird")
	if w := doRequest(s, uploadRequest(t, "doc.docx", makeDocx(t, "Content."))); w.Code != 200 {
		t.Fatalf("upload status=%d", w.Code)
	}
	// A pause this long can only end by being interrupted.
	s.config.Chat.StreamLineDelayMS = 60_000

	conn := &fakeConn{closed: make(chan struct{})}
	done := make(chan struct{})
	go func() {
		s.serveWS(context.Background(), conn)
		close(done)
	}()

	start := time.Now()
	for conn.lineCount() == 0 {
		if time.Since(start) > 5*time.Second {
			t.Fatal("first line never arrived")
		}
		time.Sleep(5 * time.Millisecond)
	}
	close(conn.closed)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("serve loop kept running after disconnect")
	}
	if n := conn.lineCount(); n != 1 {
		t.Errorf("wrote %d lines after disconnect, want 1", n)
	}
}
