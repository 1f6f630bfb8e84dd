package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/vuongthuydung/employee-support-chatbot/internal/models"
	"github.com/vuongthuydung/employee-support-chatbot/internal/query"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS for the ws handshake mirrors the permissive HTTP policy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsConn is the subset of *websocket.Conn the serve loop uses.
type wsConn interface {
	ReadJSON(v interface{}) error
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
}

// lineWriter sends one answer line per message.
type lineWriter interface {
	WriteLine(line string) error
}

type wsLineWriter struct {
	conn wsConn
}

func (w wsLineWriter) WriteLine(line string) error {
	return w.conn.WriteMessage(websocket.TextMessage, []byte(line))
}

// handleWS serves the long-lived question channel. Each received question is
// answered through the same pipeline as /api/ask, with the answer streamed
// back line by line.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	s.serveWS(r.Context(), conn)
}

// serveWS runs the question loop. Reads happen on their own goroutine so a
// peer disconnect cancels the streaming context at once, even mid-pause;
// after the hijack the request context no longer fires on disconnect.
// Pipeline errors go back as one error message and the loop continues.
func (s *Server) serveWS(reqCtx context.Context, conn wsConn) {
	ctx, cancel := context.WithCancel(reqCtx)
	defer cancel()
	delay := s.config.Chat.LineDelay()

	questions := make(chan string)
	go func() {
		defer cancel()
		for {
			var q models.Question
			if err := conn.ReadJSON(&q); err != nil {
				s.logger.Debug("websocket closed", zap.Error(err))
				return
			}
			select {
			case questions <- q.Question:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		var question string
		select {
		case <-ctx.Done():
			return
		case question = <-questions:
		}
		answer, err := s.query.Answer(ctx, question)
		if err != nil {
			if !errors.Is(err, query.ErrEmptyQuestion) && !errors.Is(err, query.ErrNoRelevantDocument) {
				s.logger.Error("websocket answer failed", zap.Error(err))
			}
			if writeErr := conn.WriteJSON(map[string]string{"error": err.Error()}); writeErr != nil {
				return
			}
			continue
		}
		if err := streamLines(ctx, wsLineWriter{conn}, answer.Text, delay); err != nil {
			return
		}
	}
}

// streamLines writes text line by line, pausing delay between consecutive
// lines. The pause is interruptible: a cancelled ctx stops the stream with no
// further writes, as does the first write error.
func streamLines(ctx context.Context, w lineWriter, text string, delay time.Duration) error {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if err := w.WriteLine(line); err != nil {
			return err
		}
		if i == len(lines)-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil
}
