package inspect

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/vstore/pkg/equality"
	"github.com/vango-dev/vstore/pkg/store"
)

// MessageType identifies a /watch message.
type MessageType string

const (
	// MessageSnapshot is the first message on a connection.
	MessageSnapshot MessageType = "snapshot"
	// MessageChange is sent for every notified projection change.
	MessageChange MessageType = "change"
)

// Message is sent to /watch clients.
type Message struct {
	Type  MessageType `json:"type"`
	Path  string      `json:"path,omitempty"`
	Seq   uint64      `json:"seq"`
	Value any         `json:"value"`
}

func (s *Server[T]) handleWatch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	path := query.Get("path")
	policy := s.opts.policy
	if raw := query.Get("policy"); raw != "" {
		p, err := equality.ParsePolicy(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		policy = p
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("watch upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	if !s.track(conn) {
		return
	}
	defer s.untrack(conn)

	s.logger.Info("watch opened", "path", path, "policy", policy.String(), "remote", r.RemoteAddr)
	defer s.logger.Info("watch closed", "path", path, "remote", r.RemoteAddr)

	s.stream(conn, path, policy)
}

// stream writes the projection at path to conn until the client goes away.
// Notifications only wake the writer, so a slow client sees the latest value
// rather than every intermediate one.
func (s *Server[T]) stream(conn *websocket.Conn, path string, policy equality.Policy) {
	segments := splitPath(path)
	wake := make(chan struct{}, 1)

	b := store.Bind(s.store, func(v T) any {
		return project(v, segments)
	}, func(func() any) {
		select {
		case wake <- struct{}{}:
		default:
		}
	}, store.WithPolicy(policy))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	var seq uint64
	sent := b.Value()
	if err := s.write(conn, Message{Type: MessageSnapshot, Path: path, Seq: seq, Value: sent}); err != nil {
		return
	}
	b.Attach()
	defer b.Detach()

	for {
		select {
		case <-done:
			return
		case <-wake:
			next := b.Refresh()
			if !equality.Changed(sent, next, policy) {
				continue
			}
			seq++
			sent = next
			if err := s.write(conn, Message{Type: MessageChange, Path: path, Seq: seq, Value: next}); err != nil {
				s.logger.Debug("watch write failed", "error", err)
				return
			}
		}
	}
}

func (s *Server[T]) write(conn *websocket.Conn, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(s.opts.writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}

func splitPath(path string) []string {
	path = strings.Trim(path, ".")
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

// project returns the value at path inside the JSON form of v, or nil if the
// path does not exist.
func project(v any, path []string) any {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var node any
	if err := json.Unmarshal(data, &node); err != nil {
		return nil
	}

	for _, seg := range path {
		switch n := node.(type) {
		case map[string]any:
			node = n[seg]
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(n) {
				return nil
			}
			node = n[i]
		default:
			return nil
		}
	}
	return node
}
