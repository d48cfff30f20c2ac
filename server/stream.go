// Copyright (c) 2025 BVK Chaitanya

package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/visvasity/topic"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// serveWebsocket streams market snapshots to the client as they are fetched.
// The current snapshot, if any, is sent first.
func (s *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("could not upgrade to websocket", "err", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Watch for the client going away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	sub, err := s.poller.Subscribe(1)
	if err != nil {
		slog.Error("could not subscribe to market snapshots", "err", err)
		return
	}
	defer sub.Close()

	snapCh, err := topic.ReceiveCh(sub)
	if err != nil {
		slog.Error("could not receive from market snapshot subscription", "err", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return

		case <-s.cg.Context().Done():
			return

		case snap := <-snapCh:
			if snap == nil {
				return
			}
			if err := conn.WriteJSON(snap); err != nil {
				var nerr net.Error
				if !errors.As(err, &nerr) {
					slog.Warn("could not write snapshot to websocket", "err", err)
				}
				return
			}
		}
	}
}
