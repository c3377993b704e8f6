// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package subscriptions streams committed ops to websocket clients.
package subscriptions

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/stakehaven/haven/api/utils"
	"github.com/stakehaven/haven/co"
	"github.com/stakehaven/haven/log"
	"github.com/stakehaven/haven/opdb"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
)

var logger = log.WithContext("pkg", "subscriptions")

// Subscriptions serves the committed op feed over websocket.
type Subscriptions struct {
	db       *opdb.OpDB
	feed     *co.Signal
	upgrader *websocket.Upgrader
	done     chan struct{}
	wg       co.Goes
}

// New creates the subscription endpoint reading from db and woken by feed.
func New(db *opdb.OpDB, feed *co.Signal, allowedOrigins []string) *Subscriptions {
	return &Subscriptions{
		db:   db,
		feed: feed,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == origin || allowed == "*" {
						return true
					}
				}
				return false
			},
		},
		done: make(chan struct{}),
	}
}

func (s *Subscriptions) handleSubscribeOps(w http.ResponseWriter, req *http.Request) error {
	var fromSeq uint64
	if pos := req.URL.Query().Get("pos"); pos != "" {
		parsed, err := strconv.ParseUint(pos, 10, 64)
		if err != nil {
			return utils.BadRequest(errors.WithMessage(err, "pos"))
		}
		fromSeq = parsed
	} else {
		newest, err := s.db.NewestSeq()
		if err != nil {
			return err
		}
		fromSeq = newest
	}

	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	err = s.pipe(req, conn, newOpReader(s.db, fromSeq))
	if err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		logger.Debug("op subscription ended", "remote", conn.RemoteAddr(), "error", err)
	}
	return nil
}

// pipe forwards new ops to the connection until either side goes away.
func (s *Subscriptions) pipe(req *http.Request, conn *websocket.Conn, reader *opReader) error {
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// the read pump detects the client going away
	readErr := make(chan error, 1)
	s.wg.Go(func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				readErr <- err
				return
			}
		}
	})

	waiter := s.feed.NewWaiter()
	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	for {
		msgs, err := reader.Read(req.Context())
		if err != nil {
			return err
		}
		for _, msg := range msgs {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				return err
			}
		}

		select {
		case <-s.done:
			return nil
		case <-req.Context().Done():
			return req.Context().Err()
		case err := <-readErr:
			return err
		case <-pingTicker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		case <-waiter.C():
		}
	}
}

// Close stops all subscriptions and waits for them to drain.
func (s *Subscriptions) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/ops").
		Methods(http.MethodGet).
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubscribeOps))
}
