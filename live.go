package gatekeep

import (
	"encoding/json"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/websocket"

	"github.com/mpratt/gatekeep/models"
)

// Broadcaster fans check-in events out to connected websocket
// listeners, so door screens and dashboards update without polling.
type Broadcaster struct {
	conns  SyncMap[int64, *websocket.Conn]
	nextID atomic.Int64
}

// NewBroadcaster creates an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{conns: NewSyncMap[int64, *websocket.Conn]()}
}

// Publish sends the event to every connected listener. Connections
// that fail to take the write are dropped. Safe on a nil Broadcaster.
func (b *Broadcaster) Publish(event models.CheckInEvent) {
	if b == nil {
		return
	}

	msg, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("Broadcast encode error.")
		return
	}

	// Snapshot the connections first: sends are network writes and must
	// not run under the map lock, or one stalled listener would block
	// connects and disconnects until every send finishes.
	type listener struct {
		id   int64
		conn *websocket.Conn
	}
	var listeners []listener
	b.conns.Range(func(id int64, conn *websocket.Conn) bool {
		listeners = append(listeners, listener{id: id, conn: conn})
		return true
	})

	for _, l := range listeners {
		if err := websocket.Message.Send(l.conn, string(msg)); err != nil {
			l.conn.Close()
			b.conns.Del(l.id)
		}
	}
}

// Serve registers the connection and blocks until the peer goes away.
// Incoming frames are read and discarded to detect disconnects; the
// feed is one-way.
func (b *Broadcaster) Serve(conn *websocket.Conn) {
	id := b.nextID.Add(1)
	b.conns.Set(id, conn)
	log.Debug().Int64("Conn", id).Msg("Live listener connected.")

	defer func() {
		b.conns.Del(id)
		conn.Close()
		log.Debug().Int64("Conn", id).Msg("Live listener disconnected.")
	}()

	var discard string
	for {
		if err := websocket.Message.Receive(conn, &discard); err != nil {
			return
		}
	}
}

// Listeners returns the number of connected listeners.
func (b *Broadcaster) Listeners() int {
	if b == nil {
		return 0
	}
	return b.conns.Len()
}
