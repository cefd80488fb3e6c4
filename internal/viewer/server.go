// Package viewer streams finished chunk meshes to websocket clients. It is
// the display half of the engine: the streaming manager hands it buffers
// through the Renderer interface and every connected client mirrors the
// loaded scene.
package viewer

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/zstd"

	"github.com/voxelforge/voxelforge/internal/engine/mesh"
	"github.com/voxelforge/voxelforge/internal/engine/voxel"
)

const (
	writeTimeout = 5 * time.Second
	sendBacklog  = 256
)

// ChunkFrame is the wire form of one chunk mesh.
type ChunkFrame struct {
	Type      string       `json:"type"`
	ID        string       `json:"id"`
	CX        int          `json:"cx"`
	CZ        int          `json:"cz"`
	Positions [][3]float32 `json:"positions"`
	Normals   [][3]float32 `json:"normals"`
	UVs       [][2]float32 `json:"uvs"`
	Indices   []uint32     `json:"indices"`
}

// DiscardFrame tells clients to drop a chunk by handle.
type DiscardFrame struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Server broadcasts scene updates to websocket clients and retains the live
// scene so late joiners receive every loaded chunk on connect. It
// implements the streaming manager's Renderer.
type Server struct {
	log      *slog.Logger
	upgrader websocket.Upgrader
	enc      *zstd.Encoder

	mu      sync.Mutex
	clients map[*client]struct{}
	scene   map[uuid.UUID][]byte
}

// NewServer builds a broadcast server. It never fails to construct except
// when the compressor cannot initialize.
func NewServer(log *slog.Logger) (*Server, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("init frame compressor: %w", err)
	}
	return &Server{
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		enc:     enc,
		clients: make(map[*client]struct{}),
		scene:   make(map[uuid.UUID][]byte),
	}, nil
}

// Render assigns the mesh a scene handle and broadcasts it. Frames are
// zstd-compressed JSON; mesh attribute arrays dominate the payload and
// compress well.
func (s *Server) Render(pos voxel.ChunkPos, b *mesh.Buffer) (uuid.UUID, error) {
	id := uuid.New()
	frame, err := s.compress(ChunkFrame{
		Type:      "chunk",
		ID:        id.String(),
		CX:        pos.X,
		CZ:        pos.Z,
		Positions: b.Positions,
		Normals:   b.Normals,
		UVs:       b.UVs,
		Indices:   b.Indices,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("encode chunk frame (%d,%d): %w", pos.X, pos.Z, err)
	}

	s.mu.Lock()
	s.scene[id] = frame
	s.broadcastLocked(frame)
	s.mu.Unlock()
	return id, nil
}

// Discard removes a chunk from the retained scene and tells clients to drop
// it.
func (s *Server) Discard(id uuid.UUID) {
	frame, err := s.compress(DiscardFrame{Type: "discard", ID: id.String()})
	if err != nil {
		s.log.Error("encode discard frame", "id", id, "error", err)
		return
	}

	s.mu.Lock()
	delete(s.scene, id)
	s.broadcastLocked(frame)
	s.mu.Unlock()
}

// Handler upgrades HTTP requests to scene subscriptions. A new client first
// receives the full retained scene, then live updates in order.
func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}

		// The backlog is sized to hold the whole retained scene plus live
		// headroom, so the replay below cannot drop frames. Snapshot before
		// registering so the replay and the live stream never interleave
		// out of order.
		s.mu.Lock()
		c := &client{conn: conn, send: make(chan []byte, len(s.scene)+sendBacklog)}
		for _, frame := range s.scene {
			c.send <- frame
		}
		s.clients[c] = struct{}{}
		s.mu.Unlock()

		s.log.Info("viewer connected", "remote", r.RemoteAddr)

		go s.writeLoop(c)

		// Reader loop: the protocol is one-way, but reading is what
		// notices a gone client.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		s.drop(c)
	}
}

func (s *Server) writeLoop(c *client) {
	for frame := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			s.drop(c)
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
		time.Now().Add(time.Second))
	c.conn.Close()
}

// broadcastLocked queues a frame on every client, dropping clients whose
// backlog is full rather than stalling the control goroutine.
func (s *Server) broadcastLocked(frame []byte) {
	for c := range s.clients {
		select {
		case c.send <- frame:
		default:
			s.log.Warn("viewer too slow, dropping")
			delete(s.clients, c)
			close(c.send)
		}
	}
}

func (s *Server) drop(c *client) {
	s.mu.Lock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
	s.mu.Unlock()
	c.conn.Close()
}

// ClientCount reports the number of connected viewers.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// SceneSize reports the number of retained chunk frames.
func (s *Server) SceneSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.scene)
}

// Close disconnects every client and releases the compressor.
func (s *Server) Close() {
	s.mu.Lock()
	for c := range s.clients {
		delete(s.clients, c)
		close(c.send)
	}
	s.mu.Unlock()
	s.enc.Close()
}

func (s *Server) compress(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	// EncodeAll is safe for concurrent use on one encoder.
	return s.enc.EncodeAll(raw, nil), nil
}
