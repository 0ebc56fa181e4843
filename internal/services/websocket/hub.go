package websocket

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"camwatch/internal/logger"

	"github.com/gorilla/websocket"
	"gocv.io/x/gocv"
)

// Streams published to viewers.
const (
	StreamFrame  = "frame"
	StreamBanner = "banner"
)

// broadcastBuffer bounds queued messages; extra frames are dropped.
const broadcastBuffer = 8

// writeWait bounds a single write to one viewer.
var writeWait = 10 * time.Second

// ViewerMessage is the JSON payload sent to every connected viewer.
type ViewerMessage struct {
	Stream string `json:"stream"`
	Image  string `json:"image"` // base64 JPEG
}

// HubService fans displayed frames out to websocket viewers.
type HubService struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	mutex      sync.RWMutex
	count      atomic.Int32
	logger     *logger.Logger
}

func NewHubService(logger *logger.Logger) *HubService {
	return &HubService{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run serves register/unregister/broadcast requests until ctx is done.
// Viewer writes happen outside the lock and are bounded by writeWait.
func (h *HubService) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for client := range h.clients {
				client.Close()
				delete(h.clients, client)
			}
			h.count.Store(0)
			h.mutex.Unlock()
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.count.Store(int32(count))
			h.mutex.Unlock()
			h.logger.Info("Viewer connected. Total: %d", count)

		case client := <-h.unregister:
			h.remove(client)
			h.logger.Info("Viewer disconnected. Total: %d", h.GetClientCount())

		case message := <-h.broadcast:
			for _, client := range h.snapshot() {
				client.SetWriteDeadline(time.Now().Add(writeWait))
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					h.logger.Warning("Error sending to viewer: %v", err)
					h.remove(client)
				}
			}
		}
	}
}

func (h *HubService) snapshot() []*websocket.Conn {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	clients := make([]*websocket.Conn, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	return clients
}

func (h *HubService) remove(client *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		client.Close()
	}
	h.count.Store(int32(len(h.clients)))
}

// Register adds a viewer. Once the hub has stopped the connection is closed.
func (h *HubService) Register(client *websocket.Conn) {
	select {
	case h.register <- client:
	case <-h.done:
		client.Close()
	}
}

// Unregister removes a viewer. It is a no-op once the hub has stopped.
func (h *HubService) Unregister(client *websocket.Conn) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast queues message for all viewers. It never blocks; when the queue
// is full the message is dropped and false is returned.
func (h *HubService) Broadcast(message []byte) bool {
	select {
	case h.broadcast <- message:
		return true
	default:
		return false
	}
}

// Publish encodes img as JPEG and queues it on the given stream. Nothing is
// encoded while no viewer is connected.
func (h *HubService) Publish(stream string, img gocv.Mat) error {
	if h.GetClientCount() == 0 {
		return nil
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)
	if err != nil {
		return fmt.Errorf("failed to encode %s for viewers: %w", stream, err)
	}
	defer buf.Close()

	msg, err := json.Marshal(ViewerMessage{
		Stream: stream,
		Image:  base64.StdEncoding.EncodeToString(buf.GetBytes()),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal viewer message: %w", err)
	}

	h.Broadcast(msg)
	return nil
}

func (h *HubService) GetClientCount() int {
	return int(h.count.Load())
}
