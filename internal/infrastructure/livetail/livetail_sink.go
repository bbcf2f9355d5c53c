package livetail

import (
	"context"
	"net/http"
	"sync"
	"time"

	"futurfounder/internal/core/domain"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Should be configured properly for production
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// LiveTailSink streams every forwarded event to connected WebSocket clients,
// a live tail of the analytics traffic for debugging. A slow client is
// disconnected rather than buffered; the tail is diagnostic, not durable.
type LiveTailSink struct {
	connections map[string]*websocket.Conn
	mu          sync.RWMutex

	pingInterval time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration

	logger *zap.SugaredLogger
}

type tailMessage struct {
	Type      string                 `json:"type"`
	Action    string                 `json:"action,omitempty"`
	Category  string                 `json:"category,omitempty"`
	Label     string                 `json:"label,omitempty"`
	Value     *float64               `json:"value,omitempty"`
	Name      string                 `json:"name,omitempty"`
	Currency  string                 `json:"currency,omitempty"`
	VisitorID domain.VisitorID       `json:"visitor_id,omitempty"`
	Params    map[string]interface{} `json:"params,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func NewLiveTailSink(logger *zap.SugaredLogger) *LiveTailSink {
	return &LiveTailSink{
		connections:  make(map[string]*websocket.Conn),
		pingInterval: 30 * time.Second,
		readTimeout:  60 * time.Second,
		writeTimeout: 10 * time.Second,
		logger:       logger,
	}
}

func (s *LiveTailSink) Name() string { return "livetail" }

func (s *LiveTailSink) Send(ctx context.Context, event domain.Event) error {
	s.broadcast(tailMessage{
		Type:      "event",
		Action:    event.Action,
		Category:  event.Category,
		Label:     event.Label,
		Value:     event.Value,
		VisitorID: event.VisitorID,
		Params:    flattenParams(event.Params),
		Timestamp: event.Timestamp,
	})
	return nil
}

func (s *LiveTailSink) SendConversion(ctx context.Context, conv domain.Conversion) error {
	s.broadcast(tailMessage{
		Type:      "conversion",
		Name:      conv.Name,
		Value:     conv.Value,
		Currency:  conv.Currency,
		VisitorID: conv.VisitorID,
		Params:    flattenParams(conv.Params),
		Timestamp: conv.Timestamp,
	})
	return nil
}

// HandleWebSocket upgrades the request and keeps the connection registered
// until the client goes away. Incoming frames are read only to service
// control messages; clients have nothing to say to the tail.
func (s *LiveTailSink) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	clientID := uuid.NewString()
	s.mu.Lock()
	s.connections[clientID] = conn
	s.mu.Unlock()

	s.logger.Infow("live tail client connected", "client_id", clientID)

	conn.SetReadDeadline(time.Now().Add(s.readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.readTimeout))
		return nil
	})

	pingTicker := time.NewTicker(s.pingInterval)
	defer pingTicker.Stop()

	errorChan := make(chan error, 1)
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				errorChan <- err
				return
			}
			conn.SetReadDeadline(time.Now().Add(s.readTimeout))
		}
	}()

	for {
		select {
		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.logger.Infow("error sending ping", "client_id", clientID, "error", err)
				s.removeClient(clientID)
				return
			}

		case err := <-errorChan:
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Infow("error reading from live tail client", "client_id", clientID, "error", err)
			}
			s.removeClient(clientID)
			s.logger.Infow("live tail client disconnected", "client_id", clientID)
			return
		}
	}
}

func (s *LiveTailSink) broadcast(msg tailMessage) {
	s.mu.RLock()
	conns := make(map[string]*websocket.Conn, len(s.connections))
	for id, conn := range s.connections {
		conns[id] = conn
	}
	s.mu.RUnlock()

	for clientID, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
		if err := conn.WriteJSON(msg); err != nil {
			s.logger.Infow("dropping slow live tail client", "client_id", clientID, "error", err)
			conn.Close()
			s.removeClient(clientID)
		}
	}
}

func (s *LiveTailSink) removeClient(clientID string) {
	s.mu.Lock()
	delete(s.connections, clientID)
	s.mu.Unlock()
}

// ClientCount returns the number of connected tail clients.
func (s *LiveTailSink) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

// Close disconnects all tail clients.
func (s *LiveTailSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for clientID, conn := range s.connections {
		conn.Close()
		delete(s.connections, clientID)
	}
	return nil
}

func flattenParams(params domain.Params) map[string]interface{} {
	if len(params) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(params))
	for key, p := range params {
		out[key] = p.Interface()
	}
	return out
}
