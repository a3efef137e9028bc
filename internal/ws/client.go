package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/plinko/internal/economy"
	"github.com/playmatatu/plinko/internal/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
	commandTimeout = 2 * time.Second
)

// Origins are checked by middleware.WebSocketCORSCheck before the upgrade.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one WebSocket connection bound to a session.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	sessionID string
	sess      *session.Session
	send      chan []byte
	joined    chan struct{} // closed by the hub once the client is in its room

	mu     sync.Mutex
	closed bool
}

// WSMessage is the client to server envelope.
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type dropData struct {
	X *float64 `json:"x"`
}

type buyUpgradeData struct {
	Kind string `json:"kind"`
}

// ServeSession upgrades the request and attaches the connection to the
// session's room. The route must be guarded by auth.RequireSession.
func ServeSession(hub *Hub, mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := mgr.Get(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		serve(c, hub, sess)
	}
}

func serve(c *gin.Context, hub *Hub, sess *session.Session) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	client := &Client{
		hub:       hub,
		conn:      conn,
		sessionID: sess.ID,
		sess:      sess,
		send:      make(chan []byte, 256),
		joined:    make(chan struct{}),
	}
	select {
	case hub.register <- client:
	case <-hub.done:
		conn.Close()
		return
	}
	select {
	case <-client.joined:
	case <-hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()

	// The session may have stopped between lookup and join, after its room
	// was already closed.
	select {
	case <-sess.Done():
		log.Printf("[WS] Session %s stopped before client joined", sess.ID)
		hub.CloseRoom(sess.ID)
		return
	default:
	}

	client.sendSnapshot()
}

func (c *Client) trySend(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) sendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[WS] Error marshaling message for session %s: %v", c.sessionID, err)
		return
	}
	c.trySend(data)
}

func (c *Client) sendError(message string) {
	c.sendJSON(session.Message{Type: session.MsgError, Data: session.ErrorData{Message: message}})
}

func (c *Client) sendSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	snap, err := c.sess.Snapshot(ctx)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.sendJSON(session.Message{Type: session.MsgSnapshot, Data: snap})
}

// close shuts the send channel once; writePump then closes the socket.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] Write error for session %s: %v", c.sessionID, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] Ping error for session %s: %v", c.sessionID, err)
				return
			}
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
			c.close()
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Unexpected close for session %s: %v", c.sessionID, err)
			}
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("Invalid message")
			continue
		}
		c.handleMessage(msg)
	}
}

func (c *Client) handleMessage(msg WSMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	switch msg.Type {
	case "drop":
		var data dropData
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				c.sendError("Invalid drop data")
				return
			}
		}
		if _, err := c.sess.Drop(ctx, data.X); err != nil {
			c.sendError(commandError(err))
		}

	case "buy_upgrade":
		var data buyUpgradeData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid upgrade data")
			return
		}
		kind, err := economy.ParseKind(data.Kind)
		if err != nil {
			c.sendError(commandError(err))
			return
		}
		if _, err := c.sess.BuyUpgrade(ctx, kind); err != nil {
			c.sendError(commandError(err))
		}

	case "pause":
		if err := c.sess.Pause(ctx); err != nil {
			c.sendError(commandError(err))
		}

	case "resume":
		if err := c.sess.Resume(ctx); err != nil {
			c.sendError(commandError(err))
		}

	case "snapshot":
		c.sendSnapshot()

	default:
		c.sendError("Unknown message type")
	}
}

func commandError(err error) string {
	switch {
	case errors.Is(err, economy.ErrInsufficientFunds):
		return "Insufficient funds"
	case errors.Is(err, economy.ErrMaxLevel):
		return "Upgrade already at max level"
	case errors.Is(err, economy.ErrUnknownUpgrade):
		return "Unknown upgrade"
	case errors.Is(err, session.ErrInvalidDrop):
		return "Drop position outside board"
	case errors.Is(err, session.ErrSessionClosed):
		return "Session closed"
	default:
		return err.Error()
	}
}
