package controller

import (
	"context"
	"sync"

	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"

	"kanbanly/config"
	"kanbanly/models"
	"kanbanly/permission"
	"kanbanly/utils"
)

// BoardEvent is pushed to every socket watching a project board.
type BoardEvent struct {
	Type      string      `json:"type"`
	ProjectID uint        `json:"project_id"`
	Payload   interface{} `json:"payload,omitempty"`
}

// NotificationEvent is pushed to a single user's sockets.
type NotificationEvent struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Board event types
const (
	EventColumnCreated  = "column_created"
	EventColumnUpdated  = "column_updated"
	EventColumnDeleted  = "column_deleted"
	EventColumnsReorder = "columns_reordered"
	EventCardCreated    = "card_created"
	EventCardUpdated    = "card_updated"
	EventCardDeleted    = "card_deleted"
	EventCardMoved      = "card_moved"
	EventCardAssigned   = "card_assigned"
	EventCommentAdded   = "comment_added"
)

// boardConn is the slice of the websocket connection the hub writes to.
type boardConn interface {
	WriteJSON(v interface{}) error
}

// boardClient serializes writes to one connection. Websocket connections
// allow only a single concurrent writer; two broadcasts hitting the same
// socket at once would panic without this lock.
type boardClient struct {
	mu   sync.Mutex
	conn boardConn
}

func (bc *boardClient) send(v interface{}) error {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	return bc.conn.WriteJSON(v)
}

var boardHub = struct {
	sync.RWMutex
	projects map[uint]map[*boardClient]struct{}
	users    map[uint]map[*boardClient]struct{}
}{
	projects: make(map[uint]map[*boardClient]struct{}),
	users:    make(map[uint]map[*boardClient]struct{}),
}

// HandleBoardWS streams board events for one project. The upgrade request
// carries the JWT as a query parameter since browsers can't set headers on
// websocket connects.
func HandleBoardWS(c *websocket.Conn) {
	defer c.Close()

	token := c.Query("token")
	projectID := utils.ParseUint(c.Query("project_id"))
	if token == "" || projectID == 0 {
		c.WriteJSON(map[string]string{"error": "token and project_id are required"})
		return
	}

	claims, err := utils.ParseJWTToken(token)
	if err != nil {
		c.WriteJSON(map[string]string{"error": "invalid token"})
		return
	}

	checker := permission.NewProjectChecker(permission.NewGormStore(config.DB), claims.UserID, projectID)
	if err := checker.Load(context.Background()); err != nil {
		c.WriteJSON(map[string]string{"error": "project not found"})
		return
	}
	if ok, err := checker.CanViewProject(); err != nil || !ok {
		c.WriteJSON(map[string]string{"error": "access denied"})
		return
	}

	client := &boardClient{conn: c}
	register(projectID, claims.UserID, client)
	defer unregister(projectID, claims.UserID, client)

	logrus.WithFields(logrus.Fields{
		"user_id":    claims.UserID,
		"project_id": projectID,
	}).Debug("board socket connected")

	// Block until the client goes away; events arrive via broadcasts.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}

func register(projectID, userID uint, bc *boardClient) {
	boardHub.Lock()
	defer boardHub.Unlock()
	if boardHub.projects[projectID] == nil {
		boardHub.projects[projectID] = make(map[*boardClient]struct{})
	}
	boardHub.projects[projectID][bc] = struct{}{}
	if boardHub.users[userID] == nil {
		boardHub.users[userID] = make(map[*boardClient]struct{})
	}
	boardHub.users[userID][bc] = struct{}{}
}

func unregister(projectID, userID uint, bc *boardClient) {
	boardHub.Lock()
	defer boardHub.Unlock()
	delete(boardHub.projects[projectID], bc)
	if len(boardHub.projects[projectID]) == 0 {
		delete(boardHub.projects, projectID)
	}
	delete(boardHub.users[userID], bc)
	if len(boardHub.users[userID]) == 0 {
		delete(boardHub.users, userID)
	}
}

// BroadcastBoard pushes an event to every socket watching the project.
// Delivery is best effort; dead sockets clean themselves up on read error.
func BroadcastBoard(projectID uint, event BoardEvent) {
	boardHub.RLock()
	defer boardHub.RUnlock()
	for client := range boardHub.projects[projectID] {
		if err := client.send(event); err != nil {
			logrus.WithError(err).Debug("dropping board event for dead socket")
		}
	}
}

// BroadcastToUser pushes a notification to every socket of one user.
func BroadcastToUser(userID uint, event NotificationEvent) {
	boardHub.RLock()
	defer boardHub.RUnlock()
	for client := range boardHub.users[userID] {
		if err := client.send(models.Notification{
			UserID: userID,
			Type:   event.Type,
			Title:  event.Title,
			Body:   event.Body,
		}); err != nil {
			logrus.WithError(err).Debug("dropping notification for dead socket")
		}
	}
}
