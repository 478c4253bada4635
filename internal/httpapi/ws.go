package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"factstream/internal/model"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect from arbitrary origins, same as the REST API.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const wsWriteTimeout = 10 * time.Second

type wsInbound struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	IsFinal bool   `json:"is_final"`
}

type wsOutbound struct {
	Type string                    `json:"type"`
	Data *model.VerificationResult `json:"data"`
}

// websocket streams fact-check results for a session and accepts
// transcription updates pushed by the client over the same connection.
func (a *api) websocket(c *gin.Context) {
	sessionID := c.Param("session_id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		a.logger.Error("websocket upgrade failed", "session_id", sessionID, "error", err)
		return
	}

	results := a.orch.Subscribe(sessionID)
	defer func() {
		a.orch.Unsubscribe(sessionID)
		conn.Close()
	}()

	a.logger.Info("websocket connected", "session_id", sessionID)

	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		for result := range results {
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(wsOutbound{Type: "fact_check_result", Data: result}); err != nil {
				a.logger.Warn("websocket write failed", "session_id", sessionID, "error", err)
				return
			}
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				a.logger.Warn("websocket read failed", "session_id", sessionID, "error", err)
			}
			break
		}

		var msg wsInbound
		if err := json.Unmarshal(payload, &msg); err != nil {
			a.logger.Warn("websocket message malformed", "session_id", sessionID, "error", err)
			continue
		}
		if msg.Type != "transcription_update" {
			continue
		}

		if _, err := a.orch.SubmitFragment(sessionID, "", msg.Text, msg.IsFinal); err != nil {
			a.logger.Warn("fragment rejected", "session_id", sessionID, "error", err)
		}
	}

	a.orch.Unsubscribe(sessionID)
	<-writeDone
	a.logger.Info("websocket disconnected", "session_id", sessionID)
}
