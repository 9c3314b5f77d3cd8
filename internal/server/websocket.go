package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/atikulmunna/grokline/internal/aggregator"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleWebSocket treats every text message as one line and answers it with
// the extraction result.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"error": err,
		}).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	var stats aggregator.Stats
	defer func() {
		logrus.WithFields(logrus.Fields{
			"remote": c.Request.RemoteAddr,
			"parsed": stats.Parsed,
			"failed": stats.Failed,
		}).Debug("websocket session closed")
	}()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logrus.WithFields(logrus.Fields{
					"error": err,
				}).Warn("websocket read failed")
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		o := s.extractor.Extract(string(data), &stats)
		s.metrics.observe(o)
		if err := conn.WriteJSON(toResult(o)); err != nil {
			logrus.WithFields(logrus.Fields{
				"error": err,
			}).Warn("websocket write failed")
			return
		}
	}
}
