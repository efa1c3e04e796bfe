package gateway

import (
    "context"
    "encoding/json"
    "net/http"
    "strings"

    "github.com/gin-gonic/gin"
    "github.com/gorilla/websocket"
    "github.com/prometheus/client_golang/prometheus/promhttp"
    "go.uber.org/zap"

    "pricebot/internal/router"
)

var upgrader = websocket.Upgrader{
    ReadBufferSize:  1024,
    WriteBufferSize: 1024,
    CheckOrigin: func(r *http.Request) bool {
        return true
    },
}

type incomingMessage struct {
    Text string `json:"text"`
}

type outgoingMessage struct {
    Text string `json:"text"`
}

// Gateway exposes the router over HTTP: a websocket chat endpoint plus a
// plain JSON query endpoint, health, and metrics.
type Gateway struct {
    router *router.Router
    log    *zap.Logger
}

func New(r *router.Router, log *zap.Logger) *Gateway {
    if log == nil { log = zap.NewNop() }
    return &Gateway{router: r, log: log}
}

// Engine builds the gin engine with all routes registered.
func (g *Gateway) Engine() *gin.Engine {
    e := gin.New()
    e.Use(gin.Recovery())
    e.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
    e.GET("/metrics", gin.WrapH(promhttp.Handler()))
    e.GET("/ws", g.wsHandler)
    e.POST("/api/query", g.queryHandler)
    return e
}

// wsHandler runs one chat connection: each text frame is a chat line, each
// answered line produces one reply frame. Ignored lines produce nothing.
func (g *Gateway) wsHandler(c *gin.Context) {
    ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
    if err != nil {
        return
    }
    defer ws.Close()

    for {
        _, payload, err := ws.ReadMessage()
        if err != nil {
            break
        }

        line := decodeLine(payload)
        if line == "" {
            continue
        }
        resp, ok := g.router.Handle(context.Background(), line)
        if !ok {
            continue
        }
        if err := ws.WriteJSON(outgoingMessage{Text: resp}); err != nil {
            g.log.Debug("ws write failed", zap.Error(err))
            break
        }
    }
}

type queryRequest struct {
    Line string `json:"line" binding:"required"`
}

type queryResponse struct {
    Handled  bool   `json:"handled"`
    Response string `json:"response,omitempty"`
}

func (g *Gateway) queryHandler(c *gin.Context) {
    var req queryRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": "line is required"})
        return
    }
    resp, ok := g.router.Handle(c.Request.Context(), req.Line)
    c.JSON(http.StatusOK, queryResponse{Handled: ok, Response: resp})
}

// decodeLine accepts either a JSON {"text": ...} frame or a raw text frame.
func decodeLine(payload []byte) string {
    var in incomingMessage
    if err := json.Unmarshal(payload, &in); err == nil && in.Text != "" {
        return strings.TrimSpace(in.Text)
    }
    return strings.TrimSpace(string(payload))
}
