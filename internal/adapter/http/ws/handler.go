package wshandler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
	"github.com/Temutjin2k/ride-dispatch/pkg/logger"
	wrap "github.com/Temutjin2k/ride-dispatch/pkg/logger/wrapper"
	"github.com/Temutjin2k/ride-dispatch/pkg/metrics"
	ws "github.com/Temutjin2k/ride-dispatch/pkg/wsHub"
)

type (
	Bus interface {
		Broadcast(ctx context.Context, event models.Event)
		SendToConnection(ctx context.Context, connID string, event models.Event)
	}

	TrackingReader interface {
		List() []models.Tracking
		FindByDriver(driverID string) []models.Tracking
	}
)

// Handler serves the real-time channel.
type Handler struct {
	hub       *ws.ConnectionHub
	bus       Bus
	trackings TrackingReader
	upgrader  websocket.Upgrader
	l         logger.Logger
}

func New(hub *ws.ConnectionHub, bus Bus, trackings TrackingReader, l logger.Logger) *Handler {
	return &Handler{
		hub:       hub,
		bus:       bus,
		trackings: trackings,
		upgrader:  websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		l:         l,
	}
}

// ServeWS upgrades the request and keeps the connection until the client leaves.
// The subscriber is the authenticated user, or the subscriber query parameter.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "ws_connect")

	subscriber := r.URL.Query().Get("subscriber")
	if p := models.PrincipalFromContext(r.Context()); !p.IsAnonymous() {
		subscriber = p.UserID
	}

	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.l.Error(ctx, "websocket upgrade failed", err)
		return
	}

	// The request context ends with the handler, the connection outlives nothing else.
	conn := ws.NewConn(context.WithoutCancel(ctx), uuid.NewString(), subscriber, socket)
	if err := h.hub.Add(conn); err != nil {
		h.l.Error(ctx, "failed to register connection", err)
		_ = socket.Close()
		return
	}
	metrics.WebSocketConnectionsGauge.Set(float64(h.hub.Len()))
	h.l.Info(ctx, "client connected", "conn_id", conn.ID(), "subscriber", subscriber)

	defer func() {
		_ = h.hub.Delete(conn.ID())
		metrics.WebSocketConnectionsGauge.Set(float64(h.hub.Len()))
		h.l.Info(ctx, "client disconnected", "conn_id", conn.ID())
	}()

	h.greet(ctx, conn)

	err = conn.Listen(func(msg ws.Message) error {
		h.handle(ctx, conn, msg)
		return nil
	}, func(err error) {
		h.l.Debug(ctx, "invalid websocket frame", "conn_id", conn.ID(), "error", err.Error())
		h.reject(ctx, conn, "", "frame must be a JSON object with a string event")
	})
	if err != nil {
		h.l.Debug(ctx, "connection closed", "conn_id", conn.ID(), "reason", err.Error())
	}
}

// greet tells the client its connection id and sends the current trackings.
func (h *Handler) greet(ctx context.Context, conn *ws.Conn) {
	connected := models.NewEvent(types.EventConnected, map[string]string{"id": conn.ID()})
	if err := conn.Send(connected); err != nil {
		h.l.Warn(ctx, "failed to send connection id", "error", err.Error())
		return
	}

	initial := models.NewEvent(types.EventUpdate, models.TrackingUpdate{
		Type:      types.UpdateInitial,
		Trackings: h.trackings.List(),
	})
	if err := conn.Send(initial); err != nil {
		h.l.Warn(ctx, "failed to send initial trackings", "error", err.Error())
	}
}
