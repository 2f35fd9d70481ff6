package wshandler

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
	ws "github.com/Temutjin2k/ride-dispatch/pkg/wsHub"
)

type requestEvent struct {
	RequestID string `json:"requestId"`
	Response  string `json:"response,omitempty"`
}

type callReq struct {
	TargetID string          `json:"targetId"`
	SDP      json.RawMessage `json:"sdp"`
}

type answerReq struct {
	CallerID string          `json:"callerId"`
	SDP      json.RawMessage `json:"sdp"`
}

type candidateReq struct {
	TargetID  string          `json:"targetId"`
	Candidate json.RawMessage `json:"candidate"`
}

type endCallReq struct {
	TargetID string `json:"targetId"`
}

// handle dispatches one inbound frame. Malformed frames get an error event and
// never close the connection.
func (h *Handler) handle(ctx context.Context, conn *ws.Conn, msg ws.Message) {
	switch msg.Event {
	case types.EventRequestResponse, types.EventDriverArrived, types.EventDriverStartTheRace, types.EventRideFinished:
		var req requestEvent
		if err := json.Unmarshal(msg.Data, &req); err != nil || req.RequestID == "" {
			h.reject(ctx, conn, msg.Event, "requestId is required")
			return
		}
		h.bus.Broadcast(ctx, models.NewEvent(msg.Event, req))

	case types.EventCall:
		var req callReq
		if err := json.Unmarshal(msg.Data, &req); err != nil || req.TargetID == "" {
			h.reject(ctx, conn, msg.Event, "targetId is required")
			return
		}
		h.bus.SendToConnection(ctx, req.TargetID, models.NewEvent(types.EventCall, map[string]any{
			"sdp":      req.SDP,
			"callerId": conn.ID(),
		}))

	case types.EventAnswer:
		var req answerReq
		if err := json.Unmarshal(msg.Data, &req); err != nil || req.CallerID == "" {
			h.reject(ctx, conn, msg.Event, "callerId is required")
			return
		}
		h.bus.SendToConnection(ctx, req.CallerID, models.NewEvent(types.EventAnswer, map[string]any{
			"sdp":      req.SDP,
			"calleeId": conn.ID(),
		}))

	case types.EventCandidate:
		var req candidateReq
		if err := json.Unmarshal(msg.Data, &req); err != nil || req.TargetID == "" {
			h.reject(ctx, conn, msg.Event, "targetId is required")
			return
		}
		h.bus.SendToConnection(ctx, req.TargetID, models.NewEvent(types.EventCandidate, map[string]any{
			"candidate": req.Candidate,
			"senderId":  conn.ID(),
		}))

	case types.EventEndCall:
		var req endCallReq
		if err := json.Unmarshal(msg.Data, &req); err != nil || req.TargetID == "" {
			h.reject(ctx, conn, msg.Event, "targetId is required")
			return
		}
		h.bus.SendToConnection(ctx, req.TargetID, models.NewEvent(types.EventCallEnded, map[string]string{
			"from": conn.ID(),
		}))

	case types.EventWhereDriver:
		h.whereDriver(ctx, conn, msg.Data)

	default:
		h.l.Debug(ctx, "ignored websocket event", "event", msg.Event, "conn_id", conn.ID())
	}
}

// whereDriver answers with the trackings of one driver. The id may be sent
// as a bare string or as {"driverId": "..."}.
func (h *Handler) whereDriver(ctx context.Context, conn *ws.Conn, data json.RawMessage) {
	var driverID string
	if err := json.Unmarshal(data, &driverID); err != nil {
		var req struct {
			DriverID string `json:"driverId"`
		}
		_ = json.Unmarshal(data, &req)
		driverID = req.DriverID
	}
	driverID = strings.TrimSpace(driverID)

	var payload any = map[string]string{"error": "Driver not found"}
	if driverID != "" {
		if found := h.trackings.FindByDriver(driverID); len(found) > 0 {
			payload = found
		}
	}
	if err := conn.Send(models.NewEvent(types.EventWhereDriverResponse, payload)); err != nil {
		h.l.Warn(ctx, "failed to answer driver lookup", "error", err.Error())
	}
}

func (h *Handler) reject(ctx context.Context, conn *ws.Conn, event, message string) {
	h.l.Warn(ctx, "malformed websocket event", "event", event, "conn_id", conn.ID())
	if err := conn.Send(models.NewEvent(types.EventError, map[string]string{"event": event, "error": message})); err != nil {
		h.l.Warn(ctx, "failed to send error event", "error", err.Error())
	}
}
