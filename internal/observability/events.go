package observability

// EventEnvelope wraps a lifecycle event published on the bus.
type EventEnvelope struct {
	EventType string      `json:"event_type"`
	EventName string      `json:"event_name"`
	RequestID string      `json:"request_id,omitempty"`
	TraceID   string      `json:"trace_id,omitempty"`
	Payload   interface{} `json:"payload"`
}

// SocketEvent describes a socket lifecycle transition.
type SocketEvent struct {
	Event      string `json:"event"`
	ConnID     string `json:"conn_id"`
	UserID     string `json:"user_id"`
	DeviceID   string `json:"device_id,omitempty"`
	IP         string `json:"ip,omitempty"`
	DurationMS int64  `json:"duration_ms"`
	Reason     string `json:"reason,omitempty"`
}

const SocketRoutingKey = "ws_events.rooms"

func NewSocketEnvelope(ev SocketEvent, requestID, traceID string) EventEnvelope {
	return EventEnvelope{
		EventType: "ws_events",
		EventName: ev.Event,
		RequestID: requestID,
		TraceID:   traceID,
		Payload:   ev,
	}
}
