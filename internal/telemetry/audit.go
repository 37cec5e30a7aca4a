package telemetry

import (
	"context"
	"log/slog"
	"time"
)

type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

// Action names a state change that is recorded on the audit stream.
type Action string

const (
	ActionUserRegistered     Action = "user.registered"
	ActionUserLoggedIn       Action = "user.logged_in"
	ActionRoomCreated        Action = "room.created"
	ActionRoomJoined         Action = "room.joined"
	ActionRoomDeleted        Action = "room.deleted"
	ActionInvitationCreated  Action = "invitation.created"
	ActionInvitationAccepted Action = "invitation.accepted"
	ActionInvitationDeclined Action = "invitation.declined"
	ActionAuditTest          Action = "debug.audit_test"
)

// Level is the severity attached to an audit record. Everything the API
// records today is informational, failures are only logged.
func (a Action) Level() string {
	return "INFO"
}

// Record is a single audit entry before it is wrapped in an envelope.
type Record struct {
	Action    Action
	SubjectID string
	RequestID string
	UserID    *string
}

// AuditEmitter records user-visible state changes on the event bus.
type AuditEmitter struct {
	publisher   Publisher
	routingKey  string
	service     string
	environment string
	log         *slog.Logger
	now         func() time.Time
}

type AuditEnvelope struct {
	SchemaVersion int          `json:"schema_version"`
	EventType     string       `json:"event_type"`
	OccurredAt    string       `json:"occurred_at"`
	Service       string       `json:"service"`
	Environment   string       `json:"environment"`
	RequestID     string       `json:"request_id"`
	UserID        *string      `json:"user_id,omitempty"`
	Payload       AuditPayload `json:"payload"`
}

type AuditPayload struct {
	Level     string `json:"level"`
	Action    Action `json:"action"`
	SubjectID string `json:"subject_id,omitempty"`
}

func NewAuditEmitter(publisher Publisher, routingKey, service, environment string, log *slog.Logger) *AuditEmitter {
	return &AuditEmitter{
		publisher:   publisher,
		routingKey:  routingKey,
		service:     service,
		environment: environment,
		log:         log,
		now:         time.Now,
	}
}

func (e *AuditEmitter) envelope(r Record) AuditEnvelope {
	return AuditEnvelope{
		SchemaVersion: 2,
		EventType:     "audit_log",
		OccurredAt:    e.now().UTC().Format(time.RFC3339Nano),
		Service:       e.service,
		Environment:   e.environment,
		RequestID:     r.RequestID,
		UserID:        r.UserID,
		Payload: AuditPayload{
			Level:     r.Action.Level(),
			Action:    r.Action,
			SubjectID: r.SubjectID,
		},
	}
}

// Emit publishes the record. Publish failures are logged and dropped so a
// broken bus never fails the request that produced the record.
func (e *AuditEmitter) Emit(ctx context.Context, r Record) {
	if e == nil || e.publisher == nil {
		return
	}

	if err := e.publisher.Publish(ctx, e.routingKey, e.envelope(r)); err != nil && e.log != nil {
		e.log.Warn("audit publish failed", "error", err, "action", r.Action, "request_id", r.RequestID)
	}
}
