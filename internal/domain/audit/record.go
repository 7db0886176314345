// Package audit contains the append-only action trail written on every
// significant workflow operation, success or failure.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Result marks the outcome of the audited action.
type Result string

const (
	ResultExito Result = "EXITO"
	ResultFallo Result = "FALLO"
)

// Action identifies the kind of operation performed.
type Action string

const (
	ActionView     Action = "VIEW"
	ActionCreate   Action = "CREATE"
	ActionUpdate   Action = "UPDATE"
	ActionDelete   Action = "DELETE"
	ActionValidate Action = "VALIDATE"
	ActionLogin    Action = "LOGIN"
)

// Entity identifies the kind of record the action touched.
type Entity string

const (
	EntityDeclaration Entity = "DECLARATION"
	EntityUser        Entity = "USER"
	EntityImporter    Entity = "IMPORTER"
	EntityExporter    Entity = "EXPORTER"
	EntitySession     Entity = "SESSION"
)

// RequestMeta carries request metadata captured at the HTTP boundary.
type RequestMeta struct {
	Method        string `json:"method,omitempty" bson:"method,omitempty"`
	Path          string `json:"path,omitempty" bson:"path,omitempty"`
	ClientIP      string `json:"client_ip,omitempty" bson:"client_ip,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
}

// Record is one immutable audit entry. The application never mutates or
// deletes these.
type Record struct {
	ActorID   uuid.UUID   `json:"actor_id" bson:"actor_id"`
	Action    Action      `json:"action" bson:"action"`
	Entity    Entity      `json:"entity" bson:"entity"`
	EntityID  string      `json:"entity_id,omitempty" bson:"entity_id,omitempty"`
	Operation string      `json:"operation" bson:"operation"`
	Result    Result      `json:"result" bson:"result"`
	Details   string      `json:"details,omitempty" bson:"details,omitempty"`
	Request   RequestMeta `json:"request,omitempty" bson:"request,omitempty"`
	CreatedAt time.Time   `json:"created_at" bson:"created_at"`
}

// Recorder accepts audit records best-effort. Implementations must never
// surface a failure to the caller; a record that cannot be written is logged
// and dropped.
type Recorder interface {
	Record(ctx context.Context, rec Record)
}

// Repository is the storage contract behind a Recorder.
type Repository interface {
	// Insert appends one record to the trail.
	Insert(ctx context.Context, rec *Record) error

	// ListByActor returns the actor's records, newest first.
	ListByActor(ctx context.Context, actorID uuid.UUID, limit, offset int) ([]Record, error)
}
