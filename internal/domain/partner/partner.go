// Package partner contains the trade-partner catalog entities. Importers and
// exporters share the same shape and lifecycle; declarations reference them
// by id and require them to be ACTIVO at submission time only.
package partner

import (
	"strings"
	"time"
)

// Status defines the catalog states of a trade partner.
type Status string

const (
	StatusActivo   Status = "ACTIVO"
	StatusInactivo Status = "INACTIVO"
)

// Valid reports whether s is a known partner status.
func (s Status) Valid() bool { return s == StatusActivo || s == StatusInactivo }

// Kind distinguishes the two symmetric catalogs.
type Kind string

const (
	KindImporter Kind = "importador"
	KindExporter Kind = "exportador"
)

const (
	MaxIDLen     = 15
	MaxNombreLen = 100
)

// Partner is a catalog record. The id is externally assigned and acts as the
// primary key; records are upserted and toggled, never deleted.
type Partner struct {
	ID        string    `json:"id"`
	Nombre    string    `json:"nombre"`
	Estado    Status    `json:"estado"`
	CreatedAt time.Time `json:"created_at"`
}

// Active reports whether the partner may be referenced by a new declaration.
func (p *Partner) Active() bool { return p.Estado == StatusActivo }

// New builds a catalog record, validating the externally assigned id and name.
func New(id, nombre string, estado Status) (*Partner, error) {
	id = strings.TrimSpace(id)
	nombre = strings.TrimSpace(nombre)
	if id == "" || len(id) > MaxIDLen {
		return nil, ErrInvalidPartner{Reason: "id is required and at most 15 characters"}
	}
	if nombre == "" || len(nombre) > MaxNombreLen {
		return nil, ErrInvalidPartner{Reason: "nombre is required and at most 100 characters"}
	}
	if !estado.Valid() {
		return nil, ErrInvalidPartner{Reason: "estado must be ACTIVO or INACTIVO"}
	}
	return &Partner{
		ID:        id,
		Nombre:    nombre,
		Estado:    estado,
		CreatedAt: time.Now(),
	}, nil
}
