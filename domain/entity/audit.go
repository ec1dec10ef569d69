package entity

import "time"

// Audit holds the ownership and lifecycle stamps shared by every persisted record.
// A non-nil DeletedAt marks the record as soft-deleted.
type Audit struct {
	CreatedBy string     `json:"created_by"`
	UpdatedBy *string    `json:"updated_by,omitempty"`
	DeletedBy *string    `json:"deleted_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// AuditInfo returns a pointer to the audit block so embedding types satisfy Record.
func (a *Audit) AuditInfo() *Audit {
	return a
}

// IsDeleted reports whether the record has been soft-deleted.
func (a *Audit) IsDeleted() bool {
	return a.DeletedAt != nil
}

// MarkCreated stamps the creating actor. UpdatedBy stays empty until the first update.
func (a *Audit) MarkCreated(actorID string, at time.Time) {
	a.CreatedBy = actorID
	a.CreatedAt = at
	a.UpdatedAt = at
}

// MarkUpdated records the most recent updating actor. CreatedBy is never touched.
func (a *Audit) MarkUpdated(actorID string, at time.Time) {
	a.UpdatedBy = &actorID
	a.UpdatedAt = at
}

// MarkDeleted records the deleting actor and the soft-delete timestamp.
func (a *Audit) MarkDeleted(actorID string, at time.Time) {
	a.DeletedBy = &actorID
	a.DeletedAt = &at
	a.UpdatedAt = at
}

// Record is implemented by every entity the generic CRUD service manages.
type Record interface {
	GetID() string
	SetID(id string)
	GetName() string
	AuditInfo() *Audit
}

// Patch overlays a partial update onto an existing record.
// Fields the patch does not carry must be left untouched.
type Patch[T Record] interface {
	ApplyTo(rec T)
}
