package entity

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Valid reports whether r is one of the two roles the upstream API may
// legitimately return.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleModel
}

type Part struct {
	Text string `json:"text"`
}

// Message is one turn in a conversation. Parts keeps upstream part order;
// a persisted message always has at least one part.
type Message struct {
	Role  Role   `json:"role"`
	Parts []Part `json:"parts"`
}

type Conversation struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	History   []Message
	CreatedAt time.Time
}
