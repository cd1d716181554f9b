package model

import "time"

// Invitation is the single-use credential gating session creation.
// It is consumed atomically the moment a session is created against it.
type Invitation struct {
	ID         string     `json:"id" bson:"_id,omitempty"`
	Token      string     `json:"token" bson:"token"`
	Email      string     `json:"email,omitempty" bson:"email,omitempty"`
	CreatedBy  string     `json:"createdBy" bson:"createdBy"`
	CreatedAt  time.Time  `json:"createdAt" bson:"createdAt"`
	ConsumedAt *time.Time `json:"consumedAt,omitempty" bson:"consumedAt,omitempty"`
	SessionID  string     `json:"sessionId,omitempty" bson:"sessionId,omitempty"`
}

// Consumed reports whether the invitation has already been used.
func (i *Invitation) Consumed() bool {
	return i.ConsumedAt != nil
}
