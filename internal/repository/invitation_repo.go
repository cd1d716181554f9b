package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/behuman/cascade/internal/model"
)

// InvitationRepo handles MongoDB operations for single-use invitations.
type InvitationRepo interface {
	Create(ctx context.Context, inv *model.Invitation) error
	GetByToken(ctx context.Context, token string) (*model.Invitation, error)
	// Consume atomically marks an unconsumed invitation as used by the given
	// session. Returns nil, nil when the token is unknown or already consumed.
	Consume(ctx context.Context, token, sessionID string) (*model.Invitation, error)
}

type invitationRepo struct {
	collection *mongo.Collection
}

// NewInvitationRepo creates a new invitation repository.
func NewInvitationRepo(db *mongo.Database) InvitationRepo {
	return &invitationRepo{
		collection: db.Collection("invitations"),
	}
}

func (r *invitationRepo) Create(ctx context.Context, inv *model.Invitation) error {
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now()
	}
	if _, err := r.collection.InsertOne(ctx, inv); err != nil {
		return model.Persistencef("insert invitation", err)
	}
	return nil
}

func (r *invitationRepo) GetByToken(ctx context.Context, token string) (*model.Invitation, error) {
	var inv model.Invitation
	err := r.collection.FindOne(ctx, bson.M{"token": token}).Decode(&inv)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, model.Persistencef("load invitation", err)
	}
	return &inv, nil
}

func (r *invitationRepo) Consume(ctx context.Context, token, sessionID string) (*model.Invitation, error) {
	now := time.Now()
	// The consumedAt filter makes this a single-use compare-and-set: a second
	// concurrent consumer matches nothing.
	res := r.collection.FindOneAndUpdate(ctx,
		bson.M{"token": token, "consumedAt": nil},
		bson.M{"$set": bson.M{"consumedAt": now, "sessionId": sessionID}},
	)

	var inv model.Invitation
	err := res.Decode(&inv)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, model.Persistencef("consume invitation", err)
	}

	inv.ConsumedAt = &now
	inv.SessionID = sessionID
	return &inv, nil
}
