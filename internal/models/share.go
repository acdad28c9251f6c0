package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ShareLink grants public read-only access to the subtree rooted at
// FolderID. Authority never extends to siblings, ancestors, or other
// owners' trees.
type ShareLink struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Token     string             `bson:"token" json:"token"`
	FolderID  primitive.ObjectID `bson:"folder_id" json:"folder_id"`
	OwnerID   string             `bson:"owner_id" json:"owner_id"`
	ExpiresAt *time.Time         `bson:"expires_at" json:"expires_at"` // nil means the link never expires
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
