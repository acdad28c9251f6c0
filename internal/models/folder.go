package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Folder is one node of a user's drive tree. The tree is stored as a
// back-reference on the child: ParentID points up, children are found by
// query. (Name, OwnerID, ParentID) is unique, enforced by an index.
type Folder struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name      string              `bson:"name" json:"name"`
	OwnerID   string              `bson:"owner_id" json:"owner_id"`
	ParentID  *primitive.ObjectID `bson:"parent_id" json:"parent_id"` // nil marks a root folder
	CreatedAt time.Time           `bson:"created_at" json:"created_at"`
}
