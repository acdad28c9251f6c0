package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// File is a stored object: the metadata row lives in MongoDB, the content
// behind StorageKey/URL lives in the blob store for the file's lifetime.
type File struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name       string              `bson:"name" json:"name"`
	StorageKey string              `bson:"storage_key" json:"-"`
	MimeType   string              `bson:"mime_type" json:"mime_type"`
	Size       int64               `bson:"size" json:"size"`
	URL        string              `bson:"url" json:"url"`
	OwnerID    string              `bson:"owner_id" json:"owner_id"`
	FolderID   *primitive.ObjectID `bson:"folder_id" json:"folder_id"` // nil places the file at the drive root
	CreatedAt  time.Time           `bson:"created_at" json:"created_at"`
}
