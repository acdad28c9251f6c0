// Package store defines the metadata-store surface the core services depend
// on, plus its MongoDB implementation. Every method reports a missing entity
// as apperr.ErrNotFound and a uniqueness violation as apperr.ErrConflict, so
// callers never string-match driver errors.
package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devansh03/FileHaven/internal/models"
)

// FolderStore holds the folder records of every user's drive tree.
type FolderStore interface {
	// CreateFolder inserts one folder row. The (owner_id, parent_id, name)
	// unique index is the authoritative guard against duplicate siblings;
	// a violation comes back as apperr.ErrConflict.
	CreateFolder(ctx context.Context, folder *models.Folder) error
	FolderByID(ctx context.Context, id primitive.ObjectID) (*models.Folder, error)
	// ChildFolders lists direct children only, newest first. A nil parentID
	// selects the owner's root folders.
	ChildFolders(ctx context.Context, ownerID string, parentID *primitive.ObjectID) ([]models.Folder, error)
	// DeleteSubtree removes the given folders and every file placed in them
	// as one atomic unit: either the whole subtree disappears or none of it.
	DeleteSubtree(ctx context.Context, folderIDs []primitive.ObjectID) error
}

// FileStore holds file metadata rows. Blob content is the storage package's
// problem.
type FileStore interface {
	CreateFile(ctx context.Context, file *models.File) error
	FileByID(ctx context.Context, id primitive.ObjectID) (*models.File, error)
	// FileByName looks up an exact name within (owner, folder); used by the
	// upload collision policy.
	FileByName(ctx context.Context, ownerID string, folderID *primitive.ObjectID, name string) (*models.File, error)
	// FilesInFolder lists the files directly inside one folder, newest
	// first. A nil folderID selects the owner's drive-root files.
	FilesInFolder(ctx context.Context, ownerID string, folderID *primitive.ObjectID) ([]models.File, error)
	// FilesInFolders lists every file placed in any of the given folders,
	// used to collect blob keys ahead of a cascade delete.
	FilesInFolders(ctx context.Context, folderIDs []primitive.ObjectID) ([]models.File, error)
	DeleteFile(ctx context.Context, id primitive.ObjectID) error
}

// ShareStore holds public share links, addressed by their opaque token.
type ShareStore interface {
	CreateShare(ctx context.Context, share *models.ShareLink) error
	ShareByToken(ctx context.Context, token string) (*models.ShareLink, error)
	// DeleteShare removes a link, scoped to its owner so nobody can revoke
	// someone else's share.
	DeleteShare(ctx context.Context, token, ownerID string) error
}

// UserStore holds credentials. Email uniqueness rides on an index, same as
// folder-sibling uniqueness.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	UserByEmail(ctx context.Context, email string) (*models.User, error)
}
