package services

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devansh03/FileHaven/internal/apperr"
	"github.com/devansh03/FileHaven/internal/models"
	"github.com/devansh03/FileHaven/internal/storage"
	"github.com/devansh03/FileHaven/internal/store"
	"github.com/devansh03/FileHaven/internal/utils"
)

const (
	// maxTreeDepth bounds every parent-chain walk. A chain longer than this
	// means the tree is corrupted, not that a user made a very deep drive.
	maxTreeDepth = 1000

	// maxSubtreeSize bounds the cascade-delete frontier for the same reason.
	maxSubtreeSize = 10000
)

var folderNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_\s-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("foldername", func(fl validator.FieldLevel) bool {
		return folderNameRegex.MatchString(fl.Field().String())
	})
	return v
}

type createFolderInput struct {
	Name string `validate:"required,min=1,max=50,foldername"`
}

// Breadcrumb is one hop of the path from the drive root down to a folder.
// The virtual "My Drive" root carries a nil ID.
type Breadcrumb struct {
	ID   *primitive.ObjectID `json:"id"`
	Name string              `json:"name"`
}

// FolderService maintains each user's folder tree: creation, cascade
// deletion, ancestry walks, and the ownership check every folder-scoped
// operation goes through.
type FolderService struct {
	folders store.FolderStore
	files   store.FileStore
	blobs   storage.BlobStore
}

func NewFolderService(folders store.FolderStore, files store.FileStore, blobs storage.BlobStore) *FolderService {
	return &FolderService{folders: folders, files: files, blobs: blobs}
}

// Create adds a folder under parentID (nil for the drive root). The unique
// index on (owner, parent, name) is the authoritative duplicate guard, so
// two concurrent creates cannot both slip past an existence check.
func (s *FolderService) Create(ctx context.Context, ownerID, name string, parentID *primitive.ObjectID) (*models.Folder, error) {
	name = strings.TrimSpace(name)
	if err := validate.Struct(createFolderInput{Name: name}); err != nil {
		return nil, fmt.Errorf("%w: folder name must be 1-50 letters, numbers, spaces, hyphens or underscores", apperr.ErrValidation)
	}

	if parentID != nil {
		if _, err := s.ResolveOwned(ctx, *parentID, ownerID); err != nil {
			return nil, err
		}
	}

	folder := &models.Folder{
		ID:        primitive.NewObjectID(),
		Name:      name,
		OwnerID:   ownerID,
		ParentID:  parentID,
		CreatedAt: time.Now(),
	}
	if err := s.folders.CreateFolder(ctx, folder); err != nil {
		return nil, err
	}
	return folder, nil
}

// ResolveOwned is the shared ownership-verification primitive. Ownership is
// re-read from the store on every call; it never changes after creation and
// the store is the single source of truth, so nothing stale can be cached.
func (s *FolderService) ResolveOwned(ctx context.Context, folderID primitive.ObjectID, ownerID string) (*models.Folder, error) {
	folder, err := s.folders.FolderByID(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if folder.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: you do not own this folder", apperr.ErrForbidden)
	}
	return folder, nil
}

// Breadcrumbs walks the parent chain from folderID up to the drive root and
// returns the path in root-to-leaf order, with the virtual "My Drive" root
// prepended.
func (s *FolderService) Breadcrumbs(ctx context.Context, folderID primitive.ObjectID) ([]Breadcrumb, error) {
	var crumbs []Breadcrumb
	next := &folderID
	for hops := 0; next != nil; hops++ {
		if hops >= maxTreeDepth {
			return nil, fmt.Errorf("%w: parent chain of folder %s exceeds %d hops", apperr.ErrIntegrity, folderID.Hex(), maxTreeDepth)
		}
		folder, err := s.folders.FolderByID(ctx, *next)
		if err != nil {
			return nil, err
		}
		id := folder.ID
		crumbs = append(crumbs, Breadcrumb{ID: &id, Name: folder.Name})
		next = folder.ParentID
	}
	crumbs = append(crumbs, Breadcrumb{Name: "My Drive"})
	slices.Reverse(crumbs)
	return crumbs, nil
}

// ListChildren returns the folders and files directly under parentID (nil
// for the drive root), newest first.
func (s *FolderService) ListChildren(ctx context.Context, ownerID string, parentID *primitive.ObjectID) ([]models.Folder, []models.File, error) {
	folders, err := s.folders.ChildFolders(ctx, ownerID, parentID)
	if err != nil {
		return nil, nil, err
	}
	files, err := s.files.FilesInFolder(ctx, ownerID, parentID)
	if err != nil {
		return nil, nil, err
	}
	return folders, files, nil
}

// Delete removes the folder and everything underneath it. The metadata for
// the whole subtree goes in one transaction; blob cleanup for the cascaded
// files runs afterwards, best-effort. Returns the former parent id so the
// caller can navigate back (nil for a root folder).
func (s *FolderService) Delete(ctx context.Context, folderID primitive.ObjectID, callerID string) (*primitive.ObjectID, error) {
	folder, err := s.ResolveOwned(ctx, folderID, callerID)
	if err != nil {
		return nil, err
	}

	subtree, err := s.collectSubtree(ctx, folder)
	if err != nil {
		return nil, err
	}

	files, err := s.files.FilesInFolders(ctx, subtree)
	if err != nil {
		return nil, err
	}

	if err := s.folders.DeleteSubtree(ctx, subtree); err != nil {
		return nil, err
	}

	s.cleanupBlobs(files)
	return folder.ParentID, nil
}

// collectSubtree gathers the ids of root and every descendant folder,
// breadth-first. Descendants share the root's owner, so children are looked
// up under the same owner at each level.
func (s *FolderService) collectSubtree(ctx context.Context, root *models.Folder) ([]primitive.ObjectID, error) {
	ids := []primitive.ObjectID{root.ID}
	queue := []models.Folder{*root}
	for len(queue) > 0 {
		if len(ids) > maxSubtreeSize {
			return nil, fmt.Errorf("%w: subtree of folder %s exceeds %d folders", apperr.ErrIntegrity, root.ID.Hex(), maxSubtreeSize)
		}
		current := queue[0]
		queue = queue[1:]

		children, err := s.folders.ChildFolders(ctx, current.OwnerID, &current.ID)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			ids = append(ids, child.ID)
			queue = append(queue, child)
		}
	}
	return ids, nil
}

// cleanupBlobs removes the blobs behind cascaded files in parallel.
// Failures are logged and swallowed: the metadata transaction already
// committed, and an orphaned blob never blocks the user-visible delete.
func (s *FolderService) cleanupBlobs(files []models.File) {
	if len(files) == 0 {
		return
	}
	tasks := make([]utils.ParallelTask, 0, len(files))
	for _, file := range files {
		key := file.StorageKey
		tasks = append(tasks, func() (interface{}, error) {
			return nil, s.blobs.Remove(context.Background(), key)
		})
	}
	_, errs := utils.RunParallelTasks(tasks)
	for i, err := range errs {
		if err != nil {
			log.Printf("failed to remove blob %s after folder delete: %v", files[i].StorageKey, err)
		}
	}
}
