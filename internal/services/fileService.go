package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devansh03/FileHaven/internal/apperr"
	"github.com/devansh03/FileHaven/internal/models"
	"github.com/devansh03/FileHaven/internal/storage"
	"github.com/devansh03/FileHaven/internal/store"
)

// maxUploadSize caps single uploads at 10 MiB, matching the HTTP body limit.
const maxUploadSize = 10 << 20

// allowedMimeTypes is the upload acceptance list.
var allowedMimeTypes = map[string]bool{
	"image/jpeg":         true,
	"image/png":          true,
	"image/gif":          true,
	"image/svg+xml":      true,
	"application/pdf":    true,
	"application/msword": true,
	"text/plain":         true,
}

// Descriptor points the HTTP layer at the blob to stream for a download.
// The coordinator never proxies bytes itself.
type Descriptor struct {
	URL               string `json:"url"`
	MimeType          string `json:"mime_type"`
	SuggestedFilename string `json:"suggested_filename"`
}

// DescriptorFor builds the stream descriptor for an already-authorized file.
func DescriptorFor(file *models.File) *Descriptor {
	return &Descriptor{URL: file.URL, MimeType: file.MimeType, SuggestedFilename: file.Name}
}

// FileService coordinates the file content lifecycle across the metadata
// store and the blob store, which fail independently. Upload is a two-phase
// write with one compensating action; it is not a distributed transaction.
type FileService struct {
	files store.FileStore
	blobs storage.BlobStore
	tree  *FolderService
}

func NewFileService(files store.FileStore, blobs storage.BlobStore, tree *FolderService) *FileService {
	return &FileService{files: files, blobs: blobs, tree: tree}
}

// Upload writes content to the blob store, then commits the metadata row.
// A failed commit triggers a compensating blob delete so no unreachable
// content lingers; if that also fails, both errors surface together for
// out-of-band reconciliation.
func (s *FileService) Upload(ctx context.Context, ownerID string, folderID *primitive.ObjectID, content io.Reader, originalName, mimeType string, size int64) (*models.File, error) {
	originalName = filepath.Base(strings.TrimSpace(originalName))
	if originalName == "" || originalName == "." || originalName == "/" {
		return nil, fmt.Errorf("%w: missing file name", apperr.ErrValidation)
	}
	if size <= 0 || size > maxUploadSize {
		return nil, fmt.Errorf("%w: file size must be between 1 byte and %d bytes", apperr.ErrValidation, int64(maxUploadSize))
	}
	if !allowedMimeTypes[mimeType] {
		return nil, fmt.Errorf("%w: file type %q is not allowed", apperr.ErrValidation, mimeType)
	}
	if folderID != nil {
		if _, err := s.tree.ResolveOwned(ctx, *folderID, ownerID); err != nil {
			return nil, err
		}
	}

	key := fmt.Sprintf("%s_%s", uuid.NewString(), originalName)
	url, err := s.blobs.Upload(ctx, key, content, size, mimeType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}

	name, err := s.finalName(ctx, ownerID, folderID, originalName)
	if err != nil {
		return nil, s.compensate(ctx, key, err)
	}

	file := &models.File{
		ID:         primitive.NewObjectID(),
		Name:       name,
		StorageKey: key,
		MimeType:   mimeType,
		Size:       size,
		URL:        url,
		OwnerID:    ownerID,
		FolderID:   folderID,
		CreatedAt:  time.Now(),
	}
	if err := s.files.CreateFile(ctx, file); err != nil {
		return nil, s.compensate(ctx, key, err)
	}
	return file, nil
}

// compensate removes a blob whose metadata row never committed. When the
// removal fails too, both errors surface so an operator can reconcile the
// orphaned blob; the delete is not retried here.
func (s *FileService) compensate(ctx context.Context, key string, cause error) error {
	if removeErr := s.blobs.Remove(ctx, key); removeErr != nil {
		log.Printf("orphaned blob %s: compensating delete failed: %v", key, removeErr)
		return errors.Join(cause, fmt.Errorf("%w: compensating delete of blob %s: %v", apperr.ErrStorage, key, removeErr))
	}
	return cause
}

// finalName applies the collision policy: an exact name match in the target
// folder gets a "(<unix millis>)" suffix spliced in front of the last
// extension; a name without one keeps the suffix at the end. Collisions
// never reject an upload.
func (s *FileService) finalName(ctx context.Context, ownerID string, folderID *primitive.ObjectID, originalName string) (string, error) {
	_, err := s.files.FileByName(ctx, ownerID, folderID, originalName)
	if errors.Is(err, apperr.ErrNotFound) {
		return originalName, nil
	}
	if err != nil {
		return "", err
	}

	stamp := time.Now().UnixMilli()
	if dot := strings.LastIndex(originalName, "."); dot > 0 {
		return fmt.Sprintf("%s (%d)%s", originalName[:dot], stamp, originalName[dot:]), nil
	}
	return fmt.Sprintf("%s (%d)", originalName, stamp), nil
}

// Delete removes a file the caller owns. The remote blob goes first, but a
// failure there is logged and swallowed: once the metadata row is gone the
// file is gone as far as the owner is concerned, and an orphaned blob is an
// acceptable cost. Returns the containing folder id for navigation.
func (s *FileService) Delete(ctx context.Context, fileID primitive.ObjectID, callerID string) (*primitive.ObjectID, error) {
	file, err := s.resolveOwned(ctx, fileID, callerID)
	if err != nil {
		return nil, err
	}

	if err := s.blobs.Remove(ctx, file.StorageKey); err != nil {
		log.Printf("failed to remove blob %s for file %s: %v", file.StorageKey, file.ID.Hex(), err)
	}

	if err := s.files.DeleteFile(ctx, file.ID); err != nil {
		return nil, err
	}
	return file.FolderID, nil
}

// Download authorizes the owner and hands back the location to stream from.
func (s *FileService) Download(ctx context.Context, fileID primitive.ObjectID, callerID string) (*Descriptor, error) {
	file, err := s.resolveOwned(ctx, fileID, callerID)
	if err != nil {
		return nil, err
	}
	return DescriptorFor(file), nil
}

func (s *FileService) resolveOwned(ctx context.Context, fileID primitive.ObjectID, callerID string) (*models.File, error) {
	file, err := s.files.FileByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file.OwnerID != callerID {
		return nil, fmt.Errorf("%w: you do not own this file", apperr.ErrForbidden)
	}
	return file, nil
}
