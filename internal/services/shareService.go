package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devansh03/FileHaven/internal/apperr"
	"github.com/devansh03/FileHaven/internal/models"
	"github.com/devansh03/FileHaven/internal/store"
)

func generateShareToken() (string, error) {
	token := make([]byte, 16)
	if _, err := rand.Read(token); err != nil {
		return "", fmt.Errorf("failed to generate share token: %w", err)
	}
	return hex.EncodeToString(token), nil
}

// ShareService resolves public share tokens and proves that a requested
// folder or file lies inside the shared subtree. Authorization is an
// ancestor-chain membership test, not a precomputed subtree set, so it
// always reflects the current tree shape.
type ShareService struct {
	shares  store.ShareStore
	folders store.FolderStore
	files   store.FileStore
	tree    *FolderService
}

func NewShareService(shares store.ShareStore, folders store.FolderStore, files store.FileStore, tree *FolderService) *ShareService {
	return &ShareService{shares: shares, folders: folders, files: files, tree: tree}
}

// Create publishes a read-only share link for a folder the caller owns.
// ttl <= 0 means the link never expires.
func (s *ShareService) Create(ctx context.Context, ownerID string, folderID primitive.ObjectID, ttl time.Duration) (*models.ShareLink, error) {
	if _, err := s.tree.ResolveOwned(ctx, folderID, ownerID); err != nil {
		return nil, err
	}

	token, err := generateShareToken()
	if err != nil {
		return nil, err
	}

	share := &models.ShareLink{
		ID:        primitive.NewObjectID(),
		Token:     token,
		FolderID:  folderID,
		OwnerID:   ownerID,
		CreatedAt: time.Now(),
	}
	if ttl > 0 {
		expires := time.Now().Add(ttl)
		share.ExpiresAt = &expires
	}
	if err := s.shares.CreateShare(ctx, share); err != nil {
		return nil, err
	}
	return share, nil
}

// Revoke deletes a share link owned by the caller.
func (s *ShareService) Revoke(ctx context.Context, token, ownerID string) error {
	return s.shares.DeleteShare(ctx, token, ownerID)
}

// Resolve maps a public token to the shared root folder. Missing tokens,
// expired links, and links whose folder has since been deleted all fail
// closed; the HTTP layer shows every one of those as not-found.
func (s *ShareService) Resolve(ctx context.Context, token string) (*models.Folder, error) {
	share, err := s.shares.ShareByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if share.ExpiresAt != nil && time.Now().After(*share.ExpiresAt) {
		return nil, fmt.Errorf("%w", apperr.ErrExpired)
	}
	// Re-fetch the folder: the share link may outlive it.
	folder, err := s.folders.FolderByID(ctx, share.FolderID)
	if err != nil {
		return nil, err
	}
	return folder, nil
}

// AuthorizeDescendant reports whether candidate lies in the subtree rooted
// at sharedRoot. A folder is a descendant of itself. The walk is bounded;
// exceeding the bound denies access rather than trusting a possibly-cyclic
// chain.
func (s *ShareService) AuthorizeDescendant(ctx context.Context, candidateID, sharedRootID primitive.ObjectID) (bool, error) {
	next := &candidateID
	for hops := 0; next != nil; hops++ {
		if hops >= maxTreeDepth {
			log.Printf("integrity: parent chain of folder %s exceeds %d hops, denying share access", candidateID.Hex(), maxTreeDepth)
			return false, nil
		}
		if *next == sharedRootID {
			return true, nil
		}
		folder, err := s.folders.FolderByID(ctx, *next)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return false, nil
			}
			return false, err
		}
		next = folder.ParentID
	}
	return false, nil
}

// AuthorizeFile reports whether file is reachable through the share rooted
// at sharedRoot. Drive-root files have no containing folder and are never
// reachable through any share.
func (s *ShareService) AuthorizeFile(ctx context.Context, file *models.File, sharedRootID primitive.ObjectID) (bool, error) {
	if file.FolderID == nil {
		return false, nil
	}
	return s.AuthorizeDescendant(ctx, *file.FolderID, sharedRootID)
}

// ListSubfolder lists a folder's contents on behalf of a public caller.
// This is the single path through which share visitors read folder
// contents; every public navigation funnels in here.
func (s *ShareService) ListSubfolder(ctx context.Context, sharedRoot *models.Folder, folderID primitive.ObjectID) ([]models.Folder, []models.File, error) {
	ok, err := s.AuthorizeDescendant(ctx, folderID, sharedRoot.ID)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, fmt.Errorf("%w: folder is outside the shared subtree", apperr.ErrForbidden)
	}

	folder := sharedRoot
	if folderID != sharedRoot.ID {
		folder, err = s.folders.FolderByID(ctx, folderID)
		if err != nil {
			return nil, nil, err
		}
	}
	return s.tree.ListChildren(ctx, folder.OwnerID, &folder.ID)
}

// SharedFile authorizes a public download of fileID through the share
// rooted at sharedRoot.
func (s *ShareService) SharedFile(ctx context.Context, sharedRoot *models.Folder, fileID primitive.ObjectID) (*models.File, error) {
	file, err := s.files.FileByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	ok, err := s.AuthorizeFile(ctx, file, sharedRoot.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: file is outside the shared subtree", apperr.ErrForbidden)
	}
	return file, nil
}

// SharedBreadcrumbs builds the path from the shared root down to folderID.
// The walk stops at the shared root so nothing above the share leaks into
// the public view. folderID must already be authorized for this share.
func (s *ShareService) SharedBreadcrumbs(ctx context.Context, sharedRoot *models.Folder, folderID primitive.ObjectID) ([]Breadcrumb, error) {
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
		if folder.ID == sharedRoot.ID {
			break
		}
		next = folder.ParentID
	}
	slices.Reverse(crumbs)
	return crumbs, nil
}
