// Package memory is an in-memory metadata store honoring the same error
// contract as the Mongo implementation: apperr.ErrNotFound for absent rows,
// apperr.ErrConflict for uniqueness violations, newest-first listings. It
// backs unit tests and local development without a database.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devansh03/FileHaven/internal/apperr"
	"github.com/devansh03/FileHaven/internal/models"
)

type Store struct {
	mu  sync.Mutex
	seq int

	folders map[primitive.ObjectID]models.Folder
	files   map[primitive.ObjectID]models.File
	shares  map[string]models.ShareLink
	users   map[primitive.ObjectID]models.User
	order   map[primitive.ObjectID]int

	// FailCreateFile, when set, is returned by CreateFile. Tests use it to
	// force a metadata-commit failure after a blob write.
	FailCreateFile error
}

func New() *Store {
	return &Store{
		folders: make(map[primitive.ObjectID]models.Folder),
		files:   make(map[primitive.ObjectID]models.File),
		shares:  make(map[string]models.ShareLink),
		users:   make(map[primitive.ObjectID]models.User),
		order:   make(map[primitive.ObjectID]int),
	}
}

func idsEqual(a, b *primitive.ObjectID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (s *Store) CreateFolder(_ context.Context, folder *models.Folder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.folders {
		if existing.OwnerID == folder.OwnerID && existing.Name == folder.Name && idsEqual(existing.ParentID, folder.ParentID) {
			return fmt.Errorf("%w: folder %q", apperr.ErrConflict, folder.Name)
		}
	}
	s.seq++
	s.order[folder.ID] = s.seq
	s.folders[folder.ID] = *folder
	return nil
}

func (s *Store) FolderByID(_ context.Context, id primitive.ObjectID) (*models.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	folder, ok := s.folders[id]
	if !ok {
		return nil, fmt.Errorf("%w: folder %s", apperr.ErrNotFound, id.Hex())
	}
	return &folder, nil
}

func (s *Store) ChildFolders(_ context.Context, ownerID string, parentID *primitive.ObjectID) ([]models.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var folders []models.Folder
	for _, folder := range s.folders {
		if folder.OwnerID == ownerID && idsEqual(folder.ParentID, parentID) {
			folders = append(folders, folder)
		}
	}
	sort.Slice(folders, func(i, j int) bool {
		return s.order[folders[i].ID] > s.order[folders[j].ID]
	})
	return folders, nil
}

func (s *Store) DeleteSubtree(_ context.Context, folderIDs []primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doomed := make(map[primitive.ObjectID]bool, len(folderIDs))
	for _, id := range folderIDs {
		doomed[id] = true
	}
	for id := range s.folders {
		if doomed[id] {
			delete(s.folders, id)
		}
	}
	for id, file := range s.files {
		if file.FolderID != nil && doomed[*file.FolderID] {
			delete(s.files, id)
		}
	}
	return nil
}

// Reparent rewires a folder's parent pointer directly, bypassing every
// invariant check. It exists so tests can simulate parent-chain corruption.
func (s *Store) Reparent(id primitive.ObjectID, parentID *primitive.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	folder, ok := s.folders[id]
	if !ok {
		return
	}
	folder.ParentID = parentID
	s.folders[id] = folder
}

func (s *Store) CreateFile(_ context.Context, file *models.File) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailCreateFile != nil {
		return s.FailCreateFile
	}
	s.seq++
	s.order[file.ID] = s.seq
	s.files[file.ID] = *file
	return nil
}

func (s *Store) FileByID(_ context.Context, id primitive.ObjectID) (*models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, ok := s.files[id]
	if !ok {
		return nil, fmt.Errorf("%w: file %s", apperr.ErrNotFound, id.Hex())
	}
	return &file, nil
}

func (s *Store) FileByName(_ context.Context, ownerID string, folderID *primitive.ObjectID, name string) (*models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, file := range s.files {
		if file.OwnerID == ownerID && file.Name == name && idsEqual(file.FolderID, folderID) {
			found := file
			return &found, nil
		}
	}
	return nil, fmt.Errorf("%w: file %q", apperr.ErrNotFound, name)
}

func (s *Store) FilesInFolder(_ context.Context, ownerID string, folderID *primitive.ObjectID) ([]models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var files []models.File
	for _, file := range s.files {
		if file.OwnerID == ownerID && idsEqual(file.FolderID, folderID) {
			files = append(files, file)
		}
	}
	sort.Slice(files, func(i, j int) bool {
		return s.order[files[i].ID] > s.order[files[j].ID]
	})
	return files, nil
}

func (s *Store) FilesInFolders(_ context.Context, folderIDs []primitive.ObjectID) ([]models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := make(map[primitive.ObjectID]bool, len(folderIDs))
	for _, id := range folderIDs {
		wanted[id] = true
	}
	var files []models.File
	for _, file := range s.files {
		if file.FolderID != nil && wanted[*file.FolderID] {
			files = append(files, file)
		}
	}
	return files, nil
}

func (s *Store) DeleteFile(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[id]; !ok {
		return fmt.Errorf("%w: file %s", apperr.ErrNotFound, id.Hex())
	}
	delete(s.files, id)
	return nil
}

// FileCount reports the number of file rows held, for test assertions.
func (s *Store) FileCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

// FolderCount reports the number of folder rows held, for test assertions.
func (s *Store) FolderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.folders)
}

func (s *Store) CreateShare(_ context.Context, share *models.ShareLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.shares[share.Token]; ok {
		return fmt.Errorf("%w: share token", apperr.ErrConflict)
	}
	s.shares[share.Token] = *share
	return nil
}

func (s *Store) ShareByToken(_ context.Context, token string) (*models.ShareLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	share, ok := s.shares[token]
	if !ok {
		return nil, fmt.Errorf("%w: share link", apperr.ErrNotFound)
	}
	return &share, nil
}

func (s *Store) DeleteShare(_ context.Context, token, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	share, ok := s.shares[token]
	if !ok || share.OwnerID != ownerID {
		return fmt.Errorf("%w: share link", apperr.ErrNotFound)
	}
	delete(s.shares, token)
	return nil
}

// ExpireShare backdates a share's expiry, for tests exercising expired
// links.
func (s *Store) ExpireShare(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	share, ok := s.shares[token]
	if !ok {
		return
	}
	expired := share.CreatedAt.Add(-1)
	share.ExpiresAt = &expired
	s.shares[token] = share
}

func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return fmt.Errorf("%w: email already in use", apperr.ErrConflict)
		}
	}
	s.users[user.ID] = *user
	return nil
}

func (s *Store) UserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Email == email {
			found := user
			return &found, nil
		}
	}
	return nil, fmt.Errorf("%w: user %s", apperr.ErrNotFound, email)
}
