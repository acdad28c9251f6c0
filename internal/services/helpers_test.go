package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devansh03/FileHaven/internal/models"
	"github.com/devansh03/FileHaven/internal/storage"
	"github.com/devansh03/FileHaven/internal/store/memory"
)

func newTestEnv() (*memory.Store, *storage.MemoryBlobStore, *FolderService) {
	st := memory.New()
	blobs := storage.NewMemoryBlobStore()
	return st, blobs, NewFolderService(st, st, blobs)
}

func mustFolder(t *testing.T, tree *FolderService, owner, name string, parentID *primitive.ObjectID) *models.Folder {
	t.Helper()
	folder, err := tree.Create(context.Background(), owner, name, parentID)
	require.NoError(t, err)
	return folder
}

func mustUpload(t *testing.T, files *FileService, owner string, folderID *primitive.ObjectID, name string) *models.File {
	t.Helper()
	content := "contents of " + name
	file, err := files.Upload(context.Background(), owner, folderID, strings.NewReader(content), name, "text/plain", int64(len(content)))
	require.NoError(t, err)
	return file
}
