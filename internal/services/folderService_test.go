package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devansh03/FileHaven/internal/apperr"
)

func TestCreateFolder(t *testing.T) {
	_, _, tree := newTestEnv()
	ctx := context.Background()

	root := mustFolder(t, tree, "alice", "documents", nil)
	assert.Nil(t, root.ParentID)
	assert.Equal(t, "alice", root.OwnerID)

	child, err := tree.Create(ctx, "alice", "taxes", &root.ID)
	require.NoError(t, err)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, root.ID, *child.ParentID)
}

func TestCreateFolderNameValidation(t *testing.T) {
	_, _, tree := newTestEnv()
	ctx := context.Background()

	for _, name := range []string{"", "   ", "docs/2024", "a@b", strings.Repeat("x", 51)} {
		_, err := tree.Create(ctx, "alice", name, nil)
		assert.ErrorIs(t, err, apperr.ErrValidation, "name %q should be rejected", name)
	}

	// Accepted characters: letters, digits, spaces, hyphens, underscores.
	_, err := tree.Create(ctx, "alice", "Q3 report_drafts-2024", nil)
	assert.NoError(t, err)
}

func TestCreateFolderParentChecks(t *testing.T) {
	_, _, tree := newTestEnv()
	ctx := context.Background()

	missing := primitive.NewObjectID()
	_, err := tree.Create(ctx, "alice", "orphan", &missing)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	bobRoot := mustFolder(t, tree, "bob", "private", nil)
	_, err = tree.Create(ctx, "alice", "intruder", &bobRoot.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestCreateFolderSiblingConflict(t *testing.T) {
	_, _, tree := newTestEnv()
	ctx := context.Background()

	root := mustFolder(t, tree, "alice", "documents", nil)
	mustFolder(t, tree, "alice", "photos", &root.ID)

	_, err := tree.Create(ctx, "alice", "photos", &root.ID)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	// Same name elsewhere in the tree, or for another owner, is fine.
	_, err = tree.Create(ctx, "alice", "photos", nil)
	assert.NoError(t, err)
	_, err = tree.Create(ctx, "bob", "photos", nil)
	assert.NoError(t, err)
}

func TestBreadcrumbs(t *testing.T) {
	_, _, tree := newTestEnv()
	ctx := context.Background()

	a := mustFolder(t, tree, "alice", "a", nil)
	b := mustFolder(t, tree, "alice", "b", &a.ID)
	c := mustFolder(t, tree, "alice", "c", &b.ID)

	crumbs, err := tree.Breadcrumbs(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, crumbs, 4)

	assert.Nil(t, crumbs[0].ID)
	assert.Equal(t, "My Drive", crumbs[0].Name)
	assert.Equal(t, a.ID, *crumbs[1].ID)
	assert.Equal(t, b.ID, *crumbs[2].ID)
	assert.Equal(t, c.ID, *crumbs[3].ID)
}

func TestBreadcrumbsCycleDetection(t *testing.T) {
	st, _, tree := newTestEnv()
	ctx := context.Background()

	a := mustFolder(t, tree, "alice", "a", nil)
	b := mustFolder(t, tree, "alice", "b", &a.ID)
	st.Reparent(a.ID, &b.ID)

	_, err := tree.Breadcrumbs(ctx, b.ID)
	assert.ErrorIs(t, err, apperr.ErrIntegrity)
}

func TestListChildrenNewestFirst(t *testing.T) {
	st, blobs, tree := newTestEnv()
	ctx := context.Background()
	files := NewFileService(st, blobs, tree)

	first := mustFolder(t, tree, "alice", "first", nil)
	second := mustFolder(t, tree, "alice", "second", nil)
	f1 := mustUpload(t, files, "alice", nil, "one.txt")
	f2 := mustUpload(t, files, "alice", nil, "two.txt")

	folders, fileList, err := tree.ListChildren(ctx, "alice", nil)
	require.NoError(t, err)
	require.Len(t, folders, 2)
	require.Len(t, fileList, 2)
	assert.Equal(t, second.ID, folders[0].ID)
	assert.Equal(t, first.ID, folders[1].ID)
	assert.Equal(t, f2.ID, fileList[0].ID)
	assert.Equal(t, f1.ID, fileList[1].ID)
}

func TestDeleteFolderCascade(t *testing.T) {
	st, blobs, tree := newTestEnv()
	ctx := context.Background()
	files := NewFileService(st, blobs, tree)

	a := mustFolder(t, tree, "alice", "a", nil)
	b := mustFolder(t, tree, "alice", "b", &a.ID)
	c := mustFolder(t, tree, "alice", "c", &b.ID)
	mustFolder(t, tree, "alice", "d", &a.ID)
	unrelated := mustFolder(t, tree, "alice", "keep", nil)

	inB := mustUpload(t, files, "alice", &b.ID, "deep.txt")
	inC := mustUpload(t, files, "alice", &c.ID, "deeper.txt")
	atRoot := mustUpload(t, files, "alice", nil, "rootfile.txt")
	kept := mustUpload(t, files, "alice", &unrelated.ID, "kept.txt")

	parentID, err := tree.Delete(ctx, a.ID, "alice")
	require.NoError(t, err)
	assert.Nil(t, parentID)

	// Only the unrelated folder survives, along with the files outside the
	// subtree.
	assert.Equal(t, 1, st.FolderCount())
	assert.Equal(t, 2, st.FileCount())
	_, err = files.Download(ctx, atRoot.ID, "alice")
	assert.NoError(t, err)
	_, err = files.Download(ctx, kept.ID, "alice")
	assert.NoError(t, err)

	// Blobs behind the cascaded files are cleaned up.
	removed := blobs.Removed()
	assert.Contains(t, removed, inB.StorageKey)
	assert.Contains(t, removed, inC.StorageKey)
	assert.NotContains(t, removed, atRoot.StorageKey)
}

func TestDeleteFolderReturnsParent(t *testing.T) {
	_, _, tree := newTestEnv()
	ctx := context.Background()

	a := mustFolder(t, tree, "alice", "a", nil)
	b := mustFolder(t, tree, "alice", "b", &a.ID)

	parentID, err := tree.Delete(ctx, b.ID, "alice")
	require.NoError(t, err)
	require.NotNil(t, parentID)
	assert.Equal(t, a.ID, *parentID)
}

func TestDeleteFolderAuthorization(t *testing.T) {
	st, _, tree := newTestEnv()
	ctx := context.Background()

	a := mustFolder(t, tree, "alice", "a", nil)

	_, err := tree.Delete(ctx, a.ID, "bob")
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.Equal(t, 1, st.FolderCount())

	_, err = tree.Delete(ctx, primitive.NewObjectID(), "alice")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteFolderBlobCleanupFailureIsSwallowed(t *testing.T) {
	st, blobs, tree := newTestEnv()
	ctx := context.Background()
	files := NewFileService(st, blobs, tree)

	a := mustFolder(t, tree, "alice", "a", nil)
	mustUpload(t, files, "alice", &a.ID, "doomed.txt")

	blobs.FailRemove = errors.New("blob backend down")

	_, err := tree.Delete(ctx, a.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, st.FolderCount())
	assert.Equal(t, 0, st.FileCount())
}
