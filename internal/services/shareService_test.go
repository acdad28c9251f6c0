package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devansh03/FileHaven/internal/apperr"
	"github.com/devansh03/FileHaven/internal/models"
	"github.com/devansh03/FileHaven/internal/storage"
	"github.com/devansh03/FileHaven/internal/store/memory"
)

func newShareEnv() (*memory.Store, *storage.MemoryBlobStore, *FolderService, *ShareService) {
	st, blobs, tree := newTestEnv()
	return st, blobs, tree, NewShareService(st, st, st, tree)
}

func TestCreateShare(t *testing.T) {
	_, _, tree, shares := newShareEnv()
	ctx := context.Background()

	folder := mustFolder(t, tree, "alice", "public stuff", nil)

	share, err := shares.Create(ctx, "alice", folder.ID, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, share.Token)
	assert.Nil(t, share.ExpiresAt)

	timed, err := shares.Create(ctx, "alice", folder.ID, 24*time.Hour)
	require.NoError(t, err)
	require.NotNil(t, timed.ExpiresAt)
	assert.True(t, timed.ExpiresAt.After(time.Now()))
}

func TestCreateShareAuthorization(t *testing.T) {
	_, _, tree, shares := newShareEnv()
	ctx := context.Background()

	folder := mustFolder(t, tree, "alice", "private", nil)

	_, err := shares.Create(ctx, "bob", folder.ID, 0)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = shares.Create(ctx, "alice", primitive.NewObjectID(), 0)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestResolveShare(t *testing.T) {
	st, _, tree, shares := newShareEnv()
	ctx := context.Background()

	folder := mustFolder(t, tree, "alice", "shared", nil)
	share, err := shares.Create(ctx, "alice", folder.ID, time.Hour)
	require.NoError(t, err)

	resolved, err := shares.Resolve(ctx, share.Token)
	require.NoError(t, err)
	assert.Equal(t, folder.ID, resolved.ID)

	_, err = shares.Resolve(ctx, "no-such-token")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	st.ExpireShare(share.Token)
	_, err = shares.Resolve(ctx, share.Token)
	assert.ErrorIs(t, err, apperr.ErrExpired)
}

func TestResolveShareDanglingFolder(t *testing.T) {
	_, _, tree, shares := newShareEnv()
	ctx := context.Background()

	folder := mustFolder(t, tree, "alice", "doomed", nil)
	share, err := shares.Create(ctx, "alice", folder.ID, 0)
	require.NoError(t, err)

	_, err = tree.Delete(ctx, folder.ID, "alice")
	require.NoError(t, err)

	// A share pointing at a deleted folder fails closed, it does not read
	// as an empty folder.
	_, err = shares.Resolve(ctx, share.Token)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAuthorizeDescendant(t *testing.T) {
	st, _, tree, shares := newShareEnv()
	ctx := context.Background()

	a := mustFolder(t, tree, "alice", "a", nil)
	b := mustFolder(t, tree, "alice", "b", &a.ID)
	c := mustFolder(t, tree, "alice", "c", &b.ID)
	sibling := mustFolder(t, tree, "alice", "sibling", &a.ID)
	otherTree := mustFolder(t, tree, "bob", "other", nil)

	cases := []struct {
		name      string
		candidate primitive.ObjectID
		root      primitive.ObjectID
		want      bool
	}{
		{"reflexive", b.ID, b.ID, true},
		{"strict descendant", c.ID, b.ID, true},
		{"deep descendant", c.ID, a.ID, true},
		{"ancestor", a.ID, b.ID, false},
		{"sibling", sibling.ID, b.ID, false},
		{"other owner's tree", otherTree.ID, a.ID, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := shares.AuthorizeDescendant(ctx, tc.candidate, tc.root)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ok)
		})
	}

	// A corrupted (cyclic) chain denies access instead of looping.
	st.Reparent(a.ID, &c.ID)
	ok, err := shares.AuthorizeDescendant(ctx, c.ID, sibling.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthorizeFile(t *testing.T) {
	st, blobs, tree, shares := newShareEnv()
	ctx := context.Background()
	files := NewFileService(st, blobs, tree)

	a := mustFolder(t, tree, "alice", "a", nil)
	b := mustFolder(t, tree, "alice", "b", &a.ID)
	inB := mustUpload(t, files, "alice", &b.ID, "inside.txt")
	atRoot := mustUpload(t, files, "alice", nil, "loose.txt")

	ok, err := shares.AuthorizeFile(ctx, inB, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// Drive-root files are never reachable through any share.
	ok, err = shares.AuthorizeFile(ctx, atRoot, a.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListSubfolder(t *testing.T) {
	st, blobs, tree, shares := newShareEnv()
	ctx := context.Background()
	files := NewFileService(st, blobs, tree)

	a := mustFolder(t, tree, "alice", "a", nil)
	b := mustFolder(t, tree, "alice", "b", &a.ID)
	outside := mustFolder(t, tree, "alice", "outside", nil)
	mustUpload(t, files, "alice", &b.ID, "nested.txt")

	var sharedRoot *models.Folder = a

	folders, fileList, err := shares.ListSubfolder(ctx, sharedRoot, a.ID)
	require.NoError(t, err)
	require.Len(t, folders, 1)
	assert.Equal(t, b.ID, folders[0].ID)
	assert.Empty(t, fileList)

	_, fileList, err = shares.ListSubfolder(ctx, sharedRoot, b.ID)
	require.NoError(t, err)
	assert.Len(t, fileList, 1)

	_, _, err = shares.ListSubfolder(ctx, sharedRoot, outside.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestSharedFile(t *testing.T) {
	st, blobs, tree, shares := newShareEnv()
	ctx := context.Background()
	files := NewFileService(st, blobs, tree)

	a := mustFolder(t, tree, "alice", "a", nil)
	b := mustFolder(t, tree, "alice", "b", &a.ID)
	outside := mustFolder(t, tree, "alice", "outside", nil)

	inside := mustUpload(t, files, "alice", &b.ID, "ok.txt")
	unreachable := mustUpload(t, files, "alice", &outside.ID, "secret.txt")

	got, err := shares.SharedFile(ctx, a, inside.ID)
	require.NoError(t, err)
	assert.Equal(t, inside.ID, got.ID)

	_, err = shares.SharedFile(ctx, a, unreachable.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = shares.SharedFile(ctx, a, primitive.NewObjectID())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSharedBreadcrumbsStopAtSharedRoot(t *testing.T) {
	_, _, tree, shares := newShareEnv()
	ctx := context.Background()

	a := mustFolder(t, tree, "alice", "a", nil)
	b := mustFolder(t, tree, "alice", "b", &a.ID)
	c := mustFolder(t, tree, "alice", "c", &b.ID)

	crumbs, err := shares.SharedBreadcrumbs(ctx, b, c.ID)
	require.NoError(t, err)
	require.Len(t, crumbs, 2)
	assert.Equal(t, b.ID, *crumbs[0].ID)
	assert.Equal(t, c.ID, *crumbs[1].ID)
}

func TestRevokeShare(t *testing.T) {
	_, _, tree, shares := newShareEnv()
	ctx := context.Background()

	folder := mustFolder(t, tree, "alice", "shared", nil)
	share, err := shares.Create(ctx, "alice", folder.ID, 0)
	require.NoError(t, err)

	err = shares.Revoke(ctx, share.Token, "bob")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, shares.Revoke(ctx, share.Token, "alice"))

	_, err = shares.Resolve(ctx, share.Token)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
