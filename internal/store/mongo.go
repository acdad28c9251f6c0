package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/devansh03/FileHaven/internal/apperr"
	"github.com/devansh03/FileHaven/internal/models"
)

// Mongo implements FolderStore, FileStore, ShareStore, and UserStore on one
// MongoDB database.
type Mongo struct {
	client  *mongo.Client
	folders *mongo.Collection
	files   *mongo.Collection
	shares  *mongo.Collection
	users   *mongo.Collection
}

// NewMongo builds the store and creates the indexes the uniqueness
// invariants rely on.
func NewMongo(ctx context.Context, database *mongo.Database) (*Mongo, error) {
	m := &Mongo{
		client:  database.Client(),
		folders: database.Collection("folders"),
		files:   database.Collection("files"),
		shares:  database.Collection("shares"),
		users:   database.Collection("users"),
	}
	if err := m.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}
	return m, nil
}

func (m *Mongo) ensureIndexes(ctx context.Context) error {
	// Sibling folders under the same parent cannot share a name. parent_id
	// is stored as an explicit null for roots so the constraint covers them
	// too.
	_, err := m.folders.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "owner_id", Value: 1},
			{Key: "parent_id", Value: 1},
			{Key: "name", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = m.files.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "owner_id", Value: 1},
			{Key: "folder_id", Value: 1},
			{Key: "created_at", Value: -1},
		},
	})
	if err != nil {
		return err
	}

	_, err = m.shares.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "token", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = m.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (m *Mongo) CreateFolder(ctx context.Context, folder *models.Folder) error {
	_, err := m.folders.InsertOne(ctx, folder)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: folder %q", apperr.ErrConflict, folder.Name)
	}
	return err
}

func (m *Mongo) FolderByID(ctx context.Context, id primitive.ObjectID) (*models.Folder, error) {
	var folder models.Folder
	err := m.folders.FindOne(ctx, bson.M{"_id": id}).Decode(&folder)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: folder %s", apperr.ErrNotFound, id.Hex())
	}
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

func (m *Mongo) ChildFolders(ctx context.Context, ownerID string, parentID *primitive.ObjectID) ([]models.Folder, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := m.folders.Find(ctx, bson.M{"owner_id": ownerID, "parent_id": parentID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var folders []models.Folder
	if err := cursor.All(ctx, &folders); err != nil {
		return nil, err
	}
	return folders, nil
}

func (m *Mongo) DeleteSubtree(ctx context.Context, folderIDs []primitive.ObjectID) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := m.files.DeleteMany(sc, bson.M{"folder_id": bson.M{"$in": folderIDs}}); err != nil {
			return nil, err
		}
		if _, err := m.folders.DeleteMany(sc, bson.M{"_id": bson.M{"$in": folderIDs}}); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return err
}

func (m *Mongo) CreateFile(ctx context.Context, file *models.File) error {
	_, err := m.files.InsertOne(ctx, file)
	return err
}

func (m *Mongo) FileByID(ctx context.Context, id primitive.ObjectID) (*models.File, error) {
	var file models.File
	err := m.files.FindOne(ctx, bson.M{"_id": id}).Decode(&file)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: file %s", apperr.ErrNotFound, id.Hex())
	}
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (m *Mongo) FileByName(ctx context.Context, ownerID string, folderID *primitive.ObjectID, name string) (*models.File, error) {
	var file models.File
	err := m.files.FindOne(ctx, bson.M{"owner_id": ownerID, "folder_id": folderID, "name": name}).Decode(&file)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: file %q", apperr.ErrNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (m *Mongo) FilesInFolder(ctx context.Context, ownerID string, folderID *primitive.ObjectID) ([]models.File, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := m.files.Find(ctx, bson.M{"owner_id": ownerID, "folder_id": folderID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var files []models.File
	if err := cursor.All(ctx, &files); err != nil {
		return nil, err
	}
	return files, nil
}

func (m *Mongo) FilesInFolders(ctx context.Context, folderIDs []primitive.ObjectID) ([]models.File, error) {
	cursor, err := m.files.Find(ctx, bson.M{"folder_id": bson.M{"$in": folderIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var files []models.File
	if err := cursor.All(ctx, &files); err != nil {
		return nil, err
	}
	return files, nil
}

func (m *Mongo) DeleteFile(ctx context.Context, id primitive.ObjectID) error {
	res, err := m.files.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: file %s", apperr.ErrNotFound, id.Hex())
	}
	return nil
}

func (m *Mongo) CreateShare(ctx context.Context, share *models.ShareLink) error {
	_, err := m.shares.InsertOne(ctx, share)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: share token", apperr.ErrConflict)
	}
	return err
}

func (m *Mongo) ShareByToken(ctx context.Context, token string) (*models.ShareLink, error) {
	var share models.ShareLink
	err := m.shares.FindOne(ctx, bson.M{"token": token}).Decode(&share)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: share link", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &share, nil
}

func (m *Mongo) DeleteShare(ctx context.Context, token, ownerID string) error {
	res, err := m.shares.DeleteOne(ctx, bson.M{"token": token, "owner_id": ownerID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: share link", apperr.ErrNotFound)
	}
	return nil
}

func (m *Mongo) CreateUser(ctx context.Context, user *models.User) error {
	_, err := m.users.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: email already in use", apperr.ErrConflict)
	}
	return err
}

func (m *Mongo) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := m.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: user %s", apperr.ErrNotFound, email)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
