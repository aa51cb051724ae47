package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sensei-tutor/sensei/pkg/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	collectionConversations = "conversations"
	collectionFiles         = "files"
)

// firestoreRepo implements Repository interface using Firestore
type firestoreRepo struct {
	client *firestore.Client
}

// NewFirestore creates a new Firestore repository
func NewFirestore(ctx context.Context, projectID, databaseID string) (Repository, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project", projectID), goerr.V("database", databaseID))
	}

	return &firestoreRepo{client: client}, nil
}

func (r *firestoreRepo) PutConversation(ctx context.Context, conv *model.Conversation) error {
	doc := r.client.Collection(collectionConversations).Doc(string(conv.ID))
	if _, err := doc.Set(ctx, conv); err != nil {
		return goerr.Wrap(err, "failed to save conversation", goerr.V("id", conv.ID))
	}
	return nil
}

func (r *firestoreRepo) GetConversation(ctx context.Context, id model.ConversationID) (*model.Conversation, error) {
	snap, err := r.client.Collection(collectionConversations).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.New("conversation not found", goerr.V("id", id), goerr.T(model.ErrTagNotFound))
		}
		return nil, goerr.Wrap(err, "failed to get conversation", goerr.V("id", id))
	}

	var conv model.Conversation
	if err := snap.DataTo(&conv); err != nil {
		return nil, goerr.Wrap(err, "failed to decode conversation", goerr.V("id", id))
	}
	return &conv, nil
}

func (r *firestoreRepo) ListConversations(ctx context.Context, filters ...ConversationFilter) ([]*model.Conversation, error) {
	iter := r.client.Collection(collectionConversations).Documents(ctx)
	defer iter.Stop()

	var convs []*model.Conversation
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate conversations")
		}

		var conv model.Conversation
		if err := snap.DataTo(&conv); err != nil {
			return nil, goerr.Wrap(err, "failed to decode conversation", goerr.V("doc", snap.Ref.ID))
		}
		if matchConversation(&conv, filters) {
			convs = append(convs, &conv)
		}
	}

	return convs, nil
}

func (r *firestoreRepo) DeleteConversation(ctx context.Context, id model.ConversationID) error {
	if _, err := r.client.Collection(collectionConversations).Doc(string(id)).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete conversation", goerr.V("id", id))
	}
	return nil
}

func (r *firestoreRepo) PutFile(ctx context.Context, file *model.UploadedFile) error {
	doc := r.client.Collection(collectionFiles).Doc(string(file.ID))
	if _, err := doc.Set(ctx, file); err != nil {
		return goerr.Wrap(err, "failed to save file metadata", goerr.V("id", file.ID))
	}
	return nil
}

func (r *firestoreRepo) GetFile(ctx context.Context, id model.FileID) (*model.UploadedFile, error) {
	snap, err := r.client.Collection(collectionFiles).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.New("file not found", goerr.V("id", id), goerr.T(model.ErrTagNotFound))
		}
		return nil, goerr.Wrap(err, "failed to get file metadata", goerr.V("id", id))
	}

	var file model.UploadedFile
	if err := snap.DataTo(&file); err != nil {
		return nil, goerr.Wrap(err, "failed to decode file metadata", goerr.V("id", id))
	}
	return &file, nil
}

func (r *firestoreRepo) ListFiles(ctx context.Context, filters ...FileFilter) ([]*model.UploadedFile, error) {
	iter := r.client.Collection(collectionFiles).Documents(ctx)
	defer iter.Stop()

	var files []*model.UploadedFile
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate files")
		}

		var file model.UploadedFile
		if err := snap.DataTo(&file); err != nil {
			return nil, goerr.Wrap(err, "failed to decode file metadata", goerr.V("doc", snap.Ref.ID))
		}
		if matchFile(&file, filters) {
			files = append(files, &file)
		}
	}

	return files, nil
}

func (r *firestoreRepo) DeleteFile(ctx context.Context, id model.FileID) error {
	if _, err := r.client.Collection(collectionFiles).Doc(string(id)).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete file metadata", goerr.V("id", id))
	}
	return nil
}

func matchConversation(conv *model.Conversation, filters []ConversationFilter) bool {
	for _, f := range filters {
		if !f(conv) {
			return false
		}
	}
	return true
}

func matchFile(file *model.UploadedFile, filters []FileFilter) bool {
	for _, f := range filters {
		if !f(file) {
			return false
		}
	}
	return true
}
