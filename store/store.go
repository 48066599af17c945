// Package store is the Mongo-backed persistence layer: user/address/mailbox
// records, message metadata, and GridFS-backed storage for raw messages and
// attachments, built around the shapes the REST API and LMTP delivery path
// both need to read and write.
package store

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store bundles the Mongo database handle with the collections and GridFS
// buckets the rest of the package operates on.
type Store struct {
	DB *mongo.Database

	users       *mongo.Collection
	addresses   *mongo.Collection
	mailboxes   *mongo.Collection
	messages    *mongo.Collection
	attachments *gridfs.Bucket
	rawMessages *gridfs.Bucket
}

// Connect dials url, pings the server, and returns a Store bound to the
// named database with its indexes and GridFS buckets ready to use.
func Connect(ctx context.Context, url, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(url))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %v", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %v", err)
	}

	return New(client.Database(database))
}

// New builds a Store around an already-connected database handle,
// creating its GridFS buckets and indexes.
func New(db *mongo.Database) (*Store, error) {
	attachBucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName("attachments"))
	if err != nil {
		return nil, fmt.Errorf("failed to open attachments bucket: %v", err)
	}
	rawBucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName("rawMessages"))
	if err != nil {
		return nil, fmt.Errorf("failed to open rawMessages bucket: %v", err)
	}

	s := &Store{
		DB:          db,
		users:       db.Collection("users"),
		addresses:   db.Collection("addresses"),
		mailboxes:   db.Collection("mailboxes"),
		messages:    db.Collection("messages"),
		attachments: attachBucket,
		rawMessages: rawBucket,
	}
	if err := s.ensureIndexes(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.addresses.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    map[string]interface{}{"address": 1},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create addresses index: %v", err)
	}

	_, err = s.messages.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: map[string]interface{}{"mailbox": 1, "uid": 1}, Options: options.Index().SetUnique(true)},
		{Keys: map[string]interface{}{"msgid": 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create messages index: %v", err)
	}

	_, err = s.mailboxes.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    map[string]interface{}{"user": 1, "path": 1},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create mailboxes index: %v", err)
	}
	return nil
}

func newID() primitive.ObjectID {
	return primitive.NewObjectID()
}

// OpenAttachment opens a download stream for the attachment stored under
// fileID (as assigned by StoreMessage's storeAttachments), for the API's
// attachment-download endpoint to copy straight to an HTTP response body.
func (s *Store) OpenAttachment(ctx context.Context, fileID string) (*gridfs.DownloadStream, error) {
	stream, err := s.attachments.OpenDownloadStream(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to open attachment %s: %v", fileID, err)
	}
	return stream, nil
}

// RawMessage downloads the raw RFC 5322 bytes of a stored message by its
// object ID hex string.
func (s *Store) RawMessage(ctx context.Context, messageIDHex string) ([]byte, error) {
	stream, err := s.rawMessages.OpenDownloadStream(messageIDHex)
	if err != nil {
		return nil, fmt.Errorf("failed to open raw message %s: %v", messageIDHex, err)
	}
	defer stream.Close()

	var buf []byte
	w := &byteSink{&buf}
	if _, err := io.Copy(w, stream); err != nil {
		return nil, fmt.Errorf("failed to read raw message %s: %v", messageIDHex, err)
	}
	return buf, nil
}

type byteSink struct {
	buf *[]byte
}

func (b *byteSink) Write(p []byte) (int, error) {
	*b.buf = append(*b.buf, p...)
	return len(p), nil
}
