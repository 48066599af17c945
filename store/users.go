package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oakmail/mailcore/api/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// ErrNotFound is returned by lookups that find no matching document.
var ErrNotFound = errors.New("store: not found")

// CreateUser hashes password and inserts a new user with its primary
// address, returning the assigned user ID.
func (s *Store) CreateUser(ctx context.Context, username, password, address string, quota int64) (primitive.ObjectID, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to hash password: %v", err)
	}

	user := models.User{
		ID:        newID(),
		Username:  username,
		Password:  string(hashed),
		Address:   address,
		Quota:     quota,
		Activated: true,
		Created:   time.Now(),
		Updated:   time.Now(),
	}
	if _, err := s.users.InsertOne(ctx, user); err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to insert user: %v", err)
	}

	addr := models.Address{
		ID:      newID(),
		User:    user.ID,
		Address: address,
		Main:    true,
		Created: time.Now(),
	}
	if _, err := s.addresses.InsertOne(ctx, addr); err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to insert address: %v", err)
	}

	inbox := models.Mailbox{
		ID:          newID(),
		User:        user.ID,
		Path:        "INBOX",
		Name:        "INBOX",
		Subscribed:  true,
		UIDNext:     1,
		UIDValidity: uint32Now(),
		Created:     time.Now(),
		Updated:     time.Now(),
	}
	if _, err := s.mailboxes.InsertOne(ctx, inbox); err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to insert inbox mailbox: %v", err)
	}

	return user.ID, nil
}

func uint32Now() int64 {
	return time.Now().Unix()
}

// Authenticate looks a user up by username and checks password against its
// stored bcrypt hash, returning the user on success.
func (s *Store) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %v", err)
	}
	if user.Disabled {
		return nil, fmt.Errorf("user %s is disabled", username)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrNotFound
	}
	return &user, nil
}

// UserByAddress resolves a recipient address (tag already stripped) to its
// owning user, used by LMTP delivery to find where a message should land.
func (s *Store) UserByAddress(ctx context.Context, address string) (*models.User, error) {
	var addr models.Address
	if err := s.addresses.FindOne(ctx, bson.M{"address": address}).Decode(&addr); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up address: %v", err)
	}

	var user models.User
	if err := s.users.FindOne(ctx, bson.M{"_id": addr.User}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %v", err)
	}
	if user.Disabled {
		return nil, fmt.Errorf("user %s is disabled", user.Username)
	}
	return &user, nil
}

// UserByID looks a user up by its object ID.
func (s *Store) UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %v", err)
	}
	return &user, nil
}

// IncrementStorageUsed adjusts a user's storageUsed counter by delta bytes,
// used after a message is stored or expunged.
func (s *Store) IncrementStorageUsed(ctx context.Context, userID primitive.ObjectID, delta int64) error {
	_, err := s.users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$inc": bson.M{"storageUsed": delta}, "$set": bson.M{"updated": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update storage used: %v", err)
	}
	return nil
}
