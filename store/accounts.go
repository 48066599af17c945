package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oakmail/mailcore/api/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %v", err)
	}
	return string(hashed), nil
}

// ErrConflict is returned when a create would violate a uniqueness
// constraint (duplicate username, address, or mailbox path).
var ErrConflict = errors.New("store: already exists")

var defaultMailboxSet = []struct {
	Path       string
	SpecialUse string
}{
	{"INBOX", "\\Inbox"},
	{"Sent", "\\Sent"},
	{"Drafts", "\\Drafts"},
	{"Trash", "\\Trash"},
	{"Junk", "\\Junk"},
}

// NewAccount is the full set of fields admin account provisioning accepts,
// beyond the minimal username/password/address/quota CreateUser takes.
type NewAccount struct {
	Username   string
	Password   string
	Address    string
	Language   string
	Retention  int64
	Quota      int64
	Recipients int64
	Forwards   int64
}

// CreateAccount provisions a full user record: a bcrypt-hashed password, a
// primary address, and the standard mailbox set (INBOX, Sent, Drafts,
// Trash, Junk), rejecting duplicate usernames or addresses up front. This
// is the admin API's account-creation path; CreateUser remains the
// narrower helper used by tests and programmatic provisioning.
func (s *Store) CreateAccount(ctx context.Context, acc NewAccount) (primitive.ObjectID, error) {
	count, err := s.users.CountDocuments(ctx, bson.M{"username": acc.Username})
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to check username: %v", err)
	}
	if count > 0 {
		return primitive.NilObjectID, ErrConflict
	}

	address := acc.Address
	if address == "" {
		address = acc.Username + "@localhost"
	} else {
		count, err := s.addresses.CountDocuments(ctx, bson.M{"address": address})
		if err != nil {
			return primitive.NilObjectID, fmt.Errorf("failed to check address: %v", err)
		}
		if count > 0 {
			return primitive.NilObjectID, ErrConflict
		}
	}

	hashed, err := hashPassword(acc.Password)
	if err != nil {
		return primitive.NilObjectID, err
	}

	now := time.Now()
	user := models.User{
		ID:          newID(),
		Username:    acc.Username,
		Password:    hashed,
		Address:     address,
		Language:    acc.Language,
		Retention:   acc.Retention,
		Quota:       acc.Quota,
		Recipients:  acc.Recipients,
		Forwards:    acc.Forwards,
		Activated:   true,
		StorageUsed: 0,
		Created:     now,
		Updated:     now,
	}
	if _, err := s.users.InsertOne(ctx, user); err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to insert user: %v", err)
	}

	addr := models.Address{ID: newID(), User: user.ID, Address: address, Main: true, Created: now}
	if _, err := s.addresses.InsertOne(ctx, addr); err != nil {
		s.users.DeleteOne(ctx, bson.M{"_id": user.ID})
		return primitive.NilObjectID, fmt.Errorf("failed to insert address: %v", err)
	}

	for _, mb := range defaultMailboxSet {
		mailbox := models.Mailbox{
			ID:          newID(),
			User:        user.ID,
			Path:        mb.Path,
			Name:        mb.Path,
			SpecialUse:  mb.SpecialUse,
			Subscribed:  true,
			ModifyIndex: 1,
			UIDNext:     1,
			UIDValidity: time.Now().Unix(),
			Created:     now,
			Updated:     now,
		}
		if _, err := s.mailboxes.InsertOne(ctx, mailbox); err != nil {
			return user.ID, fmt.Errorf("failed to insert mailbox %s: %v", mb.Path, err)
		}
	}

	return user.ID, nil
}

// ListUsers returns a page of users matching an optional case-insensitive
// username substring query, along with the total matching count.
func (s *Store) ListUsers(ctx context.Context, query string, limit, skip int) ([]models.User, int64, error) {
	filter := bson.M{}
	if query != "" {
		filter["username"] = bson.M{"$regex": query, "$options": "i"}
	}

	total, err := s.users.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %v", err)
	}

	opts := options.Find().SetLimit(int64(limit)).SetSkip(int64(skip)).SetSort(bson.D{{Key: "username", Value: 1}})
	cursor, err := s.users.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %v", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, fmt.Errorf("failed to decode users: %v", err)
	}
	return users, total, nil
}

// UserUpdate carries the optional fields an admin PUT to a user may change;
// nil fields are left untouched.
type UserUpdate struct {
	Password   *string
	Language   *string
	Retention  *int64
	Quota      *int64
	Recipients *int64
	Forwards   *int64
	Disabled   *bool
}

// UpdateUser applies a partial update to a user record, returning false if
// no user matched id.
func (s *Store) UpdateUser(ctx context.Context, id primitive.ObjectID, upd UserUpdate) (bool, error) {
	set := bson.M{"updated": time.Now()}
	if upd.Password != nil {
		hashed, err := hashPassword(*upd.Password)
		if err != nil {
			return false, err
		}
		set["password"] = hashed
	}
	if upd.Language != nil {
		set["language"] = *upd.Language
	}
	if upd.Retention != nil {
		set["retention"] = *upd.Retention
	}
	if upd.Quota != nil {
		set["quota"] = *upd.Quota
	}
	if upd.Recipients != nil {
		set["recipients"] = *upd.Recipients
	}
	if upd.Forwards != nil {
		set["forwards"] = *upd.Forwards
	}
	if upd.Disabled != nil {
		set["disabled"] = *upd.Disabled
	}

	result, err := s.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("failed to update user: %v", err)
	}
	return result.MatchedCount > 0, nil
}

// DeleteUser removes a user record. It does not cascade to addresses,
// mailboxes, or messages.
func (s *Store) DeleteUser(ctx context.Context, id primitive.ObjectID) (bool, error) {
	result, err := s.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("failed to delete user: %v", err)
	}
	return result.DeletedCount > 0, nil
}

// RecalculateStorageUsed sums the size of every stored message for a user
// and writes the total back as storageUsed, correcting for any drift from
// IncrementStorageUsed's best-effort bookkeeping.
func (s *Store) RecalculateStorageUsed(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"user": userID}},
		{"$group": bson.M{"_id": "$user", "storageUsed": bson.M{"$sum": "$size"}}},
	}
	cursor, err := s.messages.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate storage used: %v", err)
	}
	defer cursor.Close(ctx)

	var total int64
	if cursor.Next(ctx) {
		var row struct {
			StorageUsed int64 `bson:"storageUsed"`
		}
		if err := cursor.Decode(&row); err == nil {
			total = row.StorageUsed
		}
	}

	if _, err := s.users.UpdateOne(ctx, bson.M{"_id": userID},
		bson.M{"$set": bson.M{"storageUsed": total, "updated": time.Now()}}); err != nil {
		return 0, fmt.Errorf("failed to write storage used: %v", err)
	}
	return total, nil
}

// ListAddresses returns a page of addresses matching an optional
// case-insensitive substring query, along with the total matching count.
func (s *Store) ListAddresses(ctx context.Context, query string, limit, skip int) ([]models.Address, int64, error) {
	filter := bson.M{}
	if query != "" {
		filter["address"] = bson.M{"$regex": query, "$options": "i"}
	}

	total, err := s.addresses.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count addresses: %v", err)
	}

	opts := options.Find().SetLimit(int64(limit)).SetSkip(int64(skip)).SetSort(bson.D{{Key: "address", Value: 1}})
	cursor, err := s.addresses.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list addresses: %v", err)
	}
	defer cursor.Close(ctx)

	var addresses []models.Address
	if err := cursor.All(ctx, &addresses); err != nil {
		return nil, 0, fmt.Errorf("failed to decode addresses: %v", err)
	}
	return addresses, total, nil
}

// ListUserAddresses returns every address belonging to user, sorted
// alphabetically.
func (s *Store) ListUserAddresses(ctx context.Context, user primitive.ObjectID) ([]models.Address, error) {
	cursor, err := s.addresses.Find(ctx, bson.M{"user": user}, options.Find().SetSort(bson.D{{Key: "address", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %v", err)
	}
	defer cursor.Close(ctx)

	var addresses []models.Address
	if err := cursor.All(ctx, &addresses); err != nil {
		return nil, fmt.Errorf("failed to decode addresses: %v", err)
	}
	return addresses, nil
}

// CreateUserAddress adds address as a new address for user, promoting it to
// the user's main address when asMain is set or the user has none yet.
func (s *Store) CreateUserAddress(ctx context.Context, user primitive.ObjectID, address string, asMain bool) (primitive.ObjectID, error) {
	u, err := s.UserByID(ctx, user)
	if err != nil {
		return primitive.NilObjectID, err
	}

	count, err := s.addresses.CountDocuments(ctx, bson.M{"address": address})
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to check address: %v", err)
	}
	if count > 0 {
		return primitive.NilObjectID, ErrConflict
	}

	now := time.Now()
	addr := models.Address{ID: newID(), User: user, Address: address, Created: now}
	if _, err := s.addresses.InsertOne(ctx, addr); err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to insert address: %v", err)
	}

	if asMain || u.Address == "" {
		if _, err := s.users.UpdateOne(ctx, bson.M{"_id": user},
			bson.M{"$set": bson.M{"address": address, "updated": now}}); err != nil {
			return addr.ID, fmt.Errorf("failed to set main address: %v", err)
		}
	}
	return addr.ID, nil
}

// GetUserAddress looks up one address owned by user, reporting whether it
// is currently the user's main address.
func (s *Store) GetUserAddress(ctx context.Context, user, addressID primitive.ObjectID) (addr *models.Address, isMain bool, err error) {
	u, err := s.UserByID(ctx, user)
	if err != nil {
		return nil, false, err
	}

	var a models.Address
	if err := s.addresses.FindOne(ctx, bson.M{"_id": addressID, "user": user}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, ErrNotFound
		}
		return nil, false, fmt.Errorf("failed to look up address: %v", err)
	}
	return &a, a.Address == u.Address, nil
}

// SetMainAddress promotes addressID to be user's main address, rejecting
// an attempt to promote the address that already holds that role.
func (s *Store) SetMainAddress(ctx context.Context, user, addressID primitive.ObjectID) error {
	addr, isMain, err := s.GetUserAddress(ctx, user, addressID)
	if err != nil {
		return err
	}
	if isMain {
		return ErrConflict
	}
	_, err = s.users.UpdateOne(ctx, bson.M{"_id": user},
		bson.M{"$set": bson.M{"address": addr.Address, "updated": time.Now()}})
	if err != nil {
		return fmt.Errorf("failed to set main address: %v", err)
	}
	return nil
}

// DeleteUserAddress removes an address owned by user, refusing to delete
// the user's current main address.
func (s *Store) DeleteUserAddress(ctx context.Context, user, addressID primitive.ObjectID) error {
	_, isMain, err := s.GetUserAddress(ctx, user, addressID)
	if err != nil {
		return err
	}
	if isMain {
		return ErrConflict
	}
	if _, err := s.addresses.DeleteOne(ctx, bson.M{"_id": addressID}); err != nil {
		return fmt.Errorf("failed to delete address: %v", err)
	}
	return nil
}

// ListUserMailboxes returns every mailbox belonging to user with INBOX
// first, followed by the rest in the order Mongo returns them.
func (s *Store) ListUserMailboxes(ctx context.Context, user primitive.ObjectID) ([]models.Mailbox, error) {
	cursor, err := s.mailboxes.Find(ctx, bson.M{"user": user})
	if err != nil {
		return nil, fmt.Errorf("failed to list mailboxes: %v", err)
	}
	defer cursor.Close(ctx)

	var mailboxes []models.Mailbox
	if err := cursor.All(ctx, &mailboxes); err != nil {
		return nil, fmt.Errorf("failed to decode mailboxes: %v", err)
	}

	ordered := make([]models.Mailbox, 0, len(mailboxes))
	var inbox *models.Mailbox
	for i := range mailboxes {
		if mailboxes[i].Path == "INBOX" {
			inbox = &mailboxes[i]
		} else {
			ordered = append(ordered, mailboxes[i])
		}
	}
	if inbox != nil {
		ordered = append([]models.Mailbox{*inbox}, ordered...)
	}
	return ordered, nil
}

// CreateMailboxForUser creates a new, non-default mailbox at path for user.
func (s *Store) CreateMailboxForUser(ctx context.Context, user primitive.ObjectID, path string, retention int64) (primitive.ObjectID, error) {
	if strings.Contains(path, "//") || strings.HasSuffix(path, "/") {
		return primitive.NilObjectID, fmt.Errorf("invalid mailbox path %q", path)
	}

	existing, err := s.mailboxes.CountDocuments(ctx, bson.M{"user": user, "path": path})
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to check mailbox: %v", err)
	}
	if existing > 0 {
		return primitive.NilObjectID, ErrConflict
	}

	now := time.Now()
	mailbox := models.Mailbox{
		ID:          newID(),
		User:        user,
		Path:        path,
		Name:        mailboxName(path),
		Retention:   retention,
		Subscribed:  true,
		ModifyIndex: 1,
		UIDNext:     1,
		UIDValidity: time.Now().Unix(),
		Created:     now,
		Updated:     now,
	}
	if _, err := s.mailboxes.InsertOne(ctx, mailbox); err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to insert mailbox: %v", err)
	}
	return mailbox.ID, nil
}

// MailboxCounts reports a mailbox's total and unseen message counts.
type MailboxCounts struct {
	Total  int64
	Unseen int64
}

// GetMailboxForUser looks up one mailbox owned by user along with its
// message counts.
func (s *Store) GetMailboxForUser(ctx context.Context, user, mailboxID primitive.ObjectID) (*models.Mailbox, MailboxCounts, error) {
	var mailbox models.Mailbox
	err := s.mailboxes.FindOne(ctx, bson.M{"_id": mailboxID, "user": user}).Decode(&mailbox)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, MailboxCounts{}, ErrNotFound
	}
	if err != nil {
		return nil, MailboxCounts{}, fmt.Errorf("failed to look up mailbox: %v", err)
	}

	counts, err := s.mailboxMessageCounts(ctx, mailboxID)
	if err != nil {
		return &mailbox, MailboxCounts{}, nil
	}
	return &mailbox, counts, nil
}

func (s *Store) mailboxMessageCounts(ctx context.Context, mailboxID primitive.ObjectID) (MailboxCounts, error) {
	total, err := s.messages.CountDocuments(ctx, bson.M{"mailbox": mailboxID})
	if err != nil {
		return MailboxCounts{}, fmt.Errorf("failed to count messages: %v", err)
	}
	unseen, err := s.messages.CountDocuments(ctx, bson.M{"mailbox": mailboxID, "unseen": true})
	if err != nil {
		return MailboxCounts{}, fmt.Errorf("failed to count unseen messages: %v", err)
	}
	return MailboxCounts{Total: total, Unseen: unseen}, nil
}

// MailboxUpdate carries the optional fields an admin PUT to a mailbox may
// change; nil fields are left untouched.
type MailboxUpdate struct {
	Path       *string
	Retention  *int64
	Subscribed *bool
}

// UpdateMailboxForUser applies a partial update to a mailbox owned by user,
// returning false if no mailbox matched.
func (s *Store) UpdateMailboxForUser(ctx context.Context, user, mailboxID primitive.ObjectID, upd MailboxUpdate) (bool, error) {
	set := bson.M{"updated": time.Now()}
	if upd.Path != nil {
		path := strings.TrimSpace(*upd.Path)
		if strings.Contains(path, "//") || strings.HasSuffix(path, "/") {
			return false, fmt.Errorf("invalid mailbox path %q", path)
		}
		set["path"] = path
		set["name"] = mailboxName(path)
	}
	if upd.Retention != nil {
		set["retention"] = *upd.Retention
	}
	if upd.Subscribed != nil {
		set["subscribed"] = *upd.Subscribed
	}

	result, err := s.mailboxes.UpdateOne(ctx, bson.M{"_id": mailboxID, "user": user}, bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("failed to update mailbox: %v", err)
	}
	return result.MatchedCount > 0, nil
}

// DeleteMailboxForUser removes a non-INBOX, empty mailbox owned by user.
func (s *Store) DeleteMailboxForUser(ctx context.Context, user, mailboxID primitive.ObjectID) (bool, error) {
	var mailbox models.Mailbox
	err := s.mailboxes.FindOne(ctx, bson.M{"_id": mailboxID, "user": user}).Decode(&mailbox)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up mailbox: %v", err)
	}
	if mailbox.Path == "INBOX" {
		return false, fmt.Errorf("cannot delete INBOX")
	}

	counts, err := s.mailboxMessageCounts(ctx, mailboxID)
	if err != nil {
		return false, err
	}
	if counts.Total > 0 {
		return false, fmt.Errorf("cannot delete mailbox with messages")
	}

	result, err := s.mailboxes.DeleteOne(ctx, bson.M{"_id": mailboxID, "user": user})
	if err != nil {
		return false, fmt.Errorf("failed to delete mailbox: %v", err)
	}
	return result.DeletedCount > 0, nil
}

func mailboxName(path string) string {
	parts := strings.Split(path, "/")
	return parts[len(parts)-1]
}
