package store

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oakmail/mailcore/api/models"
	"github.com/oakmail/mailcore/mailparser"
	"github.com/oakmail/mailcore/message"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

// DeliveredMessage is the outcome of StoreMessage: the assigned message and
// mailbox IDs, UID, and size, useful for logging and IMAP APPEND-style
// responses.
type DeliveredMessage struct {
	MessageID primitive.ObjectID
	MailboxID primitive.ObjectID
	UID       int64
	Size      int64
}

// FindMailboxOrInbox resolves mailboxPath for user, falling back to INBOX
// when it doesn't exist (the same fallback LMTP delivery and filter
// "move to mailbox" actions rely on).
func (s *Store) FindMailboxOrInbox(ctx context.Context, user primitive.ObjectID, mailboxPath string) (*models.Mailbox, error) {
	var mailbox models.Mailbox
	filter := bson.M{"user": user}
	if mailboxPath == "Junk" {
		filter["specialUse"] = "\\Junk"
	} else {
		filter["path"] = mailboxPath
	}

	err := s.mailboxes.FindOne(ctx, filter).Decode(&mailbox)
	if err == mongo.ErrNoDocuments {
		err = s.mailboxes.FindOne(ctx, bson.M{"user": user, "path": "INBOX"}).Decode(&mailbox)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find mailbox: %v", err)
	}
	return &mailbox, nil
}

// StoreMessage parses raw with mailparser, stores its raw bytes and
// attachments in GridFS, and inserts the resulting message document into
// mailbox, assigning it the next UID. flags is the set of IMAP system
// flags ("\\Seen", "\\Flagged", ...) the caller (filters, COPY, etc.) has
// already decided the message should carry.
func (s *Store) StoreMessage(ctx context.Context, user primitive.ObjectID, mailbox *models.Mailbox, raw []byte, flags []string) (*DeliveredMessage, error) {
	m := mailparser.Parse(raw, mailparser.DefaultConfig())

	result, err := s.mailboxes.UpdateOne(ctx,
		bson.M{"_id": mailbox.ID},
		bson.M{"$inc": bson.M{"uidNext": 1, "modifyIndex": 1}},
	)
	if err != nil || result.ModifiedCount == 0 {
		return nil, fmt.Errorf("failed to advance mailbox uid: %v", err)
	}

	doc := models.Message{
		ID:        newID(),
		User:      user,
		Mailbox:   mailbox.ID,
		UID:       mailbox.UIDNext,
		ModSeq:    mailbox.ModifyIndex + 1,
		Size:      int64(len(raw)),
		Flags:     flags,
		Subject:   mailparser.Subject(m),
		MessageID: firstOrEmpty(mailparser.MessageID(m)),
		Unseen:    !containsFlag(flags, "\\Seen"),
		Undeleted: true,
		Flagged:   containsFlag(flags, "\\Flagged"),
		Draft:     containsFlag(flags, "\\Draft"),
		Created:   time.Now().UTC(),
	}
	if dt := mailparser.Date(m); dt != nil && dt.Valid {
		doc.Date = dateTimeToTime(dt)
	} else {
		doc.Date = doc.Created
	}
	doc.Received = doc.Created

	doc.MimeTree.ParsedHeader = parsedHeaderOf(m)
	if len(doc.MimeTree.ParsedHeader.From) > 0 {
		doc.Meta.From = doc.MimeTree.ParsedHeader.From[0].Address
	}
	if len(doc.MimeTree.ParsedHeader.To) > 0 {
		doc.Meta.To = doc.MimeTree.ParsedHeader.To[0].Address
	}
	doc.MimeTree.ParsedHeader.Subject = doc.Subject
	doc.MimeTree.ParsedHeader.Date = doc.Date

	if text, ok := mailparser.BodyText(m, 0); ok {
		doc.Text = text
	}
	for i := 0; ; i++ {
		html, ok := mailparser.BodyHTML(m, i)
		if !ok {
			break
		}
		doc.HTML = append(doc.HTML, html)
	}

	attachments, attachMap, err := s.storeAttachments(ctx, doc.ID, m)
	if err != nil {
		return nil, err
	}
	doc.Attachments = attachments
	doc.AttachMap = attachMap
	doc.HasAttach = len(attachments) > 0

	if _, err := s.rawMessages.UploadFromStream(doc.ID.Hex(), bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("failed to store raw message: %v", err)
	}

	if _, err := s.messages.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to insert message: %v", err)
	}
	if err := s.IncrementStorageUsed(ctx, user, doc.Size); err != nil {
		return nil, err
	}

	return &DeliveredMessage{MessageID: doc.ID, MailboxID: mailbox.ID, UID: doc.UID, Size: doc.Size}, nil
}

// storeAttachments uploads every attachment part of m into GridFS
// concurrently, returning the metadata rows and a contentID->attachmentID
// map for inline (cid:) link rewriting.
func (s *Store) storeAttachments(ctx context.Context, messageID primitive.ObjectID, m *message.Message) ([]models.Attachment, map[string]string, error) {
	if len(m.Attachments) == 0 {
		return nil, nil, nil
	}

	attachments := make([]models.Attachment, len(m.Attachments))
	attachMap := make(map[string]string)
	var mu errgroup.Group

	for i := range m.Attachments {
		i := i
		mu.Go(func() error {
			part, ok := mailparser.Attachment(m, i)
			if !ok {
				return nil
			}
			ct := part.ContentType()
			filename, _ := ct.Attribute("name")
			cd, _ := part.Header("Content-Disposition")
			disposition := "attachment"
			if cd != nil && cd.Value.ContentType != nil {
				disposition = cd.Value.ContentType.Type
				if v, _ := cd.Value.ContentType.Attribute("filename"); v != "" {
					filename = v
				}
			}
			contentID := ""
			if idh, ok := part.Header("Content-ID"); ok && len(idh.Value.TextList) > 0 {
				contentID = strings.Trim(idh.Value.TextList[0], "<>")
			}

			attachID := fmt.Sprintf("%s-%d", messageID.Hex(), i)
			if part.Body.Bytes != nil {
				uploadOpts := gridfsUploadOptions(ct.Full(), disposition, contentID)
				if err := s.attachments.UploadFromStreamWithID(attachID, filename, bytes.NewReader(part.Body.Bytes), uploadOpts); err != nil {
					return fmt.Errorf("failed to store attachment %s: %v", attachID, err)
				}
			}

			attachments[i] = models.Attachment{
				ID:          attachID,
				Filename:    filename,
				ContentType: ct.Full(),
				Disposition: disposition,
				Size:        int64(len(part.Body.Bytes)),
				Related:     disposition == "inline" && contentID != "",
				ContentId:   contentID,
				Encoding:    part.TransferEncoding.String(),
			}
			if contentID != "" {
				attachMap[contentID] = attachID
			}
			return nil
		})
	}

	if err := mu.Wait(); err != nil {
		return nil, nil, err
	}
	return attachments, attachMap, nil
}

func gridfsUploadOptions(contentType, disposition, contentID string) *options.UploadOptions {
	meta := bson.M{"contentType": contentType, "disposition": disposition}
	if contentID != "" {
		meta["contentId"] = contentID
	}
	return options.GridFSUpload().SetMetadata(meta)
}

func firstOrEmpty(ss []string) string {
	if len(ss) == 0 {
		return ""
	}
	return ss[0]
}

func containsFlag(flags []string, want string) bool {
	for _, f := range flags {
		if f == want {
			return true
		}
	}
	return false
}

func dateTimeToTime(dt *message.DateTime) time.Time {
	loc := time.UTC
	offset := int(dt.TZHour)*3600 + int(dt.TZMinute)*60
	if dt.TZBeforeGMT {
		offset = -offset
	}
	if offset != 0 {
		loc = time.FixedZone("", offset)
	}
	return time.Date(int(dt.Year), time.Month(dt.Month), int(dt.Day), int(dt.Hour), int(dt.Minute), int(dt.Second), 0, loc)
}

func parsedHeaderOf(m *message.Message) models.ParsedHeader {
	return models.ParsedHeader{
		From:    flattenAddresses(mailparser.From(m)),
		Sender:  flattenAddresses(mailparser.Sender(m)),
		ReplyTo: flattenAddresses(mailparser.ReplyTo(m)),
		To:      flattenAddresses(mailparser.To(m)),
		CC:      flattenAddresses(mailparser.Cc(m)),
		BCC:     flattenAddresses(mailparser.Bcc(m)),
	}
}

func flattenAddresses(av *message.AddressValue) []models.EmailAddress {
	if av == nil {
		return nil
	}
	var out []models.EmailAddress
	for _, a := range av.List {
		if !a.HasAddr {
			continue
		}
		out = append(out, models.EmailAddress{Name: a.Name, Address: a.Address})
	}
	for _, g := range av.Groups {
		for _, a := range g.Addrs {
			if !a.HasAddr {
				continue
			}
			out = append(out, models.EmailAddress{Name: a.Name, Address: a.Address})
		}
	}
	return out
}
