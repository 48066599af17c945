package lmtp

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/oakmail/mailcore/api/models"
	"github.com/oakmail/mailcore/mailparser"
	"github.com/oakmail/mailcore/message"
	"github.com/oakmail/mailcore/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Config holds LMTP server configuration
type Config struct {
	Host         string
	Port         int
	Banner       string
	SpamHeader   string
	MaxSize      int64
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Enabled      bool
}

// Server represents the LMTP server
type Server struct {
	config *Config
	store  *store.Store
	smtp   *smtp.Server
}

// Session represents an LMTP session
type Session struct {
	server *Server
	users  []UserRecipient
}

// UserRecipient holds recipient and user information
type UserRecipient struct {
	Recipient string
	User      *models.User
}

// Filter represents message filtering rules
type Filter struct {
	ID     string                 `bson:"id" json:"id"`
	Query  FilterQuery            `bson:"query" json:"query"`
	Action map[string]interface{} `bson:"action" json:"action"`
}

// FilterQuery defines filter matching criteria
type FilterQuery struct {
	Headers        map[string]string `bson:"headers,omitempty" json:"headers,omitempty"`
	HasAttachments *int              `bson:"ha,omitempty" json:"ha,omitempty"`
	Size           *int64            `bson:"size,omitempty" json:"size,omitempty"`
	Text           string            `bson:"text,omitempty" json:"text,omitempty"`
}

// NewServer creates a new LMTP server backed by st for recipient lookup
// and message storage.
func NewServer(config *Config, st *store.Store) (*Server, error) {
	if config == nil {
		config = &Config{
			Host:         "localhost",
			Port:         2003,
			Banner:       "mailcore LMTP",
			MaxSize:      35 * 1024 * 1024, // 35MB
			ReadTimeout:  10 * time.Minute,
			WriteTimeout: 10 * time.Minute,
			Enabled:      true,
		}
	}

	server := &Server{
		config: config,
		store:  st,
	}

	be := &Backend{server: server}
	s := smtp.NewServer(be)

	s.Addr = fmt.Sprintf("%s:%d", config.Host, config.Port)
	s.Domain = config.Banner
	s.MaxMessageBytes = config.MaxSize
	s.MaxRecipients = 100
	s.AllowInsecureAuth = true
	s.ReadTimeout = config.ReadTimeout
	s.WriteTimeout = config.WriteTimeout
	s.LMTP = true

	server.smtp = s

	return server, nil
}

// Start starts the LMTP server
func (s *Server) Start() error {
	if !s.config.Enabled {
		log.Println("LMTP server is disabled")
		return nil
	}

	log.Printf("Starting LMTP server on %s:%d", s.config.Host, s.config.Port)
	return s.smtp.ListenAndServe()
}

// Stop stops the LMTP server
func (s *Server) Stop() error {
	log.Println("Stopping LMTP server")
	return s.smtp.Close()
}

// Backend implements smtp.Backend
type Backend struct {
	server *Server
}

// NewSession creates a new SMTP session
func (be *Backend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &Session{
		server: be.server,
		users:  make([]UserRecipient, 0),
	}, nil
}

// AuthPlain is not implemented for LMTP
func (s *Session) AuthPlain(username, password string) error {
	return smtp.ErrAuthUnsupported
}

// Mail handles the MAIL FROM command
func (s *Session) Mail(from string, opts *smtp.MailOptions) error {
	log.Printf("LMTP: MAIL FROM: %s", from)
	s.users = make([]UserRecipient, 0)
	return nil
}

// Rcpt handles the RCPT TO command
func (s *Session) Rcpt(to string) error {
	log.Printf("LMTP: RCPT TO: %s", to)

	originalRecipient := normalizeAddress(to)
	recipient := removeAddressTag(originalRecipient)

	user, err := s.server.store.UserByAddress(context.Background(), recipient)
	if err != nil {
		if err == store.ErrNotFound {
			return &smtp.SMTPError{Code: 550, Message: "Unknown recipient"}
		}
		log.Printf("LMTP: error finding recipient: %v", err)
		return &smtp.SMTPError{Code: 450, Message: "Database error"}
	}

	s.users = append(s.users, UserRecipient{Recipient: originalRecipient, User: user})
	return nil
}

// Data handles message data
func (s *Session) Data(r io.Reader) error {
	log.Printf("LMTP: Processing message data for %d recipients", len(s.users))

	rawMessage, err := io.ReadAll(r)
	if err != nil {
		log.Printf("LMTP: Error reading message data: %v", err)
		return &smtp.SMTPError{Code: 450, Message: "Error reading message data"}
	}

	responses := make([]error, len(s.users))
	for i, userRecipient := range s.users {
		if err := s.processMessage(rawMessage, userRecipient); err != nil {
			log.Printf("LMTP: Error processing message for %s: %v", userRecipient.Recipient, err)
			responses[i] = &smtp.SMTPError{Code: 450, Message: fmt.Sprintf("Error processing message: %v", err)}
		} else {
			log.Printf("LMTP: Message processed successfully for %s", userRecipient.Recipient)
			responses[i] = nil
		}
	}

	for _, err := range responses {
		if err == nil {
			return nil
		}
	}
	return &smtp.SMTPError{Code: 450, Message: "Failed to deliver to all recipients"}
}

// processMessage parses rawMessage, applies the recipient's filters, and
// stores it in the resolved target mailbox.
func (s *Session) processMessage(rawMessage []byte, userRecipient UserRecipient) error {
	ctx := context.Background()

	deliveredToHeader := fmt.Sprintf("Delivered-To: %s\r\n", userRecipient.Recipient)
	messageWithHeaders := append([]byte(deliveredToHeader), rawMessage...)

	parsed := mailparser.Parse(messageWithHeaders, mailparser.DefaultConfig())

	filters, err := s.getUserFilters(userRecipient.User.ID)
	if err != nil {
		log.Printf("LMTP: Error getting filters for user %s: %v", userRecipient.User.ID.Hex(), err)
		filters = nil
	}

	if s.server.config.SpamHeader != "" {
		filters = append(filters, Filter{
			ID: "SPAM",
			Query: FilterQuery{
				Headers: map[string]string{strings.ToLower(s.server.config.SpamHeader): "yes"},
			},
			Action: map[string]interface{}{"spam": true},
		})
	}

	mailboxPath := "INBOX"
	var flags []string
	deleteMessage := false

	for _, filter := range filters {
		if !s.matchesFilter(filter, parsed, messageWithHeaders) {
			continue
		}
		log.Printf("LMTP: Filter %s matched for user %s", filter.ID, userRecipient.User.ID.Hex())

		if action, ok := filter.Action["spam"].(bool); ok && action {
			mailboxPath = "Junk"
		}
		if action, ok := filter.Action["seen"].(bool); ok && action {
			flags = append(flags, "\\Seen")
		}
		if action, ok := filter.Action["flag"].(bool); ok && action {
			flags = append(flags, "\\Flagged")
		}
		if action, ok := filter.Action["delete"].(bool); ok && action {
			deleteMessage = true
			break
		}
		if mailbox, ok := filter.Action["mailbox"].(string); ok && mailbox != "" {
			mailboxPath = mailbox
		}
	}

	if deleteMessage {
		log.Printf("LMTP: Message deleted by filter for user %s", userRecipient.User.ID.Hex())
		return nil
	}

	mailbox, err := s.server.store.FindMailboxOrInbox(ctx, userRecipient.User.ID, mailboxPath)
	if err != nil {
		return fmt.Errorf("failed to resolve mailbox: %w", err)
	}

	delivered, err := s.server.store.StoreMessage(ctx, userRecipient.User.ID, mailbox, messageWithHeaders, flags)
	if err != nil {
		return fmt.Errorf("failed to store message: %w", err)
	}

	log.Printf("LMTP: Message stored for user %s in mailbox %s as UID %d",
		userRecipient.User.ID.Hex(), mailbox.Path, delivered.UID)
	return nil
}

// getUserFilters retrieves filters for a user. Per-user filter storage is
// not yet implemented, so every message currently falls through to the
// INBOX unless the server-wide spam header filter matches.
func (s *Session) getUserFilters(userID primitive.ObjectID) ([]Filter, error) {
	return nil, nil
}

// matchesFilter checks if a parsed message matches a filter.
func (s *Session) matchesFilter(filter Filter, parsed *message.Message, rawMessage []byte) bool {
	if len(filter.Query.Headers) > 0 {
		for name, value := range filter.Query.Headers {
			h, ok := mailparser.Header(parsed, name)
			if !ok {
				return false
			}
			matched, _ := regexp.MatchString("(?i)"+regexp.QuoteMeta(value), h.Value.Text)
			if !matched {
				return false
			}
		}
	}

	if filter.Query.HasAttachments != nil {
		hasAttachments := len(parsed.Attachments) > 0
		if *filter.Query.HasAttachments > 0 && !hasAttachments {
			return false
		}
		if *filter.Query.HasAttachments < 0 && hasAttachments {
			return false
		}
	}

	if filter.Query.Size != nil {
		messageSize := int64(len(rawMessage))
		filterSize := *filter.Query.Size
		if filterSize < 0 && messageSize > -filterSize {
			return false
		}
		if filterSize > 0 && messageSize < filterSize {
			return false
		}
	}

	if filter.Query.Text != "" {
		if text, ok := mailparser.BodyText(parsed, 0); !ok || !strings.Contains(strings.ToLower(text), strings.ToLower(filter.Query.Text)) {
			return false
		}
	}

	return true
}

// Reset resets the session
func (s *Session) Reset() {
	s.users = make([]UserRecipient, 0)
}

// Logout closes the session
func (s *Session) Logout() error {
	return nil
}

// normalizeAddress normalizes an email address
func normalizeAddress(addr string) string {
	if a, err := mail.ParseAddress(addr); err == nil {
		addr = a.Address
	}
	return strings.ToLower(strings.TrimSpace(addr))
}

// removeAddressTag removes the +tag part from an email address
func removeAddressTag(addr string) string {
	re := regexp.MustCompile(`\+[^@]*@`)
	return re.ReplaceAllString(addr, "@")
}
