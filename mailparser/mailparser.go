// Package mailparser is the top-level entry point: Parse turns a raw
// message buffer into a fully walked and classified message.Message, and
// the package exposes the typed getter surface described in §6.
package mailparser

import (
	"github.com/oakmail/mailcore/body"
	"github.com/oakmail/mailcore/header"
	"github.com/oakmail/mailcore/htmltext"
	"github.com/oakmail/mailcore/message"
	"github.com/oakmail/mailcore/walker"
)

// Config controls header dispatch and which header categories are worth
// fully parsing, per §6's configuration surface.
type Config struct {
	Overrides       map[string]header.ParserKind
	DefaultForOther header.ParserKind

	WithMimeHeaders    bool
	WithDateHeaders    bool
	WithAddressHeaders bool
	WithMessageIDs     bool

	// WithMinimalHeaders restricts structural parsing to Subject, From,
	// To, Date and Message-ID; every other header is still retained as
	// raw/unstructured text rather than parsed into its typed grammar,
	// trading structure for parse speed on headers callers don't need.
	WithMinimalHeaders bool
}

// DefaultConfig parses every header category.
func DefaultConfig() *Config {
	return &Config{
		DefaultForOther:    header.ParseUnstructured,
		WithMimeHeaders:    true,
		WithDateHeaders:    true,
		WithAddressHeaders: true,
		WithMessageIDs:     true,
	}
}

// Parse walks buf into a Message and derives its JMAP body views. The
// returned Message borrows from buf; call IntoOwned if buf's lifetime is
// shorter than the Message's.
func Parse(buf []byte, cfg *Config) *message.Message {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	m := walker.Walk(buf, resolveHeaderConfig(cfg))
	m.HTMLToText = htmltext.ToText
	m.TextToHTML = htmltext.ToHTML
	body.Classify(m)
	return m
}

func resolveHeaderConfig(cfg *Config) *header.Config {
	hc := &header.Config{DefaultForOther: cfg.DefaultForOther, Overrides: map[string]header.ParserKind{}}
	for k, v := range cfg.Overrides {
		hc.Overrides[k] = v
	}

	if cfg.WithMinimalHeaders {
		keep := map[string]bool{"subject": true, "from": true, "to": true, "date": true, "message-id": true}
		for _, name := range message.WellKnownNames {
			key := normalize(name)
			if !keep[key] {
				hc.Overrides[key] = header.ParseRaw
			}
		}
		return hc
	}
	if !cfg.WithAddressHeaders {
		for _, name := range []string{"From", "To", "Cc", "Bcc", "Reply-To", "Sender", "Return-Path",
			"Resent-From", "Resent-To", "Resent-Cc", "Resent-Bcc", "Resent-Sender", "Disposition-Notification-To"} {
			hc.Overrides[normalize(name)] = header.ParseRaw
		}
	}
	if !cfg.WithDateHeaders {
		hc.Overrides[normalize("Date")] = header.ParseRaw
		hc.Overrides[normalize("Resent-Date")] = header.ParseRaw
	}
	if !cfg.WithMessageIDs {
		for _, name := range []string{"Message-ID", "In-Reply-To", "References", "Resent-Message-ID"} {
			hc.Overrides[normalize(name)] = header.ParseRaw
		}
	}
	if !cfg.WithMimeHeaders {
		for _, name := range []string{"Content-Type", "Content-Transfer-Encoding", "Content-Disposition",
			"Content-ID", "Content-Description", "Content-Language", "Content-Location", "Content-MD5", "MIME-Version"} {
			hc.Overrides[normalize(name)] = header.ParseRaw
		}
	}
	return hc
}

func normalize(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// Header returns the first occurrence of name on the root part.
func Header(m *message.Message, name string) (*message.Header, bool) {
	root := m.Root()
	if root == nil {
		return nil, false
	}
	return root.Header(name)
}

// HeaderRaw returns the unprocessed value bytes of the first occurrence
// of name, straight out of the original buffer.
func HeaderRaw(m *message.Message, name string) ([]byte, bool) {
	h, ok := Header(m, name)
	if !ok {
		return nil, false
	}
	return m.Raw[h.OffsetStart:h.OffsetEnd], true
}

// HeaderValues returns every occurrence of name on the root part.
func HeaderValues(m *message.Message, name string) []*message.Header {
	root := m.Root()
	if root == nil {
		return nil
	}
	return root.HeaderValues(name)
}

func addressHeader(m *message.Message, name string) *message.AddressValue {
	h, ok := Header(m, name)
	if !ok || h.Value.Kind != message.ValueAddress {
		return nil
	}
	return h.Value.Address
}

func textHeader(m *message.Message, name string) string {
	h, ok := Header(m, name)
	if !ok {
		return ""
	}
	return h.Value.Text
}

func dateHeader(m *message.Message, name string) *message.DateTime {
	h, ok := Header(m, name)
	if !ok || h.Value.Kind != message.ValueDateTime {
		return nil
	}
	return h.Value.DateTime
}

func idListHeader(m *message.Message, name string) []string {
	h, ok := Header(m, name)
	if !ok {
		return nil
	}
	return h.Value.TextList
}

func From(m *message.Message) *message.AddressValue      { return addressHeader(m, "From") }
func To(m *message.Message) *message.AddressValue        { return addressHeader(m, "To") }
func Cc(m *message.Message) *message.AddressValue        { return addressHeader(m, "Cc") }
func Bcc(m *message.Message) *message.AddressValue       { return addressHeader(m, "Bcc") }
func ReplyTo(m *message.Message) *message.AddressValue   { return addressHeader(m, "Reply-To") }
func Sender(m *message.Message) *message.AddressValue    { return addressHeader(m, "Sender") }
func ReturnPath(m *message.Message) *message.AddressValue { return addressHeader(m, "Return-Path") }
func ResentFrom(m *message.Message) *message.AddressValue { return addressHeader(m, "Resent-From") }
func ResentTo(m *message.Message) *message.AddressValue   { return addressHeader(m, "Resent-To") }

func Date(m *message.Message) *message.DateTime       { return dateHeader(m, "Date") }
func ResentDate(m *message.Message) *message.DateTime { return dateHeader(m, "Resent-Date") }

func MessageID(m *message.Message) []string       { return idListHeader(m, "Message-ID") }
func InReplyTo(m *message.Message) []string       { return idListHeader(m, "In-Reply-To") }
func References(m *message.Message) []string      { return idListHeader(m, "References") }
func ResentMessageID(m *message.Message) []string { return idListHeader(m, "Resent-Message-ID") }

func Subject(m *message.Message) string      { return textHeader(m, "Subject") }
func MimeVersion(m *message.Message) string  { return textHeader(m, "MIME-Version") }
func ListID(m *message.Message) string       { return textHeader(m, "List-ID") }
func ListUnsubscribe(m *message.Message) string { return textHeader(m, "List-Unsubscribe") }
func ListPost(m *message.Message) string     { return textHeader(m, "List-Post") }

// Received returns every Received header on the root part, in document
// order: since each relay prepends its Received header, the most recent
// hop is at index 0.
func Received(m *message.Message) []*message.Received {
	hs := HeaderValues(m, "Received")
	out := make([]*message.Received, 0, len(hs))
	for _, h := range hs {
		if h.Value.Kind == message.ValueReceived {
			out = append(out, h.Value.Received)
		}
	}
	return out
}

// BodyText returns the n-th text_body entry, cross-converting from HTML
// if necessary.
func BodyText(m *message.Message, n int) (string, bool) { return body.TextAt(m, n) }

// BodyHTML returns the n-th html_body entry, cross-converting from plain
// text if necessary.
func BodyHTML(m *message.Message, n int) (string, bool) { return body.HTMLAt(m, n) }

// Attachment returns the n-th attachment part.
func Attachment(m *message.Message, n int) (*message.MessagePart, bool) {
	if n < 0 || n >= len(m.Attachments) {
		return nil, false
	}
	return m.Part(m.Attachments[n]), true
}

// RawMessage returns the root part's raw byte span.
func RawMessage(m *message.Message) []byte {
	root := m.Root()
	if root == nil {
		return nil
	}
	return m.Raw[root.OffsetStart:root.OffsetEnd]
}

// IntoOwned returns a deep copy of m whose every borrowed Text/Bytes field
// (and Raw buffer) is a freshly allocated copy, safe to outlive the
// original input buffer.
func IntoOwned(m *message.Message) *message.Message {
	rawCopy := make([]byte, len(m.Raw))
	copy(rawCopy, m.Raw)

	out := &message.Message{
		Raw:         rawCopy,
		TextBody:    append([]int(nil), m.TextBody...),
		HTMLBody:    append([]int(nil), m.HTMLBody...),
		Attachments: append([]int(nil), m.Attachments...),
		HTMLToText:  m.HTMLToText,
		TextToHTML:  m.TextToHTML,
	}
	out.Parts = make([]*message.MessagePart, len(m.Parts))
	for i, p := range m.Parts {
		out.Parts[i] = ownPart(p)
	}
	return out
}

func ownPart(p *message.MessagePart) *message.MessagePart {
	np := &message.MessagePart{
		TransferEncoding:  p.TransferEncoding,
		IsEncodingProblem: p.IsEncodingProblem,
		OffsetStart:       p.OffsetStart,
		OffsetBody:        p.OffsetBody,
		OffsetEnd:         p.OffsetEnd,
	}
	np.Headers = make([]message.Header, len(p.Headers))
	copy(np.Headers, p.Headers)

	np.Body = p.Body
	np.Body.Owned = true
	if p.Body.Bytes != nil {
		np.Body.Bytes = append([]byte(nil), p.Body.Bytes...)
	}
	if p.Body.Sub != nil {
		np.Body.Sub = IntoOwned(p.Body.Sub)
	}
	return np
}
