// Package message defines the in-memory document tree produced by a single
// pass over an RFC 5322 message buffer: a flat array of MIME parts, each
// carrying its own decoded body and offsets back into the raw bytes, plus
// the JMAP-style derived body/attachment index lists.
package message

// TransferEncoding is the Content-Transfer-Encoding declared (or defaulted)
// for a part's body, before the body classifier's own charset/disposition
// logic runs.
type TransferEncoding int

const (
	EncodingNone TransferEncoding = iota
	EncodingQuotedPrintable
	EncodingBase64
)

func (e TransferEncoding) String() string {
	switch e {
	case EncodingQuotedPrintable:
		return "quoted-printable"
	case EncodingBase64:
		return "base64"
	default:
		return "none"
	}
}

// BodyKind tags the active field of a BodyVariant.
type BodyKind int

const (
	BodyText BodyKind = iota
	BodyHTML
	BodyBinary
	BodyInlineBinary
	BodyMessage
	BodyMultipart
)

// BodyVariant is the tagged union described in §3: a part's body is exactly
// one of a decoded text/HTML string, decoded binary bytes, a nested Message
// (message/rfc822), or the ordered list of child part indices of a
// multipart container.
type BodyVariant struct {
	Kind BodyKind

	// Owned reports whether Text/Bytes is a freshly allocated copy rather
	// than a borrow into the Message's Raw buffer. A borrowed view is only
	// possible when no transfer or charset decoding was required.
	Owned bool

	Text     string
	Bytes    []byte
	Sub      *Message // set when Kind == BodyMessage
	Children []int    // set when Kind == BodyMultipart
}

// Attribute is a single Content-Type or Content-Disposition parameter,
// already reassembled from any RFC 2231 continuations.
type Attribute struct {
	Name  string
	Value string
}

// ContentType is the parsed form of a Content-Type header value.
type ContentType struct {
	Type       string
	Subtype    string
	Attributes []Attribute
}

// Attribute looks up a parameter by lowercase name.
func (c *ContentType) Attribute(name string) (string, bool) {
	if c == nil {
		return "", false
	}
	for _, a := range c.Attributes {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Full returns "type/subtype" in canonical lowercase form.
func (c *ContentType) Full() string {
	if c == nil {
		return ""
	}
	return c.Type + "/" + c.Subtype
}

// DateTime is an RFC 5322 date-time value, stored without normalisation to
// UTC: the zone is kept as signed offset components exactly as written.
type DateTime struct {
	Year, Month, Day      int32
	Hour, Minute, Second  int32
	TZBeforeGMT           bool
	TZHour, TZMinute      int32
	Valid                 bool // false when month/day/year/hour/minute were not all resolvable
}

// HelloCommand is the greeting verb captured by a Received header.
type HelloCommand int

const (
	HelloNone HelloCommand = iota
	HelloHelo
	HelloEhlo
	HelloLhlo
)

func (h HelloCommand) String() string {
	switch h {
	case HelloHelo:
		return "HELO"
	case HelloEhlo:
		return "EHLO"
	case HelloLhlo:
		return "LHLO"
	default:
		return ""
	}
}

// Received is the structured form of a Received header.
type Received struct {
	From       string
	FromIP     string
	FromIPRev  string
	By         string
	For        string
	With       string
	TLSVersion string
	TLSCipher  string
	ID         string
	Ident      string
	Helo       string
	HeloCmd    HelloCommand
	Via        string
	Date       *DateTime
}

// Addr is a single mailbox: an optional display name and an optional
// addr-spec. Both are owned strings once RFC 2047/2231 decoding has run, or
// borrows over the raw header bytes when no decoding was required.
type Addr struct {
	Name    string
	HasName bool
	Address string
	HasAddr bool
}

// Group is a named group of mailboxes (RFC 5322 group syntax), e.g.
// "Friends: a@example.com, b@example.com;".
type Group struct {
	Name    string
	HasName bool
	Addrs   []Addr
}

// AddressKind tags whether an AddressValue is a flat mailbox list or a list
// of named groups (a header value is never a mix of the two at the top
// level — a bare mailbox is represented as a one-element, unnamed group's
// sibling in List form).
type AddressKind int

const (
	AddressList AddressKind = iota
	AddressGroups
)

// AddressValue is the parsed form of an address-list/mailbox-list/group
// header value.
type AddressValue struct {
	Kind   AddressKind
	List   []Addr
	Groups []Group
}

// HeaderValueKind tags the active field of a HeaderValue.
type HeaderValueKind int

const (
	ValueEmpty HeaderValueKind = iota
	ValueText
	ValueTextList
	ValueDateTime
	ValueContentType
	ValueAddress
	ValueReceived
)

// HeaderValue is the tagged union a field-grammar parser produces.
type HeaderValue struct {
	Kind        HeaderValueKind
	Text        string
	TextList    []string
	DateTime    *DateTime
	ContentType *ContentType
	Address     *AddressValue
	Received    *Received
}

// HeaderName is one of the ~40 well-known header names the dispatcher
// recognises, or HeaderOther for anything else (the original-case spelling
// is preserved on Header.RawName in that case).
type HeaderName int

// Header is a single parsed header field, preserving its original ordering,
// name casing and byte offsets into the raw buffer.
type Header struct {
	Name    HeaderName
	RawName string // original-case field name as it appeared in the message
	Value   HeaderValue

	// OffsetField is the position of the first byte of the name.
	// OffsetStart is the position of the first byte of the value (after the
	// colon, before any trimming).
	// OffsetEnd is the position just past the header's final CRLF.
	OffsetField int
	OffsetStart int
	OffsetEnd   int
}

// MessagePart is one node of the MIME tree.
type MessagePart struct {
	Headers []Header
	Body    BodyVariant

	TransferEncoding  TransferEncoding
	IsEncodingProblem bool

	// Offsets into the owning Message's Raw buffer.
	OffsetStart int // first byte of the first header
	OffsetBody  int // first byte of the body (past the header/body blank line)
	OffsetEnd   int // one past the last byte belonging to this part

	cachedContentType *ContentType
}

// Header returns the first header matching name (case-insensitive), if any.
func (p *MessagePart) Header(name string) (*Header, bool) {
	ln := lowerASCII(name)
	for i := range p.Headers {
		if lowerASCII(p.Headers[i].RawName) == ln {
			return &p.Headers[i], true
		}
	}
	return nil, false
}

// HeaderValues returns every header matching name (case-insensitive), in
// document order.
func (p *MessagePart) HeaderValues(name string) []*Header {
	ln := lowerASCII(name)
	var out []*Header
	for i := range p.Headers {
		if lowerASCII(p.Headers[i].RawName) == ln {
			out = append(out, &p.Headers[i])
		}
	}
	return out
}

// ContentType returns the part's parsed Content-Type, defaulting to
// text/plain; charset=us-ascii per RFC 2045 §5.2 when absent.
func (p *MessagePart) ContentType() *ContentType {
	if p.cachedContentType != nil {
		return p.cachedContentType
	}
	if h, ok := p.Header("Content-Type"); ok && h.Value.Kind == ValueContentType {
		p.cachedContentType = h.Value.ContentType
		return p.cachedContentType
	}
	p.cachedContentType = &ContentType{
		Type: "text", Subtype: "plain",
		Attributes: []Attribute{{Name: "charset", Value: "us-ascii"}},
	}
	return p.cachedContentType
}

// Message is the parse-tree root: a flat array of parts (index 0 is the
// root part) plus the derived JMAP body-view index lists and a reference to
// the original buffer the whole tree is (optionally) borrowed from.
type Message struct {
	Raw []byte

	Parts []*MessagePart

	TextBody    []int
	HTMLBody    []int
	Attachments []int

	// HTMLToText/TextToHTML are the out-of-core conversion collaborators
	// used for cross-conversion (§4.8). They default to identity when nil,
	// which callers that don't need the fallback may rely on.
	HTMLToText func(string) string
	TextToHTML func(string) string
}

// Root returns the root part (index 0). A successfully parsed Message
// always has one.
func (m *Message) Root() *MessagePart {
	if len(m.Parts) == 0 {
		return nil
	}
	return m.Parts[0]
}

// Part returns the part at index i, or nil if out of range.
func (m *Message) Part(i int) *MessagePart {
	if i < 0 || i >= len(m.Parts) {
		return nil
	}
	return m.Parts[i]
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
