package message

// The well-known header names the dispatcher (package header) recognises.
// HeaderOther covers every free-form field name; its text is preserved on
// Header.RawName.
const (
	HeaderOther HeaderName = iota
	HeaderSubject
	HeaderFrom
	HeaderTo
	HeaderCc
	HeaderBcc
	HeaderReplyTo
	HeaderSender
	HeaderDate
	HeaderMessageID
	HeaderInReplyTo
	HeaderReferences
	HeaderComments
	HeaderKeywords
	HeaderReturnPath
	HeaderReceived
	HeaderMimeVersion
	HeaderContentType
	HeaderContentTransferEncoding
	HeaderContentDisposition
	HeaderContentID
	HeaderContentDescription
	HeaderContentLanguage
	HeaderContentLocation
	HeaderContentMD5
	HeaderResentFrom
	HeaderResentTo
	HeaderResentCc
	HeaderResentBcc
	HeaderResentSender
	HeaderResentDate
	HeaderResentMessageID
	HeaderListID
	HeaderListUnsubscribe
	HeaderListArchive
	HeaderListHelp
	HeaderListOwner
	HeaderListPost
	HeaderListSubscribe
	HeaderDispositionNotificationTo
	HeaderAutoSubmitted
)

// WellKnownNames maps every recognised header down to its canonical
// (mixed-case, RFC-style) spelling, used when callers want to re-serialise
// the dispatcher's idea of the name rather than the bytes originally seen
// on the wire.
var WellKnownNames = map[HeaderName]string{
	HeaderSubject:                   "Subject",
	HeaderFrom:                      "From",
	HeaderTo:                        "To",
	HeaderCc:                        "Cc",
	HeaderBcc:                       "Bcc",
	HeaderReplyTo:                   "Reply-To",
	HeaderSender:                    "Sender",
	HeaderDate:                      "Date",
	HeaderMessageID:                 "Message-ID",
	HeaderInReplyTo:                 "In-Reply-To",
	HeaderReferences:                "References",
	HeaderComments:                  "Comments",
	HeaderKeywords:                  "Keywords",
	HeaderReturnPath:                "Return-Path",
	HeaderReceived:                  "Received",
	HeaderMimeVersion:               "MIME-Version",
	HeaderContentType:               "Content-Type",
	HeaderContentTransferEncoding:   "Content-Transfer-Encoding",
	HeaderContentDisposition:        "Content-Disposition",
	HeaderContentID:                 "Content-ID",
	HeaderContentDescription:        "Content-Description",
	HeaderContentLanguage:           "Content-Language",
	HeaderContentLocation:           "Content-Location",
	HeaderContentMD5:                "Content-MD5",
	HeaderResentFrom:                "Resent-From",
	HeaderResentTo:                  "Resent-To",
	HeaderResentCc:                  "Resent-Cc",
	HeaderResentBcc:                 "Resent-Bcc",
	HeaderResentSender:              "Resent-Sender",
	HeaderResentDate:                "Resent-Date",
	HeaderResentMessageID:           "Resent-Message-ID",
	HeaderListID:                    "List-ID",
	HeaderListUnsubscribe:           "List-Unsubscribe",
	HeaderListArchive:               "List-Archive",
	HeaderListHelp:                  "List-Help",
	HeaderListOwner:                 "List-Owner",
	HeaderListPost:                  "List-Post",
	HeaderListSubscribe:             "List-Subscribe",
	HeaderDispositionNotificationTo: "Disposition-Notification-To",
	HeaderAutoSubmitted:             "Auto-Submitted",
}
