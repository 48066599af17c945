// Package body implements the JMAP RFC 8621 §4.1.4-style body classifier
// (§4.8): given a fully-walked message.Message, it derives the text_body,
// html_body and attachments index lists and offers the cross-conversion
// getters that synthesise a missing plain-text or HTML view on demand.
package body

import "github.com/oakmail/mailcore/message"

// Classify walks m's part tree depth-first and populates
// m.TextBody/m.HTMLBody/m.Attachments.
func Classify(m *message.Message) {
	if m.Root() == nil {
		return
	}
	texts, htmls, atts := classifySubtree(m, 0)
	m.TextBody = texts
	m.HTMLBody = htmls
	m.Attachments = atts
}

func classifySubtree(m *message.Message, idx int) (texts, htmls, atts []int) {
	p := m.Part(idx)
	if p == nil {
		return nil, nil, nil
	}

	switch p.Body.Kind {
	case message.BodyText:
		if isAttachmentDisposition(p) {
			return nil, nil, []int{idx}
		}
		return []int{idx}, nil, nil

	case message.BodyHTML:
		if isAttachmentDisposition(p) {
			return nil, nil, []int{idx}
		}
		return nil, []int{idx}, nil

	case message.BodyBinary, message.BodyInlineBinary, message.BodyMessage:
		return nil, nil, []int{idx}

	case message.BodyMultipart:
		return classifyMultipart(m, p, idx)
	}
	return nil, nil, nil
}

func classifyMultipart(m *message.Message, p *message.MessagePart, idx int) (texts, htmls, atts []int) {
	ct := p.ContentType()
	switch ct.Full() {
	case "multipart/alternative":
		return classifyAlternative(m, p)
	case "multipart/related":
		return classifyRelated(m, p)
	default:
		// multipart/mixed and anything else: every child contributes
		// independently.
		for _, c := range p.Body.Children {
			t, h, a := classifySubtree(m, c)
			texts = append(texts, t...)
			htmls = append(htmls, h...)
			atts = append(atts, a...)
		}
		return texts, htmls, atts
	}
}

// classifyAlternative keeps only the last text-bearing and last
// HTML-bearing child (RFC 2046 §5.1.4: later parts are progressively more
// faithful representations). If one form is entirely absent, the other's
// index is recorded in both lists so the caller's getters can
// cross-convert on demand.
func classifyAlternative(m *message.Message, p *message.MessagePart) (texts, htmls, atts []int) {
	var lastText, lastHTML []int
	for _, c := range p.Body.Children {
		t, h, a := classifySubtree(m, c)
		if len(t) > 0 {
			lastText = t
		}
		if len(h) > 0 {
			lastHTML = h
		}
		atts = append(atts, a...)
	}
	switch {
	case len(lastText) == 0 && len(lastHTML) > 0:
		return lastHTML, lastHTML, atts
	case len(lastHTML) == 0 && len(lastText) > 0:
		return lastText, lastText, atts
	default:
		return lastText, lastHTML, atts
	}
}

// classifyRelated treats the first child as the primary body (itself
// classified normally, which also handles a related-wrapped alternative)
// and every remaining child as an inline attachment.
func classifyRelated(m *message.Message, p *message.MessagePart) (texts, htmls, atts []int) {
	if len(p.Body.Children) == 0 {
		return nil, nil, nil
	}
	texts, htmls, atts = classifySubtree(m, p.Body.Children[0])
	for _, c := range p.Body.Children[1:] {
		atts = append(atts, c)
	}
	return texts, htmls, atts
}

func isAttachmentDisposition(p *message.MessagePart) bool {
	h, ok := p.Header("Content-Disposition")
	if !ok || h.Value.ContentType == nil {
		return false
	}
	return eqFold(h.Value.ContentType.Type, "attachment")
}

func eqFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// TextAt returns the plain-text view of m's n-th text_body entry,
// synthesising it from HTML via m.HTMLToText if that position holds a
// cross-converted HTML part rather than a native text one.
func TextAt(m *message.Message, n int) (string, bool) {
	if n < 0 || n >= len(m.TextBody) {
		return "", false
	}
	p := m.Part(m.TextBody[n])
	if p == nil {
		return "", false
	}
	if p.Body.Kind == message.BodyHTML {
		if m.HTMLToText != nil {
			return m.HTMLToText(p.Body.Text), true
		}
		return p.Body.Text, true
	}
	return p.Body.Text, true
}

// HTMLAt returns the HTML view of m's n-th html_body entry, synthesising
// it from plain text via m.TextToHTML if that position holds a
// cross-converted text part rather than a native HTML one.
func HTMLAt(m *message.Message, n int) (string, bool) {
	if n < 0 || n >= len(m.HTMLBody) {
		return "", false
	}
	p := m.Part(m.HTMLBody[n])
	if p == nil {
		return "", false
	}
	if p.Body.Kind == message.BodyText {
		if m.TextToHTML != nil {
			return m.TextToHTML(p.Body.Text), true
		}
		return p.Body.Text, true
	}
	return p.Body.Text, true
}
