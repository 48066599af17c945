package fields

import "testing"

func TestContentTypeBasic(t *testing.T) {
	v := ContentTypeValue([]byte(`text/plain; charset=UTF-8`))
	ct := v.ContentType
	if ct.Type != "text" || ct.Subtype != "plain" {
		t.Fatalf("got %+v", ct)
	}
	if cs, ok := ct.Attribute("charset"); !ok || cs != "UTF-8" {
		t.Errorf("charset = %q ok=%v", cs, ok)
	}
}

func TestContentTypeQuotedValueWithSemicolon(t *testing.T) {
	v := ContentTypeValue([]byte(`text/plain; name="a; b.txt"`))
	if name, ok := v.ContentType.Attribute("name"); !ok || name != "a; b.txt" {
		t.Errorf("got %q ok=%v", name, ok)
	}
}

// TestContentTypeRFC2231Continuation exercises §8 scenario S3: out-of-order
// continuation fragments, one of them percent-encoded with a charset tag.
func TestContentTypeRFC2231Continuation(t *testing.T) {
	raw := `image/gif; name*1="about "; name*0="Book "; name*2*=utf-8''%e2%98%95 tables.gif`
	v := ContentTypeValue([]byte(raw))
	ct := v.ContentType
	if ct.Full() != "image/gif" {
		t.Fatalf("got %q", ct.Full())
	}
	name, ok := ct.Attribute("name")
	if !ok {
		t.Fatal("missing name attribute")
	}
	if want := "Book about ☕ tables.gif"; name != want {
		t.Errorf("got %q, want %q", name, want)
	}
}

func TestContentTypeCommentsAreSkipped(t *testing.T) {
	v := ContentTypeValue([]byte(`text/plain (comment) ; (another) charset=us-ascii`))
	if v.ContentType.Type != "text" || v.ContentType.Subtype != "plain" {
		t.Fatalf("got %+v", v.ContentType)
	}
	if cs, _ := v.ContentType.Attribute("charset"); cs != "us-ascii" {
		t.Errorf("got %q", cs)
	}
}
