package fields

import (
	"reflect"
	"testing"
)

func TestMessageIDsSingle(t *testing.T) {
	v := MessageIDs([]byte("<1234@example.com>"))
	want := []string{"1234@example.com"}
	if !reflect.DeepEqual(v.TextList, want) {
		t.Errorf("got %v", v.TextList)
	}
}

func TestMessageIDsMultipleWithComments(t *testing.T) {
	v := MessageIDs([]byte("<a@b> (comment) <c@d>"))
	want := []string{"a@b", "c@d"}
	if !reflect.DeepEqual(v.TextList, want) {
		t.Errorf("got %v", v.TextList)
	}
}

func TestMessageIDsFolded(t *testing.T) {
	v := MessageIDs([]byte("<a@b>\r\n <c@d>"))
	want := []string{"a@b", "c@d"}
	if !reflect.DeepEqual(v.TextList, want) {
		t.Errorf("got %v", v.TextList)
	}
}

func TestMessageIDsMalformedSkipped(t *testing.T) {
	v := MessageIDs([]byte("garbage <a@b>"))
	want := []string{"a@b"}
	if !reflect.DeepEqual(v.TextList, want) {
		t.Errorf("got %v", v.TextList)
	}
}
