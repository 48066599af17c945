package mailbox

import (
	"strings"
	"testing"
)

func TestReadMboxSplitsAndUnquotes(t *testing.T) {
	input := "From god@heaven.af.mil Sat Jan  3 01:05:34 1996\n" +
		"Message 1\n\n" +
		"From cras@irccrew.org  Tue Jul 23 19:39:23 2002\n" +
		"Message 2\n\n" +
		"From test@test.com Tue Aug  6 13:34:34 2002\n" +
		"Message 3\n" +
		">From hello\n" +
		">>From world\n" +
		">>>From test\n\n" +
		"From other@domain.com Mon Jan 15  15:30:00  2018\n" +
		"Message 4\n" +
		"> From\n" +
		">F\n"

	msgs, err := ReadMbox(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadMbox: %v", err)
	}
	if len(msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(msgs))
	}

	if msgs[0].From != "god@heaven.af.mil" {
		t.Errorf("msg0 from = %q", msgs[0].From)
	}
	if string(msgs[0].Contents) != "Message 1\n\n" {
		t.Errorf("msg0 contents = %q", msgs[0].Contents)
	}

	if msgs[2].From != "test@test.com" {
		t.Errorf("msg2 from = %q", msgs[2].From)
	}
	wantBody3 := "Message 3\nFrom hello\n>From world\n>>From test\n\n"
	if string(msgs[2].Contents) != wantBody3 {
		t.Errorf("msg2 contents = %q, want %q", msgs[2].Contents, wantBody3)
	}

	if msgs[3].From != "other@domain.com" {
		t.Errorf("msg3 from = %q", msgs[3].From)
	}
	wantBody4 := "Message 4\n> From\n>F\n"
	if string(msgs[3].Contents) != wantBody4 {
		t.Errorf("msg3 contents = %q, want %q", msgs[3].Contents, wantBody4)
	}
	if msgs[3].InternalDate == nil || !msgs[3].InternalDate.Valid {
		t.Fatalf("expected a valid parsed date for msg3")
	}
	if msgs[3].InternalDate.Year != 2018 || msgs[3].InternalDate.Month != 1 || msgs[3].InternalDate.Day != 15 {
		t.Errorf("msg3 date = %+v", msgs[3].InternalDate)
	}
}

func TestReadMboxEmptyInput(t *testing.T) {
	msgs, err := ReadMbox(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ReadMbox: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("expected no messages, got %d", len(msgs))
	}
}

func TestReadMboxNoLeadingFromLineIsDiscarded(t *testing.T) {
	msgs, err := ReadMbox(strings.NewReader("stray line before any From\n"))
	if err != nil {
		t.Fatalf("ReadMbox: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("expected content before the first From line to be discarded, got %d messages", len(msgs))
	}
}
