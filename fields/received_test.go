package fields

import "testing"

func TestReceivedBasic(t *testing.T) {
	v := Received([]byte(
		"from mail.example.com (mail.example.com [192.0.2.1]) by mx.example.org with ESMTP id ABC123 for <bob@example.org>; Tue, 15 Nov 1994 08:12:31 -0500",
	))
	r := v.Received
	if r.From != "mail.example.com" {
		t.Errorf("from = %q", r.From)
	}
	if r.FromIP != "192.0.2.1" {
		t.Errorf("from_ip = %q", r.FromIP)
	}
	if r.By != "mx.example.org" {
		t.Errorf("by = %q", r.By)
	}
	if r.With != "ESMTP" {
		t.Errorf("with = %q", r.With)
	}
	if r.ID != "ABC123" {
		t.Errorf("id = %q", r.ID)
	}
	if r.For != "bob@example.org" {
		t.Errorf("for = %q", r.For)
	}
	if r.Date == nil || !r.Date.Valid || r.Date.Year != 1994 {
		t.Errorf("date = %+v", r.Date)
	}
}

func TestReceivedHeloCommand(t *testing.T) {
	v := Received([]byte("from host1 (EHLO host1.example.com) by host2 with SMTP; Tue, 15 Nov 1994 08:12:31 +0000"))
	r := v.Received
	if r.HeloCmd != 2 { // message.HelloEhlo
		t.Errorf("helo cmd = %v", r.HeloCmd)
	}
	if r.Helo != "host1.example.com" {
		t.Errorf("helo = %q", r.Helo)
	}
}
