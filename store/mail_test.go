package store

import (
	"testing"

	"github.com/oakmail/mailcore/message"
)

func TestContainsFlag(t *testing.T) {
	flags := []string{"\\Seen", "\\Flagged"}
	if !containsFlag(flags, "\\Seen") {
		t.Error("expected \\Seen to be present")
	}
	if containsFlag(flags, "\\Draft") {
		t.Error("did not expect \\Draft to be present")
	}
}

func TestFirstOrEmpty(t *testing.T) {
	if got := firstOrEmpty(nil); got != "" {
		t.Errorf("firstOrEmpty(nil) = %q", got)
	}
	if got := firstOrEmpty([]string{"a", "b"}); got != "a" {
		t.Errorf("firstOrEmpty = %q", got)
	}
}

func TestDateTimeToTimeAppliesOffset(t *testing.T) {
	dt := &message.DateTime{
		Year: 2024, Month: 3, Day: 1, Hour: 10, Minute: 30, Second: 0,
		TZBeforeGMT: true, TZHour: 5, TZMinute: 0, Valid: true,
	}
	tm := dateTimeToTime(dt)
	if tm.Year() != 2024 || tm.Month() != 3 || tm.Day() != 1 {
		t.Fatalf("unexpected date: %v", tm)
	}
	_, offset := tm.Zone()
	if offset != -5*3600 {
		t.Errorf("offset = %d, want %d", offset, -5*3600)
	}
}

func TestFlattenAddressesNilIsEmpty(t *testing.T) {
	if got := flattenAddresses(nil); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestFlattenAddressesListAndGroups(t *testing.T) {
	av := &message.AddressValue{
		List: []message.Addr{
			{Name: "Alice", HasName: true, Address: "alice@example.com", HasAddr: true},
			{HasAddr: false},
		},
		Groups: []message.Group{
			{Name: "team", Addrs: []message.Addr{
				{Address: "bob@example.com", HasAddr: true},
			}},
		},
	}
	out := flattenAddresses(av)
	if len(out) != 2 {
		t.Fatalf("expected 2 flattened addresses, got %d: %+v", len(out), out)
	}
	if out[0].Address != "alice@example.com" || out[1].Address != "bob@example.com" {
		t.Errorf("unexpected addresses: %+v", out)
	}
}

func TestGridfsUploadOptionsSetsMetadata(t *testing.T) {
	opts := gridfsUploadOptions("text/plain", "inline", "cid123")
	if opts.Metadata == nil {
		t.Fatal("expected metadata to be set")
	}
}
