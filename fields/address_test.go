package fields

import (
	"testing"

	"github.com/oakmail/mailcore/message"
)

// TestAddressEncodedWordDisplayName exercises §8 scenario S1: a display
// name carried as an RFC 2047 encoded word.
func TestAddressEncodedWordDisplayName(t *testing.T) {
	v := Address([]byte(`=?UTF-8?Q?John_Sm=C3=AEth?= <john@example.com>`))
	if v.Kind != message.ValueAddress || v.Address.Kind != message.AddressList {
		t.Fatalf("unexpected value: %+v", v)
	}
	if len(v.Address.List) != 1 {
		t.Fatalf("expected 1 address, got %d", len(v.Address.List))
	}
	a := v.Address.List[0]
	if !a.HasName || a.Name != "John Smîth" {
		t.Errorf("name = %q (hasName=%v)", a.Name, a.HasName)
	}
	if !a.HasAddr || a.Address != "john@example.com" {
		t.Errorf("address = %q (hasAddr=%v)", a.Address, a.HasAddr)
	}
}

// TestAddressGroupsWithQuotedNames exercises §8 scenario S2: groups whose
// display name is a quoted string, each containing one or more mailboxes.
func TestAddressGroupsWithQuotedNames(t *testing.T) {
	v := Address([]byte(`"Friends": alice@example.com, "Bob Smith" <bob@example.com>;, "Work": carol@example.com;`))
	if v.Address.Kind != message.AddressGroups {
		t.Fatalf("expected groups, got kind=%v", v.Address.Kind)
	}
	if len(v.Address.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d: %+v", len(v.Address.Groups), v.Address.Groups)
	}
	g0 := v.Address.Groups[0]
	if g0.Name != "Friends" || len(g0.Addrs) != 2 {
		t.Fatalf("group0 = %+v", g0)
	}
	if g0.Addrs[1].Name != "Bob Smith" || g0.Addrs[1].Address != "bob@example.com" {
		t.Errorf("group0.Addrs[1] = %+v", g0.Addrs[1])
	}
	g1 := v.Address.Groups[1]
	if g1.Name != "Work" || len(g1.Addrs) != 1 || g1.Addrs[0].Address != "carol@example.com" {
		t.Errorf("group1 = %+v", g1)
	}
}

func TestAddressSimpleList(t *testing.T) {
	v := Address([]byte("alice@example.com, Bob <bob@example.com>"))
	if v.Address.Kind != message.AddressList || len(v.Address.List) != 2 {
		t.Fatalf("got %+v", v.Address)
	}
	if v.Address.List[0].Address != "alice@example.com" {
		t.Errorf("got %q", v.Address.List[0].Address)
	}
	if v.Address.List[1].Name != "Bob" || v.Address.List[1].Address != "bob@example.com" {
		t.Errorf("got %+v", v.Address.List[1])
	}
}

func TestAddressBareMailboxNoAngleAddr(t *testing.T) {
	v := Address([]byte("john@example.com"))
	if len(v.Address.List) != 1 || v.Address.List[0].Address != "john@example.com" {
		t.Fatalf("got %+v", v.Address)
	}
}

func TestAddressEmptyGroup(t *testing.T) {
	v := Address([]byte("Undisclosed-recipients:;"))
	if v.Address.Kind != message.AddressGroups || len(v.Address.Groups) != 1 {
		t.Fatalf("got %+v", v.Address)
	}
	if v.Address.Groups[0].Name != "Undisclosed-recipients" || len(v.Address.Groups[0].Addrs) != 0 {
		t.Errorf("got %+v", v.Address.Groups[0])
	}
}
