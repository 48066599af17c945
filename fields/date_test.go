package fields

import "testing"

func TestDateBasic(t *testing.T) {
	v := Date([]byte("Tue, 15 Nov 1994 08:12:31 -0500"))
	dt := v.DateTime
	if !dt.Valid {
		t.Fatal("expected valid date")
	}
	if dt.Year != 1994 || dt.Month != 11 || dt.Day != 15 {
		t.Errorf("got y=%d m=%d d=%d", dt.Year, dt.Month, dt.Day)
	}
	if dt.Hour != 8 || dt.Minute != 12 || dt.Second != 31 {
		t.Errorf("got h=%d m=%d s=%d", dt.Hour, dt.Minute, dt.Second)
	}
	if !dt.TZBeforeGMT || dt.TZHour != 5 || dt.TZMinute != 0 {
		t.Errorf("got tz before=%v h=%d m=%d", dt.TZBeforeGMT, dt.TZHour, dt.TZMinute)
	}
}

func TestDateNoWeekday(t *testing.T) {
	v := Date([]byte("15 Nov 1994 08:12:31 +0000"))
	if !v.DateTime.Valid || v.DateTime.Year != 1994 {
		t.Errorf("got %+v", v.DateTime)
	}
}

func TestDateObsoleteZoneName(t *testing.T) {
	v := Date([]byte("Tue, 15 Nov 1994 08:12:31 PST"))
	if !v.DateTime.Valid {
		t.Fatal("expected valid date")
	}
	if !v.DateTime.TZBeforeGMT || v.DateTime.TZHour != 8 {
		t.Errorf("got %+v", v.DateTime)
	}
}

func TestDateTwoDigitYear(t *testing.T) {
	v := Date([]byte("Tue, 15 Nov 94 08:12:31 -0500"))
	if v.DateTime.Year != 1994 {
		t.Errorf("got year %d", v.DateTime.Year)
	}
}

func TestDateMalformedIsInvalidNotPanicking(t *testing.T) {
	v := Date([]byte("not a date at all"))
	if v.DateTime.Valid {
		t.Error("expected invalid date")
	}
}
