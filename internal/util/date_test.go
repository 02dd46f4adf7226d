package util

import (
	"testing"
	"time"
)

func TestParseMixedDate(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{name: "iso", input: "2021-03-15", want: "2021-03-15", wantOK: true},
		{name: "serial", input: "44270", want: "2021-03-15", wantOK: true},
		{name: "iso with time", input: "2021-03-15 00:00:00", want: "2021-03-15", wantOK: true},
		{name: "us slashes", input: "3/15/2021", want: "2021-03-15", wantOK: true},
		{name: "two digit year", input: "03/15/21", want: "2021-03-15", wantOK: true},
		{name: "month name upper", input: "15-MAR-2021", want: "2021-03-15", wantOK: true},
		{name: "month name long", input: "March 15, 2021", want: "2021-03-15", wantOK: true},
		{name: "padded", input: "  2022-01-10 ", want: "2022-01-10", wantOK: true},
		{name: "serial below range", input: "17999", wantOK: false},
		{name: "serial above range", input: "60001", wantOK: false},
		{name: "serial lower bound", input: "18000", want: "1949-04-12", wantOK: true},
		{name: "fractional serial", input: "44270.5", wantOK: false},
		{name: "too many digits", input: "4427012", wantOK: false},
		{name: "garbage", input: "pending", wantOK: false},
		{name: "empty", input: "", wantOK: false},
		{name: "nan", input: "NaN", wantOK: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseMixedDate(tc.input)
			if ok != tc.wantOK {
				t.Fatalf("ok=%v want %v (got %v)", ok, tc.wantOK, got)
			}
			if ok && got.Format("2006-01-02") != tc.want {
				t.Fatalf("got %s want %s", got.Format("2006-01-02"), tc.want)
			}
			if ok && got.Location() != time.UTC {
				t.Fatalf("expected UTC, got %v", got.Location())
			}
		})
	}
}
