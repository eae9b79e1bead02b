package obs

import "testing"

func TestQueryName(t *testing.T) {
	cases := map[string]string{
		"-- name: GetVoucherByCode :one\nSELECT 1":   "pgx.GetVoucherByCode",
		"SELECT 1":                                   "pgx.query",
		"  -- name: MarkUserVoucherUsed :execrows\n": "pgx.MarkUserVoucherUsed",
	}
	for sql, want := range cases {
		if got := queryName(sql); got != want {
			t.Fatalf("queryName(%q) = %q, want %q", sql, got, want)
		}
	}
}

func TestOperationSkipsComments(t *testing.T) {
	sql := "-- name: MarkUserVoucherUsed :execrows\nupdate user_vouchers set is_used = true"
	if got := operation(sql); got != "UPDATE" {
		t.Fatalf("expected UPDATE, got %q", got)
	}
	if got := operation("   "); got != "" {
		t.Fatalf("expected empty operation, got %q", got)
	}
}
