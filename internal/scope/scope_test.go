package scope

import "testing"

func TestFormatID(t *testing.T) {
	cases := []struct {
		s    Scope
		n    int
		want string
	}{
		{Project, 1, "P001"},
		{Project, 42, "P042"},
		{Project, 999, "P999"},
		{Project, 1000, "P1000"},
		{Project, 12345, "P12345"},
		{Shared, 7, "S007"},
		{Shared, 100, "S100"},
	}
	for _, tc := range cases {
		if got := tc.s.FormatID(tc.n); got != tc.want {
			t.Errorf("FormatID(%d) on %s = %q, want %q", tc.n, tc.s, got, tc.want)
		}
	}
}

func TestMatchesID(t *testing.T) {
	cases := []struct {
		s    Scope
		id   string
		want bool
	}{
		{Project, "P001", true},
		{Project, "P1000", true},
		{Project, "S001", false},
		{Project, "P01", false},      // too few digits
		{Project, "P001x", false},    // trailing garbage
		{Project, "xP001", false},    // leading garbage
		{Project, "p001", false},     // lowercase prefix
		{Shared, "S042", true},
		{Shared, "S99999", true},
		{Shared, "P042", false},
		{Shared, "S42", false},
	}
	for _, tc := range cases {
		if got := tc.s.MatchesID(tc.id); got != tc.want {
			t.Errorf("%s.MatchesID(%q) = %v, want %v", tc.s, tc.id, got, tc.want)
		}
	}
}

func TestFormatIDRoundTrip(t *testing.T) {
	for _, s := range All() {
		for _, n := range []int{1, 99, 999, 1000, 54321} {
			id := s.FormatID(n)
			if !s.MatchesID(id) {
				t.Errorf("%s.MatchesID(%q) = false for generated ID", s, id)
			}
			got, ok := ForID(id)
			if !ok || got != s {
				t.Errorf("ForID(%q) = %v, %v, want %v, true", id, got, ok, s)
			}
		}
	}
}

func TestParse(t *testing.T) {
	if s, err := Parse("project"); err != nil || s != Project {
		t.Errorf("Parse(project) = %v, %v", s, err)
	}
	if s, err := Parse("shared"); err != nil || s != Shared {
		t.Errorf("Parse(shared) = %v, %v", s, err)
	}
	for _, bad := range []string{"", "Project", "global", "p"} {
		if _, err := Parse(bad); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", bad)
		}
	}
}

func TestForIDNonID(t *testing.T) {
	for _, in := range []string{"", "auth/jwt.md", "readme", "Q001", "P", "S"} {
		if _, ok := ForID(in); ok {
			t.Errorf("ForID(%q) matched, want no match", in)
		}
	}
}

func TestAllOrder(t *testing.T) {
	all := All()
	if len(all) != 2 || all[0] != Project || all[1] != Shared {
		t.Fatalf("All() = %v, want [project shared]", all)
	}
}
