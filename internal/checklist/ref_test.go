package checklist

import "testing"

func TestRefString(t *testing.T) {
	ref := Ref{Owner: "motemen", Repo: "test-repository", Number: 2, Stage: "qa"}
	if got, want := ref.String(), "motemen/test-repository#2::qa"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestRefValidate(t *testing.T) {
	ok := Ref{Owner: "o", Repo: "r", Number: 1}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid ref rejected: %v", err)
	}
	for _, bad := range []Ref{
		{Repo: "r", Number: 1},
		{Owner: "o", Number: 1},
		{Owner: "o", Repo: "r", Number: 0},
		{Owner: "o", Repo: "r", Number: -1},
	} {
		if err := bad.Validate(); err == nil {
			t.Fatalf("expected %v to be rejected", bad)
		}
	}
}

func TestRefPath(t *testing.T) {
	ref := Ref{Owner: "o", Repo: "r", Number: 7}
	if got, want := ref.Path(), "/o/r/pull/7"; got != want {
		t.Fatalf("Path() = %q, want %q", got, want)
	}
	if got, want := ref.WithStage("qa").Path(), "/o/r/pull/7/qa"; got != want {
		t.Fatalf("Path() with stage = %q, want %q", got, want)
	}
}

func TestParseRef(t *testing.T) {
	tests := []struct {
		in           string
		defaultStage string
		want         Ref
	}{
		{"motemen/test-repository#2", "", Ref{Owner: "motemen", Repo: "test-repository", Number: 2}},
		{"motemen/test-repository#2", "qa", Ref{Owner: "motemen", Repo: "test-repository", Number: 2, Stage: "qa"}},
		{"motemen/test-repository#2@production", "qa", Ref{Owner: "motemen", Repo: "test-repository", Number: 2, Stage: "production"}},
		{"motemen/test-repository/pull/2", "", Ref{Owner: "motemen", Repo: "test-repository", Number: 2}},
		{"motemen/test-repository/pull/2/qa", "", Ref{Owner: "motemen", Repo: "test-repository", Number: 2, Stage: "qa"}},
		{"https://checklist.example.com/motemen/test-repository/pull/2/qa", "", Ref{Owner: "motemen", Repo: "test-repository", Number: 2, Stage: "qa"}},
	}
	for _, tt := range tests {
		got, err := ParseRef(tt.in, tt.defaultStage)
		if err != nil {
			t.Fatalf("ParseRef(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseRef(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"", "motemen", "motemen/test-repository", "motemen/test-repository#x", "motemen/test-repository/pulls/2"} {
		if _, err := ParseRef(bad, ""); err == nil {
			t.Fatalf("ParseRef(%q) should fail", bad)
		}
	}
}
