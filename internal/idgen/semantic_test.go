package idgen

import "testing"

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Add OAuth2 login flow":      "add-oauth2-login-flow",
		"  leading/trailing --  ":    "leading-trailing",
		"CAPS and_underscores":       "caps-and-underscores",
		"":                           "claim",
		"!!!":                        "claim",
		"a-b-c":                      "a-b-c",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSlugifyTruncatesAtWordBoundary(t *testing.T) {
	long := "this statement goes on for a very long time describing a great many things about the system"
	got := Slugify(long)
	if len(got) > maxSlugLength {
		t.Fatalf("Slugify result exceeds max length: %d > %d (%q)", len(got), maxSlugLength, got)
	}
	if got == "" {
		t.Fatal("Slugify returned empty string for non-empty input")
	}
}

func TestDisambiguate(t *testing.T) {
	taken := map[string]bool{"foo": true, "foo-2": true}
	got := Disambiguate("foo", func(c string) bool { return taken[c] })
	if got != "foo-3" {
		t.Errorf("Disambiguate = %q, want foo-3", got)
	}

	got = Disambiguate("bar", func(c string) bool { return false })
	if got != "bar" {
		t.Errorf("Disambiguate with no collision = %q, want bar", got)
	}
}
