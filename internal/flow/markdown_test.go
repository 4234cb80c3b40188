package flow

import (
	"strings"
	"testing"
)

func TestRenderHTMLFragment_ConstructSet(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"h3", "### Heading", `<h3 style="color: #2c3e50; margin-top: 20px; margin-bottom: 10px;">Heading</h3>`},
		{"h2", "## Title", `>Title</h2>`},
		{"bold", "**bold**", "<strong>bold</strong>"},
		{"italic", "*note*", "<em>note</em>"},
		{"bullet", "- item", "• item</div>"},
		{"numbered", "2. second step", "<b>2.</b> second step</div>"},
		{"link", "[docs](https://docs.example)", `<a href="https://docs.example" style="color: #3498db; text-decoration: none;">docs</a>`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := renderHTMLFragment(tc.in)
			if !strings.Contains(got, tc.want) {
				t.Fatalf("render(%q)=%q, want it to contain %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestRenderHTMLFragment_EscapesRawMarkup(t *testing.T) {
	t.Parallel()

	got := renderHTMLFragment("use <b>raw</b> tags & ampersands")
	if strings.Contains(got, "<b>raw</b>") {
		t.Fatal("raw tags must not survive")
	}
	if !strings.Contains(got, "&lt;b&gt;raw&lt;/b&gt;") {
		t.Fatalf("angle brackets must be escaped, got %q", got)
	}
	if !strings.Contains(got, "&amp; ampersands") {
		t.Fatalf("ampersand must be escaped, got %q", got)
	}
}

func TestRenderHTMLFragment_RoundTripGuide(t *testing.T) {
	t.Parallel()

	guide := "### Heading\nIntro with **bold** emphasis.\n- item\n1. first\nSee [site](https://a.example)\nliteral < and > stay text"
	got := renderHTMLFragment(guide)

	for _, want := range []string{
		"<h3", "Heading", "<strong>bold</strong>", "• item", "<b>1.</b> first",
		`<a href="https://a.example"`, "&lt; and &gt;", "<br>",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("render output missing %q:\n%s", want, got)
		}
	}
	// Everything <-shaped in the output is either generated markup or an
	// escape; no raw source bracket leaks through unconverted.
	if strings.Contains(got, "literal < and") {
		t.Fatal("raw source angle bracket leaked")
	}
}

func TestRenderEmailHTML_WrapsFragmentInShell(t *testing.T) {
	t.Parallel()

	got := renderEmailHTML("### Steps:\n1. go")
	if !strings.HasPrefix(got, "<html>") || !strings.HasSuffix(got, "</html>") {
		t.Fatal("shell must wrap the fragment")
	}
	if !strings.Contains(got, "Marketing Strategy Guide") || !strings.Contains(got, "Good luck with your campaign!") {
		t.Fatal("branded header and footer must be present")
	}
	if !strings.Contains(got, "<b>1.</b> go") {
		t.Fatal("fragment must be embedded")
	}
}
