package plaintext

import "testing"

func TestFromMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain text unchanged",
			in:   "Hello world",
			want: "Hello world",
		},
		{
			name: "emphasis and strong",
			in:   "This is *really* **important**.",
			want: "This is really important.",
		},
		{
			name: "heading and paragraph",
			in:   "# Install\n\nRun the installer.",
			want: "Install\n\nRun the installer.",
		},
		{
			name: "links keep text",
			in:   "See [the docs](https://example.com) and <https://charm.sh>.",
			want: "See the docs and https://charm.sh.",
		},
		{
			name: "fenced code dropped",
			in:   "Before\n\n```go\nfmt.Println(1)\n```\n\nAfter",
			want: "Before\n\nAfter",
		},
		{
			name: "inline code kept",
			in:   "Run `make test` now.",
			want: "Run make test now.",
		},
		{
			name: "soft breaks join lines",
			in:   "one\ntwo\nthree",
			want: "one two three",
		},
		{
			name: "list items",
			in:   "- apples\n- pears",
			want: "apples\n\npears",
		},
		{
			name: "html dropped",
			in:   "<div>hidden</div>\n\nshown",
			want: "shown",
		},
		{
			name: "image alt text",
			in:   "![a cat](cat.png)",
			want: "a cat",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromMarkdown(tt.in); got != tt.want {
				t.Errorf("FromMarkdown(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFromMarkdownIncludeCode(t *testing.T) {
	got := FromMarkdownWith("Before\n\n```\nmake build\n```", Options{IncludeCode: true})
	want := "Before\n\nmake build"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
