package document

import (
	"reflect"
	"testing"
)

// TestStylesheetReferences tests url(...) and @import scanning.
func TestStylesheetReferences(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		css  string
		want []string
	}{
		{
			name: "single quoted",
			css:  `@font-face { src: url('/fonts/a.woff2') format('woff2'); }`,
			want: []string{"/fonts/a.woff2"},
		},
		{
			name: "double quoted and unquoted",
			css:  `.a{background:url("img/a.png")} .b{background:url( img/b.png )}`,
			want: []string{"img/a.png", "img/b.png"},
		},
		{
			name: "upper-case function name",
			css:  `.a{background:URL(img/a.png)}`,
			want: []string{"img/a.png"},
		},
		{
			name: "imports first",
			css:  `.a{background:url(a.png)} @import "reset.css"; @import url(theme.css);`,
			want: []string{"reset.css", "a.png", "theme.css"},
		},
		{
			name: "duplicates removed",
			css:  `.a{background:url(a.png)} .b{background:url('a.png')}`,
			want: []string{"a.png"},
		},
		{
			name: "comments ignored",
			css:  `/* .old{background:url(old.png)} */ .a{background:url(new.png)}`,
			want: []string{"new.png"},
		},
		{
			name: "empty url skipped",
			css:  `.a{background:url('')}`,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := StylesheetReferences(tt.css)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("StylesheetReferences() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestResolveStylesheetReferences tests resolution against the stylesheet URL.
func TestResolveStylesheetReferences(t *testing.T) {
	t.Parallel()

	css := `@font-face{src:url('../fonts/a.woff2')} .x{background:url(data:image/png;base64,AA)} .y{background:url(/img/bg.png)}`
	got := ResolveStylesheetReferences(css, mustURL(t, "https://example.com/css/site.css"))
	want := []string{"https://example.com/fonts/a.woff2", "https://example.com/img/bg.png"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("ResolveStylesheetReferences() = %v, want %v", got, want)
	}
}
