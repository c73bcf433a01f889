package archive

import (
	"fmt"
	"path"
	"strings"
)

// NormalizePath turns an asset path into a safe zip entry name. Backslashes
// become slashes, empty, "." and ".." segments are dropped, and leading or
// repeated separators collapse. A path with nothing left becomes file-n.
func NormalizePath(p string, n int) string {
	p = strings.ReplaceAll(p, `\`, "/")

	segments := make([]string, 0, strings.Count(p, "/")+1)
	for _, seg := range strings.Split(p, "/") {
		if seg == "" || seg == "." || seg == ".." {
			continue
		}
		segments = append(segments, seg)
	}
	if len(segments) == 0 {
		return fmt.Sprintf("file-%d", n)
	}
	return strings.Join(segments, "/")
}

// namer hands out entry names that can all be extracted side by side.
// A name is never reused, a file never takes the name of a directory
// another entry lives in, and no entry lives under a file.
type namer struct {
	files map[string]bool
	dirs  map[string]bool
}

func newNamer(size int) *namer {
	return &namer{files: make(map[string]bool, size), dirs: make(map[string]bool)}
}

// claim returns name, or name with numeric suffixes where it collides:
// a.css, a-2.css, a-3.css for files, theme-2/a.png for a directory that
// is already a file.
func (n *namer) claim(name string) string {
	segs := strings.Split(name, "/")
	for i := range len(segs) - 1 {
		seg := segs[i]
		dir := strings.Join(segs[:i+1], "/")
		for k := 2; n.files[dir]; k++ {
			segs[i] = fmt.Sprintf("%s-%d", seg, k)
			dir = strings.Join(segs[:i+1], "/")
		}
		n.dirs[dir] = true
	}

	name = strings.Join(segs, "/")
	if n.free(name) {
		n.files[name] = true
		return name
	}
	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d%s", stem, i, ext)
		if n.free(candidate) {
			n.files[candidate] = true
			return candidate
		}
	}
}

func (n *namer) free(name string) bool {
	return !n.files[name] && !n.dirs[name]
}

// FileName returns the file name an archive of domain is saved under,
// e.g. example.com.zip. Characters that are unsafe in file names are
// replaced by underscores.
func FileName(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	var b strings.Builder
	for _, r := range domain {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	name := strings.Trim(b.String(), ".")
	if name == "" {
		name = "site"
	}
	return name + ".zip"
}
