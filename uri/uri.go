package uri

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// opaqueSep separates the outer locator from the member path in archive
// URIs such as jar:file:///lib/x.jar!/catalog.xml
const opaqueSep = "!/"

// IsAbsolute tells whether s starts with a URI scheme.  Single letter schemes
// are treated as windows drive letters, not schemes.
func IsAbsolute(s string) bool {
	return Scheme(s) != ""
}

// Scheme returns the lowercased scheme of s, or "" if it has none
func Scheme(s string) string {
	i := strings.IndexByte(s, ':')
	if i < 2 {
		return ""
	}
	for j := 0; j < i; j++ {
		c := s[j]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case j > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return ""
		}
	}
	return strings.ToLower(s[:i])
}

// Resolve resolves href against base.  An absolute href is returned as is
// (apart from file: normalization), and an empty href yields the base.
//
// When the base is an archive member locator (outer!/inner), only the inner
// path takes part in resolution and the outer prefix is re-attached.
func Resolve(base, href string) string {
	href = NormalizeSystem(href)
	if href == "" {
		return FixFile(base)
	}
	if IsAbsolute(href) {
		return FixFile(href)
	}
	if base == "" {
		return href
	}

	if i := strings.Index(base, opaqueSep); i >= 0 {
		outer, inner := base[:i+1], base[i+1:]
		return outer + resolveRef(inner, href)
	}

	return FixFile(resolveRef(base, href))
}

func resolveRef(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return merge(base, href)
	}
	r, err := url.Parse(href)
	if err != nil {
		return merge(base, href)
	}
	return b.ResolveReference(r).String()
}

// merge resolves a relative href against base textually, following RFC 3986
// section 5.2, for references net/url refuses to parse.
func merge(base, href string) string {
	if i := strings.IndexAny(base, "?#"); i >= 0 {
		base = base[:i]
	}

	prefix, path := splitAuthority(base)
	switch {
	case strings.HasPrefix(href, "//"):
		return prefix[:strings.IndexByte(prefix, ':')+1] + href
	case strings.HasPrefix(href, "/"):
		return prefix + removeDots(href)
	case strings.HasPrefix(href, "?"), strings.HasPrefix(href, "#"):
		return base + href
	}

	dir := ""
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		dir = path[:i+1]
	} else if strings.Contains(prefix, "//") {
		dir = "/"
	}
	return prefix + removeDots(dir+href)
}

// splitAuthority splits an absolute URI into scheme and authority, and path
func splitAuthority(s string) (string, string) {
	sch := Scheme(s)
	if sch == "" {
		return "", s
	}
	rest := s[len(sch)+1:]
	if !strings.HasPrefix(rest, "//") {
		return s[:len(sch)+1], rest
	}
	end := strings.IndexByte(rest[2:], '/')
	if end < 0 {
		return s, ""
	}
	n := len(sch) + 1 + 2 + end
	return s[:n], s[n:]
}

// removeDots removes "." and ".." segments from a path
func removeDots(p string) string {
	var query string
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p, query = p[:i], p[i:]
	}

	rooted := strings.HasPrefix(p, "/")
	segs := strings.Split(p, "/")
	out := make([]string, 0, len(segs))
	for i, seg := range segs {
		last := i == len(segs)-1
		switch seg {
		case ".":
			if last {
				out = append(out, "")
			}
		case "..":
			if len(out) > 0 && !(rooted && len(out) == 1) {
				out = out[:len(out)-1]
			}
			if last {
				out = append(out, "")
			}
		default:
			out = append(out, seg)
		}
	}
	return strings.Join(out, "/") + query
}

// FixFile rewrites file: URIs lacking an authority (file:/a/b) into the
// canonical triple slash form (file:///a/b).
func FixFile(s string) string {
	if len(s) < 6 || !strings.EqualFold(s[:5], "file:") {
		return s
	}
	rest := s[5:]
	if strings.HasPrefix(rest, "//") || !strings.HasPrefix(rest, "/") {
		return s
	}
	return "file://" + rest
}

// FromPath turns a location given as a file path or URI into an absolute URI.
// Locations that already have a scheme are only normalized.
func FromPath(loc string) (string, error) {
	if IsAbsolute(loc) {
		return FixFile(loc), nil
	}

	abs, err := filepath.Abs(loc)
	if err != nil {
		return "", errors.Wrapf(err, "could not make absolute path of %s", loc)
	}

	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}

	return "file://" + NormalizeSystem(p), nil
}

// NormalizeSystem percent-encodes the characters that may not appear
// literally in a system identifier or URI reference: control characters,
// space, non-ASCII bytes and "<>\^`{|}.  Existing escapes are left alone; a
// "%" that does not start an escape becomes "%25".
func NormalizeSystem(s string) string {
	if !needsEscape(s) {
		return s
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped(c) || strayPercent(s, i) {
			fmt.Fprintf(&b, "%%%02X", c)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func needsEscape(s string) bool {
	for i := 0; i < len(s); i++ {
		if escaped(s[i]) || strayPercent(s, i) {
			return true
		}
	}
	return false
}

func strayPercent(s string, i int) bool {
	return s[i] == '%' && (i+2 >= len(s) || !isHex(s[i+1]) || !isHex(s[i+2]))
}

func isHex(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func escaped(c byte) bool {
	return c <= 0x20 || c >= 0x7f || strings.IndexByte("\"<>\\^`{|}", c) >= 0
}

// NormalizePublic collapses whitespace in a public identifier: leading and
// trailing whitespace is removed, inner runs become a single space.
func NormalizePublic(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

const urnPrefix = "urn:publicid:"

// IsPublicIDURN tells whether s is a urn:publicid: URN
func IsPublicIDURN(s string) bool {
	return len(s) >= len(urnPrefix) && strings.EqualFold(s[:len(urnPrefix)], urnPrefix)
}

// UnwrapURN converts a urn:publicid: URN back into the public identifier it
// encodes.  The second return value is false if s is not such a URN.
func UnwrapURN(s string) (string, bool) {
	if !IsPublicIDURN(s) {
		return s, false
	}

	var b strings.Builder
	rest := s[len(urnPrefix):]
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		switch c {
		case '+':
			b.WriteByte(' ')
		case ':':
			b.WriteString("//")
		case ';':
			b.WriteString("::")
		case '%':
			if i+2 < len(rest) {
				if d, ok := urnEscapes[strings.ToUpper(rest[i+1:i+3])]; ok {
					b.WriteByte(d)
					i += 2
					continue
				}
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), true
}

var urnEscapes = map[string]byte{
	"2B": '+',
	"3A": ':',
	"2F": '/',
	"3B": ';',
	"27": '\'',
	"3F": '?',
	"23": '#',
	"25": '%',
}
