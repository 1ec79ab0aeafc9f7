package page

import (
	"strings"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/staticgen/internal/frontmatter"
)

// Fingerprint computes the canonical content fingerprint of a page.
//
// The fingerprint field itself is excluded, the remaining front matter is
// serialized as YAML in document order, and a single trailing newline is
// trimmed before hashing.
func Fingerprint(fm *frontmatter.FrontMatter, body []byte) (string, error) {
	forHash := fm.Clone()
	forHash.Delete(mdfp.FingerprintField)

	serialized := ""
	if forHash.Len() > 0 {
		out, err := frontmatter.SerializeYAML(forHash)
		if err != nil {
			return "", err
		}
		serialized = strings.TrimSuffix(string(out), "\n")
	}
	return mdfp.CalculateFingerprintFromParts(serialized, string(body)), nil
}
