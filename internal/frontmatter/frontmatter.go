package frontmatter

import (
	"bytes"
	"errors"
)

// Delimiter opens and closes a front matter block.
const Delimiter = "---"

// Parts is the result of splitting a content unit.
type Parts struct {
	// FrontMatter is the raw YAML between the delimiters, without them.
	FrontMatter []byte
	// Body is everything after the closing delimiter line.
	Body []byte
	// Had reports whether an opening delimiter was found.
	Had bool
	// Unclosed reports that only the opening delimiter was found. FrontMatter
	// is then empty and Body is the remainder after the opening line.
	Unclosed bool
}

// Split separates YAML front matter from the markdown body.
//
// The opening delimiter must be the first non-blank line and consist of
// exactly `---` (a trailing \r is ignored). The block closes at
// the next line that is exactly `---`. Without an opening delimiter the whole
// input is body. With an opening delimiter but no closing one, the front
// matter is empty and the body is the remainder after the opening line.
func Split(content []byte) Parts {
	rest := content
	for len(rest) > 0 {
		line, next := cutLine(rest)
		if len(bytes.TrimSpace(line)) != 0 {
			break
		}
		rest = next
	}
	if len(rest) == 0 {
		return Parts{Body: content}
	}

	open, afterOpen := cutLine(rest)
	if !isDelimiter(open) {
		return Parts{Body: content}
	}

	scan := afterOpen
	offset := 0
	for len(scan) > 0 {
		line, next := cutLine(scan)
		if isDelimiter(line) {
			return Parts{
				FrontMatter: afterOpen[:offset],
				Body:        next,
				Had:         true,
			}
		}
		offset += len(scan) - len(next)
		scan = next
	}

	return Parts{FrontMatter: []byte{}, Body: afterOpen, Had: true, Unclosed: true}
}

// cutLine returns the first line of b (without its terminator) and the bytes after it.
func cutLine(b []byte) (line, rest []byte) {
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		return b[:i], b[i+1:]
	}
	return b, nil
}

func isDelimiter(line []byte) bool {
	return string(bytes.TrimSuffix(line, []byte("\r"))) == Delimiter
}

// ErrNotMapping indicates the front matter parsed as YAML but is not a
// key/value document.
var ErrNotMapping = errors.New("front matter is not a key/value mapping")
