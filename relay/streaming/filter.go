// Package streaming implements the incremental tag filter used to strip
// reasoning spans from streamed upstream responses.
package streaming

import (
	"strings"
	"unicode/utf8"
)

const (
	// retentionWindow is the number of trailing runes held back while no
	// start tag is in sight, so a partial tag split across a chunk boundary
	// is never emitted prematurely.
	retentionWindow = 1024

	// MaxOpenTagBuffer bounds how much text an unterminated tag span may pin
	// in memory. Once exceeded, the open tag is abandoned and the buffered
	// text is released verbatim instead of growing without limit.
	MaxOpenTagBuffer = 256 * 1024
)

// TagFilter removes all spans delimited by a start/end tag pair from a byte
// stream fed in arbitrary chunks. Delimiters may be split across chunk
// boundaries, and so may multi-byte UTF-8 sequences: bytes are only matched
// once decoded into complete codepoints. Matching is flat and greedy: the
// first start tag pairs with the first end tag after it, with no nesting.
//
// Not safe for concurrent use; create one filter per response stream.
type TagFilter struct {
	startTag string
	endTag   string

	// text owns every decoded character not yet emitted or discarded.
	text string
	// pending holds the trailing bytes of a UTF-8 sequence cut off by the
	// last chunk boundary.
	pending []byte
}

func NewTagFilter(startTag, endTag string) *TagFilter {
	return &TagFilter{
		startTag: startTag,
		endTag:   endTag,
	}
}

// Feed appends chunk to the internal buffer and returns every byte that is
// now certain not to belong to a tag span. Content is withheld while it could
// still be a prefix of the start tag or while an opened span awaits its end
// tag; completed spans are discarded, tags inclusive.
func (f *TagFilter) Feed(chunk []byte) []byte {
	f.absorb(chunk)

	var out strings.Builder
	for {
		start := strings.Index(f.text, f.startTag)
		if start == -1 {
			// no tag in sight: release all but a trailing window that could
			// still turn out to be a partial start tag
			if keep := tailOffset(f.text, retentionWindow); keep > 0 {
				out.WriteString(f.text[:keep])
				f.text = f.text[keep:]
			}
			break
		}
		if start > 0 {
			out.WriteString(f.text[:start])
			f.text = f.text[start:]
		}

		end := strings.Index(f.text[len(f.startTag):], f.endTag)
		if end == -1 {
			if len(f.text) > MaxOpenTagBuffer {
				// unterminated span grew past the bound: give up on this
				// match, release the open tag verbatim and keep scanning
				out.WriteString(f.startTag)
				f.text = f.text[len(f.startTag):]
				continue
			}
			// end tag not seen yet, the span may continue in later chunks
			break
		}
		f.text = f.text[len(f.startTag)+end+len(f.endTag):]
	}
	return []byte(out.String())
}

// Flush returns everything still retained, complete or partial tag text
// included, and resets the filter. Call exactly once at stream end; no
// buffered bytes are ever silently dropped.
func (f *TagFilter) Flush() []byte {
	out := f.text + string(f.pending)
	f.text = ""
	f.pending = nil
	return []byte(out)
}

// absorb decodes chunk into the text buffer, carrying any trailing
// incomplete UTF-8 sequence over to the next call.
func (f *TagFilter) absorb(chunk []byte) {
	buf := chunk
	if len(f.pending) > 0 {
		buf = append(f.pending, chunk...)
		f.pending = nil
	}
	complete := completeUTF8Prefix(buf)
	f.text += string(buf[:complete])
	if complete < len(buf) {
		f.pending = append([]byte(nil), buf[complete:]...)
	}
}

// completeUTF8Prefix returns the length of the longest prefix of b that does
// not end in a truncated multi-byte sequence.
func completeUTF8Prefix(b []byte) int {
	for i := len(b); i > 0 && len(b)-i < utf8.UTFMax; i-- {
		if b[i-1] < utf8.RuneSelf {
			return i
		}
		if utf8.RuneStart(b[i-1]) {
			r, size := utf8.DecodeRune(b[i-1:])
			if r == utf8.RuneError && size == 1 {
				// sequence starts here but is cut off
				return i - 1
			}
			return len(b)
		}
	}
	return len(b)
}

// tailOffset returns the byte offset that keeps at most window runes at the
// end of s, or 0 when s fits inside the window entirely.
func tailOffset(s string, window int) int {
	if len(s) <= window {
		// byte length bounds rune count
		return 0
	}
	count := 0
	for i := len(s); i > 0; {
		_, size := utf8.DecodeLastRuneInString(s[:i])
		i -= size
		count++
		if count == window {
			return i
		}
	}
	return 0
}
