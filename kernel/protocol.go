package kernel

import (
	"io"
	"regexp"
	"strings"
)

var (
	promptPattern = regexp.MustCompile(`In\[\d+\]:=`)
	outputPattern = regexp.MustCompile(`Out\[\d+\]//FullForm=`)
)

// replyReader splits the kernel's output stream into prompt-delimited
// blocks. Bytes read past a prompt are kept for the next block.
type replyReader struct {
	r       io.Reader
	pending []byte
	err     error
	chunk   []byte
}

func newReplyReader(r io.Reader) *replyReader {
	return &replyReader{r: r, chunk: make([]byte, 4096)}
}

// next returns everything before the next prompt and consumes the prompt.
// If the stream ends first it returns the partial block with the read error.
func (rr *replyReader) next() (string, error) {
	for {
		if loc := promptPattern.FindIndex(rr.pending); loc != nil {
			block := string(rr.pending[:loc[0]])
			rr.pending = append(rr.pending[:0:0], rr.pending[loc[1]:]...)
			return block, nil
		}
		if rr.err != nil {
			block := string(rr.pending)
			rr.pending = nil
			return block, rr.err
		}
		n, err := rr.r.Read(rr.chunk)
		rr.pending = append(rr.pending, rr.chunk[:n]...)
		rr.err = err
	}
}

// extractPayload pulls the FullForm text out of one reply block. The two
// steps fail separately: a block without an Out marker (ErrNoOutput) and a
// marker without a trailing blank line (ErrUnterminated).
func extractPayload(block string) (string, error) {
	text := strings.ReplaceAll(block, "\r", "")

	loc := outputPattern.FindStringIndex(text)
	if loc == nil {
		return "", &ProtocolError{Block: block, Err: ErrNoOutput}
	}
	rest := text[loc[1]:]

	// The block ends with the blank line the kernel prints before its next
	// prompt. Blank lines inside wrapped output belong to the payload.
	end := strings.LastIndex(rest, "\n\n")
	if end < 0 {
		return "", &ProtocolError{Block: block, Err: ErrUnterminated}
	}

	// Wrapped lines continue with a ">" marker.
	payload := strings.ReplaceAll(rest[:end], ">", "")
	return strings.Join(strings.Fields(payload), " "), nil
}
