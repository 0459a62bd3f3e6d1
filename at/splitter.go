package at

import (
	"bufio"
	"bytes"
)

// CommandSplitter tokenizes the DTE side of a line into command lines. It
// uses the signature of bufio.SplitFunc so it can be used with
// bufio.Scanner.
//
// Commands end with CR. A LF following the CR, as sent by terminals that
// end lines with CRLF, is skipped. The returned token excludes the
// terminator and keeps the "AT" prefix.
//
// When atEOF is true any remaining data is returned as the final token.
func CommandSplitter(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	skip := 0
	for skip < len(data) && data[skip] == LF {
		skip++
	}
	if skip > 0 {
		return skip, nil, nil
	}

	if i := bytes.IndexByte(data, CR); i >= 0 {
		return i + 1, data[0:i], nil
	}

	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

var _ bufio.SplitFunc = CommandSplitter
