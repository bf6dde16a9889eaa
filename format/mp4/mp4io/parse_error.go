package mp4io

import (
	"errors"
	"fmt"
	"strings"
)

type ParseError struct {
	Debug  string
	Offset int
	prev   *ParseError
}

func (p *ParseError) Error() string {
	s := []string{}
	for err := p; err != nil; err = err.prev {
		s = append(s, fmt.Sprintf("%s:%d", err.Debug, err.Offset))
	}
	return "mp4io: parse error: " + strings.Join(s, ",")
}

// parseErr reports a failure at offset, chaining a previous ParseError so the
// message reads from the innermost field outwards.
func parseErr(debug string, offset int, prev error) error {
	err := &ParseError{Debug: debug, Offset: offset}
	var ppe *ParseError
	if errors.As(prev, &ppe) {
		err.prev = ppe
	}
	return err
}
