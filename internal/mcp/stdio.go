package mcp

import (
	"bufio"
	"bytes"
	"context"
	"io"
)

// maxFrameSize caps one JSON-RPC frame. Base64 payloads never travel inbound,
// so frames stay small; the cap guards against runaway lines.
const maxFrameSize = 10 << 20

// ServeStdio reads one JSON-RPC request per line from r and writes responses
// to w, one per line. Diagnostics must go to stderr: the protocol owns stdout.
func (s *Server) ServeStdio(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFrameSize)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		resp := s.Handle(ctx, line)
		if resp == nil {
			continue
		}
		resp = append(resp, '\n')
		if _, err := w.Write(resp); err != nil {
			return err
		}
	}
	return scanner.Err()
}
