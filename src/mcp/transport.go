package mcp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// StreamTransport frames JSON-RPC payloads with Content-Length headers over
// an arbitrary reader/writer pair, the framing MCP stdio servers use.
type StreamTransport struct {
	reader  *bufio.Reader
	writer  io.Writer
	closers []io.Closer
	writeMu sync.Mutex
}

// NewStreamTransport wraps r and w. Closers passed in are closed with the
// transport.
func NewStreamTransport(r io.Reader, w io.Writer, closers ...io.Closer) *StreamTransport {
	return &StreamTransport{
		reader:  bufio.NewReader(r),
		writer:  w,
		closers: closers,
	}
}

func (t *StreamTransport) Send(ctx context.Context, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(payload))

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if _, err := io.WriteString(t.writer, header); err != nil {
		return err
	}
	_, err := t.writer.Write(payload)
	return err
}

func (t *StreamTransport) Receive(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	length, err := t.readContentLength()
	if err != nil {
		return nil, err
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(t.reader, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (t *StreamTransport) Close() error {
	var err error
	for _, closer := range t.closers {
		if e := closer.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}

func (t *StreamTransport) readContentLength() (int, error) {
	length := -1
	for {
		line, err := t.reader.ReadString('\n')
		if err != nil {
			return 0, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		if strings.HasPrefix(strings.ToLower(line), "content-length:") {
			value := strings.TrimSpace(line[len("content-length:"):])
			parsed, err := strconv.Atoi(value)
			if err != nil {
				return 0, fmt.Errorf("mcp: invalid content length: %w", err)
			}
			length = parsed
		}
	}
	if length < 0 {
		return 0, errors.New("mcp: missing Content-Length header")
	}
	return length, nil
}

// StdioConfig describes how to spawn an MCP tool server over stdio.
type StdioConfig struct {
	Command string
	Args    []string
	Dir     string
	Env     []string

	// Stderr receives the server's standard error stream. Defaults to
	// os.Stderr.
	Stderr io.Writer

	Options Options
}

// NewStdioClient starts the configured command and binds its stdin/stdout to
// an MCP session. Initialisation failure stops the process.
func NewStdioClient(ctx context.Context, cfg StdioConfig) (*Client, error) {
	if strings.TrimSpace(cfg.Command) == "" {
		return nil, errors.New("mcp: stdio command is required")
	}

	cmd := exec.CommandContext(ctx, cfg.Command, cfg.Args...)
	cmd.Dir = cfg.Dir
	if len(cfg.Env) > 0 {
		cmd.Env = append(os.Environ(), cfg.Env...)
	}
	if cfg.Stderr != nil {
		cmd.Stderr = cfg.Stderr
	} else {
		cmd.Stderr = os.Stderr
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("mcp: stdout pipe: %w", err)
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("mcp: stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("mcp: start command: %w", err)
	}

	transport := NewStreamTransport(stdout, stdin, stdin, stdout)
	client, err := NewClient(ctx, transport, cfg.Options)
	if err != nil {
		transport.Close()
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, err
	}

	// Close the transport when the process exits to unblock pending reads.
	var once sync.Once
	go func() {
		_ = cmd.Wait()
		once.Do(func() { _ = transport.Close() })
	}()

	return client, nil
}

// pipeEnd is one side of an in-process transport pair.
type pipeEnd struct {
	send chan<- []byte
	recv <-chan []byte

	mu     sync.Mutex
	closed bool
	done   chan struct{}
	peer   chan struct{}
}

// NewPipe returns two connected in-process transports. Used to run a Server
// and a Client inside one process without sockets, mainly in tests and for
// self-hosted tool catalogs.
func NewPipe() (Transport, Transport) {
	aToB := make(chan []byte, 16)
	bToA := make(chan []byte, 16)
	doneA := make(chan struct{})
	doneB := make(chan struct{})

	a := &pipeEnd{send: aToB, recv: bToA, done: doneA, peer: doneB}
	b := &pipeEnd{send: bToA, recv: aToB, done: doneB, peer: doneA}
	return a, b
}

func (p *pipeEnd) Send(ctx context.Context, payload []byte) error {
	msg := make([]byte, len(payload))
	copy(msg, payload)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		return io.ErrClosedPipe
	case <-p.peer:
		return io.ErrClosedPipe
	case p.send <- msg:
		return nil
	}
}

func (p *pipeEnd) Receive(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.done:
		return nil, io.EOF
	case msg := <-p.recv:
		return msg, nil
	case <-p.peer:
		// Drain anything the peer sent before closing.
		select {
		case msg := <-p.recv:
			return msg, nil
		default:
			return nil, io.EOF
		}
	}
}

func (p *pipeEnd) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.done)
	}
	return nil
}
