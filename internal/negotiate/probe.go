package negotiate

import (
	"context"
	"fmt"
	"net"
	"slices"
	"strconv"
	"time"

	"github.com/marmos91/smbwire/internal/logger"
	"github.com/marmos91/smbwire/internal/telemetry"
	"github.com/marmos91/smbwire/pkg/smbstream"
	"go.opentelemetry.io/otel/trace"
)

// DefaultPort is the SMB direct-TCP port.
const DefaultPort = 445

// DefaultMaxResponseSize bounds the NEGOTIATE response read from the server.
const DefaultMaxResponseSize = 64 * 1024

// Metrics observes completed probes. A nil Metrics disables collection.
type Metrics interface {
	ObserveProbe(dialect Dialect, duration time.Duration, err error)
}

// Dialer opens the transport connection. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Options tune a probe. The zero value is usable.
type Options struct {
	// Timeout bounds dial, write and read together. 0 means only ctx applies.
	Timeout time.Duration

	// MaxResponseSize caps the accepted response frame (default 64 KiB).
	MaxResponseSize int

	Dialer        Dialer
	StreamMetrics smbstream.Metrics
	Metrics       Metrics
}

// WithDefaultPort appends port to addr when addr carries none.
func WithDefaultPort(addr string, port int) string {
	if _, _, err := net.SplitHostPort(addr); err == nil {
		return addr
	}
	return net.JoinHostPort(addr, strconv.Itoa(port))
}

// Probe dials addr over TCP and performs a NEGOTIATE exchange.
func Probe(ctx context.Context, addr string, req Request, opts Options) (resp *Response, err error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanProbe, trace.WithAttributes(telemetry.ServerAddress(addr)))
	defer func() {
		telemetry.RecordError(ctx, err)
		span.End()
	}()

	start := time.Now()
	defer func() {
		if opts.Metrics != nil {
			var d Dialect
			if resp != nil {
				d = resp.Dialect
			}
			opts.Metrics.ObserveProbe(d, time.Since(start), err)
		}
	}()

	dialer := opts.Dialer
	if dialer == nil {
		dialer = &net.Dialer{}
	}

	dialCtx, dialSpan := telemetry.StartSpan(ctx, telemetry.SpanDial)
	conn, err := dialer.DialContext(dialCtx, "tcp", addr)
	telemetry.RecordError(dialCtx, err)
	dialSpan.End()
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	defer func() { _ = conn.Close() }()

	logger.Debug("Connected", logger.Address(addr), "remote", conn.RemoteAddr().String())
	telemetry.SetAttributes(ctx, telemetry.NetworkPeer(conn.RemoteAddr().String()))

	return Exchange(ctx, conn, req, opts)
}

// Exchange sends a NEGOTIATE request on conn and reads the response. The
// context deadline is applied to conn; cancelling ctx aborts blocked I/O.
func Exchange(ctx context.Context, conn net.Conn, req Request, opts Options) (*Response, error) {
	if len(req.Dialects) == 0 {
		req.Dialects = DefaultDialects
	}
	maxSize := opts.MaxResponseSize
	if maxSize <= 0 {
		maxSize = DefaultMaxResponseSize
	}

	frame, err := BuildRequest(req)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSMBSpan(ctx, "NEGOTIATE", req.MessageID, telemetry.SMBClientGUID(req.ClientGUID))
	defer span.End()

	ctx = logger.WithContext(ctx, &logger.LogContext{
		TraceID:   telemetry.TraceID(ctx),
		SpanID:    telemetry.SpanID(ctx),
		Address:   conn.RemoteAddr().String(),
		Command:   "NEGOTIATE",
		MessageID: req.MessageID,
	})

	if dl, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(dl); err != nil {
			return nil, fmt.Errorf("set deadline: %w", err)
		}
	}
	stop := context.AfterFunc(ctx, func() {
		// Unblock pending I/O; the error surfaces as ETIMEDOUT.
		_ = conn.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	stream := smbstream.NewConn(conn, smbstream.WithMetrics(opts.StreamMetrics))

	written, err := smbstream.WriteAll(stream, frame)
	if err != nil {
		return nil, exchangeError(ctx, "send NEGOTIATE", err)
	}
	logger.DebugCtx(ctx, "NEGOTIATE sent", logger.KeyBytesWritten, written, "dialects", len(req.Dialects))
	telemetry.AddEvent(ctx, "request.sent", telemetry.BytesWritten(written))

	msg, err := ReadFrame(stream, maxSize)
	if err != nil {
		return nil, exchangeError(ctx, "receive NEGOTIATE response", err)
	}
	telemetry.AddEvent(ctx, "response.received", telemetry.BytesRead(len(msg)))

	resp, err := ParseResponse(msg)
	if resp != nil {
		telemetry.SetAttributes(ctx, telemetry.SMBStatus(uint32(resp.Header.Status)))
	}
	if err != nil {
		return resp, exchangeError(ctx, "parse NEGOTIATE response", err)
	}
	if resp.Header.MessageID != req.MessageID {
		return nil, exchangeError(ctx, "parse NEGOTIATE response",
			fmt.Errorf("%w: message id %d, sent %d", ErrMalformed, resp.Header.MessageID, req.MessageID))
	}
	if resp.Dialect != DialectWild && !slices.Contains(req.Dialects, resp.Dialect) {
		return resp, exchangeError(ctx, "parse NEGOTIATE response",
			fmt.Errorf("%w: server selected dialect %s which was not offered", ErrMalformed, resp.Dialect))
	}

	telemetry.SetAttributes(ctx,
		telemetry.SMBDialect(uint16(resp.Dialect)),
		telemetry.SMBServerGUID(resp.ServerGUID),
	)
	logger.DebugCtx(ctx, "NEGOTIATE complete",
		logger.KeyBytesRead, len(msg),
		logger.Dialect(uint16(resp.Dialect)),
		logger.KeyServerGUID, resp.ServerGUID.String(),
	)
	return resp, nil
}

// exchangeError records err on the active span and prefers the context
// error when the exchange was cut short by cancellation.
func exchangeError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = fmt.Errorf("%w: %w", ctxErr, err)
	}
	err = fmt.Errorf("%s: %w", op, err)
	telemetry.RecordError(ctx, err)
	logger.DebugCtx(ctx, "NEGOTIATE failed", logger.Err(err))
	return err
}
