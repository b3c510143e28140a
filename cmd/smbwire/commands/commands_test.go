//go:build unix

package commands

import (
	"bytes"
	"encoding/json"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jcmturner/gofork/encoding/asn1"
	gokrbspnego "github.com/jcmturner/gokrb5/v8/spnego"
	"github.com/marmos91/smbwire/internal/negotiate"
	"github.com/marmos91/smbwire/internal/spnego"
	"github.com/marmos91/smbwire/pkg/smbenc"
	"github.com/marmos91/smbwire/pkg/smbstream"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag of the command tree to its default so that
// consecutive executions of the shared root command do not leak state.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	root := GetRootCmd()
	resetFlags(root)
	t.Cleanup(func() { resetFlags(root) })

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)

	out, err = execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "smbwire "+Version)
	assert.Contains(t, out, "Go version:")
}

func TestGUID(t *testing.T) {
	t.Run("Encode", func(t *testing.T) {
		out, err := execute(t, "guid", "00112233-4455-6677-8899-aabbccddeeff", "-o", "json")
		require.NoError(t, err)

		var res guidResult
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		assert.Equal(t, "33221100554477668899aabbccddeeff", res.Wire)
	})

	t.Run("Decode", func(t *testing.T) {
		out, err := execute(t, "guid", "--decode", "33 22 11 00 55 44 77 66 88 99 aa bb cc dd ee ff", "-o", "yaml")
		require.NoError(t, err)
		assert.Contains(t, out, "guid: 00112233-4455-6677-8899-aabbccddeeff")
	})

	t.Run("RandomRoundTrips", func(t *testing.T) {
		out, err := execute(t, "guid", "-o", "json")
		require.NoError(t, err)

		var res guidResult
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		id := uuid.MustParse(res.GUID)
		assert.Equal(t, smbenc.AppendGUID(nil, id), mustHex(t, res.Wire))
	})

	t.Run("Table", func(t *testing.T) {
		out, err := execute(t, "guid", "00112233-4455-6677-8899-aabbccddeeff")
		require.NoError(t, err)
		assert.Contains(t, out, "FIELD")
		assert.Contains(t, out, "33221100554477668899aabbccddeeff")
	})

	t.Run("Invalid", func(t *testing.T) {
		_, err := execute(t, "guid", "not-a-guid")
		assert.Error(t, err)

		_, err = execute(t, "guid", "--decode", "0011")
		assert.ErrorContains(t, err, "16 bytes")
	})
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := parseHex(s)
	require.NoError(t, err)
	return b
}

func TestErrno(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want errnoResult
	}{
		{
			name: "Success",
			args: []string{"errno", "0"},
			want: errnoResult{Result: 0, Success: true},
		},
		{
			name: "KnownErrno",
			args: []string{"errno", "--", "-2"},
			want: errnoResult{Result: -2, Known: true, Code: 2, Name: "ENOENT", Message: "no such file or directory"},
		},
		{
			name: "UnknownFallsBack",
			args: []string{"errno", "--default", "EPIPE", "--", "-999999"},
			want: errnoResult{Result: -999999, Code: 32, Name: "EPIPE", Message: "broken pipe"},
		},
		{
			name: "Description",
			args: []string{"errno", "--description", "read failed", "--", "-5"},
			want: errnoResult{Result: -5, Known: true, Code: 5, Name: "EIO", Message: "input/output error: Error code 5: read failed"},
		},
		{
			name: "MinInt64",
			args: []string{"errno", "--", "-9223372036854775808"},
			want: errnoResult{Result: -9223372036854775808, Code: 5, Name: "EIO", Message: "input/output error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Flags must precede "--".
			args := append([]string{tt.args[0], "-o", "json"}, tt.args[1:]...)
			out, err := execute(t, args...)
			require.NoError(t, err)

			var got errnoResult
			require.NoError(t, json.Unmarshal([]byte(out), &got))
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("BadInput", func(t *testing.T) {
		_, err := execute(t, "errno", "abc")
		assert.Error(t, err)

		_, err = execute(t, "errno", "--default", "ENOTREAL", "--", "-1")
		assert.ErrorContains(t, err, "--default")
	})
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want decodeResult
	}{
		{
			name: "Uint16",
			args: []string{"decode", "41 00 01 00", "--width", "16"},
			want: decodeResult{Width: 16, Value: "65", Hex: "0x0041"},
		},
		{
			name: "UnalignedUint32",
			args: []string{"decode", "ff78563412", "--offset", "1", "--width", "32"},
			want: decodeResult{Offset: 1, Width: 32, Value: "305419896", Hex: "0x12345678"},
		},
		{
			name: "Signed",
			args: []string{"decode", "0x00000000feffffff", "--offset", "4", "--width", "32", "--signed"},
			want: decodeResult{Offset: 4, Width: 32, Signed: true, Value: "-2", Hex: "0xFFFFFFFE"},
		},
		{
			name: "Uint64",
			args: []string{"decode", "01:00:00:00:00:00:00:80", "--width", "64"},
			want: decodeResult{Width: 64, Value: "9223372036854775809", Hex: "0x8000000000000001"},
		},
		{
			name: "Int8",
			args: []string{"decode", "80", "--width", "8", "--signed"},
			want: decodeResult{Width: 8, Signed: true, Value: "-128", Hex: "0x80"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, append(tt.args, "-o", "json")...)
			require.NoError(t, err)

			var got decodeResult
			require.NoError(t, json.Unmarshal([]byte(out), &got))
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("OutOfBounds", func(t *testing.T) {
		_, err := execute(t, "decode", "0102", "--offset", "1", "--width", "16")
		assert.ErrorIs(t, err, smbenc.ErrInsufficientData)
	})

	t.Run("BadWidth", func(t *testing.T) {
		_, err := execute(t, "decode", "0102", "--width", "12")
		assert.ErrorContains(t, err, "invalid width")
	})

	t.Run("BadHex", func(t *testing.T) {
		_, err := execute(t, "decode", "zz")
		assert.ErrorContains(t, err, "invalid hex")
	})
}

// serveNegotiate accepts connections on a loopback listener and answers
// every NEGOTIATE request with dialect 3.0.2.
func serveNegotiate(t *testing.T, serverGUID uuid.UUID) string {
	t.Helper()

	tok := gokrbspnego.SPNEGOToken{
		Init: true,
		NegTokenInit: gokrbspnego.NegTokenInit{
			MechTypes: []asn1.ObjectIdentifier{spnego.OIDMSKerberosV5, spnego.OIDNTLMSSP},
		},
	}
	blob, err := tok.Marshal()
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn) {
				defer func() { _ = conn.Close() }()
				s := smbstream.NewConn(conn)
				msg, err := negotiate.ReadFrame(s, negotiate.DefaultMaxResponseSize)
				if err != nil {
					return
				}
				req, err := negotiate.ParseRequest(msg)
				if err != nil {
					return
				}
				_ = negotiate.WriteFrame(s, negotiate.EncodeResponse(&negotiate.Response{
					Header:          negotiate.Header{MessageID: req.MessageID, Credits: 1},
					SecurityMode:    negotiate.SigningEnabled,
					Dialect:         negotiate.Dialect0302,
					ServerGUID:      serverGUID,
					Capabilities:    negotiate.CapLargeMTU | negotiate.CapLeasing,
					MaxTransactSize: 8 << 20,
					MaxReadSize:     8 << 20,
					MaxWriteSize:    8 << 20,
					SystemTime:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
					SecurityBlob:    blob,
				}))
			}(conn)
		}
	}()
	return ln.Addr().String()
}

func TestProbe(t *testing.T) {
	serverGUID := uuid.MustParse("0f0e0d0c-0b0a-0908-0706-050403020100")
	addr := serveNegotiate(t, serverGUID)

	t.Run("JSON", func(t *testing.T) {
		out, err := execute(t, "probe", addr, "--timeout", "5s", "--max-response-size", "64KiB", "-o", "json")
		require.NoError(t, err)

		var res probeResult
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		assert.Equal(t, addr, res.Address)
		assert.Equal(t, "3.0.2", res.Dialect)
		assert.Equal(t, serverGUID.String(), res.ServerGUID)
		assert.Equal(t, []string{"LEASING", "LARGE_MTU"}, res.Capabilities)
		assert.Equal(t, uint32(8<<20), res.MaxReadSize)
		assert.Equal(t, []string{"MS-KRB5", "NTLMSSP"}, res.AuthMechanisms)
	})

	t.Run("Table", func(t *testing.T) {
		out, err := execute(t, "probe", addr, "--dialects", "3.0,3.0.2", "--signing-required")
		require.NoError(t, err)
		assert.Contains(t, out, "Server GUID")
		assert.Contains(t, out, serverGUID.String())
		assert.Contains(t, out, "LEASING, LARGE_MTU")
		assert.Contains(t, out, "MS-KRB5, NTLMSSP")
	})

	t.Run("RepeatedWithMetrics", func(t *testing.T) {
		out, err := execute(t, "probe", addr,
			"--count", "2", "--interval", "10ms",
			"--metrics", "--metrics-port", "0",
			"-o", "yaml")
		require.NoError(t, err)
		assert.Equal(t, 2, strings.Count(out, "dialect: 3.0.2"))
	})

	t.Run("DialectNotOffered", func(t *testing.T) {
		_, err := execute(t, "probe", addr, "--dialects", "2.1")
		assert.ErrorIs(t, err, negotiate.ErrMalformed)
	})

	t.Run("InvalidFlags", func(t *testing.T) {
		_, err := execute(t, "probe", addr, "--dialects", "3.1.1")
		assert.Error(t, err)

		_, err = execute(t, "probe", addr, "--client-guid", "nope")
		assert.ErrorContains(t, err, "--client-guid")

		_, err = execute(t, "probe", addr, "--count", "-1")
		assert.Error(t, err)

		_, err = execute(t, "probe", addr, "--max-response-size", "huge")
		assert.ErrorContains(t, err, "--max-response-size")

		_, err = execute(t, "probe", addr, "--max-response-size", "32")
		assert.ErrorContains(t, err, "MaxResponseSize")
	})

	t.Run("ConnectionRefused", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		closed := ln.Addr().String()
		require.NoError(t, ln.Close())

		_, err = execute(t, "probe", closed, "--timeout", "2s")
		assert.ErrorContains(t, err, "dial")
	})
}

func TestCompletion(t *testing.T) {
	out, err := execute(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "smbwire")

	_, err = execute(t, "completion", "tcsh")
	assert.Error(t, err)
}
