package commands

import (
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"github.com/marmos91/smbwire/cmd/smbwire/cmdutil"
	"github.com/marmos91/smbwire/internal/cli/output"
	"github.com/marmos91/smbwire/pkg/smbenc"
	"github.com/spf13/cobra"
)

var guidDecode bool

var guidCmd = &cobra.Command{
	Use:   "guid [uuid]",
	Short: "Show the on-the-wire layout of a GUID",
	Long: `Show the 16 bytes a GUID occupies in an SMB2 message.

SMB2 stores GUIDs in the historical Microsoft layout: the first three
groups are little-endian, the last two are copied as-is. Without an
argument a random GUID is generated.

Examples:
  # Encode a GUID
  smbwire guid 00112233-4455-6677-8899-aabbccddeeff

  # Decode 16 captured bytes back into a GUID
  smbwire guid --decode 33221100554477668899aabbccddeeff`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGUID,
}

func init() {
	guidCmd.Flags().BoolVar(&guidDecode, "decode", false, "Treat the argument as wire bytes in hex and print the GUID")
}

type guidResult struct {
	GUID string `json:"guid" yaml:"guid"`
	Wire string `json:"wire" yaml:"wire"`
}

func (r guidResult) fields() output.Fields {
	return output.Fields{}.Add("GUID", r.GUID).Add("Wire", r.Wire)
}

func (r guidResult) Headers() []string { return r.fields().Headers() }
func (r guidResult) Rows() [][]string  { return r.fields().Rows() }

func runGUID(cmd *cobra.Command, args []string) error {
	var id uuid.UUID
	var wire []byte

	switch {
	case guidDecode:
		if len(args) == 0 {
			return fmt.Errorf("--decode requires the wire bytes as argument")
		}
		data, err := parseHex(args[0])
		if err != nil {
			return err
		}
		if len(data) != 16 {
			return fmt.Errorf("a GUID is 16 bytes, got %d", len(data))
		}
		if id, err = smbenc.ExtractGUID(data, 0); err != nil {
			return err
		}
		wire = data
	case len(args) == 1:
		parsed, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid GUID %q: %w", args[0], err)
		}
		id = parsed
		wire = smbenc.AppendGUID(nil, id)
	default:
		id = uuid.New()
		wire = smbenc.AppendGUID(nil, id)
	}

	printer, err := cmdutil.Printer(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	return printer.Print(guidResult{GUID: id.String(), Wire: hex.EncodeToString(wire)})
}
