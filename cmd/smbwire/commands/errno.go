package commands

import (
	"fmt"
	"strconv"
	"syscall"

	"github.com/marmos91/smbwire/cmd/smbwire/cmdutil"
	"github.com/marmos91/smbwire/internal/cli/output"
	"github.com/marmos91/smbwire/pkg/posixerr"
	"github.com/spf13/cobra"
)

var (
	errnoDefault     string
	errnoDescription string
)

var errnoCmd = &cobra.Command{
	Use:   "errno <result>",
	Short: "Translate a negative -errno result into an error",
	Long: `Translate a raw transport result using the -errno convention.

Non-negative results are success. A negative result names the system
error number; numbers the host does not recognize fall back to --default.
Use -- before negative numbers so they are not parsed as flags.

Examples:
  smbwire errno -- -2
  smbwire errno --default EPIPE --description "read failed" -- -999999`,
	Args: cobra.ExactArgs(1),
	RunE: runErrno,
}

func init() {
	errnoCmd.Flags().StringVar(&errnoDefault, "default", "EIO", "Fallback error (name or number) for unrecognized results")
	errnoCmd.Flags().StringVar(&errnoDescription, "description", "", "Diagnostic description attached to the error")
}

type errnoResult struct {
	Result  int64  `json:"result" yaml:"result"`
	Success bool   `json:"success" yaml:"success"`
	Known   bool   `json:"known" yaml:"known"`
	Code    int    `json:"code,omitempty" yaml:"code,omitempty"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

func (r errnoResult) fields() output.Fields {
	f := output.Fields{}.
		Add("Result", strconv.FormatInt(r.Result, 10)).
		Add("Success", cmdutil.BoolToYesNo(r.Success))
	if r.Success {
		return f
	}
	return f.Add("Known", cmdutil.BoolToYesNo(r.Known)).
		Add("Code", strconv.Itoa(r.Code)).
		Add("Name", r.Name).
		Add("Message", r.Message)
}

func (r errnoResult) Headers() []string { return r.fields().Headers() }
func (r errnoResult) Rows() [][]string  { return r.fields().Rows() }

func runErrno(cmd *cobra.Command, args []string) error {
	result, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid result %q: %w", args[0], err)
	}

	defaultCode, err := posixerr.ParseCode(errnoDefault)
	if err != nil {
		return fmt.Errorf("invalid --default: %w", err)
	}

	res := translateErrno(result, errnoDescription, cmd.Flags().Changed("description"), defaultCode)

	printer, err := cmdutil.Printer(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	return printer.Print(res)
}

func translateErrno(result int64, description string, hasDescription bool, defaultCode syscall.Errno) errnoResult {
	var err error
	if hasDescription {
		err = posixerr.CheckWithDescription(result, description, defaultCode)
	} else {
		err = posixerr.Check(result, defaultCode)
	}

	res := errnoResult{Result: result, Success: err == nil}
	if err == nil {
		return res
	}

	code, _ := posixerr.CodeOf(err)
	res.Known = posixerr.Known(-result)
	res.Code = int(code)
	res.Name = posixerr.Name(code)
	res.Message = err.Error()
	return res
}
