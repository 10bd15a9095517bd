// Tlstalk conducts a single framed request/response exchange over one
// TLS-secured TCP connection.
//
// The process always takes the TLS server role: it binds, waits for exactly
// one peer, exchanges length-delimited textual messages, and performs an
// orderly close_notify shutdown. Three exchange variants are available as
// subcommands: an interactive operator loop (command), a fixed demo driver
// (drive), and a framed responder (serve).
//
// Usage:
//
//	tlstalk command [flags]
//	tlstalk drive [flags]
//	tlstalk serve [flags]
//
// See 'tlstalk --help' for available options.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okvist/tlstalk/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tlstalk",
	Short: "Single-session framed TLS exchange tool",
	Long: `Tlstalk accepts exactly one TLS connection and conducts a framed
request/response conversation over it.

Messages are HTTP-style: a CRLF-delimited header block plus a body sized by
a Content-Length header. The session ends with a proper TLS close_notify
exchange rather than a transport reset.

If no certificate is provided, a self-signed one is generated in memory for
the run.`,
	Version: version.Version,
}

func init() {
	rootCmd.AddCommand(commandCmd)
	rootCmd.AddCommand(driveCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tlstalk %s\n", version.Full())
	},
}
