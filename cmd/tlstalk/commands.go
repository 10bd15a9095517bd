package main

import (
	"bufio"
	"crypto/tls"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/okvist/tlstalk/internal/certgen"
	"github.com/okvist/tlstalk/internal/config"
	"github.com/okvist/tlstalk/internal/discovery"
	"github.com/okvist/tlstalk/internal/exchange"
	"github.com/okvist/tlstalk/internal/logging"
	"github.com/okvist/tlstalk/internal/session"
	"github.com/okvist/tlstalk/internal/wire"
)

// Shared flags
var (
	configPath string
	certPath   string
	keyPath    string
	keyLogPath string
	host       string
	port       int
	logLevel   string
	announce   bool
	rounds     int
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to YAML config file (optional)")
	pf.StringVar(&certPath, "cert", "", "Path to TLS certificate file (optional, will auto-generate if not provided)")
	pf.StringVar(&keyPath, "key", "", "Path to TLS private key file (optional, will auto-generate if not provided)")
	pf.StringVar(&keyLogPath, "keylog", "", "Path to TLS key log file for passive decryption tooling (optional)")
	pf.StringVar(&host, "host", config.DefaultHost, "Listen address")
	pf.IntVar(&port, "port", config.DefaultPort, "Listen port")
	pf.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error; empty = TLSTALK_LOG_LEVEL or silent)")
	pf.BoolVar(&announce, "announce", false, "Advertise the listening endpoint over mDNS")

	driveCmd.Flags().IntVar(&rounds, "rounds", config.DefaultRounds, "Number of demo round-trips before closing")
}

var commandCmd = &cobra.Command{
	Use:   "command",
	Short: "Interactive operator exchange with one peer",
	Long: `Accept one TLS connection and forward operator input lines to the peer,
printing each framed reply.

Two case-insensitive commands end the session: "shutdown" closes it
immediately without sending, "exit" is sent to the peer and the session
closes after its reply.`,
	Example: `  # Wait for a peer on the default port with an auto-generated certificate
  tlstalk command

  # Use provisioned certificate files and record session keys for Wireshark
  tlstalk command --cert server.crt --key server.key --keylog tls_keylog.log`,
	RunE: runCommand,
}

var driveCmd = &cobra.Command{
	Use:   "drive",
	Short: "Drive a fixed demo exchange against one peer",
	Long: `Accept one TLS connection and send the fixed demo request for a bounded
number of rounds, printing each framed response. The final round carries a
Connection: close header, after which the session shuts down cleanly.`,
	Example: `  # Two round-trips (the default), then close
  tlstalk drive

  # Five round-trips on a custom port
  tlstalk drive --port 8443 --rounds 5`,
	RunE: runDrive,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Answer framed requests from one peer",
	Long: `Accept one TLS connection and answer each framed request with the demo
page until the peer sends Connection: close or closes the stream.`,
	Example: `  # Serve on the default port
  tlstalk serve

  # Serve with provisioned certificates
  tlstalk serve --cert server.crt --key server.key --host 0.0.0.0 --port 4433`,
	RunE: runServe,
}

// loadSettings merges the config file with explicitly set flags.
func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	settings, err := config.Load(configPath)
	if err != nil {
		return settings, err
	}

	flags := cmd.Flags()
	if flags.Changed("cert") {
		settings.CertFile = certPath
	}
	if flags.Changed("key") {
		settings.KeyFile = keyPath
	}
	if flags.Changed("keylog") {
		settings.KeyLogFile = keyLogPath
	}
	if flags.Changed("host") {
		settings.Host = host
	}
	if flags.Changed("port") {
		settings.Port = port
	}
	if flags.Changed("log-level") {
		settings.LogLevel = logLevel
	}
	if flags.Changed("announce") {
		settings.Announce = announce
	}
	if flags.Changed("rounds") {
		settings.Rounds = rounds
	}
	return settings, nil
}

// newTLSConfig builds the TLS context from the settings, generating a
// self-signed certificate in memory when no files are provisioned.
func newTLSConfig(settings config.Settings) (*tls.Config, error) {
	if settings.CertFile != "" {
		return session.NewTLSConfig(settings.CertFile, settings.KeyFile, settings.KeyLogFile)
	}

	fmt.Println("[*] No certificate provided, generating a self-signed one")
	cert, err := certgen.GenerateSelfSigned(certgen.DefaultParams(settings.Host))
	if err != nil {
		return nil, fmt.Errorf("failed to generate certificate: %w", err)
	}
	return session.NewTLSConfigFromMemory(cert.CertPEM, cert.KeyPEM, settings.KeyLogFile)
}

// acceptSession performs the shared setup: validate settings, bind, wait for
// the one peer, upgrade to TLS. The returned cleanup releases the listener
// (and the mDNS registration); it is safe to run on every exit path.
//
// A nil session with a nil error means setup failed after binding; the
// diagnostic has been printed and the process should exit normally.
func acceptSession(cmd *cobra.Command) (*session.Session, config.Settings, func(), error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return nil, settings, nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, settings, nil, err
	}
	if err := logging.Initialize(settings.LogLevel); err != nil {
		return nil, settings, nil, err
	}

	tlsConf, err := newTLSConfig(settings)
	if err != nil {
		// Bad or missing key material is fatal before any socket is bound
		return nil, settings, nil, err
	}

	acc, err := session.Listen(settings.Host, settings.Port, tlsConf)
	if err != nil {
		return nil, settings, nil, err
	}

	var announcer *discovery.Announcer
	if settings.Announce {
		announcer, err = discovery.Announce("tlstalk", settings.Port, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[!] mDNS announcement failed: %v\n", err)
		}
	}

	cleanup := func() {
		announcer.Shutdown()
		_ = acc.Close()
		logging.Sync()
	}

	// Route interrupts through session shutdown and listener close so
	// every acquisition is released exactly once
	var active atomic.Pointer[session.Session]
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\n[*] Interrupted")
		if s := active.Load(); s != nil {
			_ = s.Shutdown()
		}
		_ = acc.Close()
	}()

	fmt.Printf("[*] TLS server listening on %s\n", acc.Addr())

	sess, err := acc.AcceptOne()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[!] %v\n", err)
		cleanup()
		return nil, settings, nil, nil
	}
	active.Store(sess)

	fmt.Printf("[*] Incoming TLS connection from %s\n", sess.Peer())
	return sess, settings, cleanup, nil
}

func runCommand(cmd *cobra.Command, args []string) error {
	sess, settings, cleanup, err := acceptSession(cmd)
	if err != nil {
		return err
	}
	if sess == nil {
		return nil
	}
	defer cleanup()

	lineFn, closeInput, err := operatorLineSource()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[!] %v\n", err)
		_ = sess.Shutdown()
		return nil
	}
	defer closeInput()

	loop := exchange.New(sess, exchange.NewCommandProvider(lineFn), exchange.Options{
		MaxChunk: settings.MaxChunk,
		Peer:     sess.Peer().String(),
		OnReply: func(step int, msg *wire.Message) {
			fmt.Printf("[%s]: %s\n", sess.Peer(), msg.Text())
		},
		OnPeerClosed: func() {
			fmt.Println("[*] Peer closed the connection")
		},
	})
	if err := loop.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "[!] %v\n", err)
	}

	fmt.Println("[*] Connection closed")
	return nil
}

func runDrive(cmd *cobra.Command, args []string) error {
	sess, settings, cleanup, err := acceptSession(cmd)
	if err != nil {
		return err
	}
	if sess == nil {
		return nil
	}
	defer cleanup()

	loop := exchange.New(sess, exchange.NewRequestProvider(settings.Host, settings.Rounds), exchange.Options{
		MaxChunk: settings.MaxChunk,
		Peer:     sess.Peer().String(),
		OnReply: func(step int, msg *wire.Message) {
			fmt.Printf("[*] Received response (round %d):\n%s\n", step+1, msg.Text())
		},
		OnPeerClosed: func() {
			fmt.Println("[*] Peer closed the connection")
		},
	})
	if err := loop.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "[!] %v\n", err)
	}

	fmt.Printf("[*] Connection closed after %d round-trip(s)\n", loop.Steps())
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	sess, settings, cleanup, err := acceptSession(cmd)
	if err != nil {
		return err
	}
	if sess == nil {
		return nil
	}
	defer cleanup()

	responder := exchange.NewResponder(sess, exchange.Options{
		MaxChunk: settings.MaxChunk,
		Peer:     sess.Peer().String(),
	})
	if err := responder.Serve(); err != nil {
		fmt.Fprintf(os.Stderr, "[!] %v\n", err)
	}

	fmt.Printf("[*] Connection closed after serving %d request(s)\n", responder.Served())
	return nil
}

// operatorLineSource returns a function producing operator input lines: a
// readline prompt when stdin is a terminal, plain buffered reads otherwise
// (so the command variant stays scriptable).
func operatorLineSource() (exchange.LineFunc, func(), error) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		rl, err := readline.New("Command to send ('exit' to close, 'shutdown' to quit) > ")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open prompt: %w", err)
		}
		fn := func() (string, error) {
			line, err := rl.Readline()
			if err != nil {
				if err == readline.ErrInterrupt {
					return "", io.EOF
				}
				return "", err
			}
			return line, nil
		}
		return fn, func() { _ = rl.Close() }, nil
	}

	scanner := bufio.NewScanner(os.Stdin)
	fn := func() (string, error) {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		return scanner.Text(), nil
	}
	return fn, func() {}, nil
}
