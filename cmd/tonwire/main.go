// Package main provides the tonwire CLI: one subcommand per lite-server
// request, plus key generation and a standalone server for testing.
package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/tonwire/tonwire/internal/adnl"
	"github.com/tonwire/tonwire/internal/config"
	"github.com/tonwire/tonwire/internal/liteapi"
	"github.com/tonwire/tonwire/internal/liteclient"
	"github.com/tonwire/tonwire/internal/liteserver"
	"github.com/tonwire/tonwire/internal/logging"
	"github.com/tonwire/tonwire/internal/metrics"
)

// Version is set at build time via ldflags.
var Version = "dev"

type cliFlags struct {
	configPath   string
	globalConfig string
	address      string
	publicKey    string
	index        int
	timeout      time.Duration
	logLevel     string
	logFormat    string
}

var flags cliFlags

func main() {
	rootCmd := &cobra.Command{
		Use:   "tonwire",
		Short: "tonwire - TON lite-server client and server",
		Long: `tonwire speaks the TON lite-server protocol over ADNL-TCP: an
authenticated, encrypted, framed byte stream carrying TL-encoded
queries and answers.

The client side issues any of the lite-server requests against a
server picked from an explicit address/key pair or from a global
network config. The server side dispatches incoming queries to a
handler behind the same wire machinery.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "path to tonwire config file")
	pf.StringVarP(&flags.globalConfig, "global-config", "g", "", "path or URL of the global network config")
	pf.StringVarP(&flags.address, "address", "a", "", "lite server address (host:port)")
	pf.StringVarP(&flags.publicKey, "pubkey", "p", "", "lite server public key (base64 or hex)")
	pf.IntVarP(&flags.index, "index", "i", 0, "lite server index in the global config")
	pf.DurationVarP(&flags.timeout, "timeout", "t", 30*time.Second, "per-request timeout")
	pf.StringVar(&flags.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&flags.logFormat, "log-format", "text", "log format (text, json)")

	rootCmd.AddCommand(queryCommands()...)
	rootCmd.AddCommand(genkeyCmd(), serverCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	return logging.NewLogger(flags.logLevel, flags.logFormat)
}

// resolveTarget determines the (address, key) pair to dial from flags and
// the optional config file.
func resolveTarget(ctx context.Context) (string, adnl.PublicKey, error) {
	address := flags.address
	publicKey := flags.publicKey
	globalConfig := flags.globalConfig
	index := flags.index

	if flags.configPath != "" {
		cfg, err := config.Load(flags.configPath)
		if err != nil {
			return "", adnl.PublicKey{}, err
		}
		if address == "" {
			address = cfg.Client.Address
		}
		if publicKey == "" {
			publicKey = cfg.Client.PublicKey
		}
		if globalConfig == "" {
			globalConfig = cfg.Client.GlobalConfig
		}
		if index == 0 {
			index = cfg.Client.Index
		}
	}

	if address != "" {
		if publicKey == "" {
			return "", adnl.PublicKey{}, fmt.Errorf("--address requires --pubkey")
		}
		key, err := adnl.ParsePublicKey(publicKey)
		if err != nil {
			return "", adnl.PublicKey{}, err
		}
		return address, key, nil
	}

	if globalConfig == "" {
		return "", adnl.PublicKey{}, fmt.Errorf("no server selected: pass --address/--pubkey or --global-config")
	}
	global, err := config.LoadGlobal(ctx, globalConfig)
	if err != nil {
		return "", adnl.PublicKey{}, err
	}
	ls, err := global.Pick(index)
	if err != nil {
		return "", adnl.PublicKey{}, err
	}
	key, err := ls.PublicKey()
	if err != nil {
		return "", adnl.PublicKey{}, err
	}
	return ls.Addr(), key, nil
}

// withClient connects, runs fn with a request-scoped context and tears the
// client down.
func withClient(fn func(ctx context.Context, client *liteclient.Client) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), flags.timeout)
	defer cancel()

	address, key, err := resolveTarget(ctx)
	if err != nil {
		return err
	}
	client, err := liteclient.Connect(ctx, address, key, liteclient.Config{Logger: newLogger()})
	if err != nil {
		return err
	}
	defer client.Close()
	return fn(ctx, client)
}

func genkeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "genkey",
		Short: "Generate a new server private key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := adnl.GeneratePrivateKey()
			if err != nil {
				return err
			}
			fmt.Printf("private key: %s\n", base64.StdEncoding.EncodeToString(key.Seed()))
			fmt.Printf("public key:  %s\n", base64.StdEncoding.EncodeToString(key.Public().Bytes()))
			fmt.Printf("address:     %s\n", key.Public().Address())
			return nil
		},
	}
}

func serverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run a lite server answering time and version queries",
		Long: `Runs a standalone lite server with a canned handler: getTime and
getVersion are answered from the local clock, everything else gets a
typed "not implemented" error. Useful as a protocol test peer.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.configPath == "" {
				return fmt.Errorf("server requires --config with a server key")
			}
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}
			key, err := cfg.ServerKey()
			if err != nil {
				return err
			}

			logger := logging.NewLogger(cfg.Log.Level, cfg.Log.Format)

			var m *metrics.Metrics
			if cfg.Metrics.Enabled {
				reg := prometheus.NewRegistry()
				m = metrics.New(reg)
				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
				go func() {
					if err := http.ListenAndServe(cfg.Metrics.Listen, mux); err != nil {
						logger.Error("metrics listener failed", logging.KeyError, err)
					}
				}()
			}

			ln, err := net.Listen("tcp", cfg.Server.Listen)
			if err != nil {
				return err
			}
			logger.Info("listening",
				logging.KeyAddress, cfg.Server.Listen,
				"public_key", base64.StdEncoding.EncodeToString(key.Public().Bytes()))

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := liteserver.NewServer(key, clockHandler(), liteserver.Config{Logger: logger, Metrics: m})
			return srv.Serve(ctx, ln)
		},
	}
	return cmd
}

// clockHandler answers time and version queries from the local clock.
func clockHandler() liteapi.Service {
	return liteapi.ServiceFunc(func(ctx context.Context, req *liteapi.WrappedRequest) (liteapi.Response, error) {
		switch req.Request.(type) {
		case liteapi.GetTime:
			return liteapi.CurrentTime{Now: uint32(time.Now().Unix())}, nil
		case liteapi.GetVersion:
			return liteapi.Version{Version: 0x101, Now: uint32(time.Now().Unix())}, nil
		default:
			return liteapi.Error{Code: 501, Message: fmt.Sprintf("not implemented: %T", req.Request)}, nil
		}
	})
}
