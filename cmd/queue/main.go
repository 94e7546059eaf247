// Command queue is a command-line client for the Redis-backed durable
// queue implemented in pkg/queue.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nuohe369/redisqueue/pkg/config"
	"github.com/nuohe369/redisqueue/pkg/health"
	"github.com/nuohe369/redisqueue/pkg/logger"
	"github.com/nuohe369/redisqueue/pkg/metrics"
	"github.com/nuohe369/redisqueue/pkg/queue"
	"github.com/nuohe369/redisqueue/pkg/server"
	"github.com/nuohe369/redisqueue/pkg/trace"
)

var log = logger.NewSystem("queue-cli")

var (
	dsn         string
	configPath  string
	secretKey   string
	body        string
	headersJSON string
	delay       time.Duration
	listenAddr  string
)

var rootCmd = &cobra.Command{
	Use:   "queue",
	Short: "Redis-backed durable queue client",
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create the consumer group and verify group safety",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := openConnection(cmd.Context())
		if err != nil {
			return err
		}
		defer conn.Close()
		return conn.Setup(cmd.Context())
	},
}

var produceCmd = &cobra.Command{
	Use:   "produce",
	Short: "Publish a message, optionally delayed",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := openConnection(cmd.Context())
		if err != nil {
			return err
		}
		defer conn.Close()

		headers, err := parseHeaders(headersJSON)
		if err != nil {
			return err
		}

		id, err := conn.Add(cmd.Context(), body, headers, delay.Milliseconds())
		if err != nil {
			return err
		}
		fmt.Println(id)
		return nil
	},
}

var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Poll for messages and acknowledge them until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := openConnection(cmd.Context())
		if err != nil {
			return err
		}
		defer conn.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return consumeLoop(ctx, conn, func(id string, fields map[string]string) error {
			data, _ := json.Marshal(fields)
			fmt.Printf("%s %s\n", id, data)
			return nil
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the approximate number of undelivered messages",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := openConnection(cmd.Context())
		if err != nil {
			return err
		}
		defer conn.Close()

		n, err := conn.GetMessageCount(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a consume loop in the background behind a health/metrics HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := openConnection(cmd.Context())
		if err != nil {
			return err
		}
		defer conn.Close()

		metrics.Init(metrics.Config{Enabled: true, Path: "/metrics"})
		health.Register(health.NewChecker("queue", func(ctx context.Context) health.CheckResult {
			if _, err := conn.GetMessageCount(ctx); err != nil {
				return health.CheckResult{Status: health.StatusDown, Message: err.Error()}
			}
			return health.CheckResult{Status: health.StatusUp}
		}))

		srv := server.New()
		app := srv.App()
		app.Use(metrics.Middleware())
		if trace.Enabled() {
			app.Use(trace.FiberMiddleware())
		}
		app.Get("/metrics", metrics.Handler())
		health.RegisterFiberRoutes(app, "/healthz")

		if err := srv.Start(listenAddr); err != nil {
			return err
		}
		log.Info("serving on %s", listenAddr)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			errCh <- consumeLoop(ctx, conn, func(id string, fields map[string]string) error {
				log.Info("consumed message %s", id)
				return nil
			})
		}()

		select {
		case <-ctx.Done():
		case err := <-errCh:
			if err != nil {
				log.Error("consume loop exited: %v", err)
			}
		}
		return srv.Stop()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "Queue DSN, e.g. predis://localhost:6379?stream=messages&group=g")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML config file with a [queue] section (overridden by --dsn)")
	rootCmd.PersistentFlags().StringVarP(&secretKey, "key", "k", "", "Configuration decryption key")

	produceCmd.Flags().StringVar(&body, "body", "", "Message body")
	produceCmd.Flags().StringVar(&headersJSON, "headers", "", "Message headers as a JSON object")
	produceCmd.Flags().DurationVar(&delay, "delay", 0, "Delivery delay, e.g. 300ms")
	produceCmd.MarkFlagRequired("body")

	serveCmd.Flags().StringVarP(&listenAddr, "addr", "a", ":9100", "HTTP listen address for /healthz and /metrics")

	rootCmd.AddCommand(setupCmd, produceCmd, consumeCmd, statsCmd, serveCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// queueFileConfig mirrors the [queue] section of a TOML config file.
type queueFileConfig struct {
	Queue struct {
		DSN string `toml:"dsn"`

		Stream            string `toml:"stream"`
		Group             string `toml:"group"`
		Consumer          string `toml:"consumer"`
		Addr              string `toml:"addr"`
		Password          string `toml:"password"`
		DB                int    `toml:"db"`
		AutoSetup         bool   `toml:"auto_setup"`
		DeleteAfterAck    bool   `toml:"delete_after_ack"`
		DeleteAfterReject bool   `toml:"delete_after_reject"`
		StreamMaxEntries  int64  `toml:"stream_max_entries"`
	} `toml:"queue"`
	Trace   trace.Config   `toml:"trace"`
	Metrics metrics.Config `toml:"metrics"`
}

// openConnection resolves --dsn or --config into an open Connection.
func openConnection(ctx context.Context) (*queue.Connection, error) {
	if dsn != "" {
		return queue.OpenDSN(ctx, dsn)
	}
	if configPath == "" {
		return nil, fmt.Errorf("one of --dsn or --config is required")
	}

	if secretKey != "" {
		config.SetDecryptKey(secretKey)
	}
	var fc queueFileConfig
	if err := config.Load(configPath, &fc); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if fc.Trace.Endpoint != "" {
		if _, err := trace.Init(fc.Trace); err != nil {
			log.Warn("trace init failed: %v", err)
		}
	}

	if fc.Queue.DSN != "" {
		return queue.OpenDSN(ctx, fc.Queue.DSN)
	}

	opts, err := queue.NewOptions(func(o *queue.Options) {
		o.Topology.Addr = fc.Queue.Addr
		o.Topology.Password = fc.Queue.Password
		o.Topology.DB = fc.Queue.DB
		if fc.Queue.Stream != "" {
			o.Stream = fc.Queue.Stream
		}
		if fc.Queue.Group != "" {
			o.Group = fc.Queue.Group
		}
		if fc.Queue.Consumer != "" {
			o.Consumer = fc.Queue.Consumer
		}
		o.AutoSetup = fc.Queue.AutoSetup
		o.DeleteAfterAck = fc.Queue.DeleteAfterAck
		o.DeleteAfterReject = fc.Queue.DeleteAfterReject
		o.StreamMaxEntries = fc.Queue.StreamMaxEntries
	})
	if err != nil {
		return nil, err
	}
	return queue.Open(ctx, opts)
}

func parseHeaders(raw string) (map[string]string, error) {
	if raw == "" {
		return nil, nil
	}
	var headers map[string]string
	if err := json.Unmarshal([]byte(raw), &headers); err != nil {
		return nil, fmt.Errorf("invalid --headers JSON: %w", err)
	}
	return headers, nil
}

// consumeLoop polls for messages until ctx is cancelled, invoking handle
// for each one and acknowledging it on success, rejecting it on failure.
func consumeLoop(ctx context.Context, conn *queue.Connection, handle func(id string, fields map[string]string) error) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		msg, err := conn.Get(ctx)
		if err != nil {
			return err
		}
		if msg == nil {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(200 * time.Millisecond):
			}
			continue
		}

		if err := handle(msg.ID, msg.Data[msg.ID]); err != nil {
			log.Error("handler failed for %s: %v", msg.ID, err)
			if rejectErr := conn.Reject(ctx, msg.ID); rejectErr != nil {
				log.Error("reject failed for %s: %v", msg.ID, rejectErr)
			}
			continue
		}
		if err := conn.Ack(ctx, msg.ID); err != nil {
			log.Error("ack failed for %s: %v", msg.ID, err)
		}
	}
}
