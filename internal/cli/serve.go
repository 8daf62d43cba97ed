package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/roach88/mirror/internal/inspect"
	"github.com/roach88/mirror/internal/ir"
)

// ServeOptions holds flags for the serve and mcp commands.
type ServeOptions struct {
	*RootOptions
	Addr string
	DB   string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve <world>",
		Short: "Serve the inspector over HTTP",
		Long: `Serve the inspector over HTTP until interrupted.

Routes:
  GET  /health
  GET  /values
  GET  /reflect/{ref}?depth=N
  GET  /descendant/{ref}
  GET  /ancestors/{ref}
  GET  /quicklook/{ref}
  GET  /dump/{ref}?max_depth=N&max_items=N
  POST /snapshots/{ref}?depth=N   (requires --db)
  GET  /snapshots/{ref}           (requires --db)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd, args[0], opts.DB)
			if err != nil {
				return err
			}
			defer s.Close()

			ln, err := net.Listen("tcp", opts.Addr)
			if err != nil {
				s.out.Error(ErrCodeServe, err.Error(), map[string]string{"addr": opts.Addr})
				return WrapExitError(ExitCommandError, "listen", err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.ErrOrStderr(), "serving %s on http://%s\n", s.in.World().Name, ln.Addr())
			return serveHTTP(ctx, ln, s.in.Handler())
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&opts.DB, "db", "", "snapshot database path (enables /snapshots)")

	return cmd
}

// serveHTTP serves h on ln until ctx is done, then shuts down gracefully.
func serveHTTP(ctx context.Context, ln net.Listener, h http.Handler) error {
	srv := &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// NewMCPCommand creates the mcp command.
func NewMCPCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "mcp <world>",
		Short: "Serve the inspector as an MCP server on stdio",
		Long: `Run a Model Context Protocol server on stdin/stdout exposing the
mirror_values, mirror_reflect, mirror_descendant, mirror_ancestors,
mirror_dump and mirror_record tools. Logs go to stderr.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd, args[0], opts.DB)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			srv := inspect.NewMCPServer(s.in, ir.EngineVersion)
			if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
				// stdout belongs to the transport
				fmt.Fprintf(cmd.ErrOrStderr(), "Error [%s]: %v\n", ErrCodeServe, err)
				return WrapExitError(ExitCommandError, "mcp server", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "snapshot database path (enables mirror_record)")

	return cmd
}
