package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"datasync/internal/apperr"
	"datasync/internal/provider"
	"datasync/internal/service"
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// ServiceFunc opens the item service for one command run. The returned
// function releases whatever was opened.
type ServiceFunc func(ctx context.Context) (service.ItemService, func() error, error)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format string
	Policy string

	policy provider.Policy
	open   ServiceFunc
}

// NewRootCommand creates the root command of the datasync CLI.
// defaultPolicy is used when --policy is not given.
func NewRootCommand(open ServiceFunc, defaultPolicy provider.Policy) *cobra.Command {
	opts := &RootOptions{open: open}

	cmd := &cobra.Command{
		Use:   "datasync",
		Short: "Read and write items through the sync provider",
		Long: `Read and write items through the sync provider.

Every command takes a --policy selecting which store answers:
  network       the authoritative object store only
  network_sync  the object store, writing results behind into the local store
  storage       the local store only
  storage_sync  the local store, falling back to the object store for stale content`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			p, err := provider.ParsePolicy(opts.Policy)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid --policy", err)
			}
			opts.policy = p
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().StringVarP(&opts.Policy, "policy", "p", defaultPolicy.String(), "sync policy (network|network_sync|storage|storage_sync)")

	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewPutCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))

	return cmd
}

// withService opens the service, runs fn and renders its outcome.
func withService(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, svc service.ItemService) (any, error)) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	svc, closeFn, err := opts.open(ctx)
	if err != nil {
		_ = out.Error("SETUP", err.Error())
		return WrapExitError(ExitCommandError, "open item service", err)
	}
	defer func() {
		if closeFn != nil {
			_ = closeFn()
		}
	}()

	data, err := fn(ctx, svc)
	if err != nil {
		code, exit := classify(err)
		_ = out.Error(code, err.Error())
		return WrapExitError(exit, code, err)
	}
	return out.Success(data)
}

// classify maps a service error to an output code and an exit code.
func classify(err error) (string, int) {
	switch {
	case apperr.IsKind(err, apperr.KindNotFound):
		return "NOT_FOUND", ExitFailure
	case errors.Is(err, service.ErrIDRequired), errors.Is(err, service.ErrInvalidID), errors.Is(err, service.ErrNameRequired):
		return "INVALID_INPUT", ExitCommandError
	case errors.Is(err, context.DeadlineExceeded):
		return "TIMEOUT", ExitFailure
	}
	if kind := apperr.KindOf(err); kind != "" {
		return string(kind), ExitFailure
	}
	return "INTERNAL_ERROR", ExitFailure
}
