package cli

import (
	"context"

	"github.com/spf13/cobra"

	"datasync/internal/model"
	"datasync/internal/service"
)

// NewGetCommand creates the get command.
func NewGetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get [id]",
		Short: "Fetch one item, or every item when no id is given",
		Example: `  datasync get
  datasync get 3f1c --policy network --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, opts, func(ctx context.Context, svc service.ItemService) (any, error) {
				if len(args) == 0 {
					return svc.List(ctx, opts.policy)
				}
				return svc.Get(ctx, args[0], opts.policy)
			})
		},
	}
}

// PutOptions holds flags for the put command.
type PutOptions struct {
	*RootOptions
	ID   string
	Name string
}

// NewPutCommand creates the put command.
func NewPutCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PutOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "put",
		Short: "Create or replace an item",
		Long: `Create or replace an item.

Without --id the authoritative store assigns one; use a network policy for that.`,
		Example: `  datasync put --name widget --policy network_sync`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, opts.RootOptions, func(ctx context.Context, svc service.ItemService) (any, error) {
				return svc.Save(ctx, model.Item{ID: opts.ID, Name: opts.Name}, opts.policy)
			})
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", "", "item id (optional)")
	cmd.Flags().StringVar(&opts.Name, "name", "", "item name")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, opts, func(ctx context.Context, svc service.ItemService) (any, error) {
				if err := svc.Delete(ctx, args[0], opts.policy); err != nil {
					return nil, err
				}
				return map[string]string{"deleted": args[0]}, nil
			})
		},
	}
}
