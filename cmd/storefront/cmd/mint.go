package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mikeydub/go-storefront/storefront"
)

var mintCmd = &cobra.Command{
	Use:   "mint ID",
	Short: "Mint a catalog item to the configured wallet",
	Long: `Requests a signed mint authorization from the storefront server and submits it to the
collection, paying the item's price from the configured wallet.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", args[0], err)
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		view, err := newView(ctx)
		if err != nil {
			return err
		}

		return runMint(ctx, view, id, os.Stdout)
	},
}

// runMint mints the item and renders the refreshed catalog to out
func runMint(ctx context.Context, view *storefront.View, id int, out io.Writer) error {
	if view.State() == storefront.StateWrongNetwork {
		if err := view.Render(out); err != nil {
			return err
		}
		return storefront.ErrWrongNetwork
	}

	if err := view.Mint(ctx, id); err != nil {
		return err
	}

	return view.Render(out)
}
