package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/valuechain/pkg/errors"
	"github.com/matzehuels/valuechain/pkg/store"
)

// pushCommand creates the push command, which saves the working document
// to the configured store.
func (c *CLI) pushCommand() *cobra.Command {
	var backend string

	cmd := &cobra.Command{
		Use:   "push <doc-id>",
		Short: "Save the document to the configured store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]
			if err := errors.ValidateDocumentID(id); err != nil {
				return err
			}

			ed, err := c.openEditor(ctx)
			if err != nil {
				return err
			}

			done := fmt.Sprintf("Pushed %s (%d nodes, %d edges)", id, ed.Graph().NodeCount(), ed.Graph().EdgeCount())
			return c.withStore(ctx, backend, "Pushing "+id, done, func(st store.Store) error {
				return ed.Save(ctx, st, id)
			})
		},
	}

	cmd.Flags().StringVar(&backend, "store", "", "store backend (default from config)")
	return cmd
}

// pullCommand creates the pull command, which replaces the working
// document with one from the configured store.
func (c *CLI) pullCommand() *cobra.Command {
	var backend string

	cmd := &cobra.Command{
		Use:   "pull <doc-id>",
		Short: "Replace the document with one from the configured store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]
			if err := errors.ValidateDocumentID(id); err != nil {
				return err
			}

			ed, err := c.openEditor(ctx)
			if err != nil {
				return err
			}

			err = c.withStore(ctx, backend, "Pulling "+id, "Pulled "+id, func(st store.Store) error {
				res, err := ed.Load(ctx, st, id)
				if err != nil {
					return err
				}
				warnPartial(res)
				return nil
			})
			if err != nil {
				return err
			}
			if err := c.saveEditor(ctx, ed); err != nil {
				return err
			}
			printStats(ed.Graph().NodeCount(), ed.Graph().EdgeCount())
			printFile(c.docPath())
			return nil
		},
	}

	cmd.Flags().StringVar(&backend, "store", "", "store backend (default from config)")
	return cmd
}

// lsRemoteCommand creates the ls-remote command.
func (c *CLI) lsRemoteCommand() *cobra.Command {
	var backend string

	cmd := &cobra.Command{
		Use:   "ls-remote",
		Short: "List documents in the configured store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var ids []string
			err := c.withStore(ctx, backend, "Listing documents", "", func(st store.Store) error {
				var err error
				ids, err = st.List(ctx)
				return err
			})
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				printInfo("No documents")
				return nil
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&backend, "store", "", "store backend (default from config)")
	return cmd
}

// withStore opens the store and runs fn while a spinner shows msg. On
// success the spinner is replaced by done, if not empty.
func (c *CLI) withStore(ctx context.Context, backend, msg, done string, fn func(store.Store) error) error {
	spinner := newSpinnerWithContext(ctx, msg+"...")
	spinner.Start()

	st, err := c.openStore(ctx, backend)
	if err != nil {
		spinner.StopWithError(errors.UserMessage(err))
		return err
	}
	defer st.Close()

	if err := fn(st); err != nil {
		spinner.StopWithError(errors.UserMessage(err))
		return err
	}
	if done == "" {
		spinner.Stop()
		return nil
	}
	spinner.StopWithSuccess(done)
	return nil
}
