package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/contacts/core"
	"github.com/huangsam/contacts/internal/contract"
	"github.com/huangsam/contacts/internal/outwriter"
	"github.com/huangsam/contacts/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Success messages shown after each mutation.
const (
	createdMsg = "Contact has been created successfully!"
	updatedMsg = "Contact has been updated successfully!"
	deletedMsg = "Contact has been deleted successfully!"
)

var ow = outwriter.NewOutWriter()

// successOut receives mutation success messages, keeping stdout for data.
var successOut io.Writer = os.Stderr

// listCmd shows every contact.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all contacts, from the snapshot when one exists",
	Long: `List every contact in the remote collection.

The first run fetches the whole collection and saves a snapshot. Later runs read
the snapshot and make no network calls, no matter how old it is. Use --refresh
to drop the snapshot and fetch again.

Examples:
  # List contacts as a table
  contacts list

  # Force a refetch and write JSON
  contacts list --refresh --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		ctx, cancel := opContext()
		defer cancel()

		start := time.Now()
		load := store.Load
		if viper.GetBool("refresh") {
			load = store.Refresh
		}
		contacts, err := load(ctx)
		if err != nil {
			contract.LogFatal("Cannot load contacts", err)
		}
		if err := ow.WriteContacts(contacts, store.State().Source, cfg, time.Since(start)); err != nil {
			contract.LogFatal("Cannot write contacts", err)
		}
	},
}

// getCmd shows one contact.
var getCmd = &cobra.Command{
	Use:     "get <id>",
	Short:   "Show one contact, always fetched from the remote service",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		ctx, cancel := opContext()
		defer cancel()

		contact, err := store.GetOne(ctx, args[0])
		if err != nil {
			contract.LogFatal("Cannot get contact", err)
		}
		if err := ow.WriteContact(contact, cfg); err != nil {
			contract.LogFatal("Cannot write contact", err)
		}
	},
}

// createCmd adds a contact.
var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a contact, then refetch the contact list",
	Long: `Create a contact on the remote service. The whole list is refetched afterwards
so the snapshot matches the server.

Examples:
  contacts create --first-name Luke --last-name Skywalker --age 20 \
    --photo "https://picsum.photos/200/300/?blur=2"`,
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx, cancel := opContext()
		defer cancel()

		draft := applyDraftFlags(cmd.Flags(), schema.ContactDraft{})
		if _, err := store.Create(ctx, draft); err != nil {
			contract.LogFatal("Cannot create contact", err)
		}
		reportSuccess(createdMsg)
		if err := ow.WriteContacts(store.Contacts(), store.State().Source, cfg, 0); err != nil {
			contract.LogFatal("Cannot write contacts", err)
		}
	},
}

// updateCmd edits a contact.
var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a contact, then refetch the contact list",
	Long: `Update a contact on the remote service. Fields without a flag keep their
current values from the cached contact list. The whole list is refetched
afterwards.

Examples:
  contacts update b3abd640-c92b-11e8-b02f-cbfa15db428b --age 21`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := opContext()
		defer cancel()

		current, err := cachedContact(ctx, args[0])
		if err != nil {
			contract.LogFatal("Cannot find contact", err)
		}
		draft := applyDraftFlags(cmd.Flags(), current.Draft())
		updated, err := store.Update(ctx, args[0], draft)
		if err != nil {
			contract.LogFatal("Cannot update contact", err)
		}
		reportSuccess(updatedMsg)
		if err := ow.WriteContact(updated, cfg); err != nil {
			contract.LogFatal("Cannot write contact", err)
		}
	},
}

// deleteCmd removes a contact.
var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a contact and drop it from the snapshot",
	Long: `Delete a contact on the remote service. The contact is removed from the local
snapshot directly; the list is not refetched.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		ctx, cancel := opContext()
		defer cancel()

		if err := store.Delete(ctx, args[0]); err != nil {
			contract.LogFatal("Cannot delete contact", err)
		}
		reportSuccess(deletedMsg)
	},
}

// reportSuccess prints a mutation success message to successOut.
func reportSuccess(msg string) {
	if err := ow.WriteSuccess(successOut, msg, cfg); err != nil {
		contract.LogWarn("Cannot write message", err)
	}
}

// cachedContact returns the contact with id from the loaded list, the values
// the edit form starts from.
func cachedContact(ctx context.Context, id string) (schema.Contact, error) {
	if _, err := store.Load(ctx); err != nil {
		return schema.Contact{}, err
	}
	contact, ok := store.State().Find(id)
	if !ok {
		return schema.Contact{}, fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}
	return contact, nil
}

// applyDraftFlags overlays the contact flags the user set on base.
func applyDraftFlags(flags *pflag.FlagSet, base schema.ContactDraft) schema.ContactDraft {
	draft := base
	if flags.Changed("first-name") {
		draft.FirstName, _ = flags.GetString("first-name")
	}
	if flags.Changed("last-name") {
		draft.LastName, _ = flags.GetString("last-name")
	}
	if flags.Changed("age") {
		draft.Age, _ = flags.GetInt("age")
	}
	if flags.Changed("photo") {
		draft.Photo, _ = flags.GetString("photo")
	}
	return draft
}
