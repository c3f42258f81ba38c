package main

import (
	"fmt"
	"log/slog"
	"os"

	"chatservice/backend/internal/chat"
	"chatservice/backend/internal/config"
	"chatservice/backend/internal/storage"
	"chatservice/backend/internal/user"

	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// deps are opened before any subcommand runs.
var deps struct {
	cfg      config.Config
	log      *slog.Logger
	store    storage.Storage
	users    *user.Service
	chats    *chat.Service
	messages *chat.MessageService
}

var rootCmd = &cobra.Command{
	Use:   "admin",
	Short: "Chat service administration",
	Long: `admin manages the users and chats of the chat service directly against
the storage selected by STORAGE_DRIVER. It reads the same environment (and
.env file) as the server.

Use "admin [command] --help" for more information about a command.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		log := logs.GetLoggerFromString(cfg.LogLevel)
		store, err := storage.Open(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}

		deps.cfg = cfg
		deps.log = log
		deps.store = store
		deps.users = user.NewService(store, log)
		deps.chats = chat.NewService(store, deps.users, log, nil)
		deps.messages = chat.NewMessageService(store, store, log, nil)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if deps.store == nil {
			return nil
		}
		return deps.store.Close()
	},
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(usersCmd, chatsCmd, messagesCmd, seedCmd, tokenCmd)
}

func newTable(header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func pageFooter(page, pageSize, total int, next bool) string {
	footer := fmt.Sprintf("page %d (size %d) of %d items", page, pageSize, total)
	if next {
		footer += ", more with --page " + fmt.Sprint(page+1)
	}
	return footer
}
