package main

import (
	"fmt"
	"strings"
	"time"

	"chatservice/backend/internal/config"

	"github.com/spf13/cobra"
)

var (
	page     int
	pageSize int
)

var chatsCmd = &cobra.Command{
	Use:   "chats",
	Short: "Manage chats",
}

var chatsListCmd = &cobra.Command{
	Use:   "list <userId>",
	Short: "List a user's chats, most recently active first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := deps.chats.ListChatsForUser(cmd.Context(), args[0], page, pageSize)
		if err != nil {
			return err
		}
		table := newTable("ID", "Participants", "Last modified")
		for _, c := range result.Items {
			table.Append([]string{c.ID, strings.Join(c.Participants, ", "), c.LastModified.Format(time.RFC3339)})
		}
		table.Render()
		fmt.Println(pageFooter(result.Page, result.PageSize, result.TotalCount, result.HasNextPage()))
		return nil
	},
}

var chatsCreateCmd = &cobra.Command{
	Use:   "create <userId> <userId>",
	Short: "Open a chat between two users",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := deps.chats.CreateChat(cmd.Context(), args)
		if err != nil {
			return err
		}
		fmt.Printf("Chat %s created.\n", c.ID)
		return nil
	},
}

var messagesCmd = &cobra.Command{
	Use:   "messages",
	Short: "Inspect and send chat messages",
}

var messagesListCmd = &cobra.Command{
	Use:   "list <chatId>",
	Short: "List a chat's messages, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := deps.messages.ListMessages(cmd.Context(), args[0], page, pageSize)
		if err != nil {
			return err
		}
		table := newTable("Timestamp", "Sender", "Content")
		for _, m := range result.Items {
			table.Append([]string{m.Timestamp.Format(time.RFC3339Nano), m.SenderID, m.Content})
		}
		table.Render()
		fmt.Println(pageFooter(result.Page, result.PageSize, result.TotalCount, result.HasNextPage()))
		return nil
	},
}

var messagesSendCmd = &cobra.Command{
	Use:   "send <chatId> <senderId> <content>",
	Short: "Store a message on behalf of a participant",
	Long: `Store a message on behalf of a participant. The message is persisted
and shows up in the history; it is not pushed to live connections.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		msg, err := deps.messages.CreateMessage(cmd.Context(), args[0], args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Printf("Message %s stored at %s.\n", msg.ID, msg.Timestamp.Format(time.RFC3339Nano))
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{chatsListCmd, messagesListCmd} {
		cmd.Flags().IntVar(&page, "page", 1, "page number, starting at 1")
		cmd.Flags().IntVar(&pageSize, "page-size", config.DefaultPageSize, "items per page")
	}
	chatsCmd.AddCommand(chatsListCmd, chatsCreateCmd)
	messagesCmd.AddCommand(messagesListCmd, messagesSendCmd)
}
