// Package chat provides the teacher chat commands.
package chat

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/coursemap/internal/appcontext"
	"github.com/agentstation/coursemap/internal/cmd/output"
	"github.com/agentstation/coursemap/pkg/chat"
)

// NewCommand creates the chat command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "chat",
		GroupID: "student",
		Short:   "Message teachers and read threads",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newSendCommand(app), newThreadCommand(app), newInboxCommand(app))
	return cmd
}

func newSendCommand(app appcontext.Interface) *cobra.Command {
	var student, sender string
	cmd := &cobra.Command{
		Use:     "send <teacher-id> <text...>",
		Short:   "Send a message to a teacher",
		Args:    cobra.MinimumNArgs(2),
		Example: `  coursemap chat send 1 "When does the next cohort start?" --student u-42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			studentID := student
			name := sender
			if session, ok := client.Accounts().Current(cmd.Context()); ok {
				if studentID == "" {
					studentID = session.UID
				}
				if name == "" {
					name = session.DisplayName
				}
			}
			msg, err := client.Chat().Send(cmd.Context(), args[0], studentID, chat.Message{
				Me:         true,
				Text:       strings.Join(args[1:], " "),
				SenderID:   studentID,
				SenderName: name,
			})
			if err != nil {
				return err
			}
			return output.NewFormatter(output.Format(app.OutputFormat())).Format(cmd.OutOrStdout(), msg)
		},
	}
	cmd.Flags().StringVar(&student, "student", "", "Student id (defaults to the signed-in user, then guest)")
	cmd.Flags().StringVar(&sender, "name", "", "Sender name")
	return cmd
}

func newThreadCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:   "thread <teacher-id> [student-id]",
		Short: "Show the messages between a teacher and a student",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			var studentID string
			if len(args) > 1 {
				studentID = args[1]
			}
			messages, err := client.Chat().Thread(cmd.Context(), args[0], studentID)
			if err != nil {
				return err
			}
			format := output.Format(app.OutputFormat())
			if format != output.FormatTable && format != output.FormatWide {
				return output.NewFormatter(format).Format(cmd.OutOrStdout(), messages)
			}
			rows := make([][]string, 0, len(messages))
			for _, m := range messages {
				rows = append(rows, []string{m.At, m.SenderName, m.Text})
			}
			return output.NewFormatter(format).Format(cmd.OutOrStdout(), output.Data{
				Headers: []string{"At", "From", "Text"},
				Rows:    rows,
			})
		},
	}
}

func newInboxCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:   "inbox <teacher-id>",
		Short: "List a teacher's threads, latest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			inbox, err := client.Chat().Inbox(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return output.NewFormatter(output.Format(app.OutputFormat())).Format(cmd.OutOrStdout(), inbox)
		},
	}
}
