package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"go-mindgarden/dialogue"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the companion bot on stdin",
	Long: `Start one conversation with the companion bot. Each line read from stdin is a
message; the bot answers on stdout. End with EOF or /quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newCore(cfg)
		if err != nil {
			return err
		}
		sessions := dialogue.NewSessions(a.engine, dialogue.NewMemoryStateStore())
		return runChat(cmd, sessions, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, sessions *dialogue.Sessions, in io.Reader, out io.Writer) error {
	ctx := cmd.Context()

	opening, err := sessions.Start(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "bot> %s\n", opening.Content)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "you> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			break
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "/quit" {
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		reply, err := sessions.Turn(ctx, opening.ConversationID, line)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "bot> %s\n", reply.Bot.Content)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return sessions.End(ctx, opening.ConversationID)
}
