// cmd/chat.go
package cmd

import (
	"bufio"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ColonelBlimp/cwos/internal/apps"
	"github.com/ColonelBlimp/cwos/internal/config"
	"github.com/ColonelBlimp/cwos/internal/cw"
	"github.com/ColonelBlimp/cwos/internal/session"
)

var chatGreeting string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the responder in plain text",
	Long: `Read lines from stdin, pass each to the responder as if it had been keyed
and print the reply. No timing is involved. With --greeting every line is
answered with the greeting instead.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatGreeting, "greeting", "g", "", "reply to every line with this text")
}

func runChat(cmd *cobra.Command, _ []string) error {
	s, err := config.Get()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	var responder session.Responder
	if chatGreeting != "" {
		responder, err = apps.NewGreeting(chatGreeting)
	} else {
		responder, err = newResponder(s.Responder, slog.Default())
	}
	if err != nil {
		return err
	}

	table := cw.DefaultTable()
	w := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		input, err := table.Encode(scanner.Text())
		if err != nil {
			fmt.Fprintf(w, "? %v\n", err)
			continue
		}
		reply, err := responder.Respond(cw.Normalize(input))
		if err != nil {
			fmt.Fprintf(w, "! %v\n", err)
			continue
		}
		if len(reply) > 0 {
			fmt.Fprintln(w, table.Text(reply))
		}
	}
	return scanner.Err()
}
