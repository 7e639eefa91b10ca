package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/friday-agent/internal/app/router"
	"github.com/PabloGalante/friday-agent/internal/domain"
)

var askVoice bool

var askCmd = &cobra.Command{
	Use:   "ask <message...>",
	Short: "Answer a single message and exit",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askVoice, "voice", false, "Treat the message as a spoken command")
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	text := strings.Join(args, " ")
	out := cmd.OutOrStdout()

	if askVoice {
		resp, err := a.router.Voice(cmd.Context(), router.VoiceRequest{Command: text})
		if err != nil {
			return err
		}
		printReply(out, resp.Response, resp.Feature)
		return nil
	}

	resp, err := a.router.Chat(cmd.Context(), router.ChatRequest{Message: text})
	if err != nil {
		return err
	}
	printReply(out, resp.Response, resp.Feature)
	return nil
}

func printReply(w io.Writer, reply string, feature *domain.FeatureRecord) {
	if feature != nil {
		fmt.Fprintf(w, "[%s] ", feature.Name)
	}
	fmt.Fprintln(w, reply)
}
