package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/Tzuyuchae/QuickThoughts/internal/capture"
)

func (r *root) recordCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a voice memo",
		Long: `Record from the default microphone until Enter or Ctrl-C is pressed or the
maximum duration is reached, then transcribe and file the thoughts.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := r.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			recorder := capture.NewRecorder(r.opts.Opener, r.captureConfig(), a.logger)
			// The session outlives Ctrl-C so an interrupted recording is still kept.
			session, err := recorder.Start(context.WithoutCancel(cmd.Context()))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Recording (max %s). Press Enter to stop.\n", r.captureConfig().MaxDuration)
			go stopOnInput(cmd, session)

			drafts, err := a.pipeline.Record(cmd.Context(), session)
			if err != nil {
				return err
			}
			printDrafts(cmd, drafts)
			return nil
		},
	}
	cmd.Flags().Duration("max", 0, "maximum recording length")
	_ = r.v.BindPFlag(keyMaxDuration, cmd.Flags().Lookup("max"))
	return cmd
}

// stopOnInput ends the session on Enter, end of input, or interrupt.
func stopOnInput(cmd *cobra.Command, session *capture.Session) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)

	line := make(chan struct{})
	go func() {
		_, _ = bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		close(line)
	}()

	select {
	case <-line:
	case <-sigCh:
	case <-session.Done():
		return
	}
	session.Stop()
}
