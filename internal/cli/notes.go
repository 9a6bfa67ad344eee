package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Tzuyuchae/QuickThoughts/internal/capture"
	"github.com/Tzuyuchae/QuickThoughts/internal/domain"
	"github.com/Tzuyuchae/QuickThoughts/internal/memo"
)

func (r *root) uploadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Transcribe an existing audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clip, err := capture.LoadFile(args[0])
			if err != nil {
				return err
			}
			a, err := r.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			drafts, err := a.pipeline.Process(cmd.Context(), clip)
			if err != nil {
				return err
			}
			printDrafts(cmd, drafts)
			return nil
		},
	}
}

func (r *root) listCommand() *cobra.Command {
	var folder string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your notes, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := r.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			notes := a.store.Notes()
			if folder != "" {
				filtered := notes[:0]
				for _, n := range notes {
					if n.Folder == folder {
						filtered = append(filtered, n)
					}
				}
				notes = filtered
			}
			printNotes(cmd, notes)
			return nil
		},
	}
	cmd.Flags().StringVar(&folder, "folder", "", "only show notes in this folder")
	return cmd
}

func (r *root) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete notes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := r.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			for _, id := range args {
				a.store.Delete(cmd.Context(), id)
			}
			a.store.Wait()
			if failed := a.store.Stats().DeleteFailures; failed > 0 {
				return fmt.Errorf("%d note(s) could not be deleted on the server", failed)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d note(s)\n", len(args))
			return nil
		},
	}
}

func (r *root) syncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Retry saving notes that failed to sync",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := r.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			retried := a.store.RetryFailed(cmd.Context())
			a.store.Wait()
			remaining := len(a.store.Unsynced())
			fmt.Fprintf(cmd.OutOrStdout(), "Retried %d note(s), %d still unsynced\n", retried, remaining)
			return nil
		},
	}
}

func printDrafts(cmd *cobra.Command, drafts []domain.Memo) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, d := range drafts {
		fmt.Fprintf(w, "%s\t%s\t%s\n", d.Folder, d.Title, oneLine(d.Transcription))
	}
	w.Flush()
}

func printNotes(cmd *cobra.Command, notes []memo.Note) {
	out := cmd.OutOrStdout()
	if len(notes) == 0 {
		fmt.Fprintln(out, "No notes")
		return
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tFOLDER\tTITLE\tSTATE")
	for _, n := range notes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", n.ID, n.Date, n.Folder, n.Title, n.State)
	}
	w.Flush()
}

func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 60 {
		return s[:57] + "..."
	}
	return s
}
