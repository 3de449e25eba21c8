package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/suykerbuyk/devflow/internal/archive"
	"github.com/suykerbuyk/devflow/internal/chat"
	"github.com/suykerbuyk/devflow/internal/config"
	"github.com/suykerbuyk/devflow/internal/conversation"
	"github.com/suykerbuyk/devflow/internal/history"
	"github.com/suykerbuyk/devflow/internal/render"
)

var errNoHistory = errors.New("history is disabled (history.enabled = false)")

var (
	historyLimit int
	exportFormat string
	exportOutDir string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List, show, export and import stored conversations",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent conversations",
	Args:  cobra.NoArgs,
	RunE: withHistory(func(cmd *cobra.Command, store *history.Store, args []string) error {
		sums, err := store.List(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		return writeSummaries(cmd.OutOrStdout(), sums)
	}),
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a stored conversation",
	Args:  cobra.ExactArgs(1),
	RunE: withHistory(func(cmd *cobra.Command, store *history.Store, args []string) error {
		conv, err := store.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		r := newTerminal()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s  %s\n\n", conv.ID, conv.Title)
		_, err = fmt.Fprint(out, r.Turns(turnsOf(conv.Log)))
		return err
	}),
}

var historyExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a conversation as an archive or Markdown",
	Args:  cobra.ExactArgs(1),
	RunE: withHistory(func(cmd *cobra.Command, store *history.Store, args []string) error {
		conv, err := store.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		dir := cfg.Archive.Dir
		if exportOutDir != "" {
			dir = exportOutDir
		}
		path, err := exportConversation(conv, dir, exportFormat, cfg)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported %s\n", config.CompressHome(path))
		return nil
	}),
}

var historyImportCmd = &cobra.Command{
	Use:   "import <archive>",
	Short: "Load an archive file back into history",
	Long: `Loads an archive written by /save or history export. Entries already
stored for the conversation are kept, so re-importing a grown archive adds
only the new turns.`,
	Args:  cobra.ExactArgs(1),
	RunE: withHistory(func(cmd *cobra.Command, store *history.Store, args []string) error {
		id := archive.IDFromPath(args[0])
		if id == "" {
			return fmt.Errorf("%s: not a .jsonl or .jsonl.zst archive", args[0])
		}
		entries, err := archive.Read(args[0])
		if err != nil {
			return err
		}
		added, err := store.Import(cmd.Context(), id, entries)
		if err != nil {
			return fmt.Errorf("import %s: %w", id, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %s (%d entries, %d new)\n", id, len(entries), added)
		return nil
	}),
}

func init() {
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum conversations to list (0 for all)")
	historyExportCmd.Flags().StringVar(&exportFormat, "format", "archive", "Export format: archive or markdown")
	historyExportCmd.Flags().StringVarP(&exportOutDir, "out", "o", "", "Output directory (default: archive.dir)")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyImportCmd)
}

func withHistory(fn func(*cobra.Command, *history.Store, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		store, err := openHistory(cfg)
		if err != nil {
			return err
		}
		if store == nil {
			return errNoHistory
		}
		defer store.Close()
		return fn(cmd, store, args)
	}
}

func writeSummaries(w io.Writer, sums []history.Summary) error {
	if len(sums) == 0 {
		_, err := fmt.Fprintln(w, "no conversations yet")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tENTRIES\tTITLE")
	for _, s := range sums {
		id := s.ID
		if len(id) > 8 {
			id = id[:8]
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", id, s.StartedAt.Local().Format("2006-01-02 15:04"), s.Entries, s.Title)
	}
	return tw.Flush()
}

func turnsOf(entries []conversation.Entry) []chat.Turn {
	turns := make([]chat.Turn, len(entries))
	for i, e := range entries {
		turns[i] = chat.TurnOf(e)
	}
	return turns
}

func exportConversation(conv *history.Conversation, dir, format string, c config.Config) (string, error) {
	switch format {
	case "archive":
		path := archive.ArchivePath(conv.ID, dir, c.Archive.Compress)
		return path, archive.Write(path, conv.Log, c.Archive.Compress)
	case "markdown", "md":
		md := render.Transcript(render.TranscriptData{
			SessionID: conv.ID,
			Title:     conv.Title,
			Model:     c.Provider.Model,
			Date:      conv.StartedAt,
			Identity:  c.Identity,
			Turns:     turnsOf(conv.Log),
		})
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create export dir: %w", err)
		}
		path := filepath.Join(dir, conv.ID+".md")
		if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
			return "", fmt.Errorf("write markdown: %w", err)
		}
		return path, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want archive or markdown)", format)
	}
}
