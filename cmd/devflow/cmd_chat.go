package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/suykerbuyk/devflow/internal/archive"
	"github.com/suykerbuyk/devflow/internal/chat"
	"github.com/suykerbuyk/devflow/internal/completion"
	"github.com/suykerbuyk/devflow/internal/config"
	"github.com/suykerbuyk/devflow/internal/conversation"
	"github.com/suykerbuyk/devflow/internal/render"
)

var resumeID string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat (default)",
	Long: `Reads one description per line and prints the model's reply.

Commands:
  /save   write the conversation to the archive directory
  /help   show these commands
  /quit   leave (Ctrl-D or Ctrl-C work too)

End a line with \ to continue the message on the next line, or put a
multi-line message between two """ lines.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&resumeID, "resume", "", "Resume a stored conversation by ID prefix")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := newCompleter(cfg)
	if err != nil {
		return err
	}

	store, err := openHistory(cfg)
	if err != nil {
		return err
	}
	opts := []chat.Option{chat.WithLogger(logger)}
	if store != nil {
		defer store.Close()
		opts = append(opts, chat.WithRecorder(store))
	}
	if resumeID != "" {
		if store == nil {
			return errors.New("--resume needs history enabled")
		}
		conv, err := store.Load(ctx, resumeID)
		if err != nil {
			return err
		}
		opts = append(opts, chat.WithID(conv.ID), chat.WithHistory(conv.Log))
	}
	sess := chat.New(client, opts...)

	r := newTerminal()
	out := cmd.OutOrStdout()
	fmt.Fprint(out, r.Header(cfg.Identity))
	fmt.Fprint(out, r.Turns(sess.Turns()))

	loop := &repl{
		sess:     sess,
		term:     r,
		out:      out,
		identity: cfg.Identity,
		model:    cfg.Provider.Model,
		archive:  cfg.Archive,
	}
	if cfg.Path != "" {
		go watchConfig(ctx, loop, cfg.Path)
	}
	return loop.run(ctx, cmd.InOrStdin())
}

// watchConfig swaps the completer and the export settings when the config
// file changes.
func watchConfig(ctx context.Context, loop *repl, path string) {
	err := config.Watch(ctx, path, func(c config.Config, err error) {
		if err != nil {
			logger.Warn("config reload failed", zap.Error(err))
			return
		}
		client, err := newCompleter(c)
		if err != nil {
			logger.Warn("config reload: provider unusable", zap.Error(err))
			return
		}
		loop.apply(c, client)
		logger.Info("config reloaded", zap.String("model", c.Provider.Model))
	})
	if err != nil {
		logger.Warn("config watch stopped", zap.Error(err))
	}
}

const (
	prompt         = "> "
	continuePrompt = ". "
	blockMarker    = `"""`
	helpText       = `/save   write the conversation to the archive directory
/help   show this help
/quit   leave (Ctrl-D or Ctrl-C work too)

End a line with \ to continue on the next one, or wrap several
lines between """ lines to send them as one message.`
)

type repl struct {
	sess *chat.Session
	term *render.Terminal
	out  io.Writer

	// mu guards the fields a config reload replaces.
	mu       sync.Mutex
	identity conversation.Identity
	model    string
	archive  config.ArchiveConfig
}

// apply switches to a reloaded config between turns.
func (r *repl) apply(c config.Config, completer completion.Completer) {
	r.sess.SetCompleter(completer)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.identity = c.Identity
	r.model = c.Provider.Model
	r.archive = c.Archive
}

// readLines feeds scanned lines to a channel so the loop can stop on ctx
// while a read is pending. The channel is closed at end of input.
func readLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
	}()
	return lines, errc
}

func (r *repl) run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	lines, errc := readLines(ctx, in)

	for {
		fmt.Fprint(r.out, prompt)
		msg, ok := r.readMessage(ctx, lines)
		if !ok {
			fmt.Fprintln(r.out)
			if ctx.Err() != nil {
				return nil
			}
			select {
			case err := <-errc:
				return err
			default:
				return nil
			}
		}

		switch strings.TrimSpace(msg) {
		case "/quit", "/exit":
			return nil
		case "/help":
			fmt.Fprintln(r.out, helpText)
			continue
		case "/save":
			path, err := r.save()
			if err != nil {
				fmt.Fprint(r.out, r.term.Error(err.Error()))
			} else {
				fmt.Fprintf(r.out, "saved %s\n", config.CompressHome(path))
			}
			continue
		}

		entry, err := r.sess.Submit(ctx, msg)
		switch {
		case errors.Is(err, conversation.ErrEmptySubmission):
			continue
		case err != nil:
			fmt.Fprint(r.out, r.term.Error(err.Error()))
			if ctx.Err() != nil {
				return nil
			}
			continue
		}
		fmt.Fprint(r.out, r.term.Turn(chat.TurnOf(entry)))
	}
}

// readMessage assembles one message. A line ending in a backslash continues
// on the next line; a """ line opens a block closed by another """ line.
// A message cut short by end of input is still returned; ok is false
// when nothing was read or ctx is done.
func (r *repl) readMessage(ctx context.Context, lines <-chan string) (string, bool) {
	next := func() (string, bool) {
		select {
		case <-ctx.Done():
			return "", false
		case line, ok := <-lines:
			return line, ok
		}
	}

	line, ok := next()
	if !ok {
		return "", false
	}

	if strings.TrimSpace(line) == blockMarker {
		var body []string
		for {
			fmt.Fprint(r.out, continuePrompt)
			line, ok := next()
			if !ok {
				return strings.Join(body, "\n"), len(body) > 0 && ctx.Err() == nil
			}
			if strings.TrimSpace(line) == blockMarker {
				return strings.Join(body, "\n"), true
			}
			body = append(body, line)
		}
	}

	var b strings.Builder
	for strings.HasSuffix(line, `\`) {
		b.WriteString(strings.TrimSuffix(line, `\`))
		b.WriteString("\n")
		fmt.Fprint(r.out, continuePrompt)
		if line, ok = next(); !ok {
			return b.String(), ctx.Err() == nil
		}
	}
	b.WriteString(line)
	return b.String(), true
}

// save writes the archive and a Markdown export next to it.
func (r *repl) save() (string, error) {
	entries := r.sess.Entries()
	if len(entries) == 0 {
		return "", errors.New("nothing to save yet")
	}

	r.mu.Lock()
	identity, model, arch := r.identity, r.model, r.archive
	r.mu.Unlock()

	path := archive.ArchivePath(r.sess.ID(), arch.Dir, arch.Compress)
	if err := archive.Write(path, entries, arch.Compress); err != nil {
		return "", err
	}

	md := render.Transcript(render.TranscriptData{
		SessionID: r.sess.ID(),
		Title:     conversation.Title(entries),
		Model:     model,
		Date:      entries[0].CreatedAt,
		Identity:  identity,
		Turns:     r.sess.Turns(),
	})
	mdPath := filepath.Join(arch.Dir, r.sess.ID()+".md")
	if err := os.WriteFile(mdPath, []byte(md), 0o644); err != nil {
		return "", fmt.Errorf("write markdown: %w", err)
	}
	return path, nil
}
