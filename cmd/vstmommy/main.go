// Command vstmommy runs the analyzer on the default audio device and draws
// its meters in the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/audioversary/vstmommy/pkg/framework/debug"
	"github.com/audioversary/vstmommy/pkg/host"
	"github.com/audioversary/vstmommy/pkg/host/config"
	"github.com/audioversary/vstmommy/pkg/vstmommy"
)

const (
	statsInterval = 5 * time.Second
	// fallbackWidth is used when the terminal size cannot be read.
	fallbackWidth = 80
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("vstmommy: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger, closeLog, err := setupLogging(cfg.Logging)
	if err != nil {
		return err
	}
	defer closeLog.Close()

	p := vstmommy.New(cfg.Meter.PluginConfig(), logger)
	info := p.GetInfo()
	logger.Info("%s %s (%s) uid %s", info.Name, info.Version, info.ID, info.UID())

	proc, ok := p.CreateProcessor().(*vstmommy.Processor)
	if !ok {
		return errors.New("unexpected processor type")
	}

	editor := p.CreateEditor(proc.Publisher())
	states := p.StateManager(editor)
	restored := true
	if cfg.State.File != "" {
		switch err := states.LoadFile(cfg.State.File); {
		case errors.Is(err, fs.ErrNotExist):
			logger.Info("no saved state at %s", cfg.State.File)
		case err != nil:
			logger.Warn("ignoring saved state: %v", err)
		default:
			restored = editor.IsOpen()
			logger.Info("restored state from %s", cfg.State.File)
		}
	}
	open := cfg.Display.ShouldOpen(restored)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := host.New(cfg.Host, proc, logger)
	if err := h.Start(); err != nil {
		return err
	}

	fd := int(os.Stdout.Fd())
	var display *vstmommy.Editor
	switch {
	case !open:
		editor.Close()
	case !term.IsTerminal(fd):
		logger.Info("stdout is not a terminal, meter display disabled")
		editor.Close()
	default:
		editor.Open()
		display = editor
	}
	loop(ctx, display, cfg.Display.RefreshInterval(), h, logger, os.Stdout, terminalWidth(fd))
	if display != nil {
		fmt.Fprintln(os.Stdout)
	}

	if cfg.State.File != "" {
		// Persist the requested editor state, not the one forced by stdout.
		if open {
			editor.Open()
		} else {
			editor.Close()
		}
		if err := states.SaveFile(cfg.State.File); err != nil {
			logger.Error("save state: %v", err)
		}
	}
	editor.Close()
	return h.Stop()
}

// terminalWidth returns a function reporting the current column count of
// the terminal on fd.
func terminalWidth(fd int) func() int {
	return func() int {
		w, _, err := term.GetSize(fd)
		if err != nil || w <= 0 {
			return fallbackWidth
		}
		return w
	}
}

// loop redraws the editor and logs callback load until ctx is done. A nil
// editor only logs. Each line is fitted to width when it is not nil.
func loop(ctx context.Context, editor *vstmommy.Editor, refresh time.Duration, h *host.Host, logger *debug.Logger, w io.Writer, width func() int) {
	stats := time.NewTicker(statsInterval)
	defer stats.Stop()

	var redraw <-chan time.Time
	if editor != nil {
		t := time.NewTicker(refresh)
		defer t.Stop()
		redraw = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-redraw:
			if width != nil {
				editor.SetWidth(width())
			}
			fmt.Fprint(w, "\r\x1b[2K")
			if err := editor.Render(w, editor.Frame(now)); err != nil {
				logger.Warn("render: %v", err)
			}
		case <-stats.C:
			logger.Debug("%s", h.Load())
		}
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// setupLogging configures the default logger from cfg. With a log file the
// returned closer points the logger back at stderr and closes the file.
func setupLogging(cfg config.LoggingConfig) (*debug.Logger, io.Closer, error) {
	level, err := debug.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	debug.SetLevel(level)

	closer := closerFunc(func() error { return nil })
	if cfg.File != "" {
		file, err := debug.OpenLogFile(cfg.File)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		debug.SetOutput(file)
		closer = func() error {
			debug.SetOutput(os.Stderr)
			return file.Close()
		}
	}
	return debug.Default(), closer, nil
}
