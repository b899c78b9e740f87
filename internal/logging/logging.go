package logging

import (
	"io"
	"log"
	"strings"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"
)

const defaultUIBuffer = 256

type Options struct {
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int

	// UIBuffer is the capacity of the UI log channel.
	UIBuffer int
}

// Logging is the process logger: a rotating log file teed into a channel
// read by the terminal log pane.
type Logging struct {
	Logger *log.Logger

	file *lumberjack.Logger
	ui   *channelWriter
}

func New(options Options) *Logging {
	if options.UIBuffer <= 0 {
		options.UIBuffer = defaultUIBuffer
	}

	l := &Logging{
		ui: &channelWriter{ch: make(chan string, options.UIBuffer)},
	}
	var out io.Writer = l.ui
	if options.File != "" {
		l.file = &lumberjack.Logger{
			Filename:   options.File,
			MaxSize:    options.MaxSizeMB,
			MaxBackups: options.MaxBackups,
			MaxAge:     options.MaxAgeDays,
		}
		out = io.MultiWriter(l.file, l.ui)
	}
	l.Logger = log.New(out, "", log.Ltime|log.Lmicroseconds)
	return l
}

// UILog is the channel of formatted log lines for the UI.
func (l *Logging) UILog() <-chan string {
	return l.ui.ch
}

// DroppedUILines counts lines the UI channel had no room for.
func (l *Logging) DroppedUILines() uint64 {
	return l.ui.dropped.Load()
}

// Close flushes and closes the log file. The UI channel stays open so
// late writers never panic.
func (l *Logging) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// channelWriter turns each log.Logger write into one line on ch.
// A full channel drops the line instead of blocking the caller.
type channelWriter struct {
	ch      chan string
	dropped atomic.Uint64
}

func (w *channelWriter) Write(p []byte) (int, error) {
	line := strings.TrimRight(string(p), "\n")
	select {
	case w.ch <- line:
	default:
		w.dropped.Add(1)
	}
	return len(p), nil
}
