// Package log is a thin wrapper around gologger. Diagnostics go to stderr,
// results go to stdout through gologger's silent level.
package log

import (
	"io"
	"os"
	"sync"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/formatter"
	"github.com/projectdiscovery/gologger/levels"
)

type Level int

const (
	ErrorLevel Level = iota
	InfoLevel
	DebugLevel
)

const PipedOutputNotification = "Output is piped. Results are written to stdout, logs to stderr."

var appName string

// Init names the application and resets the logger to info level on the
// process streams.
func Init(name string) {
	appName = name
	SetOutput(os.Stdout, os.Stderr)
	SetLevel(InfoLevel)
}

// AppName returns the name passed to Init.
func AppName() string {
	return appName
}

func SetLevel(l Level) {
	switch l {
	case ErrorLevel:
		gologger.DefaultLogger.SetMaxLevel(levels.LevelError)
	case DebugLevel:
		gologger.DefaultLogger.SetMaxLevel(levels.LevelDebug)
	default:
		gologger.DefaultLogger.SetMaxLevel(levels.LevelInfo)
	}
}

// SetOutput redirects results to stdout and everything else to stderr.
// Labels are colored only when stderr is a terminal.
func SetOutput(stdout, stderr io.Writer) {
	gologger.DefaultLogger.SetFormatter(formatter.NewCLI(!isTerminal(stderr)))
	gologger.DefaultLogger.SetWriter(&streamWriter{stdout: stdout, stderr: stderr})
}

type streamWriter struct {
	mu     sync.Mutex
	stdout io.Writer
	stderr io.Writer
}

func (w *streamWriter) Write(data []byte, level levels.Level) {
	w.mu.Lock()
	defer w.mu.Unlock()

	dst := w.stderr
	if level == levels.LevelSilent {
		dst = w.stdout
	}
	_, _ = dst.Write(data)
	_, _ = dst.Write([]byte("\n"))
}

func Debug(msg string) {
	gologger.Debug().Msg(msg)
}

func Debugf(format string, args ...interface{}) {
	gologger.Debug().Msgf(format, args...)
}

func Info(msg string) {
	gologger.Info().Msg(msg)
}

func Infof(format string, args ...interface{}) {
	gologger.Info().Msgf(format, args...)
}

func Error(msg string) {
	gologger.Error().Msg(msg)
}

func Errorf(format string, args ...interface{}) {
	gologger.Error().Msgf(format, args...)
}

// Result writes a line to stdout regardless of level.
func Result(line string) {
	gologger.Silent().Msg(line)
}

func Notify(msg string) {
	gologger.Info().Label("NOTE").Msg(msg)
}

// IsOutputPiped reports whether w is a file that is not a terminal, such as
// a pipe or a redirect. Writers that are not files are never piped.
func IsOutputPiped(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}
