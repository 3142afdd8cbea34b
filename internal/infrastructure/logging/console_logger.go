// Package logging provides the console logger used by the ctree command.
//
// Logger embeds zerolog.Logger so the full zerolog API is available. Lines
// are rendered as "[LEVEL]: message key=value" with the level tag coloured
// when the output is a terminal.
package logging

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
)

// Logger is a thin wrapper around zerolog.Logger.
type Logger struct {
	zerolog.Logger
}

// NewConsoleLogger creates a logger writing to w. Verbose enables debug and
// info lines; otherwise only warnings and errors are written.
func NewConsoleLogger(w io.Writer, verbose bool) *Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	renderer := lipgloss.NewRenderer(w)
	styles := map[string]lipgloss.Style{
		zerolog.LevelDebugValue: renderer.NewStyle().Foreground(lipgloss.Color("241")),
		zerolog.LevelInfoValue:  renderer.NewStyle().Foreground(lipgloss.Color("86")),
		zerolog.LevelWarnValue:  renderer.NewStyle().Foreground(lipgloss.Color("214")),
		zerolog.LevelErrorValue: renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
	}

	out := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    true,
		PartsOrder: []string{zerolog.LevelFieldName, zerolog.MessageFieldName},
		FormatLevel: func(i any) string {
			name, _ := i.(string)
			tag := fmt.Sprintf("[%s]:", strings.ToUpper(name))
			if style, ok := styles[name]; ok {
				return style.Render(tag)
			}
			return tag
		},
	}

	return &Logger{zerolog.New(out).Level(level)}
}

// Nop returns a *Logger that discards all output.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

// WithContext attaches the logger to ctx.
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return l.Logger.WithContext(ctx)
}

// FromContext returns the logger attached to ctx, or a disabled one.
func FromContext(ctx context.Context) *Logger {
	return &Logger{*zerolog.Ctx(ctx)}
}

// SetVerbose switches between warning and debug output.
func (l *Logger) SetVerbose(verbose bool) {
	if verbose {
		l.Logger = l.Level(zerolog.DebugLevel)
		return
	}
	l.Logger = l.Level(zerolog.WarnLevel)
}
