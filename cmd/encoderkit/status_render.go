package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"encoderkit/internal/manifest"
)

type statusLevel int

const (
	levelInfo statusLevel = iota
	levelOK
	levelWarn
	levelFail
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[36m"
)

const statusLabelWidth = 14

// statusLine is one "label  [tag] text" row of the status report.
type statusLine struct {
	label string
	level statusLevel
	text  string
}

func (l statusLine) render(colorize bool) string {
	line := fmt.Sprintf("  %-*s [%s] %s", statusLabelWidth, l.label, l.level.tag(), l.text)
	return paint(l.level, line, colorize)
}

func (lvl statusLevel) tag() string {
	switch lvl {
	case levelOK:
		return "ok"
	case levelWarn:
		return "warn"
	case levelFail:
		return "fail"
	default:
		return "info"
	}
}

func paint(lvl statusLevel, s string, colorize bool) string {
	if !colorize {
		return s
	}
	color := ansiCyan
	switch lvl {
	case levelOK:
		color = ansiGreen
	case levelWarn:
		color = ansiYellow
	case levelFail:
		color = ansiRed
	}
	return color + s + ansiReset
}

func sectionTitle(title string, colorize bool) string {
	return paint(levelInfo, strings.ToUpper(strings.TrimSpace(title)), colorize)
}

func encoderLine(path string, found bool) statusLine {
	if !found {
		return statusLine{label: "encoder", level: levelWarn, text: "not installed; run `encoderkit download`"}
	}
	return statusLine{label: "encoder", level: levelOK, text: path}
}

// installLine describes the last successful download into the managed cache.
func installLine(last *manifest.Attempt) statusLine {
	if last == nil {
		return statusLine{label: "installed", level: levelInfo, text: "never downloaded"}
	}
	text := fmt.Sprintf("%s from %s (%d bytes)", stamp(last.FinishedAt), last.SourceURL, last.SizeBytes)
	if !last.Verified {
		return statusLine{label: "installed", level: levelWarn, text: text + ", checksum not pinned"}
	}
	return statusLine{label: "installed", level: levelOK, text: text + ", sha256 verified"}
}

// attemptLine summarises the newest download attempt. A failure still inside
// the retry cooldown is reported as blocking the next download.
func attemptLine(last *manifest.Attempt, cooldown time.Duration, now time.Time) statusLine {
	if last == nil {
		return statusLine{label: "last attempt", level: levelInfo, text: "none recorded"}
	}
	if last.Succeeded() {
		return statusLine{label: "last attempt", level: levelOK, text: "succeeded " + stamp(last.FinishedAt)}
	}
	text := fmt.Sprintf("%s failed %s: %s", last.Stage, stamp(last.FinishedAt), last.ErrorMessage)
	if retryAt := last.FinishedAt.Add(cooldown); cooldown > 0 && now.Before(retryAt) {
		return statusLine{label: "last attempt", level: levelFail, text: text + "; downloads paused until " + stamp(retryAt)}
	}
	return statusLine{label: "last attempt", level: levelWarn, text: text + "; the next resolve retries"}
}

func stamp(t time.Time) string {
	return t.Local().Format(time.DateTime)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
