package observability

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

var startTime = time.Now()

const (
	colorReset  = "\033[0m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
	colorPurple = "\033[35m"
	colorYellow = "\033[33m"
)

// termMu synchronizes all terminal output so that the status line can never
// be interrupted mid-write by a log line.
var termMu sync.Mutex

func termWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}
	return w
}

// termWriter is a mutex-guarded io.Writer for log output.
type termWriter struct{}

func (tw termWriter) Write(p []byte) (n int, err error) {
	termMu.Lock()
	defer termMu.Unlock()
	return os.Stderr.Write(p)
}

// NewTermWriter returns an io.Writer suitable for log.SetOutput(). It
// serializes writes with PrintRunStatus via termMu.
func NewTermWriter() *termWriter {
	return &termWriter{}
}

// PrintBanner writes the startup banner.
func PrintBanner() {
	width := termWidth()
	line := strings.Repeat("─", clamp(width, 20, 72))
	fmt.Printf("%s%s%s%s\n", colorBold, colorPurple, line, colorReset)
	fmt.Printf("%s  SUTRA%s  plan-and-execute agent  (%s/%s, go %s)\n",
		colorBold, colorReset, runtime.GOOS, runtime.GOARCH, strings.TrimPrefix(runtime.Version(), "go"))
	fmt.Printf("%s%s%s%s\n", colorBold, colorPurple, line, colorReset)
}

// PrintStepProgress writes a human-oriented step progress line.
func PrintStepProgress(step, total int, text string) {
	termMu.Lock()
	defer termMu.Unlock()
	fmt.Printf("%s[Step %d/%d]%s %s\n", colorCyan, step, total, colorReset, text)
}

// PrintRunStatus writes a one-line status snapshot (phase, task, uptime).
func PrintRunStatus() {
	phase, task, heartbeat := GetStatus()
	uptime := time.Since(startTime).Round(time.Second)

	if len(task) > 40 {
		task = task[:40] + "…"
	}

	termMu.Lock()
	defer termMu.Unlock()
	fmt.Printf("%s[%s]%s task=%q uptime=%s heartbeat=%s\n",
		colorYellow, phase, colorReset, task, uptime, heartbeat.Format("15:04:05"))
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
