package control

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/liteview/liteview/pkg/logger"
)

// Console reads text commands, one per line.
type Console struct {
	svc *Service
	in  io.Reader
	log *logger.Logger

	mu  sync.Mutex
	out io.Writer

	// closed when the input reader of the last Run is gone
	reading chan struct{}
}

func NewConsole(svc *Service, in io.Reader, out io.Writer, log *logger.Logger) *Console {
	return &Console{svc: svc, in: in, out: out, log: log.Module("console")}
}

const help = `commands:
  targets                     list capture targets
  settings                    show settings
  set [fps=N] [res=R] [target=I|none] [cursor=on|off]
                              change settings, resolutions: %s
  start [I]                   start capture of target I
  stop                        stop capture
  status                      show capture state
  version                     show app version
  quit                        exit
`

// Notify prints an error of a running capture.
func (c *Console) Notify(err error) { c.printf("capture-error: %v\n", err) }

func (c *Console) printf(format string, a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.out, format, a...)
}

// Run executes commands until quit, end of input or the context is done.
// It returns true when the user asked to quit.
// The input reader stops with Run unless it is blocked on a read.
func (c *Console) Run(ctx context.Context) (quit bool) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	c.reading = make(chan struct{})
	go func(reading chan struct{}) {
		defer close(reading)
		defer close(lines)
		sc := bufio.NewScanner(c.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := sc.Err(); err != nil {
			c.log.Warn().Err(err).Msg("console input")
		}
	}(c.reading)

	for {
		select {
		case <-ctx.Done():
			return false
		case line, ok := <-lines:
			if !ok {
				c.log.Debug().Msg("console input is over")
				return false
			}
			if c.Exec(line) {
				return true
			}
		}
	}
}

// Exec runs one command line, it returns true for quit.
func (c *Console) Exec(line string) (quit bool) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false
	}
	switch cmd, args := strings.ToLower(args[0]), args[1:]; cmd {
	case "help", "?":
		c.printf(help, strings.Join(c.svc.Resolutions(), ", "))
	case "targets", "ls":
		c.targets()
	case "settings":
		c.printf("%v\n", c.svc.Settings())
	case "set":
		c.set(args)
	case "start":
		c.start(args)
	case "stop":
		_ = c.svc.Stop()
		c.printf("stopped\n")
	case "status":
		c.status()
	case "version":
		c.printf("%s\n", c.svc.Version())
	case "quit", "exit", "q":
		return true
	default:
		c.printf("unknown command %q, try help\n", cmd)
	}
	return false
}

func (c *Console) targets() {
	targets, err := c.svc.Targets()
	if err != nil {
		c.printf("error: %v\n", err)
		return
	}
	if len(targets) == 0 {
		c.printf("no targets\n")
	}
	for _, t := range targets {
		c.printf("%v\n", t)
	}
}

func (c *Console) set(args []string) {
	cur := c.svc.Settings()
	fps, res, target, cursor := int64(cur.FPS), cur.Resolution.String(), cur.TargetIndex, cur.ShowCursor
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok {
			c.printf("error: bad argument %q, want key=value\n", arg)
			return
		}
		switch strings.ToLower(k) {
		case "fps":
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				c.printf("error: bad fps %q\n", v)
				return
			}
			fps = n
		case "res", "resolution":
			res = v
		case "target":
			if v == "none" || v == "" {
				target = nil
				continue
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				c.printf("error: bad target %q\n", v)
				return
			}
			target = &n
		case "cursor":
			switch strings.ToLower(v) {
			case "on", "true", "1", "yes":
				cursor = true
			case "off", "false", "0", "no":
				cursor = false
			default:
				c.printf("error: bad cursor value %q\n", v)
				return
			}
		default:
			c.printf("error: unknown setting %q\n", k)
			return
		}
	}
	s, err := c.svc.SetSettings(fps, res, target, cursor)
	if err != nil {
		c.printf("error: %v\n", err)
		return
	}
	c.printf("%v\n", s)
}

func (c *Console) start(args []string) {
	var target *int
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			c.printf("error: bad target %q\n", args[0])
			return
		}
		target = &n
	}
	if err := c.svc.Start(target); err != nil {
		c.printf("error: %v\n", err)
		return
	}
	c.printf("started\n")
}

func (c *Console) status() {
	st := c.svc.Status()
	if st.ID == "" {
		c.printf("idle\n")
		return
	}
	c.printf("session %s %v, %v\nframes: %d captured, %d delivered, %d stale, %d throttled, %d overwritten\n",
		st.ID, st.State, st.Settings, st.Stats.Captured, st.Stats.Delivered, st.Stats.Stale, st.Stats.Throttled, st.Stats.Overwritten)
}
