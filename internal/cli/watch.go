package cli

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/hemicycle/pkg/feed"
	"github.com/matzehuels/hemicycle/pkg/frame"
)

const defaultWatchInterval = 250 * time.Millisecond

// watchCommand creates the watch command that follows a replay live.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		interval time.Duration
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "watch [config] [updates.jsonl]",
		Short: "Follow a result feed in the terminal",
		Long: `Watch replays a JSON Lines result feed at a steady pace and redraws the
chart and seat bars after every update.`,
		Example: `  hemicycle watch house.toml results.jsonl --interval 1s`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd, args[0], args[1], interval, noCache)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", defaultWatchInterval, "delay between updates")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the assignment cache")

	return cmd
}

func (c *CLI) runWatch(cmd *cobra.Command, cfgPath, updatesPath string, interval time.Duration, noCache bool) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig(cfgPath)
	if err != nil {
		return err
	}
	b, err := c.startBroadcast(ctx, cfg, noCache)
	if err != nil {
		return err
	}

	// The view owns the terminal; keep the feed quiet unless verbose.
	quiet := logger
	if logger.GetLevel() > LogDebug {
		quiet = log.New(io.Discard)
	}

	coord := feed.NewCoordinator(b, feed.WithLogger(quiet))
	frames, unsubscribe := coord.Subscribe()
	defer unsubscribe()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newWatchModel(title(cfg, cfgPath), sideNames(cfg), frames)
	p := tea.NewProgram(m, tea.WithContext(runCtx), tea.WithOutput(cmd.OutOrStdout()), tea.WithInput(cmd.InOrStdin()))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		coord.Run(runCtx)
	}()
	go func() {
		defer wg.Done()
		src := &feed.FileSource{Path: updatesPath, Interval: interval, Logger: quiet}
		err := coord.Feed(runCtx, "file", src)
		p.Send(feedDoneMsg{frame: coord.Frame(), err: err})
	}()

	final, err := p.Run()
	cancel()
	wg.Wait()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return err
	}
	if wm, ok := final.(watchModel); ok && wm.err != nil {
		return wm.err
	}
	return nil
}

// =============================================================================
// watchModel - live frame view
// =============================================================================

// frameMsg carries a new frame from the coordinator.
type frameMsg frame.Frame

// feedDoneMsg reports the end of the feed with the final frame.
type feedDoneMsg struct {
	frame frame.Frame
	err   error
}

// streamClosedMsg reports that the frame subscription ended.
type streamClosedMsg struct{}

// watchModel is the bubbletea model of the watch command.
type watchModel struct {
	title  string
	names  sides
	frames <-chan frame.Frame

	frame    frame.Frame
	received bool
	done     bool
	err      error
}

func newWatchModel(title string, names sides, frames <-chan frame.Frame) watchModel {
	return watchModel{title: title, names: names, frames: frames}
}

func waitForFrame(ch <-chan frame.Frame) tea.Cmd {
	return func() tea.Msg {
		f, ok := <-ch
		if !ok {
			return streamClosedMsg{}
		}
		return frameMsg(f)
	}
}

func (m watchModel) Init() tea.Cmd {
	return waitForFrame(m.frames)
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case frameMsg:
		m.frame, m.received = frame.Frame(msg), true
		return m, waitForFrame(m.frames)
	case feedDoneMsg:
		m.frame, m.received = msg.frame, true
		m.done, m.err = true, msg.err
	case streamClosedMsg:
		return m, nil
	}
	return m, nil
}

func (m watchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.title))
	b.WriteString("\n\n")
	if !m.received {
		b.WriteString(StyleDim.Render("waiting for results..."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(renderDots(m.frame))
	b.WriteString("\n")
	b.WriteString(renderBars(m.frame, m.names))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(progressLine(m.frame)))
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(styleIconError.Render(iconError) + " " + m.err.Error())
	case m.done:
		b.WriteString(styleIconSuccess.Render(iconSuccess) + " " + StyleSuccess.Render("feed complete"))
	default:
		b.WriteString(StyleDim.Render("following feed"))
	}
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("q quit"))
	b.WriteString("\n")
	return b.String()
}
