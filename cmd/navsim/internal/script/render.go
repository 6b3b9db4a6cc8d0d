package script

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	headerStyle  = color.New(color.Bold).SprintFunc()
	visibleStyle = color.New(color.FgGreen).SprintFunc()
	hiddenStyle  = color.New(color.Faint).SprintFunc()
	faultStyle   = color.New(color.FgRed).SprintFunc()
	finishStyle  = color.New(color.FgYellow).SprintFunc()
)

// RenderOptions controls Render's output.
type RenderOptions struct {
	// Tags appends the first eight characters of each screen's tag.
	Tags bool
	// FinalOnly prints only the settled state of each owner.
	FinalOnly bool
}

// Render writes a report of res to w. Visible screens are green, hidden
// screens are dimmed and parenthesised.
func Render(w io.Writer, res *Result, opts RenderOptions) error {
	var buf bytes.Buffer
	for i, o := range res.Owners {
		if i > 0 {
			buf.WriteByte('\n')
		}
		fmt.Fprintf(&buf, "%s %s\n", headerStyle("owner"), headerStyle(o.Name))
		snaps := o.Snapshots
		if opts.FinalOnly && len(snaps) > 0 {
			snaps = snaps[len(snaps)-1:]
		}
		for _, snap := range snaps {
			label := fmt.Sprintf("[%d] %s", snap.Step, snap.Op)
			fmt.Fprintf(&buf, "  %-26s %-8s %s\n", label, "+"+snap.At.String(), renderContainers(snap.Containers, opts))
		}
		fmt.Fprintf(&buf, "  %d operations, %s, %s\n",
			o.Completed, plural(len(o.Faults), "fault"), finishStyle(fmt.Sprintf("finished %d", o.Finished)))
		for _, f := range o.Faults {
			fmt.Fprintf(&buf, "  %s %s\n", faultStyle("fault:"), f)
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func renderContainers(containers []ContainerState, opts RenderOptions) string {
	parts := make([]string, 0, len(containers))
	for _, c := range containers {
		screens := make([]string, 0, len(c.Screens))
		for _, s := range c.Screens {
			screens = append(screens, renderScreen(s, opts))
		}
		if len(screens) == 0 {
			screens = append(screens, "-")
		}
		parts = append(parts, fmt.Sprintf("%s: %s", c.ID, strings.Join(screens, " ")))
	}
	return strings.Join(parts, " | ")
}

func renderScreen(s ScreenState, opts RenderOptions) string {
	name := s.ID
	if s.Type != s.ID {
		name = s.ID + ":" + s.Type
	}
	if opts.Tags && s.Tag != "" {
		tag := s.Tag
		if len(tag) > 8 {
			tag = tag[:8]
		}
		name += "#" + tag
	}
	if !s.Visible {
		return hiddenStyle("(" + name + ")")
	}
	return visibleStyle(name)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
