package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/b/wingroup/pkg/daemon"
	"github.com/b/wingroup/pkg/tmux"
)

var ctlCmd = &cobra.Command{
	Use:   "ctl",
	Short: "Send a request to the running panel",
}

var ctlActivateCmd = &cobra.Command{
	Use:   "activate <n>",
	Short: "Activate the nth button, counting from 1",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		return call(cmd, daemon.MsgActivate, daemon.ActivatePayload{Index: index})
	},
}

var ctlProgressCmd = &cobra.Command{
	Use:   "progress <window> <percent|clear>",
	Short: "Set or clear the progress of a window",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pct, err := parsePercent(args[1])
		if err != nil {
			return err
		}
		return call(cmd, daemon.MsgProgress, daemon.ProgressPayload{Window: args[0], Percent: pct})
	},
}

var ctlAttentionCmd = &cobra.Command{
	Use:   "attention <window>",
	Short: "Flag a window as needing attention",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd, daemon.MsgAttention, daemon.AttentionPayload{Window: args[0]})
	},
}

var ctlRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Make the panel re-read tmux now",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd, daemon.MsgRefresh, nil)
	},
}

var ctlPingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the panel is running",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := dial(cmd)
		if err != nil {
			return err
		}
		defer c.Close()
		if err := c.Ping(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "pong")
		return nil
	},
}

var ctlStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the groups on the panel",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := dial(cmd)
		if err != nil {
			return err
		}
		defer c.Close()
		reply, err := c.Call(daemon.MsgStatus, nil)
		if err != nil {
			return err
		}
		var st daemon.StatusPayload
		if err := reply.Decode(&st); err != nil {
			return err
		}
		return writeStatus(cmd.OutOrStdout(), st)
	},
}

func init() {
	ctlCmd.AddCommand(ctlActivateCmd)
	ctlCmd.AddCommand(ctlProgressCmd)
	ctlCmd.AddCommand(ctlAttentionCmd)
	ctlCmd.AddCommand(ctlRefreshCmd)
	ctlCmd.AddCommand(ctlPingCmd)
	ctlCmd.AddCommand(ctlStatusCmd)
}

func dial(cmd *cobra.Command) (*daemon.Client, error) {
	session, err := sessionID(cmd.Context(), tmux.Exec{})
	if err != nil {
		return nil, fmt.Errorf("find tmux session: %w", err)
	}
	return daemon.Dial(session)
}

func call(cmd *cobra.Command, t daemon.MessageType, payload interface{}) error {
	c, err := dial(cmd)
	if err != nil {
		return err
	}
	defer c.Close()
	_, err = c.Call(t, payload)
	return err
}

// parseIndex turns a 1-based button number into a 0-based index.
func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid button number %q", s)
	}
	return n - 1, nil
}

// parsePercent accepts "40", "40%" or "clear". Clearing is sent as -1.
func parsePercent(s string) (float64, error) {
	if s == "clear" {
		return -1, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil || v < 0 || v > 100 {
		return 0, fmt.Errorf("invalid percent %q", s)
	}
	return v, nil
}

func writeStatus(out io.Writer, st daemon.StatusPayload) error {
	if len(st.Groups) == 0 {
		_, err := fmt.Fprintln(out, "no groups")
		return err
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tAPP\tWINDOWS\tSTATE")
	for i, g := range st.Groups {
		windows := strings.Join(g.Windows, ",")
		if windows == "" {
			windows = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, g.Name, windows, groupState(g))
	}
	return w.Flush()
}

func groupState(g daemon.GroupStatus) string {
	var parts []string
	if g.Favorite {
		parts = append(parts, "pinned")
	}
	if g.HasFocus {
		parts = append(parts, "focused")
	}
	if g.NeedsAttention {
		parts = append(parts, "attention")
	}
	if g.Progress > 0 {
		parts = append(parts, fmt.Sprintf("%d%%", int(g.Progress)))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}
