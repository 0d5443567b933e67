package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vcache/pkg/snapshot"
)

func snapshotCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage cache snapshots",
		Long: `Manage cache snapshots.

list and show read the configured backend directly. save and restore
ask a running "vcache serve" to capture or load its cache.`,
	}

	cmd.AddCommand(
		snapshotListCmd(configPath),
		snapshotShowCmd(configPath),
		snapshotRemoteCmd(configPath, "save", "Capture the running cache into a snapshot", false),
		snapshotRemoteCmd(configPath, "restore", "Load a snapshot into the running cache", true),
	)

	return cmd
}

func snapshotListCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			backend, err := openBackend(cfg)
			if err != nil {
				return err
			}

			names, err := backend.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func snapshotShowCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show [name]",
		Short: "Print the entries of a snapshot",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			backend, err := openBackend(cfg)
			if err != nil {
				return err
			}

			name := cfg.Snapshot.Name
			if len(args) == 1 {
				name = args[0]
			}

			data, err := backend.Load(cmd.Context(), name)
			if err != nil {
				return err
			}
			snap, err := snapshot.Decode(data)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (taken %s, %d entries)\n", name, snap.TakenAt.Format(time.RFC3339), len(snap.Entries))
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, e := range snap.Entries {
				fmt.Fprintf(tw, "%s\t%s\n", e.Key, e.Value)
			}
			return tw.Flush()
		},
	}
}

// snapshotRemoteCmd builds save or restore, which call the inspector of a
// running server.
func snapshotRemoteCmd(configPath *string, use, short string, restore bool) *cobra.Command {
	var (
		addr       string
		skipUpdate bool
	)

	cmd := &cobra.Command{
		Use:   use + " [name]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}
			name := cfg.Snapshot.Name
			if len(args) == 1 {
				name = args[0]
			}

			target := inspectorURL(addr) + "/snapshots/" + url.PathEscape(name)
			if restore {
				target += "/restore"
				if skipUpdate {
					target += "?skipUpdate=1"
				}
			}

			if err := postJSON(cmd, target); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "%s %s", pastTense(use), name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Inspector address (default from vcache.json)")
	if restore {
		cmd.Flags().BoolVar(&skipUpdate, "skip-update", false, "Restore without re-rendering bound components")
	}

	return cmd
}

func inspectorURL(addr string) string {
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return strings.TrimSuffix(addr, "/")
	}
	return "http://" + addr
}

func postJSON(cmd *cobra.Command, target string) error {
	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, target, nil)
	if err != nil {
		return err
	}
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 300 {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	var body struct {
		Code  string `json:"code"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Error == "" {
		return fmt.Errorf("%s: %s", target, resp.Status)
	}
	return fmt.Errorf("%s", body.Error)
}

func pastTense(verb string) string {
	if verb == "save" {
		return "Saved"
	}
	return "Restored"
}
