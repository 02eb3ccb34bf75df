package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/KabiruH/attendance-agent/internal/app/bootstrap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		agentURL   string
	)

	root := &cobra.Command{
		Use:           "attendanced",
		Short:         "On-device attendance agent",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "configs/default.yaml", "agent config path")
	root.PersistentFlags().StringVar(&agentURL, "agent-url", "http://127.0.0.1:7420", "running agent base URL")

	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newTodayCmd(&agentURL))
	root.AddCommand(newRefreshCmd(&agentURL))
	root.AddCommand(newCheckInCmd(&agentURL))
	root.AddCommand(newCheckOutCmd(&agentURL))
	root.AddCommand(newJournalCmd(&agentURL))
	return root
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the agent and its local API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			runtime, err := bootstrap.NewRuntime(ctx, *configPath)
			if err != nil {
				return fmt.Errorf("bootstrap agent: %w", err)
			}
			return runtime.Run(ctx)
		},
	}
}

func newTodayCmd(agentURL *string) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Print the reconciled today view",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return callAgent(cmd.Context(), *agentURL, http.MethodGet, "/agent/v1/today")
		},
	}
}

func newRefreshCmd(agentURL *string) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Force a reconciliation against the ledger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return callAgent(cmd.Context(), *agentURL, http.MethodPost, "/agent/v1/today/refresh")
		},
	}
}

func newCheckInCmd(agentURL *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check-in [work|class <id>]",
		Short: "Perform a verified check-in",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := actionPath(args, "check-in")
			if err != nil {
				return err
			}
			return callAgent(cmd.Context(), *agentURL, http.MethodPost, path)
		},
	}
}

func newCheckOutCmd(agentURL *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check-out [work|class [<id>]]",
		Short: "Perform a verified check-out",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := actionPath(args, "check-out")
			if err != nil {
				return err
			}
			return callAgent(cmd.Context(), *agentURL, http.MethodPost, path)
		},
	}
}

func newJournalCmd(agentURL *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show recent local action attempts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return callAgent(cmd.Context(), *agentURL, http.MethodGet, fmt.Sprintf("/agent/v1/journal?limit=%d", limit))
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of entries")
	return cmd
}

func actionPath(args []string, verb string) (string, error) {
	switch args[0] {
	case "work":
		return "/agent/v1/actions/work/" + verb, nil
	case "class":
		if len(args) < 2 {
			if verb == "check-out" {
				// Class resolves from the active session on the agent side.
				return "/agent/v1/actions/class/check-out", nil
			}
			return "", fmt.Errorf("class check-in requires a class id")
		}
		classID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil || classID <= 0 {
			return "", fmt.Errorf("invalid class id %q", args[1])
		}
		return fmt.Sprintf("/agent/v1/actions/class/%d/%s", classID, verb), nil
	default:
		return "", fmt.Errorf("unknown target %q, want work or class", args[0])
	}
}

func callAgent(ctx context.Context, baseURL, method, path string) error {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(baseURL, "/")+path, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("reach agent at %s: %w (is `attendanced serve` running?)", baseURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}

	var envelope struct {
		Status  string          `json:"status"`
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		fmt.Println(string(raw))
		return nil
	}
	if envelope.Status == "error" {
		return fmt.Errorf("%s: %s", envelope.Code, envelope.Message)
	}
	if len(envelope.Data) > 0 {
		var pretty any
		if err := json.Unmarshal(envelope.Data, &pretty); err == nil {
			out, _ := json.MarshalIndent(pretty, "", "  ")
			fmt.Println(string(out))
			return nil
		}
		fmt.Println(string(envelope.Data))
		return nil
	}
	if envelope.Message != "" {
		fmt.Println(envelope.Message)
	}
	return nil
}
