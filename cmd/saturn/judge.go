package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/saturn/pkg/cli"
)

var (
	judgeServer  string
	judgeTenant  string
	judgeRuleset string
	judgePolicy  string
	judgeInput   string
	judgeOutput  string
)

var judgeCmd = &cobra.Command{
	Use:   "judge",
	Short: "Request one judgment from a running server",
	Long: `Send a single judgment request to a running Saturn server and print
the result.

The input is a JSON object of sensor readings, read from the --input file
or from stdin when --input is "-".`,
	RunE: runJudge,
}

func init() {
	judgeCmd.Flags().StringVar(&judgeServer, "server", "http://localhost:8080", "server base URL")
	judgeCmd.Flags().StringVar(&judgeTenant, "tenant", "", "tenant UUID")
	judgeCmd.Flags().StringVar(&judgeRuleset, "ruleset", "", "ruleset UUID")
	judgeCmd.Flags().StringVar(&judgePolicy, "policy", "", "judgment policy (server default when empty)")
	judgeCmd.Flags().StringVar(&judgeInput, "input", "-", "input JSON file, or - for stdin")
	judgeCmd.Flags().StringVarP(&judgeOutput, "output", "o", "text", "output format: text or json")
	judgeCmd.MarkFlagRequired("tenant")
	judgeCmd.MarkFlagRequired("ruleset")
	rootCmd.AddCommand(judgeCmd)
}

func runJudge(cmd *cobra.Command, args []string) error {
	input, err := readInput(judgeInput)
	if err != nil {
		return err
	}

	body, err := json.Marshal(map[string]any{
		"tenant_id":  judgeTenant,
		"ruleset_id": judgeRuleset,
		"input":      input,
		"policy":     judgePolicy,
	})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	ctx, stop := cli.SignalContext(cmd.Context())
	defer stop()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, judgeServer+"/v1/judge", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	// Inference-backed policies can take a while.
	client := &http.Client{Timeout: 3 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if msg, ok := result["error"].(string); ok {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, msg)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	return cli.NewFormatter(cli.OutputFormat(judgeOutput)).FormatTo(cmd.OutOrStdout(), result)
}

func readInput(path string) (map[string]any, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	var input map[string]any
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("input must be a JSON object: %w", err)
	}
	return input, nil
}
