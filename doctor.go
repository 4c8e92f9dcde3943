package main

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mnishina/avif-converter/encoder"
	"github.com/mnishina/avif-converter/report"
)

func newDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the external encoder tools are installed",
		RunE: func(cmd *cobra.Command, args []string) error {
			tools := encoder.RequiredTools()
			rows := make([][]string, 0, len(tools))
			missing := 0
			for _, tool := range tools {
				if _, err := exec.LookPath(tool.Command); err != nil {
					missing++
					rows = append(rows, []string{tool.Command, "missing", "", tool.Purpose})
					continue
				}
				rows = append(rows, []string{tool.Command, "ok", toolVersion(tool.Command), tool.Purpose})
			}
			fmt.Println(report.Table([]string{"TOOL", "STATUS", "VERSION", "USED FOR"}, rows))
			if missing > 0 {
				return fmt.Errorf("%d of %d tools missing", missing, len(tools))
			}
			return nil
		},
	}
}

// toolVersion probes the command for its version string. The webp tools only
// understand the single-dash form, so both spellings are tried.
func toolVersion(command string) string {
	for _, flag := range []string{"--version", "-version"} {
		out, err := exec.Command(command, flag).Output()
		if err != nil || len(out) == 0 {
			continue
		}
		line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
		if len(line) > 60 {
			line = line[:60]
		}
		return line
	}
	return "unknown"
}
