package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"inferd/internal/registry"
)

func modelsCmd() *cobra.Command {
	var modelsDir string
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List *.gguf files in the models directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			models, err := registry.LoadDir(modelsDir)
			if err != nil {
				return err
			}
			if len(models) == 0 {
				fmt.Println("no models found in", modelsDir)
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSIZE\tPATH")
			for _, m := range models {
				fmt.Fprintf(w, "%s\t%s\t%s\n", m.ID, humanSize(m.SizeBytes), m.Path)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&modelsDir, "models-dir", "~/models/llm", "Directory to scan for *.gguf model files")
	return cmd
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.1fG", float64(n)/(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.1fM", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1fK", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%dB", n)
}
