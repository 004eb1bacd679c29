package cli

import (
	"bufio"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/referral-checker/app/config"
	"github.com/referral-checker/internal/matcher"
	"github.com/referral-checker/internal/parser"
	"github.com/spf13/cobra"
)

var dedupCmd = &cobra.Command{
	Use:   "dedup FILE",
	Short: "Liệt kê các nhóm địa chỉ trùng trong một file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDedup,
}

func init() {
	rootCmd.AddCommand(dedupCmd)
}

func runDedup(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	defer logger.Sync()

	text, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("đọc file: %w", err)
	}

	addresses, _ := parser.NewInputParser(config.C.FoldUnicode, logger).ParseReferrerText(string(text))
	groups := matcher.New(config.C.EngineOptions()).FindDuplicates(addresses)

	out := bufio.NewWriter(cmd.OutOrStdout())
	defer out.Flush()

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, "PATTERN\tKIND\tCOUNT")
	for _, g := range groups {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\n", g.Pattern, g.Kind(), g.Count)
	}
	return w.Flush()
}
