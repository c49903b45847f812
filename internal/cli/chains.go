package cli

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vietddude/paygate/internal/control"
	"github.com/vietddude/paygate/internal/core/price"
)

var chainsCmd = &cobra.Command{
	Use:   "chains",
	Short: "List the usable chains and the price in token base units",
	Run:   runChains,
}

func init() {
	rootCmd.AddCommand(chainsCmd)
}

func runChains(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	reg, err := control.LoadRegistry(cfg)
	if err != nil {
		slog.Error("Failed to load chains", "error", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tNAME\tTOKEN\tADDRESS\tPRICE (BASE UNITS)")
	for _, c := range reg.Chains() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			c.Key,
			c.Name,
			c.Token.Symbol,
			c.Token.Address,
			price.ToBaseUnits(cfg.PriceUnits, c.Token.Decimals).String(),
		)
	}
	_ = w.Flush()
}
