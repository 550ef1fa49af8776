package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/target/rightname-go/internal/domain/model"
	"github.com/target/rightname-go/internal/progress"
)

func (c *cli) evaluateCmd() *cobra.Command {
	var (
		req       model.EvaluationRequest
		countries string
		stages    bool
	)
	cmd := &cobra.Command{
		Use:   "evaluate <name>[,<name>...]",
		Short: "Evaluate one or more brand names",
		Example: `  rightname evaluate Lumora --category "Skincare" --positioning Premium --countries "USA,India"
  rightname evaluate "Lumora, Solvia" --market-scope Multi-Country`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.BrandNames = model.SplitList(strings.Join(args, ","))
			req.Countries = model.SplitList(countries)

			view := &progressView{cli: c, stages: stages}
			report, err := c.app.Evaluations.Evaluate(cmd.Context(), req, view.observe)
			view.finish(err != nil)
			if err != nil {
				return err
			}
			return c.styles.writeReport(c.out, report)
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Category, "category", "", "product category")
	f.StringVar(&req.Industry, "industry", "", "industry")
	f.StringVar(&req.ProductType, "product-type", "", "product type")
	f.StringVar(&req.USP, "usp", "", "unique selling proposition")
	f.StringVar(&req.BrandVibe, "vibe", "", "brand vibe")
	f.StringVar(&req.Positioning, "positioning", "Mid-Range", "market positioning")
	f.StringVar(&req.MarketScope, "market-scope", "Single Country", "market scope")
	f.StringVar(&countries, "countries", "USA", "comma-separated target countries")
	f.BoolVar(&stages, "stages", false, "print the stage checklist when the job ends")
	return cmd
}

// progressView redraws a single status line on stderr.
type progressView struct {
	cli    *cli
	stages bool

	mu   sync.Mutex
	last progress.Snapshot
	seen bool
}

func (v *progressView) observe(snap progress.Snapshot) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.last = snap
	v.seen = true
	fmt.Fprint(v.cli.errOut, "\r\033[K"+v.cli.styles.progressLine(snap))
}

// finish ends the status line. The stage checklist follows when asked for or when the
// job failed, so the user sees how far it got.
func (v *progressView) finish(failed bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.seen {
		return
	}
	fmt.Fprintln(v.cli.errOut)
	if v.stages || failed {
		fmt.Fprint(v.cli.errOut, v.cli.styles.stageList(v.last))
	}
}
