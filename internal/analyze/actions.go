package analyze

import (
	"errors"
	"fmt"
	"os"

	"github.com/dtnitsch/linkslug/internal/common"
	"github.com/dtnitsch/linkslug/pkg/pattern"
	"github.com/urfave/cli/v2"
)

type row struct {
	IdentityID string  `json:"identity_id" yaml:"identity_id"`
	Status     string  `json:"status" yaml:"status"`
	Structure  string  `json:"structure,omitempty" yaml:"structure,omitempty"`
	Confidence float64 `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	Promoted   bool    `json:"promoted" yaml:"promoted"`
	Error      string  `json:"error,omitempty" yaml:"error,omitempty"`
}

func toRow(r pattern.Result) row {
	out := row{IdentityID: r.IdentityID, Status: string(r.Status), Promoted: r.Promoted}
	if r.Pattern != nil {
		out.Structure = r.Pattern.Structure
		out.Confidence = r.Pattern.Confidence
	}
	if r.Err != nil {
		out.Status = "failed"
		out.Error = r.Err.Error()
	}
	return out
}

// AnalyzeAction recomputes naming patterns for the identities given as
// arguments, or for every identity with history when --all is set.
func AnalyzeAction(c *cli.Context) error {
	all := c.Bool("all")
	if !all && c.NArg() == 0 {
		return errors.New("no identity given; pass identity ids or use --all")
	}

	app, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer app.Close()

	var results []pattern.Result
	if all {
		results, err = app.Service.AnalyzeAll(c.Context)
		if err != nil {
			return err
		}
	} else {
		for _, id := range c.Args().Slice() {
			res, err := app.Service.AnalyzeIdentityPattern(c.Context, id, c.Bool("force"))
			if err != nil {
				results = append(results, pattern.Result{IdentityID: id, Err: err})
				continue
			}
			results = append(results, *res)
		}
	}

	if len(results) == 0 {
		fmt.Fprintln(os.Stderr, "No identities with recorded history")
		return nil
	}

	rows := make([]row, len(results))
	failed := 0
	for i, r := range results {
		rows[i] = toRow(r)
		if r.Err != nil {
			failed++
		}
	}
	if err := common.Print(os.Stdout, rows, c.String("format")); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d analyses failed", failed, len(results))
	}
	return nil
}
