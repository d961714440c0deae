package generate

import (
	"errors"
	"fmt"
	"os"

	"github.com/dtnitsch/linkslug/internal/common"
	"github.com/dtnitsch/linkslug/models"
	"github.com/dtnitsch/linkslug/pkg/shortener"
	"github.com/urfave/cli/v2"
)

// Flags shared by generate and multiple.
var Flags = []cli.Flag{
	&cli.StringFlag{Name: "urls", Aliases: []string{"u"}, Usage: "Comma-separated URLs (or pass them as arguments)"},
	&cli.StringFlag{Name: "identity", Aliases: []string{"i"}, Usage: "Identity whose naming profile applies"},
	&cli.StringFlag{Name: "subscription", Value: "free", Usage: "Subscription tier: free, starter, pro, enterprise"},
	&cli.BoolFlag{Name: "brand-guidelines", Usage: "Request premium AI quality for brand-sensitive links"},
	&cli.BoolFlag{Name: "no-fetch", Usage: "Do not download the page; use the URL only"},
	&cli.BoolFlag{Name: "record", Usage: "Append the result to the identity's slug history"},
	&cli.StringFlag{Name: "format", Value: "json", Usage: "Output format: json or yaml"},
	&cli.StringFlag{Name: "fields", Usage: "Comma-separated result fields to print"},
	&cli.BoolFlag{Name: "terse", Usage: "Abbreviate result field names"},
}

func options(c *cli.Context) models.GenerateOptions {
	return models.GenerateOptions{
		IdentityID:       c.String("identity"),
		SubscriptionTier: c.String("subscription"),
		BrandGuidelines:  c.Bool("brand-guidelines"),
		DisableAI:        c.Bool("no-ai"),
		DisableFetch:     c.Bool("no-fetch"),
		RecordHistory:    c.Bool("record"),
	}
}

func urls(c *cli.Context) ([]string, error) {
	list := common.SplitURLs(c.String("urls"))
	for _, arg := range c.Args().Slice() {
		if u := common.SanitizeURL(arg); u != "" {
			list = append(list, u)
		}
	}
	if len(list) == 0 {
		return nil, errors.New("no URLs provided; use --urls or pass them as arguments")
	}
	return list, nil
}

// GenerateAction prints one slug per URL. Malformed URLs are reported and
// the rest still run.
func GenerateAction(c *cli.Context) error {
	list, err := urls(c)
	if err != nil {
		return err
	}
	if c.Bool("record") && c.String("identity") == "" {
		return errors.New("--record requires --identity")
	}

	app, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer app.Close()

	opts := options(c)
	out := make([]map[string]any, 0, len(list))
	var malformed []string
	for _, raw := range list {
		res, err := app.Service.GenerateSlug(c.Context, raw, opts)
		if errors.Is(err, shortener.ErrMalformedURL) {
			malformed = append(malformed, raw)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to generate slug for %s: %w", raw, err)
		}
		row := common.FilterResultFields(struct {
			URL string `json:"url"`
			models.SlugResult
		}{raw, res}, c.String("fields"), c.Bool("terse"))
		out = append(out, row)
	}

	if err := common.Print(os.Stdout, out, c.String("format")); err != nil {
		return err
	}
	if len(malformed) > 0 {
		fmt.Fprintf(os.Stderr, "Error: %d URL(s) are malformed:\n", len(malformed))
		for _, bad := range malformed {
			fmt.Fprintf(os.Stderr, "  - %s\n", bad)
		}
		return cli.Exit("", 1)
	}
	return nil
}

// MultipleAction prints several alternative slugs for a single URL.
func MultipleAction(c *cli.Context) error {
	list, err := urls(c)
	if err != nil {
		return err
	}
	if len(list) != 1 {
		return fmt.Errorf("multiple takes exactly one URL, got %d", len(list))
	}

	app, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer app.Close()

	candidates, err := app.Service.GenerateMultipleSlugs(c.Context, list[0], options(c), c.Int("count"))
	if err != nil {
		return err
	}

	out := make([]map[string]any, len(candidates))
	for i, cand := range candidates {
		out[i] = common.FilterResultFields(cand, c.String("fields"), c.Bool("terse"))
	}
	return common.Print(os.Stdout, out, c.String("format"))
}
