package db

import (
	"fmt"
	"os"
	"strings"

	"github.com/dtnitsch/linkslug/internal/common"
	dbpkg "github.com/dtnitsch/linkslug/pkg/db"
	"github.com/dtnitsch/linkslug/pkg/shortener"
	"github.com/urfave/cli/v2"
)

// HistoryAction lists the recorded slugs of one identity, newest first.
func HistoryAction(c *cli.Context) error {
	id, err := identityArg(c)
	if err != nil {
		return err
	}
	database, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer database.Close()

	entries, err := database.History(c.Context, id, c.Int("limit"))
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Printf("No history for %s\n", id)
		return nil
	}

	fmt.Printf("%-6s %-20s %-10s %-40s %s\n", "ID", "Created", "Tier", "Slug", "URL")
	fmt.Println(strings.Repeat("-", 120))
	for _, e := range entries {
		fmt.Printf("%-6d %-20s %-10s %-40s %s\n",
			e.ID,
			e.CreatedAt.Format("2006-01-02 15:04:05"),
			e.Tier,
			e.Slug,
			e.URL,
		)
	}
	fmt.Printf("\nTotal: %d slugs\n", len(entries))
	fmt.Printf("\nTip: Use 'linkslug analyze %s' to learn this identity's pattern\n", id)
	return nil
}

// ProfilesAction lists stored naming profiles.
func ProfilesAction(c *cli.Context) error {
	database, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer database.Close()

	profiles, err := database.ListProfiles(c.Context, c.Int("limit"))
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		fmt.Println("No profiles found")
		return nil
	}

	fmt.Printf("%-30s %-12s %-8s %-20s\n", "Identity", "Confidence", "URLs", "Updated")
	fmt.Println(strings.Repeat("-", 80))
	for _, p := range profiles {
		confidence := "-"
		if p.Confidence.Valid {
			confidence = fmt.Sprintf("%.2f", p.Confidence.Float64)
		}
		fmt.Printf("%-30s %-12s %-8d %-20s\n",
			p.IdentityID,
			confidence,
			p.URLsAnalyzed,
			p.LastUpdated.Format("2006-01-02 15:04:05"),
		)
	}
	fmt.Printf("\nTotal: %d profiles\n", len(profiles))
	fmt.Printf("\nTip: Use 'linkslug db profile <identity>' to see details\n")
	return nil
}

// ProfileAction prints one identity's full naming profile.
func ProfileAction(c *cli.Context) error {
	id, err := identityArg(c)
	if err != nil {
		return err
	}
	database, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer database.Close()

	profile, err := database.GetProfile(c.Context, id)
	if err != nil {
		return err
	}
	if profile == nil {
		return fmt.Errorf("no profile for %s", id)
	}
	return common.Print(os.Stdout, profile, c.String("format"))
}

// RecordAction appends an externally chosen slug to an identity's
// history, so hand-written slugs count toward its pattern.
func RecordAction(c *cli.Context) error {
	id, err := identityArg(c)
	if err != nil {
		return err
	}
	slug := strings.TrimSpace(c.String("slug"))
	if slug == "" {
		return fmt.Errorf("--slug is required")
	}
	_, canonical, err := shortener.ParseURL(common.SanitizeURL(c.String("url")))
	if err != nil {
		return err
	}

	database, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer database.Close()

	err = database.AppendHistory(c.Context, dbpkg.HistoryEntry{
		IdentityID: id,
		URL:        canonical,
		Slug:       slug,
		Tier:       "manual",
	})
	if err != nil {
		return err
	}
	fmt.Printf("Recorded %s for %s\n", slug, id)
	return nil
}
