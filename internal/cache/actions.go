package cache

import (
	"fmt"
	"os"
	"strings"

	"github.com/dtnitsch/linkslug/internal/common"
	"github.com/urfave/cli/v2"
)

// StatsAction prints the cache size and the most recent entries.
func StatsAction(c *cli.Context) error {
	app, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer app.Close()

	size, err := app.Service.CacheSize(c.Context)
	if err != nil {
		return fmt.Errorf("failed to read cache size: %w", err)
	}
	entries, err := app.Service.RecentEntries(c.Context, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to read cache entries: %w", err)
	}

	if strings.EqualFold(c.String("format"), "table") {
		fmt.Printf("Backend: %s\nEntries: %d\n\n", app.Config.Cache.Backend, size)
		fmt.Printf("%-20s %-40s %s\n", "Cached", "Slug", "URL")
		fmt.Println(strings.Repeat("-", 100))
		for _, e := range entries {
			fmt.Printf("%-20s %-40s %s\n", e.Timestamp.Format("2006-01-02 15:04:05"), e.Result.Slug, e.Key)
		}
		return nil
	}
	return common.Print(os.Stdout, map[string]any{
		"backend": app.Config.Cache.Backend,
		"size":    size,
		"recent":  entries,
	}, c.String("format"))
}

// ClearAction empties the cache.
func ClearAction(c *cli.Context) error {
	app, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Service.ClearCache(c.Context); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Cleared %s cache\n", app.Config.Cache.Backend)
	return nil
}
