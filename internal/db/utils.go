package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dtnitsch/linkslug/internal/common"
	dbpkg "github.com/dtnitsch/linkslug/pkg/db"
	"github.com/urfave/cli/v2"
)

// openDatabase opens the database the configuration points at, without
// building the rest of the service.
func openDatabase(c *cli.Context) (*dbpkg.DB, error) {
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	database, err := dbpkg.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return database, nil
}

// identityArg returns the first positional argument as an identity id.
func identityArg(c *cli.Context) (string, error) {
	id := strings.TrimSpace(c.Args().First())
	if id == "" {
		return "", errors.New("identity id is required")
	}
	return id, nil
}
