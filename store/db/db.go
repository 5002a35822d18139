// Package db provides the database driver dispatch for the store.
package db

import (
	"github.com/pkg/errors"

	"github.com/interviewforge/interviewforge/internal/profile"
	"github.com/interviewforge/interviewforge/store"
	"github.com/interviewforge/interviewforge/store/db/postgres"
	"github.com/interviewforge/interviewforge/store/db/sqlite"
)

// NewDBDriver creates new db driver based on profile.
//
// SQLite is the default for dev/demo single-operator use; PostgreSQL is for
// deployments where session records must survive the host.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown db driver %q: only 'sqlite' and 'postgres' are supported", profile.Driver)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
