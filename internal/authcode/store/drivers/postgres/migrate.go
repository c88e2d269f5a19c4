package postgres

import (
	"database/sql"
	"errors"

	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/store/drivers/postgres/migrations"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
)

var errNoDSN = errors.New("postgres: migrations need a store opened with NewStore")

// ApplyMigrations applies any pending migrations embedded in the binary. It
// uses a short-lived database/sql handle so the pool is left untouched.
func (s *Store) ApplyMigrations() error {
	if s.dsn == "" {
		return errNoDSN
	}

	// 1. Open a dedicated handle for the migrate driver
	db, err := sql.Open("pgx", s.dsn)
	if err != nil {
		return err
	}

	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		_ = db.Close()
		return err
	}

	// 2. Create the iofs (embedded filesystem) source driver
	source, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		_ = driver.Close()
		return err
	}

	// 3. Create the migrate instance
	instance, err := migrate.NewWithInstance("iofs", source, "pgx5", driver)
	if err != nil {
		_ = driver.Close()
		return err
	}
	defer func() {
		_, _ = instance.Close()
		_ = db.Close()
	}()

	// 4. Apply all up migrations
	if err := instance.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}
