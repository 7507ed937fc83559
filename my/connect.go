// Package my implements the data-access collaborator against MySQL
// with one table per collection holding a single `doc` JSON column.
package my

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"docbench/bench"

	_ "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
)

// Connect opens a database/sql handle against the target and pings it.
func Connect(c bench.ConnConfig) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&interpolateParams=true&timeout=30s",
		c.User, c.Password, c.Host, c.Port, c.Database)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "mysql open")
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "mysql ping")
	}
	return db, nil
}
