// Package db handles all database interactions of the module
package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/bakape/caselog/common"
	"github.com/bakape/caselog/config"
	_ "github.com/lib/pq" // Postgres driver
)

var (
	// Specifies the PostgreSQL connection URL. Also used for creating extra
	// connections with Listen().
	connectionURL string

	// Stores the postgres database instance
	db *sql.DB

	// Statement builder and cacher
	sq squirrel.StatementBuilderType
)

// LoadDB connects to the PostgreSQL database and performs schema upgrades
func LoadDB() error {
	return loadDB(config.Server.Database)
}

// LoadTestDB creates and loads a fresh testing database
func LoadTestDB(suffix string) (err error) {
	common.IsTest = true

	run := func(line ...string) error {
		c := exec.Command(line[0], line[1:]...)
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		return c.Run()
	}
	connURL, err := url.Parse(config.Server.Test.Database)
	if err != nil {
		return
	}
	user := connURL.User.Username()
	dbName := fmt.Sprintf("%s_%s", strings.Trim(connURL.Path, "/"), suffix)

	err = run(
		"psql",
		"-c", "drop database if exists "+dbName,
		config.Server.Database,
	)
	if err != nil {
		return
	}

	fmt.Println("creating test database:", dbName)
	err = run(
		"psql",
		"-c",
		fmt.Sprintf(
			"create database %s with owner %s encoding UTF8",
			dbName, user,
		),
		config.Server.Database,
	)
	if err != nil {
		return
	}

	connURL.Path = "/" + dbName
	return loadDB(connURL.String())
}

func loadDB(connURL string) (err error) {
	connectionURL = connURL

	db, err = sql.Open("postgres", connURL)
	if err != nil {
		return
	}

	sq = squirrel.StatementBuilder.
		RunWith(squirrel.NewStmtCacheProxy(db)).
		PlaceholderFormat(squirrel.Dollar)

	var exists bool
	const q = `select exists (
			select 1 from information_schema.tables
				where table_schema = 'public' and table_name = 'main'
		)`
	err = db.QueryRow(q).Scan(&exists)
	if err != nil {
		return
	}

	if !exists {
		err = initDB()
	} else {
		err = runMigrations()
	}
	if err != nil {
		return
	}

	return loadConfigs()
}

// ClearTables deletes the contents of specified DB tables. Only used for
// tests.
func ClearTables(tables ...string) error {
	for _, t := range tables {
		if _, err := db.Exec(`delete from ` + t); err != nil {
			return err
		}
	}
	return nil
}
