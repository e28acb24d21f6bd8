package warn

import (
	"os"
	"testing"

	"github.com/bakape/caselog/config"
	"github.com/bakape/caselog/db"
	"github.com/bakape/caselog/mlog"
)

func TestMain(m *testing.M) {
	mlog.Init()
	if err := config.Server.Load(); err != nil {
		panic(err)
	}
	if err := db.LoadTestDB("warn"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func assertTableClear(t *testing.T, tables ...string) {
	t.Helper()
	if err := db.ClearTables(tables...); err != nil {
		t.Fatal(err)
	}
}
