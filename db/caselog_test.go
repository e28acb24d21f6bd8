package db

import (
	"database/sql"
	"testing"
	"time"

	"github.com/bakape/caselog/common"
	"github.com/bakape/caselog/test"
)

func TestCaseLogs(t *testing.T) {
	assertTableClear(t, "case_notes", "cases", "case_logs")

	std := common.CaseLog{
		Op:               common.OpNew,
		ContentType:      "post",
		ContentID:        22,
		ContentTitle:     "a post",
		UserID:           5,
		WarningID:        11,
		IssuedAt:         time.Now().Unix(),
		IssuerID:         8,
		DefinitionID:     2,
		Title:            "Spam",
		Notes:            "first offence",
		Points:           3,
		ExpiresAt:        time.Now().Add(time.Hour).Unix(),
		ExtraGroups:      []int64{4, 5},
		ReplyBanThreadID: 100,
		ReplyBanPostID:   55,
	}
	err := InTransaction(false, func(tx *sql.Tx) error {
		return InsertCaseLog(tx, &std)
	})
	if err != nil {
		t.Fatal(err)
	}
	if std.ID == 0 {
		t.Fatal("id not assigned")
	}

	got, err := GetCaseLog(std.ID)
	if err != nil {
		t.Fatal(err)
	}
	test.AssertEquals(t, got, std)

	t.Run("nil extra groups", func(t *testing.T) {
		l := std
		l.ID = 0
		l.ExtraGroups = nil
		err := InTransaction(false, func(tx *sql.Tx) error {
			return InsertCaseLog(tx, &l)
		})
		if err != nil {
			t.Fatal(err)
		}
		got, err := GetCaseLog(l.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.ExtraGroups != nil {
			t.Fatalf("phantom groups: %v", got.ExtraGroups)
		}
	})

	t.Run("trail through note links", func(t *testing.T) {
		kase := insertSampleCase(t)
		err := InTransaction(false, func(tx *sql.Tx) error {
			return InsertCaseNote(tx, &common.CaseNote{
				CaseID:       kase.ID,
				UserID:       8,
				WarningLogID: std.ID,
			})
		})
		if err != nil {
			t.Fatal(err)
		}

		logs, err := GetCaseLogs(kase.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(logs) != 1 {
			t.Fatalf("bad log count: %d", len(logs))
		}
		test.AssertEquals(t, logs[0], std)

		// Plain notes without a link do not pull in log rows
		err = InTransaction(false, func(tx *sql.Tx) error {
			return InsertCaseNote(tx, &common.CaseNote{
				CaseID: kase.ID,
				UserID: 8,
				Body:   "just a comment",
			})
		})
		if err != nil {
			t.Fatal(err)
		}
		logs, err = GetCaseLogs(kase.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(logs) != 1 {
			t.Fatalf("unlinked note joined: %d", len(logs))
		}
	})
}
