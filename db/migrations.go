package db

import (
	"database/sql"

	"github.com/bakape/caselog/common"
	"github.com/go-playground/log"
)

var version = len(migrations)

var migrations = []func(*sql.Tx) error{
	func(tx *sql.Tx) (err error) {
		// Initialize DB
		return execAll(tx,
			`create table main (
				id text primary key,
				val text not null
			)`,
			`insert into main (id, val)
				values ('version', '0'), ('config', '{}')`,
			`create table cases (
				id bigserial primary key,
				content_type varchar(32) not null,
				content_id bigint not null,
				title varchar(150) not null,
				reported_user bigint not null,
				state varchar(10) not null default 'open',
				assigned_user bigint not null default 0,
				auto_reported boolean not null default false,
				created timestamp not null default (now() at time zone 'utc')
			)`,
			`create index cases_content on cases (content_type, content_id)`,
			`create table case_logs (
				id bigserial primary key,
				operation_type varchar(4) not null,
				warning_edit_date bigint not null default 0,
				content_type varchar(32) not null,
				content_id bigint not null,
				content_title varchar(150) not null,
				user_id bigint not null,
				warning_id bigint not null default 0,
				warning_date bigint not null default 0,
				warning_user_id bigint not null,
				warning_definition_id bigint not null default 0,
				title varchar(150) not null,
				notes text not null default '',
				points smallint not null default 0,
				expiry_date bigint not null default 0,
				is_expired boolean not null default false,
				extra_user_group_ids bigint[],
				reply_ban_thread_id bigint not null default 0,
				reply_ban_post_id bigint not null default 0
			)`,
			`create table case_notes (
				id bigserial primary key,
				case_id bigint not null references cases on delete cascade,
				user_id bigint not null,
				body text not null default '',
				is_report boolean not null default false,
				state_change varchar(10) not null default '',
				warning_log_id bigint not null default 0,
				created timestamp not null default (now() at time zone 'utc')
			)`,
			`create index case_notes_case on case_notes (case_id)`,
			`create table warnings (
				id bigserial primary key,
				content_type varchar(32) not null,
				content_id bigint not null,
				content_title varchar(150) not null,
				user_id bigint not null,
				warning_date bigint not null,
				warning_user_id bigint not null,
				warning_definition_id bigint not null default 0,
				title varchar(150) not null,
				notes text not null default '',
				points smallint not null default 0,
				expiry_date bigint not null default 0,
				is_expired boolean not null default false,
				extra_user_group_ids bigint[],
				case_id bigint not null default 0
			)`,
			`create table reply_bans (
				thread_id bigint not null,
				user_id bigint not null,
				post_id bigint not null default 0,
				issuer_id bigint not null,
				expiry_date bigint not null default 0,
				reason varchar(100) not null default '',
				created timestamp not null default (now() at time zone 'utc'),
				primary key (thread_id, user_id)
			)`,
		)
	},
}

// initDB bootstraps a fresh database by running every migration in order
func initDB() (err error) {
	log.Info("initializing database")
	return InTransaction(false, func(tx *sql.Tx) (err error) {
		for _, m := range migrations {
			err = m(tx)
			if err != nil {
				return
			}
		}
		_, err = sq.Update("main").
			Set("val", version).
			Where("id = 'version'").
			RunWith(tx).
			Exec()
		return
	})
}

func runMigrations() (err error) {
	for {
		var (
			currentVersion int
			done           bool
		)
		err = InTransaction(false, func(tx *sql.Tx) (err error) {
			// Lock version column to ensure no migrations from other
			// processes happen concurrently
			err = sq.Select("val").
				From("main").
				Where("id = 'version'").
				Suffix("for update").
				RunWith(tx).
				QueryRow().
				Scan(&currentVersion)
			if err != nil {
				return
			}
			if currentVersion == version {
				done = true
				return
			}
			if currentVersion > version {
				log.Fatal("database version ahead of codebase")
			}

			if !common.IsTest {
				log.Infof("upgrading database to version %d", currentVersion+1)
			}

			err = migrations[currentVersion](tx)
			if err != nil {
				return
			}

			// Write new version number
			_, err = sq.Update("main").
				Set("val", currentVersion+1).
				Where("id = 'version'").
				RunWith(tx).
				Exec()
			return
		})
		if err != nil || done {
			return
		}
	}
}
