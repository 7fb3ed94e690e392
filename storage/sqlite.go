package storage

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"loggit/models"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	full_name TEXT NOT NULL,
	email TEXT NOT NULL DEFAULT '',
	tel TEXT NOT NULL DEFAULT '',
	address TEXT NOT NULL DEFAULT '',
	dob TEXT NOT NULL DEFAULT '',
	role TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'active',
	passcode_hash TEXT NOT NULL DEFAULT '',
	passcode_set INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL DEFAULT 0,
	updated_at INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS entries (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	date TEXT NOT NULL,
	time_in TEXT NOT NULL DEFAULT '',
	time_out TEXT NOT NULL DEFAULT '',
	morning_break INTEGER NOT NULL DEFAULT 0,
	lunch INTEGER NOT NULL DEFAULT 0,
	afternoon_break INTEGER NOT NULL DEFAULT 0,
	total_hours REAL NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_entries_user_id ON entries (user_id);

CREATE TABLE IF NOT EXISTS verifications (
	subject_id TEXT NOT NULL,
	period_key TEXT NOT NULL,
	is_verified INTEGER NOT NULL DEFAULT 0,
	updated_at INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (subject_id, period_key)
);
`

// SQLite is the local fallback tier: a file-backed cache with the same
// contract as the remote store, standing in whenever the remote is
// unreachable.
type SQLite struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("local store path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLite) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, full_name, email, tel, address, dob, role, status,
		        passcode_hash, passcode_set, created_at, updated_at
		 FROM users ORDER BY full_name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		var passcodeSet int64
		var createdAt, updatedAt int64
		if err := rows.Scan(&u.ID, &u.Username, &u.FullName, &u.Email, &u.Tel,
			&u.Address, &u.DOB, &u.Role, &u.Status,
			&u.PasscodeHash, &passcodeSet, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		u.PasscodeSet = passcodeSet != 0
		u.CreatedAt = time.Unix(createdAt, 0).UTC()
		u.UpdatedAt = time.Unix(updatedAt, 0).UTC()
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *SQLite) ListEntries(ctx context.Context) ([]models.WorkEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, date, time_in, time_out, morning_break, lunch,
		        afternoon_break, total_hours, created_at
		 FROM entries ORDER BY date DESC, created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.WorkEntry
	for rows.Next() {
		var e models.WorkEntry
		var date string
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.UserID, &date, &e.TimeIn, &e.TimeOut,
			&e.MorningBreak, &e.Lunch, &e.AfternoonBreak, &e.TotalHours, &createdAt); err != nil {
			return nil, err
		}
		// A bad date row yields a zero Date; the aggregator skips it.
		e.Date, _ = time.Parse(dateLayout, date)
		e.CreatedAt = time.Unix(createdAt, 0).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLite) ListVerifications(ctx context.Context) ([]models.VerificationRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT subject_id, period_key, is_verified, updated_at FROM verifications`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.VerificationRecord
	for rows.Next() {
		var v models.VerificationRecord
		var isVerified, updatedAt int64
		if err := rows.Scan(&v.SubjectID, &v.PeriodKey, &isVerified, &updatedAt); err != nil {
			return nil, err
		}
		v.IsVerified = isVerified != 0
		v.UpdatedAt = time.Unix(updatedAt, 0).UTC()
		records = append(records, v)
	}
	return records, rows.Err()
}

func (s *SQLite) PutEntry(ctx context.Context, entry models.WorkEntry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (id, user_id, date, time_in, time_out, morning_break,
		                      lunch, afternoon_break, total_hours, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   user_id = excluded.user_id,
		   date = excluded.date,
		   time_in = excluded.time_in,
		   time_out = excluded.time_out,
		   morning_break = excluded.morning_break,
		   lunch = excluded.lunch,
		   afternoon_break = excluded.afternoon_break,
		   total_hours = excluded.total_hours`,
		entry.ID, entry.UserID, entry.Date.Format(dateLayout), entry.TimeIn, entry.TimeOut,
		entry.MorningBreak, entry.Lunch, entry.AfternoonBreak, entry.TotalHours,
		createdAt.Unix())
	return err
}

func (s *SQLite) RemoveEntry(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	return err
}

func (s *SQLite) PutVerification(ctx context.Context, subjectID, periodKey string, verified bool) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO verifications (subject_id, period_key, is_verified, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(subject_id, period_key) DO UPDATE SET
		   is_verified = excluded.is_verified,
		   updated_at = excluded.updated_at`,
		subjectID, periodKey, boolToInt(verified), time.Now().Unix())
	return err
}

func (s *SQLite) PutUser(ctx context.Context, user models.User) error {
	now := time.Now().Unix()
	createdAt := now
	if !user.CreatedAt.IsZero() {
		createdAt = user.CreatedAt.Unix()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, full_name, email, tel, address, dob, role,
		                    status, passcode_hash, passcode_set, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   username = excluded.username,
		   full_name = excluded.full_name,
		   email = excluded.email,
		   tel = excluded.tel,
		   address = excluded.address,
		   dob = excluded.dob,
		   role = excluded.role,
		   status = excluded.status,
		   passcode_hash = excluded.passcode_hash,
		   passcode_set = excluded.passcode_set,
		   updated_at = excluded.updated_at`,
		user.ID, user.Username, user.FullName, user.Email, user.Tel, user.Address,
		user.DOB, string(user.Role), string(user.Status), user.PasscodeHash,
		boolToInt(user.PasscodeSet), createdAt, now)
	return err
}

func (s *SQLite) PatchUser(ctx context.Context, id string, patch models.UserPatch) error {
	fields := patch.Fields()
	if len(fields) == 0 {
		return nil
	}

	assignments := make([]string, 0, len(fields)+1)
	args := make([]interface{}, 0, len(fields)+2)
	for column, value := range fields {
		assignments = append(assignments, column+" = ?")
		args = append(args, value)
	}
	assignments = append(assignments, "updated_at = ?")
	args = append(args, time.Now().Unix())
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = ?`, strings.Join(assignments, ", "))
	_, err := s.db.ExecContext(ctx, query, args...)
	return err
}

func (s *SQLite) RemoveUser(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	return err
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
