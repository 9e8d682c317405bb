package check

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) PutCheck(ctx context.Context, c Check) error {
	if err := c.Validate(); err != nil {
		return err
	}
	qj, err := json.Marshal(c.Questions)
	if err != nil {
		return err
	}
	if c.CreatedAt == 0 {
		c.CreatedAt = time.Now().Unix()
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO checks (id,title,questions_json,empty_hint,wrong_attempts_field,set_correct_answers,
			timeout_warning_seconds,timeout_warning_message,timer_warning_text,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, questions_json=EXCLUDED.questions_json,
			empty_hint=EXCLUDED.empty_hint, wrong_attempts_field=EXCLUDED.wrong_attempts_field,
			set_correct_answers=EXCLUDED.set_correct_answers,
			timeout_warning_seconds=EXCLUDED.timeout_warning_seconds,
			timeout_warning_message=EXCLUDED.timeout_warning_message,
			timer_warning_text=EXCLUDED.timer_warning_text`,
		c.ID, c.Title, string(qj), c.EmptyHint, c.WrongAttemptsField, boolInt(c.SetCorrectAnswers),
		c.TimeoutWarningSeconds, c.TimeoutWarningMessage, c.TimerWarningText, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("put check %s: %w", c.ID, err)
	}
	return nil
}

func (s *SQLStore) GetCheck(ctx context.Context, id string) (Check, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,title,questions_json,empty_hint,wrong_attempts_field,set_correct_answers,
			timeout_warning_seconds,timeout_warning_message,timer_warning_text,created_at
		FROM checks WHERE id=$1`, id)
	var c Check
	var qjson string
	var prefill int
	if err := row.Scan(&c.ID, &c.Title, &qjson, &c.EmptyHint, &c.WrongAttemptsField, &prefill,
		&c.TimeoutWarningSeconds, &c.TimeoutWarningMessage, &c.TimerWarningText, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Check{}, ErrNotFound
		}
		return Check{}, err
	}
	if err := json.Unmarshal([]byte(qjson), &c.Questions); err != nil {
		return Check{}, fmt.Errorf("decode questions of %s: %w", id, err)
	}
	c.SetCorrectAnswers = prefill != 0
	return c, nil
}

func (s *SQLStore) ListChecks(ctx context.Context, opts ListOpts) ([]Summary, error) {
	limit, offset := opts.Limit, opts.Offset
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	q := "%" + strings.ToLower(strings.TrimSpace(opts.Q)) + "%"
	rows, err := s.db.QueryContext(ctx, `SELECT c.id, c.title, c.questions_json, c.created_at,
			(SELECT COUNT(*) FROM completions p WHERE p.check_id = c.id)
		FROM checks c
		WHERE LOWER(c.id) LIKE $1 OR LOWER(c.title) LIKE $1
		ORDER BY c.created_at DESC, c.id ASC
		LIMIT $2 OFFSET $3`, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var sm Summary
		var qjson string
		if err := rows.Scan(&sm.ID, &sm.Title, &qjson, &sm.CreatedAt, &sm.Completions); err != nil {
			return nil, err
		}
		var qs []Question
		if err := json.Unmarshal([]byte(qjson), &qs); err == nil {
			sm.Questions = len(qs)
		}
		out = append(out, sm)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteCheck(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM completions WHERE check_id=$1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM checks WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func (s *SQLStore) RecordCompletion(ctx context.Context, c Completion) error {
	var exist int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM checks WHERE id=$1`, c.CheckID).Scan(&exist); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if c.Answers == nil {
		c.Answers = map[string]string{}
	}
	aj, err := json.Marshal(c.Answers)
	if err != nil {
		return err
	}
	if c.CompletedAt.IsZero() {
		c.CompletedAt = time.Now()
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO completions (id,check_id,participant_id,wrong_attempts,answers_json,completed_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		c.ID, c.CheckID, c.ParticipantID, c.WrongAttempts, string(aj), c.CompletedAt.Unix())
	if err != nil {
		return fmt.Errorf("record completion %s: %w", c.ID, err)
	}
	return nil
}

func (s *SQLStore) ListCompletions(ctx context.Context, checkID string) ([]Completion, error) {
	var exist int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM checks WHERE id=$1`, checkID).Scan(&exist); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id,check_id,participant_id,wrong_attempts,answers_json,completed_at
		FROM completions WHERE check_id=$1 ORDER BY completed_at ASC, id ASC`, checkID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Completion{}
	for rows.Next() {
		var c Completion
		var ajson string
		var at int64
		if err := rows.Scan(&c.ID, &c.CheckID, &c.ParticipantID, &c.WrongAttempts, &ajson, &at); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(ajson), &c.Answers); err != nil {
			c.Answers = map[string]string{}
		}
		c.CompletedAt = time.Unix(at, 0).UTC()
		out = append(out, c)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
