package sqlite

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/interviewforge/interviewforge/store"
)

func (d *DB) CreateInterviewSession(ctx context.Context, create *store.InterviewSession) (*store.InterviewSession, error) {
	profileJSON, roundsJSON, answersJSON, err := marshalSessionFields(create)
	if err != nil {
		return nil, err
	}

	now := time.Now().UnixMilli()
	if create.CreatedTs == 0 {
		create.CreatedTs = now
	}
	if create.UpdatedTs == 0 {
		create.UpdatedTs = now
	}
	if create.Status == "" {
		create.Status = store.SessionNotStarted
	}

	fields := []string{
		"uid", "role", "profile", "rounds",
		"current_round", "current_question", "answers", "status",
		"created_ts", "updated_ts",
	}
	args := []any{
		create.UID, create.Role, profileJSON, roundsJSON,
		create.CurrentRound, create.CurrentQuestion, answersJSON, create.Status,
		create.CreatedTs, create.UpdatedTs,
	}

	stmt := `INSERT INTO interview_session (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id`

	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, errors.Wrap(err, "failed to create interview session")
	}

	return create, nil
}

func (d *DB) ListInterviewSessions(ctx context.Context, find *store.FindInterviewSession) ([]*store.InterviewSession, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "uid = ?"), append(args, *v)
	}
	if v := find.Status; v != nil {
		where, args = append(where, "status = ?"), append(args, *v)
	}
	if v := find.Role; v != nil {
		where, args = append(where, "role = ?"), append(args, *v)
	}

	query := `
		SELECT
			id, uid, role, profile, rounds,
			current_round, current_question, answers, status,
			created_ts, updated_ts
		FROM interview_session
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY updated_ts DESC`

	if find.Limit != nil {
		query += " LIMIT ?"
		args = append(args, *find.Limit)
		if find.Offset != nil {
			query += " OFFSET ?"
			args = append(args, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query interview sessions")
	}
	defer rows.Close()

	list := make([]*store.InterviewSession, 0)
	for rows.Next() {
		session, err := scanSession(rows.Scan)
		if err != nil {
			return nil, err
		}
		list = append(list, session)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate interview sessions")
	}

	return list, nil
}

func (d *DB) UpdateInterviewSession(ctx context.Context, update *store.UpdateInterviewSession) (*store.InterviewSession, error) {
	set, args := []string{}, []any{}

	if v := update.Status; v != nil {
		set, args = append(set, "status = ?"), append(args, *v)
	}
	if v := update.CurrentRound; v != nil {
		set, args = append(set, "current_round = ?"), append(args, *v)
	}
	if v := update.CurrentQuestion; v != nil {
		set, args = append(set, "current_question = ?"), append(args, *v)
	}
	if update.Answers != nil {
		answersJSON, err := json.Marshal(update.Answers)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal answers")
		}
		set, args = append(set, "answers = ?"), append(args, string(answersJSON))
	}

	// A save always advances updated_ts past the caller's snapshot so that a
	// second save from the same snapshot cannot match the CAS predicate.
	newTs := time.Now().UnixMilli()
	if newTs <= update.ExpectedUpdatedTs {
		newTs = update.ExpectedUpdatedTs + 1
	}
	set, args = append(set, "updated_ts = ?"), append(args, newTs)

	args = append(args, update.UID, update.ExpectedUpdatedTs)
	stmt := `UPDATE interview_session SET ` + strings.Join(set, ", ") + ` WHERE uid = ? AND updated_ts = ?`

	result, err := d.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update interview session")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read rows affected")
	}
	if affected == 0 {
		return nil, d.classifyMissedUpdate(ctx, update.UID)
	}

	uid := update.UID
	list, err := d.ListInterviewSessions(ctx, &store.FindInterviewSession{UID: &uid})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, store.ErrNotFound
	}
	return list[0], nil
}

func (d *DB) DeleteInterviewSession(ctx context.Context, delete *store.DeleteInterviewSession) error {
	result, err := d.db.ExecContext(ctx, "DELETE FROM interview_session WHERE uid = ?", delete.UID)
	if err != nil {
		return errors.Wrap(err, "failed to delete interview session")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read rows affected")
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// classifyMissedUpdate distinguishes a CAS miss from a missing row.
func (d *DB) classifyMissedUpdate(ctx context.Context, uid string) error {
	var exists bool
	if err := d.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM interview_session WHERE uid = ?)", uid,
	).Scan(&exists); err != nil {
		return errors.Wrap(err, "failed to check interview session existence")
	}
	if exists {
		return store.ErrConflict
	}
	return store.ErrNotFound
}

func marshalSessionFields(session *store.InterviewSession) (string, string, string, error) {
	profileJSON, err := json.Marshal(session.Profile)
	if err != nil {
		return "", "", "", errors.Wrap(err, "failed to marshal candidate profile")
	}
	roundsJSON, err := json.Marshal(session.Rounds)
	if err != nil {
		return "", "", "", errors.Wrap(err, "failed to marshal rounds")
	}
	answers := session.Answers
	if answers == nil {
		answers = []store.Answer{}
	}
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return "", "", "", errors.Wrap(err, "failed to marshal answers")
	}
	return string(profileJSON), string(roundsJSON), string(answersJSON), nil
}

func scanSession(scan func(dest ...any) error) (*store.InterviewSession, error) {
	var session store.InterviewSession
	var profileJSON, roundsJSON, answersJSON string

	if err := scan(
		&session.ID,
		&session.UID,
		&session.Role,
		&profileJSON,
		&roundsJSON,
		&session.CurrentRound,
		&session.CurrentQuestion,
		&answersJSON,
		&session.Status,
		&session.CreatedTs,
		&session.UpdatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to scan interview session")
	}

	if err := json.Unmarshal([]byte(profileJSON), &session.Profile); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal candidate profile")
	}
	if err := json.Unmarshal([]byte(roundsJSON), &session.Rounds); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal rounds")
	}
	if err := json.Unmarshal([]byte(answersJSON), &session.Answers); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal answers")
	}

	return &session, nil
}
