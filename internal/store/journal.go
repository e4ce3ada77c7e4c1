package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/splay/internal/action"
	"github.com/roach88/splay/internal/state"
)

// ErrGameNotFound is returned when a game id has no record.
var ErrGameNotFound = errors.New("game not found")

// JournalEntry is one accepted action and the fingerprint of the state
// it produced.
type JournalEntry struct {
	GameID      string
	Seq         int64
	Action      action.Action
	Fingerprint string
}

// GameRecord is the stored header of a game: its spec and the state it
// started from.
type GameRecord struct {
	GameID       string
	SpecID       string
	InitialState *state.GameState
}

// CreateGame stores the game header with its initial state snapshot.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - re-registering an
// existing game is silently ignored.
//
// The initial state must not carry a pending resolution: continuation
// variables are not serialized, so only quiescent states snapshot
// losslessly.
func (s *Store) CreateGame(ctx context.Context, gameID, specID string, initial *state.GameState) error {
	if len(initial.PendingEffects) > 0 {
		return fmt.Errorf("create game: initial state has pending effects")
	}
	stateJSON, err := json.Marshal(initial)
	if err != nil {
		return fmt.Errorf("create game: marshal state: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO games (id, spec_id, initial_state)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, gameID, specID, string(stateJSON))
	if err != nil {
		return fmt.Errorf("create game: %w", err)
	}
	return nil
}

// ReadGame retrieves a game header by id.
// Returns ErrGameNotFound if no record exists.
func (s *Store) ReadGame(ctx context.Context, gameID string) (GameRecord, error) {
	var rec GameRecord
	var stateJSON string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, spec_id, initial_state FROM games WHERE id = ?
	`, gameID).Scan(&rec.GameID, &rec.SpecID, &stateJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return GameRecord{}, ErrGameNotFound
	}
	if err != nil {
		return GameRecord{}, fmt.Errorf("read game: %w", err)
	}

	var st state.GameState
	if err := json.Unmarshal([]byte(stateJSON), &st); err != nil {
		return GameRecord{}, fmt.Errorf("read game: unmarshal state: %w", err)
	}
	rec.InitialState = &st
	return rec, nil
}

// AppendAction inserts a journal entry. Returns whether a new row was
// inserted.
//
// Uses ON CONFLICT(game_id, seq) DO NOTHING for idempotency: writing
// the same entry twice is a no-op. Appending a DIFFERENT action at an
// occupied seq is an error - the journal is append-only and a conflict
// there means two writers disagree about history.
func (s *Store) AppendAction(ctx context.Context, entry JournalEntry) (inserted bool, err error) {
	payload, err := json.Marshal(entry.Action)
	if err != nil {
		return false, fmt.Errorf("append action: marshal: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("append action: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO actions (game_id, seq, kind, player_id, payload, fingerprint)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(game_id, seq) DO NOTHING
	`,
		entry.GameID,
		entry.Seq,
		string(entry.Action.Kind),
		entry.Action.PlayerID,
		string(payload),
		entry.Fingerprint,
	)
	if err != nil {
		return false, fmt.Errorf("append action: insert: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("append action: rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// Conflict - verify the existing row is the same entry.
		var existingPayload, existingFingerprint string
		err = tx.QueryRowContext(ctx, `
			SELECT payload, fingerprint FROM actions WHERE game_id = ? AND seq = ?
		`, entry.GameID, entry.Seq).Scan(&existingPayload, &existingFingerprint)
		if err != nil {
			return false, fmt.Errorf("append action: select existing: %w", err)
		}
		if existingPayload != string(payload) || existingFingerprint != entry.Fingerprint {
			return false, fmt.Errorf("append action: seq %d of game %q already holds a different entry",
				entry.Seq, entry.GameID)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("append action: commit: %w", err)
	}
	return rowsAffected > 0, nil
}

// ReadActions returns the journal of a game ordered by seq ASC.
// Returns an empty slice (not nil) if the game has no entries.
func (s *Store) ReadActions(ctx context.Context, gameID string) ([]JournalEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT game_id, seq, payload, fingerprint
		FROM actions
		WHERE game_id = ?
		ORDER BY seq ASC
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("query actions: %w", err)
	}
	defer rows.Close()

	var entries []JournalEntry
	for rows.Next() {
		var e JournalEntry
		var payload string
		if err := rows.Scan(&e.GameID, &e.Seq, &payload, &e.Fingerprint); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &e.Action); err != nil {
			return nil, fmt.Errorf("unmarshal action at seq %d: %w", e.Seq, err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate actions: %w", err)
	}

	if entries == nil {
		entries = []JournalEntry{}
	}
	return entries, nil
}

// LastSeq returns the highest journaled seq for a game, or -1 when the
// journal is empty.
func (s *Store) LastSeq(ctx context.Context, gameID string) (int64, error) {
	var seq sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(seq) FROM actions WHERE game_id = ?
	`, gameID).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	if !seq.Valid {
		return -1, nil
	}
	return seq.Int64, nil
}

// ListGames returns the ids of every stored game, ordered by id.
func (s *Store) ListGames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM games ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan game id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate games: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}
