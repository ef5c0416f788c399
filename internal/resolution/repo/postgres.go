package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/pronotracker/resolution-engine/internal/resolution/model"
)

// Postgres implementa a persistência de pronostics e snapshots de usuário
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório de resolução
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// FindOpen seleciona os pronostics em PENDING/LIVE dos esportes suportados
func (p *Postgres) FindOpen(ctx context.Context, sports []string) ([]model.Prediction, error) {
	const q = `
		SELECT id, sport, home_team, away_team, bet, odds, kickoff_at, status,
		       COALESCE(score_live,''), resolved_at, COALESCE(correction_note,''),
		       created_at, updated_at
		FROM predictions
		WHERE status IN ('PENDING','LIVE') AND sport = ANY($1)
		ORDER BY kickoff_at
	`
	rows, err := p.db.QueryContext(ctx, q, pq.Array(sports))
	if err != nil {
		return nil, fmt.Errorf("find open predictions: %w", err)
	}
	defer rows.Close()

	var out []model.Prediction
	for rows.Next() {
		var pr model.Prediction
		if err := rows.Scan(
			&pr.ID, &pr.Sport, &pr.HomeTeam, &pr.AwayTeam, &pr.Bet, &pr.Odds,
			&pr.KickoffAt, &pr.Status, &pr.ScoreLive, &pr.ResolvedAt,
			&pr.CorrectionNote, &pr.CreatedAt, &pr.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, pr)
	}
	return out, rows.Err()
}

// UpdateLive marca o pronostic como LIVE e grava o placar corrente.
// Só escreve se algo mudou, pra não gerar broadcast redundante.
func (p *Postgres) UpdateLive(ctx context.Context, id, score string) (bool, error) {
	const q = `
		UPDATE predictions
		SET status='LIVE', score_live=$2, updated_at=NOW()
		WHERE id=$1
		  AND status IN ('PENDING','LIVE')
		  AND (score_live IS DISTINCT FROM $2 OR status <> 'LIVE')
	`
	res, err := p.db.ExecContext(ctx, q, id, score)
	if err != nil {
		return false, fmt.Errorf("update live: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Resolve fecha o pronostic e sincroniza todos os user_bets na mesma
// transação (tudo-ou-nada por pronostic). O SELECT FOR UPDATE serializa
// o read-modify-write: dois passes concorrentes não fecham o mesmo item
// duas vezes. applied=false quando outro passe chegou primeiro.
func (p *Postgres) Resolve(ctx context.Context, id, status, finalScore string) (affected int64, applied bool, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("resolve begin: %w", err)
	}
	defer tx.Rollback()

	var current string
	if err := tx.QueryRowContext(ctx, `SELECT status FROM predictions WHERE id=$1 FOR UPDATE`, id).Scan(&current); err != nil {
		return 0, false, fmt.Errorf("resolve lock: %w", err)
	}
	if model.Terminal(current) {
		return 0, false, nil
	}

	const upd = `
		UPDATE predictions
		SET status=$2, score_live=COALESCE(NULLIF($3,''), score_live),
		    resolved_at=NOW(), updated_at=NOW()
		WHERE id=$1
	`
	if _, err := tx.ExecContext(ctx, upd, id, status, finalScore); err != nil {
		return 0, false, fmt.Errorf("resolve prediction: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE user_bets SET status=$2, updated_at=NOW() WHERE prediction_id=$1`, id, status)
	if err != nil {
		return 0, false, fmt.Errorf("sync user bets: %w", err)
	}
	affected, _ = res.RowsAffected()

	if err := insertTransition(ctx, tx, id, current, status, ""); err != nil {
		return 0, false, err
	}

	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("resolve commit: %w", err)
	}
	return affected, true, nil
}

// Correct aplica uma correção manual de operador. Diferente de Resolve,
// reescreve inclusive status terminal e registra a nota explicativa.
func (p *Postgres) Correct(ctx context.Context, id, status, note string) (int64, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("correct begin: %w", err)
	}
	defer tx.Rollback()

	var current string
	if err := tx.QueryRowContext(ctx, `SELECT status FROM predictions WHERE id=$1 FOR UPDATE`, id).Scan(&current); err != nil {
		return 0, fmt.Errorf("correct lock: %w", err)
	}

	const upd = `
		UPDATE predictions
		SET status=$2, correction_note=$3,
		    resolved_at=COALESCE(resolved_at, NOW()), updated_at=NOW()
		WHERE id=$1
	`
	if _, err := tx.ExecContext(ctx, upd, id, status, note); err != nil {
		return 0, fmt.Errorf("correct prediction: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE user_bets SET status=$2, updated_at=NOW() WHERE prediction_id=$1`, id, status)
	if err != nil {
		return 0, fmt.Errorf("correct user bets: %w", err)
	}
	affected, _ := res.RowsAffected()

	if err := insertTransition(ctx, tx, id, current, status, note); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("correct commit: %w", err)
	}
	return affected, nil
}

// insertTransition registra a trilha de auditoria das mudanças de status
func insertTransition(ctx context.Context, tx *sql.Tx, predictionID, oldStatus, newStatus, note string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO prediction_transitions (id, prediction_id, old_status, new_status, note, created_at)
		VALUES ($1,$2,$3,$4,$5,NOW())`,
		uuid.NewString(), predictionID, oldStatus, newStatus, note,
	)
	if err != nil {
		return fmt.Errorf("insert transition: %w", err)
	}
	return nil
}
