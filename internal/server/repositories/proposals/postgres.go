package proposals

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/proposals/internal/common"
	"github.com/dmitrijs2005/proposals/internal/dbx"
	"github.com/dmitrijs2005/proposals/internal/server/models"
	"github.com/google/uuid"
)

const selectColumns = `id, owner_id, unique_token, shareable_link, response, created_at, responded_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Proposal) (bool, error) {
	query :=
		`INSERT INTO proposals (id, owner_id, unique_token, shareable_link, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (owner_id) DO NOTHING
		 `

	res, err := r.db.ExecContext(ctx, query, p.ID, p.OwnerID, p.Token, p.ShareableLink, p.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return n == 1, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Proposal, error) {
	if uuid.Validate(id) != nil {
		return nil, common.ErrorNotFound
	}
	return r.getOne(ctx, `SELECT `+selectColumns+` FROM proposals WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*models.Proposal, error) {
	return r.getOne(ctx, `SELECT `+selectColumns+` FROM proposals WHERE unique_token = $1`, token)
}

func (r *PostgresRepository) GetByOwner(ctx context.Context, ownerID string) (*models.Proposal, error) {
	return r.getOne(ctx, `SELECT `+selectColumns+` FROM proposals WHERE owner_id = $1`, ownerID)
}

func (r *PostgresRepository) MarkAnswered(ctx context.Context, token string, answer models.Answer, at time.Time) (*models.Proposal, error) {
	query :=
		`UPDATE proposals SET response = $2, responded_at = $3
		 WHERE unique_token = $1 AND response IS NULL
		 RETURNING ` + selectColumns

	p, err := scan(r.db.QueryRowContext(ctx, query, token, string(answer), at))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrAlreadyAnswered
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.Proposal, error) {
	p, err := scan(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func scan(row *sql.Row) (*models.Proposal, error) {
	var (
		p           models.Proposal
		response    sql.NullString
		respondedAt sql.NullTime
	)

	err := row.Scan(&p.ID, &p.OwnerID, &p.Token, &p.ShareableLink, &response, &p.CreatedAt, &respondedAt)
	if err != nil {
		return nil, err
	}

	if response.Valid {
		p.Response = models.Answer(response.String)
	}
	if respondedAt.Valid {
		t := respondedAt.Time
		p.RespondedAt = &t
	}

	return &p, nil
}
