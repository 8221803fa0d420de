package asset

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestaozabele/assets/internal/db"
)

// Repository provê acesso a nós, membros de espaço e assets.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SpaceOfNode devolve o espaço dono do nó.
func (r *Repository) SpaceOfNode(ctx context.Context, nodeID string) (string, error) {
	const query = `
        SELECT space_id
        FROM nodes
        WHERE node_id = $1 AND deleted_at IS NULL
    `

	var spaceID string
	if err := r.pool.QueryRow(ctx, query, nodeID).Scan(&spaceID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNodeNotFound
		}
		return "", err
	}
	return spaceID, nil
}

// IsSpaceMember verifica vínculo ativo do usuário com o espaço.
func (r *Repository) IsSpaceMember(ctx context.Context, spaceID string, userID uuid.UUID) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM space_members
            WHERE space_id = $1 AND user_id = $2 AND active
        )
    `

	var ok bool
	if err := r.pool.QueryRow(ctx, query, spaceID, userID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// ListByTokens busca os assets do tipo informado registrados para os tokens.
func (r *Repository) ListByTokens(ctx context.Context, assetType Type, tokens []string) ([]UploadResult, error) {
	const query = `
        SELECT token, name, mime_type, size, height, width, COALESCE(preview, ''), bucket, asset_type
        FROM assets
        WHERE token = ANY($1) AND asset_type = $2
    `

	rows, err := r.pool.Query(ctx, query, tokens, assetType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []UploadResult
	for rows.Next() {
		var res UploadResult
		if err := rows.Scan(&res.Token, &res.Name, &res.MimeType, &res.Size, &res.Height, &res.Width, &res.Preview, &res.Bucket, &res.Type); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// InsertAsset registra o asset e contabiliza o uso do espaço na mesma transação.
// Tokens já registrados não são contabilizados de novo.
func (r *Repository) InsertAsset(ctx context.Context, a StoredAsset) error {
	const insert = `
        INSERT INTO assets (token, space_id, node_id, uploaded_by, asset_type, name, mime_type, size, height, width, preview, bucket)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11, ''), $12)
        ON CONFLICT (token) DO NOTHING
    `
	const usage = `
        INSERT INTO space_usage (space_id, used_bytes)
        VALUES ($1, $2)
        ON CONFLICT (space_id) DO UPDATE SET used_bytes = space_usage.used_bytes + EXCLUDED.used_bytes, updated_at = now()
    `

	return db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, insert,
			a.Token, a.SpaceID, a.NodeID, a.UploadedBy, a.Type, a.Name, a.MimeType,
			a.Size, a.Height, a.Width, a.Preview, a.Bucket,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		_, err = tx.Exec(ctx, usage, a.SpaceID, a.Size)
		return err
	})
}
