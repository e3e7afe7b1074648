package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"vaultapi/internal/model"
	"vaultapi/internal/repository"
)

// AssetPostgres is a PostgreSQL implementation of repository.AssetRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type AssetPostgres struct {
	db *sql.DB
}

// NewAssetPostgres creates a new AssetPostgres repository.
func NewAssetPostgres(db *sql.DB) *AssetPostgres {
	return &AssetPostgres{db: db}
}

var _ repository.AssetRepository = (*AssetPostgres)(nil)

const assetColumns = `id, title, file_name, size_bytes, content_type, kind, storage_key, folder_id, owner_id, duration, sample_rate, bpm, key, genre, created_at`

func scanAsset(row interface{ Scan(...any) error }) (*model.Asset, error) {
	var a model.Asset
	if err := row.Scan(
		&a.ID,
		&a.Title,
		&a.FileName,
		&a.SizeBytes,
		&a.ContentType,
		&a.Kind,
		&a.StorageKey,
		&a.FolderID,
		&a.OwnerID,
		&a.Duration,
		&a.SampleRate,
		&a.BPM,
		&a.Key,
		&a.Genre,
		&a.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new asset row and returns the stored record.
func (r *AssetPostgres) Create(ctx context.Context, asset *model.Asset) (*model.Asset, error) {
	const q = `
		INSERT INTO assets (id, title, file_name, size_bytes, content_type, kind, storage_key, folder_id, owner_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + assetColumns
	row := r.db.QueryRowContext(ctx, q,
		asset.ID,
		asset.Title,
		asset.FileName,
		asset.SizeBytes,
		asset.ContentType,
		asset.Kind,
		asset.StorageKey,
		asset.FolderID,
		asset.OwnerID,
		asset.CreatedAt,
	)
	return scanAsset(row)
}

// FindByID fetches a single asset by its ID.
func (r *AssetPostgres) FindByID(ctx context.Context, id string) (*model.Asset, error) {
	const q = `SELECT ` + assetColumns + ` FROM assets WHERE id = $1`
	return scanAsset(r.db.QueryRowContext(ctx, q, id))
}

// List returns assets matching the filter using LIMIT/OFFSET pagination and a
// total count for the same filter.
func (r *AssetPostgres) List(ctx context.Context, f repository.AssetFilter, pq repository.PageQuery) (*repository.PageResult[model.Asset], error) {
	where, args := buildAssetWhere(f)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM assets`+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	qList := `SELECT ` + assetColumns + ` FROM assets` + where +
		fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	rows, err := r.db.QueryContext(ctx, qList, append(args, pq.Limit, pq.Offset)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Asset, 0)
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Asset]{Items: items, Total: total}, nil
}

func buildAssetWhere(f repository.AssetFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, val any) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.OwnerID != "" {
		add("owner_id = $%d", f.OwnerID)
	}
	if f.FolderID != nil {
		add("folder_id = $%d", *f.FolderID)
	}
	if f.Search != "" {
		add("(title ILIKE $%d OR file_name ILIKE $%[1]d)", "%"+f.Search+"%")
	}
	if f.Genre != "" {
		add("genre = $%d", f.Genre)
	}
	if f.Key != "" {
		add("key = $%d", f.Key)
	}
	if f.Kind != "" {
		add("kind = $%d", f.Kind)
	}
	if f.BPMMin > 0 {
		add("bpm >= $%d", f.BPMMin)
	}
	if f.BPMMax > 0 {
		add("bpm <= $%d", f.BPMMax)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// PatchMetadata applies a partial update; nil fields keep their stored value.
func (r *AssetPostgres) PatchMetadata(ctx context.Context, id string, meta model.AudioMetadata) error {
	const q = `
		UPDATE assets SET
			duration    = COALESCE($2::double precision, duration),
			sample_rate = COALESCE($3::integer, sample_rate),
			bpm         = COALESCE($4::integer, bpm),
			key         = COALESCE($5::text, key),
			genre       = COALESCE($6::text, genre)
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, q, id, meta.Duration, meta.SampleRate, meta.BPM, meta.Key, meta.Genre)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateTitle changes the display title of an asset.
func (r *AssetPostgres) UpdateTitle(ctx context.Context, id, title string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE assets SET title = $2 WHERE id = $1`, id, title)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetFolder reassigns the asset's folder; nil clears it.
func (r *AssetPostgres) SetFolder(ctx context.Context, id string, folderID *string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE assets SET folder_id = $2 WHERE id = $1`, id, folderID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
