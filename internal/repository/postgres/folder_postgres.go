package postgres

import (
	"context"
	"database/sql"

	"vaultapi/internal/model"
	"vaultapi/internal/repository"
)

// FolderPostgres is a PostgreSQL implementation of repository.FolderRepository.
// Folder membership is derived from assets.folder_id on every read; folders
// carry no member column that could drift.
type FolderPostgres struct {
	db *sql.DB
}

// NewFolderPostgres creates a new FolderPostgres repository.
func NewFolderPostgres(db *sql.DB) *FolderPostgres {
	return &FolderPostgres{db: db}
}

var _ repository.FolderRepository = (*FolderPostgres)(nil)

// Create inserts a new folder row and returns the stored record.
func (r *FolderPostgres) Create(ctx context.Context, folder *model.Folder) (*model.Folder, error) {
	const q = `
		INSERT INTO folders (id, name, color, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, color, created_by, created_at
	`
	row := r.db.QueryRowContext(ctx, q,
		folder.ID,
		folder.Name,
		folder.Color,
		folder.CreatedBy,
		folder.CreatedAt,
	)
	var out model.Folder
	if err := row.Scan(&out.ID, &out.Name, &out.Color, &out.CreatedBy, &out.CreatedAt); err != nil {
		return nil, err
	}
	out.MemberAssetIDs = []string{}
	return &out, nil
}

// FindByID fetches a folder and rebuilds its member list from assets.
func (r *FolderPostgres) FindByID(ctx context.Context, id string) (*model.Folder, error) {
	const q = `SELECT id, name, color, created_by, created_at FROM folders WHERE id = $1`
	var f model.Folder
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&f.ID, &f.Name, &f.Color, &f.CreatedBy, &f.CreatedAt); err != nil {
		return nil, err
	}
	members, err := r.MemberIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	f.MemberAssetIDs = members
	return &f, nil
}

// List returns folders, optionally restricted to a creator.
func (r *FolderPostgres) List(ctx context.Context, createdBy string) ([]model.Folder, error) {
	q := `SELECT id, name, color, created_by, created_at FROM folders`
	var args []any
	if createdBy != "" {
		q += ` WHERE created_by = $1`
		args = append(args, createdBy)
	}
	q += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	folders := make([]model.Folder, 0)
	for rows.Next() {
		var f model.Folder
		if err := rows.Scan(&f.ID, &f.Name, &f.Color, &f.CreatedBy, &f.CreatedAt); err != nil {
			return nil, err
		}
		folders = append(folders, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range folders {
		members, err := r.MemberIDs(ctx, folders[i].ID)
		if err != nil {
			return nil, err
		}
		folders[i].MemberAssetIDs = members
	}
	return folders, nil
}

// Delete clears members' folder_id and removes the folder in one transaction.
// The member assets themselves are never deleted.
func (r *FolderPostgres) Delete(ctx context.Context, id string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE assets SET folder_id = NULL WHERE folder_id = $1`, id); err != nil {
		return false, err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM folders WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return n > 0, nil
}

// MemberIDs returns the IDs of assets currently assigned to the folder.
func (r *FolderPostgres) MemberIDs(ctx context.Context, id string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM assets WHERE folder_id = $1 ORDER BY created_at, id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var assetID string
		if err := rows.Scan(&assetID); err != nil {
			return nil, err
		}
		ids = append(ids, assetID)
	}
	return ids, rows.Err()
}
