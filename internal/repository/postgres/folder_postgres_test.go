package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"vaultapi/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var folderCols = []string{"id", "name", "color", "created_by", "created_at"}

func TestFolderPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFolderPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	folder := &model.Folder{
		ID:        "folder-uuid",
		Name:      "Song_Idea",
		Color:     model.FolderColorProject,
		CreatedBy: "owner-1",
		CreatedAt: now,
	}

	mock.ExpectQuery("INSERT INTO folders").
		WithArgs(folder.ID, folder.Name, folder.Color, folder.CreatedBy, folder.CreatedAt).
		WillReturnRows(sqlmock.NewRows(folderCols).
			AddRow(folder.ID, folder.Name, folder.Color, folder.CreatedBy, folder.CreatedAt))

	result, err := repo.Create(ctx, folder)

	assert.NoError(t, err)
	assert.Equal(t, folder.ID, result.ID)
	assert.Empty(t, result.MemberAssetIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFolderPostgres_FindByID_DerivesMembers(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFolderPostgres(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT (.+) FROM folders WHERE id = ?").
		WithArgs("f1").
		WillReturnRows(sqlmock.NewRows(folderCols).
			AddRow("f1", "Track.track", model.FolderColorMerge, "owner-1", time.Now()))
	mock.ExpectQuery("SELECT id FROM assets WHERE folder_id = ?").
		WithArgs("f1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("a1").AddRow("a2"))

	folder, err := repo.FindByID(ctx, "f1")

	assert.NoError(t, err)
	assert.Equal(t, []string{"a1", "a2"}, folder.MemberAssetIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFolderPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFolderPostgres(db)
	ctx := context.Background()

	t.Run("existing folder clears members", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE assets SET folder_id = NULL WHERE folder_id = ?").
			WithArgs("f1").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec("DELETE FROM folders WHERE id = ?").
			WithArgs("f1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		existed, err := repo.Delete(ctx, "f1")

		assert.NoError(t, err)
		assert.True(t, existed)
	})

	t.Run("missing folder", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE assets SET folder_id = NULL WHERE folder_id = ?").
			WithArgs("missing").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("DELETE FROM folders WHERE id = ?").
			WithArgs("missing").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		existed, err := repo.Delete(ctx, "missing")

		assert.NoError(t, err)
		assert.False(t, existed)
	})

	t.Run("update error rolls back", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE assets SET folder_id = NULL WHERE folder_id = ?").
			WithArgs("f1").
			WillReturnError(sql.ErrConnDone)
		mock.ExpectRollback()

		_, err := repo.Delete(ctx, "f1")

		assert.Error(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
