package documents

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoCreateDefaultsPendingStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	doc := Document{
		ID:        "doc-1",
		OrgID:     "org-1",
		FileName:  "license.pdf",
		MimeType:  "application/pdf",
		SizeBytes: 2048,
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO documents").
		WithArgs(
			doc.ID,
			doc.OrgID,
			doc.FileName,
			doc.FileName, // original_filename defaults to file_name
			doc.MimeType,
			doc.MimeType, // content_type defaults to mime_type
			doc.SizeBytes,
			"local",
			sqlmock.AnyArg(), // storage_key
			sqlmock.AnyArg(), // document_type
			sqlmock.AnyArg(), // license_number
			sqlmock.AnyArg(), // owner_name
			sqlmock.AnyArg(), // owner_normalized
			sqlmock.AnyArg(), // expiration_date
			StatusPending,
			doc.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), doc); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectQuery("SELECT").
		WithArgs("org-1", "missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = repo.GetByID(context.Background(), "org-1", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoApplyExtractionSupersedesThenUpdates(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	expiration := time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC)
	fields := ExtractedFields{
		DocumentType:   "nursing_license",
		LicenseNumber:  "RN-12345",
		OwnerName:      "Jane Smith",
		ExpirationDate: &expiration,
		ExtractedAt:    time.Now().UTC(),
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE documents").
		WithArgs(StatusHistorical, "org-1", "doc-old").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE documents").
		WithArgs(
			sqlmock.AnyArg(), // document_type
			sqlmock.AnyArg(), // license_number
			sqlmock.AnyArg(), // owner_name
			sqlmock.AnyArg(), // owner_normalized
			sqlmock.AnyArg(), // expiration_date
			StatusActive,
			fields.ExtractedAt,
			"org-1",
			"doc-new",
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.ApplyExtraction(context.Background(), "org-1", "doc-new", fields, StatusActive, "doc-old"); err != nil {
		t.Fatalf("ApplyExtraction: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoApplyExtractionUniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	fields := ExtractedFields{
		LicenseNumber: "RN-12345",
		OwnerName:     "Jane Smith",
		ExtractedAt:   time.Now().UTC(),
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE documents").
		WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "uq_documents_lineage_active" (SQLSTATE 23505)`))
	mock.ExpectRollback()

	err = repo.ApplyExtraction(context.Background(), "org-1", "doc-new", fields, StatusActive, "")
	if !errors.Is(err, ErrLineageConflict) {
		t.Fatalf("expected ErrLineageConflict, got %v", err)
	}
}

func TestPGRepoApplyExtractionMissingDocument(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	fields := ExtractedFields{ExtractedAt: time.Now().UTC()}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE documents").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err = repo.ApplyExtraction(context.Background(), "org-1", "gone", fields, StatusActive, "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoSoftDeleteNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectExec("UPDATE documents").
		WithArgs(sqlmock.AnyArg(), "org-1", "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.SoftDelete(context.Background(), "org-1", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
