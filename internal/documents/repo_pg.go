package documents

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const documentColumns = `
id, org_id, file_name, original_filename, mime_type, content_type, size_bytes,
storage_provider, storage_key, document_type, license_number, owner_name,
owner_normalized, expiration_date, status, extracted_at, created_at`

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id,
    org_id,
    file_name,
    original_filename,
    mime_type,
    content_type,
    size_bytes,
    storage_provider,
    storage_key,
    document_type,
    license_number,
    owner_name,
    owner_normalized,
    expiration_date,
    status,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	originalName := doc.OriginalFilename
	if originalName == "" {
		originalName = doc.FileName
	}
	contentType := doc.ContentType
	if contentType == "" {
		contentType = doc.MimeType
	}
	storageProvider := doc.StorageProvider
	if storageProvider == "" {
		storageProvider = "local"
	}
	status := doc.Status
	if status == "" {
		status = StatusPending
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.OrgID,
		doc.FileName,
		originalName,
		doc.MimeType,
		contentType,
		doc.SizeBytes,
		storageProvider,
		nullString(doc.StorageKey),
		nullString(doc.DocumentType),
		nullString(doc.LicenseNumber),
		nullString(doc.OwnerName),
		nullString(doc.OwnerNormalized),
		nullTime(doc.ExpirationDate),
		status,
		doc.CreatedAt,
	)
	return err
}

// GetByID fetches a document by ID for an org.
func (r *PGRepo) GetByID(ctx context.Context, orgID, documentID string) (Document, error) {
	query := `
SELECT ` + documentColumns + `
FROM documents
WHERE org_id = $1 AND id = $2 AND deleted_at IS NULL
LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, orgID, documentID)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// ListByOrg lists documents ordered newest-first.
func (r *PGRepo) ListByOrg(ctx context.Context, orgID string, limit, offset int) ([]Document, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	query := `
SELECT ` + documentColumns + `
FROM documents
WHERE org_id = $1 AND deleted_at IS NULL
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, orgID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDocuments(rows)
}

// ListLineage returns the lineage snapshot for the classifier,
// expiration-descending with null expirations last.
func (r *PGRepo) ListLineage(ctx context.Context, orgID, licenseNumber, ownerNormalized string) ([]Document, error) {
	query := `
SELECT ` + documentColumns + `
FROM documents
WHERE org_id = $1 AND license_number = $2 AND owner_normalized = $3 AND deleted_at IS NULL
ORDER BY expiration_date DESC NULLS LAST, created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, orgID, licenseNumber, ownerNormalized)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDocuments(rows)
}

// ListCurrent returns non-historical, non-pending documents for an org.
func (r *PGRepo) ListCurrent(ctx context.Context, orgID string) ([]Document, error) {
	query := `
SELECT ` + documentColumns + `
FROM documents
WHERE org_id = $1 AND status = $2 AND deleted_at IS NULL
ORDER BY expiration_date ASC NULLS LAST`

	rows, err := r.DB.QueryContext(ctx, query, orgID, StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDocuments(rows)
}

// ApplyExtraction commits extraction results and the final status in one
// transaction; renewals mark the superseded document historical first so the
// partial unique index on active lineages never sees two active rows.
func (r *PGRepo) ApplyExtraction(ctx context.Context, orgID, documentID string, fields ExtractedFields, status, supersedeID string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if supersedeID != "" {
		const supersede = `
UPDATE documents
SET status = $1
WHERE org_id = $2 AND id = $3 AND deleted_at IS NULL`
		if _, err := tx.ExecContext(ctx, supersede, StatusHistorical, orgID, supersedeID); err != nil {
			return err
		}
	}

	const update = `
UPDATE documents
SET document_type = $1,
    license_number = $2,
    owner_name = $3,
    owner_normalized = $4,
    expiration_date = $5,
    status = $6,
    extracted_at = $7
WHERE org_id = $8 AND id = $9 AND deleted_at IS NULL`

	ownerNormalized := fields.ownerNormalized()
	res, err := tx.ExecContext(
		ctx,
		update,
		nullString(fields.DocumentType),
		nullString(fields.LicenseNumber),
		nullString(fields.OwnerName),
		nullString(ownerNormalized),
		nullTime(fields.ExpirationDate),
		status,
		fields.ExtractedAt,
		orgID,
		documentID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrLineageConflict
		}
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return ErrLineageConflict
		}
		return err
	}
	return nil
}

// SoftDelete marks a document deleted without removing the row.
func (r *PGRepo) SoftDelete(ctx context.Context, orgID, documentID string) error {
	const query = `
UPDATE documents
SET deleted_at = $1
WHERE org_id = $2 AND id = $3 AND deleted_at IS NULL`
	res, err := r.DB.ExecContext(ctx, query, time.Now().UTC(), orgID, documentID)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

// PurgeOrg soft-deletes every document owned by the org.
func (r *PGRepo) PurgeOrg(ctx context.Context, orgID string) (int, error) {
	const query = `
UPDATE documents
SET deleted_at = $1
WHERE org_id = $2 AND deleted_at IS NULL`
	res, err := r.DB.ExecContext(ctx, query, time.Now().UTC(), orgID)
	if err != nil {
		return 0, err
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var originalName sql.NullString
	var mimeType sql.NullString
	var contentType sql.NullString
	var storageProvider sql.NullString
	var storageKey sql.NullString
	var documentType sql.NullString
	var licenseNumber sql.NullString
	var ownerName sql.NullString
	var ownerNormalized sql.NullString
	var expirationDate sql.NullTime
	var extractedAt sql.NullTime

	err := row.Scan(
		&doc.ID,
		&doc.OrgID,
		&doc.FileName,
		&originalName,
		&mimeType,
		&contentType,
		&doc.SizeBytes,
		&storageProvider,
		&storageKey,
		&documentType,
		&licenseNumber,
		&ownerName,
		&ownerNormalized,
		&expirationDate,
		&doc.Status,
		&extractedAt,
		&doc.CreatedAt,
	)
	if err != nil {
		return Document{}, err
	}

	doc.OriginalFilename = originalName.String
	doc.MimeType = mimeType.String
	doc.ContentType = contentType.String
	doc.StorageProvider = storageProvider.String
	doc.StorageKey = storageKey.String
	doc.DocumentType = documentType.String
	doc.LicenseNumber = licenseNumber.String
	doc.OwnerName = ownerName.String
	doc.OwnerNormalized = ownerNormalized.String
	if expirationDate.Valid {
		t := expirationDate.Time
		doc.ExpirationDate = &t
	}
	if extractedAt.Valid {
		t := extractedAt.Time
		doc.ExtractedAt = &t
	}
	return doc, nil
}

func collectDocuments(rows *sql.Rows) ([]Document, error) {
	var out []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	// pgx wraps server errors with the SQLSTATE in the message; 23505 is
	// unique_violation.
	return strings.Contains(err.Error(), "23505") ||
		strings.Contains(err.Error(), "duplicate key value")
}

var _ Repo = (*PGRepo)(nil)
