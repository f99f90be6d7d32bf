package vendors

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const vendorColumns = `id, name, contact_email, owner_profile_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVendor(row rowScanner) (Vendor, error) {
	var vendor Vendor
	var contactEmail, owner sql.NullString
	if err := row.Scan(
		&vendor.ID,
		&vendor.Name,
		&contactEmail,
		&owner,
		&vendor.CreatedAt,
		&vendor.UpdatedAt,
	); err != nil {
		return Vendor{}, err
	}
	vendor.ContactEmail = contactEmail.String
	if owner.Valid {
		id := owner.String
		vendor.OwnerProfileID = &id
	}
	return vendor, nil
}

func (r *PGRepo) Create(ctx context.Context, vendor Vendor) error {
	const query = `
INSERT INTO vendors (id, name, contact_email, owner_profile_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	var contactEmail any
	if vendor.ContactEmail != "" {
		contactEmail = vendor.ContactEmail
	}
	_, err := r.DB.ExecContext(ctx, query,
		vendor.ID,
		vendor.Name,
		contactEmail,
		vendor.OwnerProfileID,
		vendor.CreatedAt,
		vendor.UpdatedAt,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, vendorID string) (Vendor, error) {
	vendor, err := scanVendor(r.DB.QueryRowContext(ctx,
		`SELECT `+vendorColumns+` FROM vendors WHERE id = $1 LIMIT 1`, vendorID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Vendor{}, ErrNotFound
		}
		return Vendor{}, err
	}
	return vendor, nil
}

func (r *PGRepo) List(ctx context.Context) ([]Vendor, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+vendorColumns+` FROM vendors ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Vendor, 0)
	for rows.Next() {
		vendor, err := scanVendor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, vendor)
	}
	return out, rows.Err()
}

func (r *PGRepo) UpdateOwner(ctx context.Context, vendorID string, ownerProfileID *string) (Vendor, error) {
	const query = `
UPDATE vendors SET owner_profile_id = $2, updated_at = now()
WHERE id = $1
RETURNING ` + vendorColumns
	vendor, err := scanVendor(r.DB.QueryRowContext(ctx, query, vendorID, ownerProfileID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Vendor{}, ErrNotFound
		}
		return Vendor{}, err
	}
	return vendor, nil
}

var _ Repo = (*PGRepo)(nil)
