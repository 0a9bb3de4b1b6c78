package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"patientdocs/internal/model"
	"patientdocs/internal/repository"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

const userColumns = `id, username, email, password_hash, role, contact, COALESCE(patient_record_id::text, ''), created_at`

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.Contact,
		&u.PatientRecordID,
		&u.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a user row.
func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	return insertUser(ctx, r.db, u)
}

// CreatePatientAccount inserts the patient record, then the user pointing at it.
// Either both rows exist afterwards or neither does.
func (r *UserPostgres) CreatePatientAccount(ctx context.Context, u *model.User, p *model.Patient) (*model.User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const qPatient = `
		INSERT INTO patients (id, name, email, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := tx.ExecContext(ctx, qPatient, p.ID, p.Name, p.Email, p.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert patient: %w", err)
	}

	linked := *u
	linked.PatientRecordID = p.ID
	out, err := insertUser(ctx, tx, &linked)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}

func insertUser(ctx context.Context, q queryRower, u *model.User) (*model.User, error) {
	const stmt = `
		INSERT INTO users (id, username, email, password_hash, role, contact, patient_record_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, '')::uuid, $8)
		RETURNING ` + userColumns
	out, err := scanUser(q.QueryRowContext(ctx, stmt,
		u.ID,
		u.Username,
		u.Email,
		u.PasswordHash,
		u.Role,
		u.Contact,
		u.PatientRecordID,
		u.CreatedAt,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, repository.ErrDuplicate
		}
		return nil, err
	}
	return out, nil
}

// FindByEmail fetches a user by email address.
func (r *UserPostgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, email))
}

// FindByID fetches a user by ID.
func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}
