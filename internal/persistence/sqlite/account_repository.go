package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/huydotcode/hoa-huong-duong-art-center-sub001/internal/persistence"
)

// AccountRepository implements persistence.AccountRepository on SQLite.
type AccountRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewAccountRepository creates a SQLite-backed account repository.
func NewAccountRepository(pool *ConnectionPool) *AccountRepository {
	return &AccountRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const accountColumns = `id, email, display_name, is_admin, teacher_id, password_hash, disabled, created_at, updated_at`

// CreateAccount inserts a new staff account.
func (r *AccountRepository) CreateAccount(ctx context.Context, account persistence.StaffAccount) error {
	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = account.CreatedAt

	_, err := r.helper.Exec(ctx, `
		INSERT INTO staff_accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		account.ID,
		strings.ToLower(account.Email),
		account.DisplayName,
		boolToInt(account.IsAdmin),
		nullString(account.TeacherID),
		account.PasswordHash,
		boolToInt(account.Disabled),
		formatTime(account.CreatedAt),
		formatTime(account.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// UpdateAccount updates an existing staff account.
func (r *AccountRepository) UpdateAccount(ctx context.Context, account persistence.StaffAccount) error {
	result, err := r.helper.Exec(ctx, `
		UPDATE staff_accounts
		SET email = ?, display_name = ?, is_admin = ?, teacher_id = ?, password_hash = ?, disabled = ?, updated_at = ?
		WHERE id = ?`,
		strings.ToLower(account.Email),
		account.DisplayName,
		boolToInt(account.IsAdmin),
		nullString(account.TeacherID),
		account.PasswordHash,
		boolToInt(account.Disabled),
		formatTime(time.Now().UTC()),
		account.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireRowAffected(result)
}

// GetAccount retrieves an account by ID.
func (r *AccountRepository) GetAccount(ctx context.Context, id string) (persistence.StaffAccount, error) {
	row := r.helper.QueryRow(ctx, `SELECT `+accountColumns+` FROM staff_accounts WHERE id = ?`, id)
	account, err := scanAccount(row)
	if err != nil {
		return persistence.StaffAccount{}, r.mapper.MapError(err)
	}
	return account, nil
}

// GetAccountByEmail retrieves an account by email, case-insensitively.
func (r *AccountRepository) GetAccountByEmail(ctx context.Context, email string) (persistence.StaffAccount, error) {
	row := r.helper.QueryRow(ctx, `SELECT `+accountColumns+` FROM staff_accounts WHERE email = ?`, strings.ToLower(email))
	account, err := scanAccount(row)
	if err != nil {
		return persistence.StaffAccount{}, r.mapper.MapError(err)
	}
	return account, nil
}

func scanAccount(row rowScanner) (persistence.StaffAccount, error) {
	var (
		account   persistence.StaffAccount
		isAdmin   int
		teacherID sql.NullString
		disabled  int
		createdAt string
		updatedAt string
	)
	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.DisplayName,
		&isAdmin,
		&teacherID,
		&account.PasswordHash,
		&disabled,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.StaffAccount{}, err
	}
	account.IsAdmin = isAdmin != 0
	account.Disabled = disabled != 0
	if teacherID.Valid {
		account.TeacherID = &teacherID.String
	}
	account.CreatedAt = parseTime(createdAt)
	account.UpdatedAt = parseTime(updatedAt)
	return account, nil
}
