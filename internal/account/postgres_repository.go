package account

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cobaemon/portfolio/pkg/pg"
)

// PostgresRepository is the production store. It implements every storage
// interface in this package on top of a pgx connection pool.
type PostgresRepository struct {
	db           *pgxpool.Pool
	masterSecret []byte
}

func NewPostgresRepository(db *pgxpool.Pool, masterSecret []byte) *PostgresRepository {
	return &PostgresRepository{db: db, masterSecret: masterSecret}
}

const userColumns = `id, username, email, password_hash, use_login_by_code, use_one_time_password, is_active, is_staff, is_superuser, encryption_key_id, created_at, updated_at, last_login`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.UseLoginByCode, &u.UseOneTimePassword, &u.IsActive, &u.IsStaff, &u.IsSuperuser,
		&u.EncryptionKeyID, &u.CreatedAt, &u.UpdatedAt, &u.LastLogin)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts the user, its wrapped encryption key, and its primary
// email address in one transaction: either the user comes out fully
// initialized or not at all. A retried create with a key already attached
// skips key generation.
func (r *PostgresRepository) CreateUser(ctx context.Context, user *User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO users (id, username, email, password_hash, use_login_by_code, use_one_time_password, is_active, is_staff, is_superuser, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		user.ID, user.Username, user.Email, user.PasswordHash,
		user.UseLoginByCode, user.UseOneTimePassword, user.IsActive,
		user.IsStaff, user.IsSuperuser,
		user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return classifyUserConflict(err)
		}
		return err
	}

	if user.EncryptionKeyID == nil {
		plaintext, err := GenerateUserKey()
		if err != nil {
			return err
		}
		wrapped, err := EncryptSecretKey(r.masterSecret, plaintext)
		if err != nil {
			return err
		}

		keyID := uuid.New()
		_, err = tx.Exec(ctx, `
			INSERT INTO encryption_keys (id, user_id, key, created_at)
			VALUES ($1, $2, $3, now())`,
			keyID, user.ID, wrapped)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `UPDATE users SET encryption_key_id = $1, updated_at = now() WHERE id = $2`, keyID, user.ID)
		if err != nil {
			return err
		}
		user.EncryptionKeyID = &keyID
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO email_addresses (id, user_id, email, verified, is_primary, created_at)
		VALUES ($1, $2, $3, false, true, now())`,
		uuid.New(), user.ID, user.Email)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrEmailTaken
		}
		return err
	}

	return tx.Commit(ctx)
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *PostgresRepository) UpdateUser(ctx context.Context, user *User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET username = $2, email = $3, use_login_by_code = $4, use_one_time_password = $5, is_active = $6, is_staff = $7, is_superuser = $8, updated_at = now()
		WHERE id = $1`,
		user.ID, user.Username, user.Email, user.UseLoginByCode, user.UseOneTimePassword, user.IsActive,
		user.IsStaff, user.IsSuperuser)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// RecordLogin stamps the user's last sign-in time.
func (r *PostgresRepository) RecordLogin(ctx context.Context, userID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET last_login = now() WHERE id = $1`, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`, userID, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PostgresRepository) GetEncryptionKey(ctx context.Context, userID uuid.UUID) (*EncryptionKey, error) {
	var k EncryptionKey
	err := r.db.QueryRow(ctx, `
		SELECT k.id, k.user_id, k.key, k.created_at, k.expires_at
		FROM encryption_keys k
		JOIN users u ON u.encryption_key_id = k.id
		WHERE u.id = $1`, userID).
		Scan(&k.ID, &k.UserID, &k.Key, &k.CreatedAt, &k.ExpiresAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &k, nil
}

func (r *PostgresRepository) GetEmailAddress(ctx context.Context, userID uuid.UUID, email string) (*EmailAddress, error) {
	var a EmailAddress
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, email, verified, is_primary, created_at
		FROM email_addresses WHERE user_id = $1 AND email = $2`, userID, email).
		Scan(&a.ID, &a.UserID, &a.Email, &a.Verified, &a.Primary, &a.CreatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrEmailNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *PostgresRepository) ListEmailAddresses(ctx context.Context, userID uuid.UUID) ([]*EmailAddress, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, email, verified, is_primary, created_at
		FROM email_addresses WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*EmailAddress
	for rows.Next() {
		var a EmailAddress
		if err := rows.Scan(&a.ID, &a.UserID, &a.Email, &a.Verified, &a.Primary, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) AddEmailAddress(ctx context.Context, addr *EmailAddress) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO email_addresses (id, user_id, email, verified, is_primary, created_at)
		VALUES ($1, $2, $3, $4, $5, now())`,
		addr.ID, addr.UserID, addr.Email, addr.Verified, addr.Primary)
	if pg.IsDuplicateKeyError(err) {
		return ErrEmailAlreadyExists
	}
	return err
}

func (r *PostgresRepository) MarkEmailVerified(ctx context.Context, userID uuid.UUID, email string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE email_addresses SET verified = true WHERE user_id = $1 AND email = $2`, userID, email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEmailNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteEmailAddress(ctx context.Context, userID uuid.UUID, email string) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM email_addresses WHERE user_id = $1 AND email = $2 AND is_primary = false`, userID, email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Either missing or primary; check which so the caller can report it.
		if _, lookupErr := r.GetEmailAddress(ctx, userID, email); lookupErr == nil {
			return ErrPrimaryEmail
		}
		return ErrEmailNotFound
	}
	return nil
}

func (r *PostgresRepository) SetPrimaryEmail(ctx context.Context, userID uuid.UUID, email string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Clear the old primary before setting the new one so the single-primary
	// unique index never sees two at once. The rollback on failure restores it.
	if _, err := tx.Exec(ctx, `
		UPDATE email_addresses SET is_primary = false
		WHERE user_id = $1 AND is_primary = true`, userID); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE email_addresses SET is_primary = true
		WHERE user_id = $1 AND email = $2 AND verified = true`, userID, email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEmailNotFound
	}
	if _, err := tx.Exec(ctx, `
		UPDATE users SET email = $2, updated_at = now() WHERE id = $1`, userID, email); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PostgresRepository) GetDevice(ctx context.Context, userID uuid.UUID) (*TOTPDevice, error) {
	return r.getDevice(ctx, userID, false)
}

func (r *PostgresRepository) GetConfirmedDevice(ctx context.Context, userID uuid.UUID) (*TOTPDevice, error) {
	return r.getDevice(ctx, userID, true)
}

func (r *PostgresRepository) getDevice(ctx context.Context, userID uuid.UUID, confirmedOnly bool) (*TOTPDevice, error) {
	query := `SELECT id, user_id, name, encrypted_secret, confirmed, created_at FROM totp_devices WHERE user_id = $1`
	if confirmedOnly {
		query += ` AND confirmed = true`
	}

	var d TOTPDevice
	err := r.db.QueryRow(ctx, query, userID).
		Scan(&d.ID, &d.UserID, &d.Name, &d.EncryptedSecret, &d.Confirmed, &d.CreatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrDeviceNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *PostgresRepository) CreateDevice(ctx context.Context, device *TOTPDevice) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO totp_devices (id, user_id, name, encrypted_secret, confirmed, created_at)
		VALUES ($1, $2, $3, $4, $5, now())`,
		device.ID, device.UserID, device.Name, device.EncryptedSecret, device.Confirmed)
	return err
}

func (r *PostgresRepository) ConfirmDevice(ctx context.Context, deviceID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE totp_devices SET confirmed = true WHERE id = $1`, deviceID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteDevice(ctx context.Context, userID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM totp_devices WHERE user_id = $1`, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

func (r *PostgresRepository) CreateToken(ctx context.Context, token *VerificationToken) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO verification_tokens (id, user_id, purpose, token_hash, payload, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		token.ID, token.UserID, token.Purpose, token.TokenHash, token.Payload, token.ExpiresAt, token.CreatedAt)
	return err
}

func (r *PostgresRepository) ConsumeToken(ctx context.Context, tokenHash, purpose string) (*VerificationToken, error) {
	var t VerificationToken
	err := r.db.QueryRow(ctx, `
		DELETE FROM verification_tokens
		WHERE token_hash = $1 AND purpose = $2
		RETURNING id, user_id, purpose, token_hash, payload, expires_at, created_at`,
		tokenHash, purpose).
		Scan(&t.ID, &t.UserID, &t.Purpose, &t.TokenHash, &t.Payload, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return &t, nil
}

// classifyUserConflict maps a unique violation on users to the specific
// sentinel when the constraint name identifies the column.
func classifyUserConflict(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "users_email"):
		return ErrEmailTaken
	case strings.Contains(msg, "users_username"):
		return ErrUsernameTaken
	default:
		return errors.Join(ErrEmailTaken, err)
	}
}
