package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/authgate/internal/model"
)

// uniqueViolation はPostgreSQLの一意制約違反のエラーコード。
const uniqueViolation = "23505"

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

const userColumns = `id, email, hashed_password, is_active, is_superuser, is_verified, created_at, updated_at`

// scanUser は1行をmodel.Userに読み込む。
func scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(
		&user.ID, &user.Email, &user.HashedPassword,
		&user.IsActive, &user.IsSuperuser, &user.IsVerified,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

// FindByEmail はメールアドレスでユーザーを取得する。大文字小文字は区別しない。
// 見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`,
		email,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// Create はユーザーを作成する。
// lower(email)の一意インデックスに違反した場合はErrEmailTakenを返す。
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.ID, user.Email, user.HashedPassword,
		user.IsActive, user.IsSuperuser, user.IsVerified,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// Replace は同一メールアドレスの既存行を削除し、新しい行を作成する。
// 削除と挿入を同一トランザクションで行うため、並行する読み取りに
// 「行が存在しない」中間状態が見えることはない。
func (r *PostgresUserRepo) Replace(ctx context.Context, user *model.User) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM users WHERE lower(email) = lower($1)`,
		user.Email,
	)
	if err != nil {
		return fmt.Errorf("failed to delete existing user: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.ID, user.Email, user.HashedPassword,
		user.IsActive, user.IsSuperuser, user.IsVerified,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteByEmail は指定メールアドレスの行を削除し、削除行数を返す。
func (r *PostgresUserRepo) DeleteByEmail(ctx context.Context, email string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM users WHERE lower(email) = lower($1)`,
		email,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete user: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}

// ListEmails は全ユーザーのメールアドレスを辞書順で返す。
func (r *PostgresUserRepo) ListEmails(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT email FROM users ORDER BY email`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list emails: %w", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("failed to scan email: %w", err)
		}
		emails = append(emails, email)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate emails: %w", err)
	}

	return emails, nil
}

// UpdateHashedPassword は保存済みハッシュを更新する。
// ログイン成功時の再ハッシュで使用する。
func (r *PostgresUserRepo) UpdateHashedPassword(ctx context.Context, id, hashedPassword string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET hashed_password = $2, updated_at = now() WHERE id = $1`,
		id, hashedPassword,
	)
	if err != nil {
		return fmt.Errorf("failed to update hashed password: %w", err)
	}
	return nil
}

// isUniqueViolation はlib/pqの一意制約違反かどうかを判定する。
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
