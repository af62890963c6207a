package repositories

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"

	intdb "travelgateway/internal/db"
)

const sessionTable = "gateway_sessions"

// SessionRepository stores bearer tokens sealed with secretbox, keyed by
// session id. It satisfies session.Store.
type SessionRepository struct {
	DB  *sql.DB
	Key *[32]byte
}

// EnsureTable creates the sessions table when it is missing.
func (r SessionRepository) EnsureTable(ctx context.Context) error {
	if r.DB == nil {
		return fmt.Errorf("db not available")
	}
	if intdb.HasTable(ctx, r.DB, sessionTable) {
		if !intdb.HasColumn(ctx, r.DB, sessionTable, "token_sealed") {
			return fmt.Errorf("table %s exists without token_sealed column", sessionTable)
		}
		return nil
	}
	ddl := `
CREATE TABLE IF NOT EXISTS gateway_sessions (
	id VARCHAR(64) NOT NULL PRIMARY KEY,
	token_sealed VARBINARY(8192) NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
`
	_, err := r.DB.ExecContext(ctx, ddl)
	return err
}

func (r SessionRepository) Load(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", nil
	}
	var sealed []byte
	err := r.DB.QueryRowContext(ctx, `SELECT token_sealed FROM `+sessionTable+` WHERE id=? LIMIT 1`, id).Scan(&sealed)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	token, err := r.open(sealed)
	if err != nil {
		return "", err
	}
	return token, nil
}

func (r SessionRepository) Save(ctx context.Context, id, token string) error {
	if id == "" {
		return fmt.Errorf("empty session id")
	}
	sealed, err := r.seal(token)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, `INSERT INTO `+sessionTable+` (id, token_sealed) VALUES (?, ?)
		 ON DUPLICATE KEY UPDATE token_sealed=VALUES(token_sealed)`, id, sealed)
	return err
}

func (r SessionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM `+sessionTable+` WHERE id=?`, id)
	return err
}

func (r SessionRepository) seal(token string) ([]byte, error) {
	if r.Key == nil {
		return nil, fmt.Errorf("session key not configured")
	}
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, err
	}
	return secretbox.Seal(nonce[:], []byte(token), &nonce, r.Key), nil
}

func (r SessionRepository) open(sealed []byte) (string, error) {
	if r.Key == nil {
		return "", fmt.Errorf("session key not configured")
	}
	if len(sealed) < 24+secretbox.Overhead {
		return "", fmt.Errorf("sealed token too short")
	}
	var nonce [24]byte
	copy(nonce[:], sealed[:24])
	plain, ok := secretbox.Open(nil, sealed[24:], &nonce, r.Key)
	if !ok {
		return "", fmt.Errorf("sealed token rejected")
	}
	return string(plain), nil
}
