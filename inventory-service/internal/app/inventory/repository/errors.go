package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Коды PostgreSQL, которые сервису нужно различать
const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// translateError переводит ошибки драйвера в ошибки репозитория
func translateError(err error) error {
	if err == nil {
		return nil
	}

	// gorm.Config.TranslateError уже мог перевести ошибку драйвера
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateKey
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrForeignKey
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return ErrDuplicateKey
		case pgForeignKeyViolation:
			return ErrForeignKey
		case pgSerializationFailure, pgDeadlockDetected:
			return ErrSerialization
		}
	}

	return err
}
