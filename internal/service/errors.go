package service

import (
	"fmt"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Sentinel errors mapped to HTTP statuses by the handlers.
var (
	ErrNotFound           = errors.New("no encontrado")
	ErrConflict           = errors.New("conflicto")
	ErrInvalidState       = errors.New("operacion invalida")
	ErrInvalidCredentials = errors.New("credenciales invalidas")
	ErrUsernameTaken      = errors.New("el nombre de usuario ya existe")
	ErrCurrentPassword    = errors.New("la contraseña actual es incorrecta")
)

// notFound builds "<what> no encontrado".
func notFound(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotFound)
}

func conflict(msg string) error {
	return fmt.Errorf("%w: %s", ErrConflict, msg)
}

func invalidState(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, msg)
}

// repoErr translates a repository error. Missing rows become ErrNotFound,
// unique violations ErrConflict, anything else is wrapped with a stack.
func repoErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrConflict), errors.Is(err, ErrInvalidState):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound(what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return conflict(what + " ya existe")
	default:
		return errors.Wrap(err, what)
	}
}
