// Package gameerr define os erros de regra de negócio do coordenador de
// sessões. Cada erro carrega um código estável que atravessa a fronteira
// HTTP/WebSocket sem depender do texto da mensagem.
package gameerr

import (
	"net/http"

	"github.com/cockroachdb/errors"
)

// Code identifica a condição de rejeição de forma estável para clientes.
type Code string

const (
	CodeUnspecified         Code = "UNSPECIFIED_ERROR"
	CodeValidation          Code = "VALIDATION_ERROR"
	CodeSessionNotFound     Code = "SESSION_NOT_FOUND"
	CodeSessionNotActive    Code = "SESSION_NOT_ACTIVE"
	CodeSessionEnded        Code = "SESSION_ENDED"
	CodeQueueFull           Code = "QUEUE_FULL"
	CodeInvalidSabotage     Code = "INVALID_SABOTAGE"
	CodeDuplicateSubmission Code = "DUPLICATE_SUBMISSION"
	CodeGracePeriod         Code = "GRACE_PERIOD"
)

// gameError é o tipo folha. Erros de negócio são esperados e recuperáveis;
// tudo que não for gameError é tratado como falha crítica do servidor.
type gameError struct {
	msg      string
	code     Code
	business bool
}

func (e gameError) Error() string { return e.msg }
func (e gameError) ErrCode() Code { return e.code }

func newBusinessError(msg string, code Code) error {
	return gameError{msg: msg, code: code, business: true}
}

// Erros folha. Prefira reutilizar um destes a criar um novo código.
var (
	ErrSessionNotFound     = newBusinessError("game session does not exist", CodeSessionNotFound)
	ErrSessionNotActive    = newBusinessError("game session is not active", CodeSessionNotActive)
	ErrSessionEnded        = newBusinessError("game session has ended", CodeSessionEnded)
	ErrQueueFull           = newBusinessError("sabotage queue is full", CodeQueueFull)
	ErrInvalidSabotage     = newBusinessError("invalid sabotage", CodeInvalidSabotage)
	ErrDuplicateSubmission = newBusinessError("player already has a sabotage queued", CodeDuplicateSubmission)
	ErrGracePeriod         = newBusinessError("player is in grace period", CodeGracePeriod)
	ErrValidation          = newBusinessError("message validation failed", CodeValidation)
)

// ErrCode extrai o código do erro, descendo até a causa raiz.
func ErrCode(err error) Code {
	if err == nil {
		return ""
	}
	var ge gameError
	if errors.As(err, &ge) {
		return ge.code
	}
	return CodeUnspecified
}

// IsBusiness informa se o erro é uma rejeição de regra de negócio
// (recuperável) ou uma falha crítica.
func IsBusiness(err error) bool {
	var ge gameError
	return errors.As(err, &ge) && ge.business
}

// HTTPStatus mapeia o erro para o status da fronteira HTTP.
// Regra de negócio vira erro de cliente; o resto é erro de servidor.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch ErrCode(err) {
	case CodeSessionNotFound:
		return http.StatusNotFound
	case CodeValidation:
		return http.StatusBadRequest
	case CodeQueueFull, CodeInvalidSabotage, CodeDuplicateSubmission,
		CodeSessionNotActive, CodeSessionEnded, CodeGracePeriod:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Wrap anota um erro com contexto preservando o código original.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, msg)
}
