package lifecycle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KevinKickass/OpenAssetCore/internal/types"
	"github.com/google/uuid"
)

// UserError is implemented by every engine error and yields the short pt-BR
// message shown to users.
type UserError interface {
	error
	UserMessage() string
}

// FieldError names one offending input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports missing or malformed input. Raised before any write.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) UserMessage() string {
	if len(e.Fields) == 1 {
		return e.Fields[0].Message
	}
	return fmt.Sprintf("Campos obrigatórios ou inválidos: %s", strings.Join(e.FieldNames(), ", "))
}

func (e *ValidationError) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return names
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) orNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// DateBound names which limit a date violated.
type DateBound string

const (
	BoundRegistration DateBound = "registration_date"
	BoundStart        DateBound = "start_date"
	BoundFuture       DateBound = "today"
)

// InvalidDateRange reports a date before its floor or after today.
type InvalidDateRange struct {
	Field     string
	Bound     DateBound
	AssetCode string
}

func (e *InvalidDateRange) Error() string {
	return fmt.Sprintf("invalid date range for asset %s: %s violates %s", e.AssetCode, e.Field, e.Bound)
}

func (e *InvalidDateRange) UserMessage() string {
	switch e.Bound {
	case BoundRegistration:
		return fmt.Sprintf("PAT %s: a data informada em %s é anterior ao cadastro do equipamento", e.AssetCode, e.Field)
	case BoundStart:
		return fmt.Sprintf("PAT %s: a data final em %s é anterior à data de início", e.AssetCode, e.Field)
	default:
		return fmt.Sprintf("PAT %s: a data informada em %s não pode estar no futuro", e.AssetCode, e.Field)
	}
}

type DuplicateAssetCode struct {
	Code       string
	ExistingID uuid.UUID
}

func (e *DuplicateAssetCode) Error() string {
	return fmt.Sprintf("asset code %s already registered", e.Code)
}

func (e *DuplicateAssetCode) UserMessage() string {
	return fmt.Sprintf("Código PAT %s já cadastrado", e.Code)
}

type InvalidStateTransition struct {
	AssetCode string
	From      types.LocationType
	Operation Operation
}

func (e *InvalidStateTransition) Error() string {
	return fmt.Sprintf("cannot %s asset %s from %s", e.Operation, e.AssetCode, e.From)
}

func (e *InvalidStateTransition) UserMessage() string {
	return fmt.Sprintf("PAT %s: operação não permitida na situação atual (%s)", e.AssetCode, e.From.Label())
}

type IneligibleReason string

const (
	ReasonNotFound      IneligibleReason = "not_found"
	ReasonSameAsset     IneligibleReason = "same_asset"
	ReasonWrongLocation IneligibleReason = "wrong_location"
)

// SubstituteNotEligible reports why the replacement asset cannot be used.
type SubstituteNotEligible struct {
	Code     string
	Reason   IneligibleReason
	Location types.LocationType
}

func (e *SubstituteNotEligible) Error() string {
	return fmt.Sprintf("asset %s not eligible as substitute: %s", e.Code, e.Reason)
}

func (e *SubstituteNotEligible) UserMessage() string {
	switch e.Reason {
	case ReasonNotFound:
		return fmt.Sprintf("PAT %s não encontrado", e.Code)
	case ReasonSameAsset:
		return "O equipamento substituto deve ser diferente do equipamento substituído"
	default:
		return fmt.Sprintf("PAT %s não está no Depósito Malta (situação atual: %s)", e.Code, e.Location.Label())
	}
}

// StaleVersion reports a write based on an outdated read.
type StaleVersion struct {
	AssetCode string
	Expected  int
	Actual    int
}

func (e *StaleVersion) Error() string {
	return fmt.Sprintf("asset %s was modified concurrently (expected version %d, found %d)", e.AssetCode, e.Expected, e.Actual)
}

func (e *StaleVersion) UserMessage() string {
	return fmt.Sprintf("PAT %s foi alterado por outro usuário; recarregue e tente novamente", e.AssetCode)
}

type NotFound struct {
	Ref string
}

func (e *NotFound) Error() string {
	return fmt.Sprintf("asset %s not found", e.Ref)
}

func (e *NotFound) UserMessage() string {
	return fmt.Sprintf("Equipamento %s não encontrado", e.Ref)
}

// StoreFailure wraps an error of the underlying persistence. The message is
// passed through verbatim.
type StoreFailure struct {
	Err error
}

func (e *StoreFailure) Error() string {
	return e.Err.Error()
}

func (e *StoreFailure) Unwrap() error {
	return e.Err
}

func (e *StoreFailure) UserMessage() string {
	return e.Err.Error()
}

// IsValidationClass reports whether err is deterministic input rejection.
func IsValidationClass(err error) bool {
	var (
		ve *ValidationError
		de *InvalidDateRange
		se *SubstituteNotEligible
		te *InvalidStateTransition
	)
	return errors.As(err, &ve) || errors.As(err, &de) || errors.As(err, &se) || errors.As(err, &te)
}
