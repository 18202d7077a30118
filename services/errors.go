package services

import "errors"

// Error kinds. Controllers map these to HTTP status codes.
var (
	ErrNotFound          = errors.New("not_found")
	ErrValidation        = errors.New("validation_failed")
	ErrConflict          = errors.New("conflict")
	ErrPeriodLocked      = errors.New("period_locked")
	ErrInvalidTransition = errors.New("invalid_transition")
	ErrUnauthorized      = errors.New("unauthorized")
)

// Error is a domain failure carrying the code and message shown to the user.
type Error struct {
	Kind    error
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// validationError builds a one-off validation failure.
func validationError(message string) *Error {
	return newError(ErrValidation, "error.validation", message)
}

var (
	ErrRoomNotFound      = newError(ErrNotFound, "error.roomNotFound", "호실을 찾을 수 없습니다.")
	ErrTenantNotFound    = newError(ErrNotFound, "error.tenantNotFound", "입주사를 찾을 수 없습니다.")
	ErrContractNotFound  = newError(ErrNotFound, "error.contractNotFound", "계약을 찾을 수 없습니다.")
	ErrBillingNotFound   = newError(ErrNotFound, "error.billingNotFound", "청구 내역을 찾을 수 없습니다.")
	ErrTxNotFound        = newError(ErrNotFound, "error.transactionNotFound", "거래 내역을 찾을 수 없습니다.")
	ErrSettlementMissing = newError(ErrNotFound, "error.settlementNotFound", "정산 내역을 찾을 수 없습니다.")
	ErrTemplateNotFound  = newError(ErrNotFound, "error.templateNotFound", "계약서 양식을 찾을 수 없습니다.")
	ErrSessionNotFound   = newError(ErrNotFound, "error.signingSessionNotFound", "서명 요청을 찾을 수 없습니다.")
	ErrUploadNotFound    = newError(ErrNotFound, "error.uploadNotFound", "파일을 찾을 수 없습니다.")
	ErrUserNotFound      = newError(ErrNotFound, "error.userNotFound", "사용자를 찾을 수 없습니다.")

	ErrRoomNumberTaken       = newError(ErrConflict, "error.roomNumberTaken", "이미 존재하는 호실 번호입니다.")
	ErrRoomHasActiveContract = newError(ErrConflict, "error.roomHasActiveContract", "해당 호실에 진행 중인 계약이 있습니다.")
	ErrTenantHasContract     = newError(ErrConflict, "error.tenantHasActiveContract", "진행 중인 계약이 있는 입주사는 삭제할 수 없습니다.")
	ErrContractInactive      = newError(ErrConflict, "error.contractInactive", "이미 종료된 계약입니다.")
	ErrContractActive        = newError(ErrConflict, "error.contractActive", "진행 중인 계약은 삭제할 수 없습니다. 먼저 계약을 종료하세요.")
	ErrContractHasPayments   = newError(ErrConflict, "error.contractHasPayments", "입금 완료된 청구가 있는 계약은 삭제할 수 없습니다.")
	ErrBillingPaid           = newError(ErrConflict, "error.billingAlreadyPaid", "이미 입금 확인된 청구입니다.")
	ErrBillingNotPaid        = newError(ErrConflict, "error.billingNotPaid", "입금 확인되지 않은 청구입니다.")
	ErrBillingCancelled      = newError(ErrConflict, "error.billingCancelled", "취소된 청구입니다.")
	ErrTaxInvoiceIssued      = newError(ErrConflict, "error.taxInvoiceAlreadyIssued", "이미 세금계산서가 발행되었습니다.")
	ErrTxLinkedToBilling     = newError(ErrConflict, "error.transactionLinkedToBilling", "청구와 연결된 거래는 청구 화면에서 입금 취소하세요.")
	ErrSettlementConfirmed   = newError(ErrConflict, "error.settlementConfirmed", "확정된 정산은 다시 생성할 수 없습니다.")
	ErrEmailTaken            = newError(ErrConflict, "error.emailTaken", "이미 사용 중인 이메일입니다.")
	ErrLastAdmin             = newError(ErrConflict, "error.lastAdmin", "마지막 관리자 계정은 변경하거나 삭제할 수 없습니다.")

	ErrPeriodIsLocked = newError(ErrPeriodLocked, "error.periodLocked", "확정된 정산 기간의 거래는 변경할 수 없습니다.")

	ErrSigningExpired   = newError(ErrInvalidTransition, "error.signingLinkExpired", "서명 링크가 만료되었습니다.")
	ErrDocumentNotReady = newError(ErrConflict, "error.documentNotReady", "서명이 완료된 계약서가 아직 없습니다.")

	ErrInvalidCredentials = newError(ErrUnauthorized, "error.invalidCredentials", "이메일 또는 비밀번호가 올바르지 않습니다.")
	ErrInvalidToken       = newError(ErrUnauthorized, "error.invalidToken", "인증 정보가 유효하지 않습니다.")
)
