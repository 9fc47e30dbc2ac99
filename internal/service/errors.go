package service

import (
	"fmt"
	"net/http"
)

// Error 带提示信息的业务错误，Msg 直接展示给操作员
type Error struct {
	Code int
	Msg  string
	Err  error

	kind *Error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("Code: %d, Message: %s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("Code: %d, Message: %s", e.Code, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is 包装后的错误仍与原始哨兵相等
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t == e || (e.kind != nil && t == e.kind)
}

func newError(code int, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

// wrap 以哨兵错误为模板附加原因
func wrap(base *Error, cause error) *Error {
	return &Error{Code: base.Code, Msg: base.Msg, Err: cause, kind: base}
}

var (
	ErrLoadFailed        = newError(http.StatusBadGateway, "Failed to load data")
	ErrFillRequired      = newError(http.StatusBadRequest, "Please fill in all required fields")
	ErrRFIDRequired      = newError(http.StatusBadRequest, "RFID Address is required")
	ErrRFIDConflict      = newError(http.StatusBadRequest, "RFID Address must be unique!")
	ErrSaveFailed        = newError(http.StatusBadGateway, "Error saving bin")
	ErrUpdateFailed      = newError(http.StatusBadGateway, "Error updating bin")
	ErrDeleteFailed      = newError(http.StatusBadGateway, "Failed to delete bin")
	ErrBatchDeleteFailed = newError(http.StatusBadGateway, "Failed to delete bins")
	ErrSelectToDelete    = newError(http.StatusBadRequest, "Please select bins to delete")
	ErrSelectFirst       = newError(http.StatusBadRequest, "Please select bins first!")
	ErrQRLoadFailed      = newError(http.StatusBadGateway, "Failed to load QR code")
	ErrBinNotFound       = newError(http.StatusNotFound, "Bin not found")
	ErrDraftOpen         = newError(http.StatusConflict, "Finish or cancel the current row first")
	ErrNoDraft           = newError(http.StatusConflict, "No row is being edited")
	ErrSaving            = newError(http.StatusConflict, "Save already in progress")
	ErrStale             = newError(http.StatusConflict, "Selection changed, result discarded")
	ErrWorkspaceClosed   = newError(http.StatusGone, "Workspace closed")
	ErrSessionExpired    = newError(http.StatusUnauthorized, "Session expired, please login again")
	ErrLoginFailed       = newError(http.StatusUnauthorized, "Failed to login. Please try again.")
)

const (
	MsgBinCreated = "Bin created successfully with QR code!"
	MsgBinUpdated = "Bin updated successfully!"
	MsgBinDeleted = "Bin deleted successfully!"
	MsgWelcome    = "Welcome back!"
)

// DeletedMessage 批量删除成功提示
func DeletedMessage(n int) string {
	return fmt.Sprintf("%d bin(s) deleted!", n)
}

// QRLoadedMessage 二维码加载完成提示
func QRLoadedMessage(n int) string {
	return fmt.Sprintf("%d QR code(s) loaded!", n)
}

// ConfirmDeleteMessage 批量删除确认提示
func ConfirmDeleteMessage(n int) string {
	return fmt.Sprintf("Delete %d bin(s)?", n)
}

const ConfirmDeleteOneMessage = "Are you sure you want to delete this bin?"
