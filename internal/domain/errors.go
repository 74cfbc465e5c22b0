package domain

import (
	"errors"
	"fmt"
)

// Kind закрытый набор видов ошибок
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindInsufficientStock
	KindInvalidArgument
	KindStorage
	KindConflict
	KindUnauthorized
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInsufficientStock:
		return "insufficient_stock"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindStorage:
		return "storage_error"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Error типизированная ошибка домена. Items заполнен только для KindInsufficientStock.
type Error struct {
	Kind     Kind
	Resource string
	ID       string
	Msg      string
	Items    []ResolvedLineItem
	Err      error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Resource != "" {
		if e.ID != "" {
			msg = fmt.Sprintf("%s %s: %s", e.Resource, e.ID, msg)
		} else {
			msg = fmt.Sprintf("%s: %s", e.Resource, msg)
		}
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is сравнивает по Kind, а если у цели задан Resource, то и по нему
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Resource == "" || t.Resource == e.Resource
}

// Сентинелы для errors.Is
var (
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrInsufficientStock = &Error{Kind: KindInsufficientStock}
	ErrInvalidArgument   = &Error{Kind: KindInvalidArgument}
	ErrStorage           = &Error{Kind: KindStorage}
	ErrConflict          = &Error{Kind: KindConflict}
	ErrUnauthorized      = &Error{Kind: KindUnauthorized}
	ErrForbidden         = &Error{Kind: KindForbidden}

	ErrCartNotFound     = &Error{Kind: KindNotFound, Resource: ResourceCart}
	ErrProductNotFound  = &Error{Kind: KindNotFound, Resource: ResourceProduct}
	ErrLineItemNotFound = &Error{Kind: KindNotFound, Resource: ResourceLineItem}
	ErrUserNotFound     = &Error{Kind: KindNotFound, Resource: ResourceUser}
)

const (
	ResourceCart     = "cart"
	ResourceProduct  = "product"
	ResourceLineItem = "line item"
	ResourceTicket   = "ticket"
	ResourceUser     = "user"
)

func NotFound(resource, id string) error {
	return &Error{Kind: KindNotFound, Resource: resource, ID: id, Msg: "not found"}
}

func InvalidArgument(field, reason string) error {
	return &Error{Kind: KindInvalidArgument, Msg: fmt.Sprintf("invalid %s: %s", field, reason)}
}

func InsufficientStock(items []ResolvedLineItem) error {
	return &Error{
		Kind:  KindInsufficientStock,
		Msg:   "no products available for purchase (insufficient stock)",
		Items: items,
	}
}

// Storage оборачивает ошибку хранилища. Уже типизированные ошибки возвращаются как есть.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return &Error{Kind: KindStorage, Msg: op, Err: err}
}

// WrapStorage всегда возвращает KindStorage, даже если причина уже типизирована
func WrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindStorage, Msg: op, Err: err}
}

func Conflict(resource, msg string) error {
	return &Error{Kind: KindConflict, Resource: resource, Msg: msg}
}

func Unauthorized(msg string) error {
	return &Error{Kind: KindUnauthorized, Msg: msg}
}

func Forbidden(msg string) error {
	return &Error{Kind: KindForbidden, Msg: msg}
}

// KindOf возвращает вид ошибки; нетипизированные ошибки считаются KindUnknown
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

// DeferredItems достаёт отложенные позиции из ошибки InsufficientStock
func DeferredItems(err error) []ResolvedLineItem {
	var de *Error
	if errors.As(err, &de) && de.Kind == KindInsufficientStock {
		return de.Items
	}
	return nil
}
