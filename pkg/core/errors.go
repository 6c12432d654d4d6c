package core

import "errors"

// Error codes surfaced by the bus and registry.
const (
	CodeNotRegistered      = "NOT_REGISTERED"
	CodeChannelUnavailable = "CHANNEL_UNAVAILABLE"
	CodeDeliveryTimeout    = "DELIVERY_TIMEOUT"
	CodeInvalidMessage     = "INVALID_MESSAGE"
	CodeInvalidModuleName  = "INVALID_MODULE_NAME"
	CodeDuplicateModule    = "DUPLICATE_MODULE"
)

// Error is a coded bus error.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// IsNotRegistered reports whether err means a message was published before
// its type was registered.
func IsNotRegistered(err error) bool {
	return hasCode(err, CodeNotRegistered)
}

// IsChannelUnavailable reports whether err means the destination channel was
// full or closed at publish time.
func IsChannelUnavailable(err error) bool {
	return hasCode(err, CodeChannelUnavailable)
}

// IsDeliveryTimeout reports whether err means a subscriber exceeded the
// configured delivery wait.
func IsDeliveryTimeout(err error) bool {
	return hasCode(err, CodeDeliveryTimeout)
}

func hasCode(err error, code string) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
