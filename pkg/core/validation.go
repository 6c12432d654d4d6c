package core

import "reflect"

// ValidateModuleName validates a module name used as a subscription key.
func ValidateModuleName(name string) error {
	if name == "" {
		return &Error{Code: CodeInvalidModuleName, Message: "module name cannot be empty"}
	}
	if len(name) > 255 {
		return &Error{Code: CodeInvalidModuleName, Message: "module name too long (max 255 characters)"}
	}
	return nil
}

// ValidateMessage validates a message value before it is wrapped or routed.
func ValidateMessage(msg any) error {
	if msg == nil {
		return &Error{Code: CodeInvalidMessage, Message: "message cannot be nil"}
	}
	return nil
}

// ValidateMessageType validates a routing type identity.
func ValidateMessageType(t reflect.Type) error {
	if t == nil {
		return &Error{Code: CodeInvalidMessage, Message: "message type cannot be nil"}
	}
	return nil
}
