package websocket

import "errors"

var (
	ErrClientQueueFull = errors.New("client message queue is full")
	ErrInvalidMessage  = errors.New("invalid message format")
	ErrUnknownTopic    = errors.New("unknown topic")
	ErrClientClosed    = errors.New("client is closed")
)
