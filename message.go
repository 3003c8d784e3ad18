package iotf

import "bytes"

// QOSLevel is the delivery guarantee the platform used for an inbound message.
type QOSLevel uint8

const (
	// QOSZero denotes at most once message delivery
	QOSZero QOSLevel = 0
	// QOSOne denotes at least once message delivery
	QOSOne QOSLevel = 1
	// QOSTwo denotes exactly once message delivery
	QOSTwo QOSLevel = 2
)

// InboundMessage is one of *Event, *Command, *DeviceStatus or *ApplicationStatus.
type InboundMessage interface {
	// Source identifies who the message is about: a device id or an application id.
	Source() string
	// String returns the payload as text.
	String() string

	envelope() *Message
}

// Message holds the transport level details shared by every InboundMessage.
// The payload is opaque and is never interpreted by the client.
type Message struct {
	Topic     string
	QoS       QOSLevel
	Retained  bool
	Duplicate bool
	Payload   []byte

	newDecoder DecoderFunc
}

// DecodePayload can decode the payload bytes into the desired object.
func (m *Message) DecodePayload(v interface{}) error {
	newDecoder := m.newDecoder
	if newDecoder == nil {
		newDecoder = DefaultDecoderFunc
	}

	return newDecoder(bytes.NewReader(m.Payload)).Decode(v)
}

func (m *Message) String() string { return string(m.Payload) }

func (m *Message) envelope() *Message { return m }

// Event is telemetry published by a device.
type Event struct {
	Message
	DeviceType string
	DeviceID   string
	Name       string
	Format     string
}

// Source returns the publishing device id.
func (e *Event) Source() string { return e.DeviceID }

// Command is a directive addressed to a device.
type Command struct {
	Message
	DeviceType string
	DeviceID   string
	Name       string
	Format     string
}

// Source returns the addressed device id.
func (c *Command) Source() string { return c.DeviceID }

// DeviceStatus is a presence change of a device, as reported by the platform.
type DeviceStatus struct {
	Message
	DeviceType string
	DeviceID   string
}

// Source returns the device id the status is about.
func (s *DeviceStatus) Source() string { return s.DeviceID }

// ApplicationStatus is a presence change of an application client.
type ApplicationStatus struct {
	Message
	AppID string
}

// Source returns the application id the status is about.
func (s *ApplicationStatus) Source() string { return s.AppID }
