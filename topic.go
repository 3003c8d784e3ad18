package iotf

import (
	"fmt"
	"strings"
)

// Wildcard matches every device type or every device id in a TopicFilter.
const Wildcard = "*"

const (
	topicRoot    = "iot-2"
	mqttWildcard = "+"
)

// TopicFilter selects devices by type and id; either position may be Wildcard.
type TopicFilter struct {
	DeviceType string
	DeviceID   string
}

// AllDevices matches every device of every type.
var AllDevices = TopicFilter{DeviceType: Wildcard, DeviceID: Wildcard}

// NewTopicFilter builds a TopicFilter, treating "", "+" and "*" as Wildcard.
func NewTopicFilter(deviceType, deviceID string) TopicFilter {
	return TopicFilter{DeviceType: normalizeFilter(deviceType), DeviceID: normalizeFilter(deviceID)}
}

func (f TopicFilter) String() string {
	return fmt.Sprintf("(%s, %s)", f.DeviceType, f.DeviceID)
}

// EventTopic is the MQTT filter for every event of the matched devices.
func (f TopicFilter) EventTopic() string {
	return f.deviceTopic("evt", mqttWildcard, "fmt", mqttWildcard)
}

// CommandTopic is the MQTT filter for every command sent to the matched devices.
func (f TopicFilter) CommandTopic() string {
	return f.deviceTopic("cmd", mqttWildcard, "fmt", mqttWildcard)
}

// StatusTopic is the MQTT filter for presence changes of the matched devices.
func (f TopicFilter) StatusTopic() string {
	return f.deviceTopic("mon")
}

func (f TopicFilter) deviceTopic(suffix ...string) string {
	parts := append([]string{
		topicRoot,
		"type", toMQTTLevel(normalizeFilter(f.DeviceType)),
		"id", toMQTTLevel(normalizeFilter(f.DeviceID)),
	}, suffix...)

	return strings.Join(parts, "/")
}

// ApplicationStatusTopic is the MQTT filter for presence changes of appID.
// A blank or wildcard appID matches every application in the organization.
func ApplicationStatusTopic(appID string) string {
	return strings.Join([]string{topicRoot, "app", toMQTTLevel(normalizeFilter(appID)), "mon"}, "/")
}

func normalizeFilter(v string) string {
	switch v = strings.TrimSpace(v); v {
	case "", mqttWildcard, Wildcard:
		return Wildcard
	default:
		return v
	}
}

func toMQTTLevel(v string) string {
	if v == Wildcard {
		return mqttWildcard
	}

	return v
}

// parseTopic maps a concrete topic and its payload to an InboundMessage.
func parseTopic(m Message) (InboundMessage, error) {
	levels := strings.Split(m.Topic, "/")
	if len(levels) < 4 || levels[0] != topicRoot {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTopic, m.Topic)
	}

	switch {
	case len(levels) == 4 && levels[1] == "app" && levels[3] == "mon":
		return &ApplicationStatus{Message: m, AppID: levels[2]}, nil
	case len(levels) == 6 && isDeviceTopic(levels) && levels[5] == "mon":
		return &DeviceStatus{Message: m, DeviceType: levels[2], DeviceID: levels[4]}, nil
	case len(levels) == 9 && isDeviceTopic(levels) && levels[7] == "fmt":
		switch levels[5] {
		case "evt":
			return &Event{Message: m, DeviceType: levels[2], DeviceID: levels[4], Name: levels[6], Format: levels[8]}, nil
		case "cmd":
			return &Command{Message: m, DeviceType: levels[2], DeviceID: levels[4], Name: levels[6], Format: levels[8]}, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownTopic, m.Topic)
}

func isDeviceTopic(levels []string) bool {
	return levels[1] == "type" && levels[3] == "id"
}
