package iotf

import (
	"bytes"
	"encoding/base64"
	"io"
	"testing"

	"github.com/stretchr/testify/suite"
)

type MessageSuite struct {
	suite.Suite
}

func TestMessageSuite(t *testing.T) {
	suite.Run(t, new(MessageSuite))
}

func (s *MessageSuite) TestDecodePayload() {
	type reading struct {
		Key   string `json:"key"`
		Value int64  `json:"value"`
	}

	encoded := base64.StdEncoding.EncodeToString([]byte(`{"key":"number","value":1000000}`))

	tests := []struct {
		name       string
		payload    []byte
		newDecoder DecoderFunc
		want       reading
		wantErr    bool
	}{
		{
			name:    "DefaultDecoder",
			payload: []byte(`{"key":"number","value":1000000}`),
			want:    reading{Key: "number", Value: 1000000},
		},
		{
			name:    "NotJSON",
			payload: []byte("23.5 degrees"),
			wantErr: true,
		},
		{
			name:       "Base64",
			payload:    []byte(encoded),
			newDecoder: Base64JSONDecoderFunc,
			want:       reading{Key: "number", Value: 1000000},
		},
	}

	for _, t := range tests {
		s.Run(t.name, func() {
			m := &Message{Payload: t.payload, newDecoder: t.newDecoder}

			var got reading
			err := m.DecodePayload(&got)

			if t.wantErr {
				s.Error(err)

				return
			}

			s.NoError(err)
			s.Equal(t.want, got)
		})
	}
}

func (s *MessageSuite) TestSource() {
	msgs := map[string]InboundMessage{
		"s1":   &Event{DeviceID: "s1"},
		"s2":   &Command{DeviceID: "s2"},
		"s3":   &DeviceStatus{DeviceID: "s3"},
		"app1": &ApplicationStatus{AppID: "app1"},
	}

	for want, m := range msgs {
		s.Equal(want, m.Source())
	}
}

func (s *MessageSuite) TestString() {
	e := &Event{Message: Message{Payload: []byte("23.5")}, DeviceID: "s1"}

	s.Equal("23.5", e.String())
	s.Equal(&e.Message, e.envelope())
}

func (s *MessageSuite) TestWithCustomDecoder() {
	called := false
	custom := func(r io.Reader) Decoder {
		called = true

		return DefaultDecoderFunc(r)
	}

	o := defaultClientOptions()
	WithCustomDecoder(nil).apply(o)
	s.NotNil(o.newDecoder)

	WithCustomDecoder(custom).apply(o)

	m := &Message{Payload: []byte(`{}`), newDecoder: o.newDecoder}
	s.NoError(m.DecodePayload(&map[string]any{}))
	s.True(called)
}

func (s *MessageSuite) TestMessageHandlerCarriesDecoder() {
	rs := &recordingSinks{}
	c, err := NewApplicationClient(rs, rs, append([]ClientOption{WithCustomDecoder(Base64JSONDecoderFunc)}, defOpts...)...)
	s.Require().NoError(err)

	var buf bytes.Buffer
	enc := base64.NewEncoder(base64.StdEncoding, &buf)
	_, _ = enc.Write([]byte(`{"t":1}`))
	s.Require().NoError(enc.Close())

	callbackWrapper(c)(nil, newMockMessage("iot-2/type/sensor/id/s1/evt/temp/fmt/json", buf.String()))

	s.Require().Len(rs.events, 1)

	var v struct{ T int }
	s.NoError(rs.events[0].DecodePayload(&v))
	s.Equal(1, v.T)
}
