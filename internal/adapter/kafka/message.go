package kafka

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/couchcryptid/rainfall-dry-periods/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Header keys attached to every published measurement.
const (
	headerGroup  = "group"
	headerSource = "source"
)

// ErrInvalidMessage reports a message that does not hold a measurement.
var ErrInvalidMessage = errors.New("invalid measurement message")

type payload struct {
	Date       *string  `json:"date"`
	RainfallMM *float64 `json:"rainfall_mm"`
}

// serializeToMessage encodes one measurement. The date is the message key.
func serializeToMessage(group string, m domain.Measurement, source string) (kafkago.Message, error) {
	date := domain.FormatDate(m.Date)
	data, err := json.Marshal(payload{Date: &date, RainfallMM: &m.RainfallMM})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize measurement: %w", err)
	}
	headers := []kafkago.Header{{Key: headerGroup, Value: []byte(group)}}
	if source != "" {
		headers = append(headers, kafkago.Header{Key: headerSource, Value: []byte(source)})
	}
	return kafkago.Message{
		Key:     []byte(date),
		Value:   data,
		Headers: headers,
	}, nil
}

// decodeMessage extracts the group key and measurement from a message. Without
// a group header the measurement is grouped by its calendar year.
func decodeMessage(msg kafkago.Message) (string, domain.Measurement, error) {
	var p payload
	if err := json.Unmarshal(msg.Value, &p); err != nil {
		return "", domain.Measurement{}, fmt.Errorf("%w at offset %d: %v", ErrInvalidMessage, msg.Offset, err)
	}
	if p.Date == nil || p.RainfallMM == nil {
		return "", domain.Measurement{}, fmt.Errorf("%w at offset %d: missing date or rainfall_mm", ErrInvalidMessage, msg.Offset)
	}
	d, err := domain.ParseDate(*p.Date)
	if err != nil {
		return "", domain.Measurement{}, fmt.Errorf("%w at offset %d: date %q", ErrInvalidMessage, msg.Offset, *p.Date)
	}

	group := headerValue(msg.Headers, headerGroup)
	if group == "" {
		group = fmt.Sprintf("%04d", d.Year())
	}
	return group, domain.Measurement{Date: d, RainfallMM: *p.RainfallMM}, nil
}

func headerValue(headers []kafkago.Header, key string) string {
	for _, h := range headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
