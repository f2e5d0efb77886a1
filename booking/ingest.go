package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Submission field names, in the order missing ones are reported.
var submissionFields = []string{"hotel_id", "room_category_id", "check_in", "check_out"}

// Ingest validates a one-shot payload from the embedded form and hands it to
// Submit. No state is retained between calls.
func (s *Service) Ingest(ctx context.Context, userID int64, username string, raw map[string]any) (*Confirmation, error) {
	sanitized := sanitizePayload(raw)

	var missing []string
	for _, field := range submissionFields {
		if isEmptyValue(sanitized[field]) {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, &IncompleteError{Missing: missing}
	}

	hotelID, err := coerceID(sanitized["hotel_id"])
	if err != nil {
		return nil, ErrInvalidPayload
	}
	roomCategoryID, err := coerceID(sanitized["room_category_id"])
	if err != nil {
		return nil, ErrInvalidPayload
	}

	checkIn, err := parseSubmittedDate(fmt.Sprint(sanitized["check_in"]))
	if err != nil {
		return nil, ErrInvalidRange
	}
	checkOut, err := parseSubmittedDate(fmt.Sprint(sanitized["check_out"]))
	if err != nil {
		return nil, ErrInvalidRange
	}

	return s.Submit(ctx, SubmitRequest{
		UserID:         userID,
		Username:       username,
		HotelID:        hotelID,
		RoomCategoryID: roomCategoryID,
		CheckIn:        checkIn,
		CheckOut:       checkOut,
	})
}

// sanitizePayload trims string values and turns nils into empty strings.
// Non-string values pass through unchanged.
func sanitizePayload(raw map[string]any) map[string]any {
	safe := make(map[string]any, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case string:
			safe[key] = strings.TrimSpace(v)
		case nil:
			safe[key] = ""
		default:
			safe[key] = value
		}
	}
	return safe
}

func isEmptyValue(value any) bool {
	if value == nil {
		return true
	}
	s, ok := value.(string)
	return ok && s == ""
}

// coerceID converts a payload identifier to int64. Web-app payloads deliver
// identifiers inconsistently as strings or JSON numbers.
func coerceID(value any) (int64, error) {
	switch v := value.(type) {
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("non-numeric identifier %q", v)
		}
		return id, nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("fractional identifier %v", v)
		}
		return int64(v), nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case json.Number:
		return v.Int64()
	default:
		return 0, fmt.Errorf("unsupported identifier type %T", value)
	}
}
