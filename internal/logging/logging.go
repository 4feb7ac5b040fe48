// Package logging writes single-line JSON records through the standard logger.
package logging

import (
	"encoding/json"
	"log"
	"time"
)

const Service = "delivery-service"

type Fields struct {
	OrderID string `json:"order_id,omitempty"`
	Step    string `json:"step,omitempty"`
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
	Err     error  `json:"-"`
}

func Log(fields Fields) {
	log.Print(Format(fields))
}

// Format renders fields as the JSON line Log would print.
func Format(fields Fields) string {
	payload := map[string]any{
		"service":   Service,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	}
	if fields.OrderID != "" {
		payload["order_id"] = fields.OrderID
	}
	if fields.Step != "" {
		payload["step"] = fields.Step
	}
	if fields.Status != "" {
		payload["status"] = fields.Status
	}
	if fields.Message != "" {
		payload["message"] = fields.Message
	}
	if fields.Err != nil {
		payload["error"] = fields.Err.Error()
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return `{"service":"` + Service + `","status":"log_error"}`
	}
	return string(data)
}
