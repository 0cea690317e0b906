package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/walletbot/internal/logging"
)

func TestAuditLogsRouteNotPath(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()
	app.Use(RequestID())
	app.Use(Audit(logging.NewWithWriter(&buf, "info", "json")))
	app.Post("/webhook/:token", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "not found")
	})

	req := httptest.NewRequest(fiber.MethodPost, "/webhook/secret-token", nil)
	req.Header.Set(requestIDHeader, "req-1")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()

	if strings.Contains(buf.String(), "secret-token") {
		t.Fatalf("token leaked into logs: %s", buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry["route"] != "/webhook/:token" {
		t.Fatalf("unexpected route %v", entry["route"])
	}
	if entry["status"] != float64(fiber.StatusNotFound) {
		t.Fatalf("unexpected status %v", entry["status"])
	}
	if entry["request_id"] != "req-1" {
		t.Fatalf("unexpected request id %v", entry["request_id"])
	}
}
