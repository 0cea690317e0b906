package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const (
	updatePrefix     = "update:v1:"
	inProgressMarker = "__in_progress__"
	cacheOpTimeout   = 2 * time.Second
)

type storedResponse struct {
	Status  int               `json:"status"`
	Body    string            `json:"body"`
	Headers map[string]string `json:"headers"`
}

// UpdateDedupe replays the stored reply when Telegram redelivers an update
// with an update_id that was already answered. Wallet mutations therefore run
// at most once per update. Bodies without an update_id pass straight through.
func UpdateDedupe(cache *redis.Client, ttl time.Duration, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		update, ok := peekUpdate(c)
		if !ok || update.UpdateID == 0 {
			return c.Next()
		}

		key := strconv.FormatInt(update.UpdateID, 10)
		cacheKey := updatePrefix + key

		ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
		defer cancel()

		cached, err := cache.Get(ctx, cacheKey).Result()
		if err == nil {
			if cached == inProgressMarker {
				return fiber.NewError(fiber.StatusConflict, "update currently processing")
			}

			var stored storedResponse
			if err := json.Unmarshal([]byte(cached), &stored); err != nil {
				logger.Warn("failed to decode stored update reply", slog.String("update_id", key), slog.Any("error", err))
				return c.SendStatus(fiber.StatusOK)
			}

			for header, value := range stored.Headers {
				if strings.EqualFold(header, fiber.HeaderContentLength) || strings.EqualFold(header, requestIDHeader) {
					continue
				}
				c.Set(header, value)
			}
			logger.Info("replayed duplicate update", slog.String("update_id", key))
			return c.Status(stored.Status).SendString(stored.Body)
		}

		if err != redis.Nil {
			logger.Error("update lookup failed", slog.String("update_id", key), slog.Any("error", err))
			return fiber.NewError(fiber.StatusInternalServerError, "update store failure")
		}

		reserved, err := cache.SetNX(ctx, cacheKey, inProgressMarker, ttl).Result()
		if err != nil {
			logger.Error("update reservation failed", slog.String("update_id", key), slog.Any("error", err))
			return fiber.NewError(fiber.StatusInternalServerError, "update reservation failure")
		}
		if !reserved {
			return fiber.NewError(fiber.StatusConflict, "update currently processing")
		}

		if err := c.Next(); err != nil {
			cleanupCtx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
			defer cancel()
			cache.Del(cleanupCtx, cacheKey)
			return err
		}

		stored := storedResponse{
			Status:  c.Response().StatusCode(),
			Body:    string(c.Response().Body()),
			Headers: map[string]string{},
		}
		c.Response().Header.VisitAll(func(k, v []byte) {
			stored.Headers[string(k)] = string(v)
		})

		payload, err := json.Marshal(stored)
		if err != nil {
			logger.Error("failed to encode update reply", slog.String("update_id", key), slog.Any("error", err))
			return nil
		}

		persistCtx, persistCancel := context.WithTimeout(context.Background(), cacheOpTimeout)
		defer persistCancel()

		// The wallet has already been mutated at this point, so a persistence
		// failure is logged and the reply still goes out.
		if err := cache.Set(persistCtx, cacheKey, payload, ttl).Err(); err != nil {
			logger.Error("failed to persist update reply", slog.String("update_id", key), slog.Any("error", err))
		}
		return nil
	}
}
