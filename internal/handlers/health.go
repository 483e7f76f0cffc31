package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ArbeitTechnology/cid-visitor-backend/internal/cache"
)

func (h HandlerSet) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// VisitStats serves the dashboard counters. The hourly job keeps them warm
// in redis; a cold key falls back to counting directly.
func (h HandlerSet) VisitStats(c *gin.Context) {
	ctx := c.Request.Context()
	now := time.Now()

	today, err := h.visitCount(ctx, cache.KeyVisitsToday, time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()))
	if err != nil {
		h.respondError(c, err)
		return
	}
	week, err := h.visitCount(ctx, cache.KeyVisitsWeek, now.AddDate(0, 0, -7))
	if err != nil {
		h.respondError(c, err)
		return
	}
	month, err := h.visitCount(ctx, cache.KeyVisitsMonth, now.AddDate(0, -1, 0))
	if err != nil {
		h.respondError(c, err)
		return
	}
	total, err := h.visitCount(ctx, cache.KeyVisitsTotal, time.Time{})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"today": today,
		"week":  week,
		"month": month,
		"total": total,
	})
}

func (h HandlerSet) visitCount(ctx context.Context, key string, since time.Time) (int, error) {
	if raw, err := h.cache.Get(ctx, key).Result(); err == nil {
		if n, convErr := strconv.Atoi(raw); convErr == nil {
			return n, nil
		}
	}
	return h.visits.CountSince(ctx, since)
}
