package handlers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// InstallDatabase applies the schema migrations for both datastores
// @Summary Install Database Schema
// @Description Creates the games/moves/achievements tables and the move-event analytics store
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string
// @Router /system/install [post]
func (h *Handler) InstallDatabase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	results := make(map[string]string)
	failed := false

	if err := h.installPostgres(ctx); err != nil {
		h.logger.Errorw("Postgres schema install failed", "error", err)
		results["postgres"] = "failed: " + err.Error()
		failed = true
	} else {
		results["postgres"] = "success"
	}

	if err := h.installClickHouse(ctx); err != nil {
		h.logger.Errorw("ClickHouse schema install failed", "error", err)
		results["clickhouse"] = "failed: " + err.Error()
		failed = true
	} else {
		results["clickhouse"] = "success"
	}

	status := http.StatusOK
	if failed {
		status = http.StatusInternalServerError
	}
	h.jsonResponse(w, status, map[string]interface{}{
		"status":  "completed",
		"results": results,
		"error":   failed,
	})
}

func (h *Handler) installPostgres(ctx context.Context) error {
	content, err := os.ReadFile(filepath.Join("migrations", "postgres", "001_initial_schema.sql"))
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	if _, err := h.pg.Exec(ctx, string(content)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	h.logger.Infow("Postgres schema installed")
	return nil
}

func (h *Handler) installClickHouse(ctx context.Context) error {
	content, err := os.ReadFile(filepath.Join("migrations", "clickhouse", "001_initial_schema.sql"))
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}

	// The driver takes one statement per Exec.
	for _, stmt := range strings.Split(string(content), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if err := h.ch.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply statement: %w", err)
		}
	}
	h.logger.Infow("ClickHouse schema installed")
	return nil
}
