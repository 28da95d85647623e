package healthcheck

import (
	"context"
	"time"

	"pdf2tsv/config"
	"pdf2tsv/internal/core/ingest"
	"pdf2tsv/internal/database"
	"pdf2tsv/pkg/apperror"

	"github.com/gofiber/fiber/v3"
)

func ApiHealthCheck(c fiber.Ctx) error {
	return c.SendString("ok")
}

func DatabaseHealthCheck(c fiber.Ctx) error {
	db, err := database.GetDB()
	if err != nil {
		return apperror.InternalError(config.ModuleDatabase, c, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return apperror.InternalError(config.ModuleDatabase, c, err)
	}
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return apperror.InternalError(config.ModuleDatabase, c, err)
	}
	return c.SendString("ok")
}

func MilvusHealthCheck(c fiber.Ctx) error {
	cli, err := ingest.ConnectMilvus(c.Context(), 1, 2*time.Second, 0)
	if err != nil {
		return apperror.InternalError(config.ModuleMilvus, c, err)
	}
	cli.Close()
	return c.SendString("ok")
}
