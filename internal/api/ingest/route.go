package ingest

import (
	"github.com/gofiber/fiber/v3"
)

func RegisterRoutes(r fiber.Router) {
	grp := r.Group("/ingest")

	grp.Post("/:docID", HandleIngest)
	grp.Get("/:docID", HandleStatus)
}
