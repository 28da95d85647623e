package main

import (
	"pdf2tsv/internal/database/model"

	"gorm.io/gen"
)

// Generates type-safe DAO code for the models in internal/database/model.
func main() {
	g := gen.NewGenerator(gen.Config{
		OutPath:        "internal/database/query",
		Mode:           gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable:  true,
		FieldCoverable: true,
	})

	g.ApplyBasic(model.User{}, model.Document{}, model.Chunk{})

	g.Execute()
}
