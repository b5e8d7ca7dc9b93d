package main

import (
	"permitdesk/internal/infra/persistence/model"

	"gorm.io/gen"
)

func main() {
	models := []any{
		model.UserModel{},
		model.RoleModel{},
		model.UserRoleModel{},
		model.RefreshTokenModel{},
		model.RevokedAccessTokenModel{},
		model.ApplicationModel{},
	}

	gen := gen.NewGenerator(gen.Config{
		OutPath: "./internal/infra/persistence/postgres/query",
	})

	gen.ApplyBasic(models...)

	gen.Execute()
}
