package app

import (
	"database/sql"

	"github.com/go-chi/oauth"
	"github.com/zenrsr/form-craft/config"
)

type App struct {
	*sql.DB
	*oauth.BearerServer
	config.Config
}
