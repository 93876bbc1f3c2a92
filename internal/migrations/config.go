package migrations

import (
	"fmt"
	"net/url"

	"proofpop/internal/config"
)

// DatabaseURL is the golang-migrate form of the configured connection.
func DatabaseURL(cfg *config.Config) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.DBUser, cfg.DBPassword),
		Host:     fmt.Sprintf("%s:%s", cfg.DBHost, cfg.DBPort),
		Path:     "/" + cfg.DBName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}
