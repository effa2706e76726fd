package config

type PostgresConfig struct {
	// Url is empty when conversions are not recorded
	Url string
}

func NewPostgresConfig() *PostgresConfig {
	return &PostgresConfig{
		Url: getEnv("DATABASE_URL", ""),
	}
}

func (c *PostgresConfig) Enabled() bool {
	return c.Url != ""
}
