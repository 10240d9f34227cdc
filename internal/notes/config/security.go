package config

// SecurityConfig содержит настройки доступа к API.
type SecurityConfig struct {
	APIKey         string  `yaml:"api_key" env:"NOTES_API_KEY" env-default:""`
	RateLimitRPS   float64 `yaml:"rate_limit_rps" env:"NOTES_RATE_LIMIT_RPS" env-default:"0"`
	RateLimitBurst int     `yaml:"rate_limit_burst" env:"NOTES_RATE_LIMIT_BURST" env-default:"20"`
}

// RateLimitEnabled сообщает, включено ли ограничение частоты запросов.
func (s *SecurityConfig) RateLimitEnabled() bool {
	return s.RateLimitRPS > 0
}
