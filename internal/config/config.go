package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/Skotchmaster/shopcarts/internal/validation"
)

type Config struct {
	ServiceName string

	ServerPort int
	BasePath   string

	DatabaseURL string

	LogLevel string

	KafkaBrokers []string

	// StatusAliases maps friendly inbound status spellings to canonical
	// states. The defaults cover the alias sets older console iterations
	// used; STATUS_ALIASES ("alias=canonical,...") extends or overrides.
	StatusAliases validation.StatusMap
}

func Load() Config {
	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "shopcarts"),

		ServerPort: EnvIntDefault("SERVER_PORT", 8080),
		BasePath:   EnvDefault("API_BASE_PATH", "/shopcarts"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		LogLevel: EnvDefault("LOG_LEVEL", "info"),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		StatusAliases: statusAliases(os.Getenv("STATUS_ALIASES")),
	}
}

func statusAliases(raw string) validation.StatusMap {
	aliases := validation.DefaultAliases()
	for _, pair := range CSV(raw) {
		alias, canonical, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		alias = strings.ToLower(strings.TrimSpace(alias))
		canonical = strings.ToLower(strings.TrimSpace(canonical))
		if alias != "" && canonical != "" {
			aliases[alias] = canonical
		}
	}
	return aliases
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
