package envutil

import (
	"os"
	"strconv"
	"strings"

	"github.com/yungbote/overlay-backend/internal/platform/logger"
)

// String returns the trimmed value of name or def when unset.
func String(name, def string, log *logger.Logger) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		if log != nil {
			log.Debug("env not set, using default", "key", name, "default", def)
		}
		return def
	}
	return v
}

func Int(name string, def int, log *logger.Logger) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		if log != nil {
			log.Warn("invalid int env, using default", "key", name, "value", v, "default", def)
		}
		return def
	}
	return i
}

func Float(name string, def float64, log *logger.Logger) float64 {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		if log != nil {
			log.Warn("invalid float env, using default", "key", name, "value", v, "default", def)
		}
		return def
	}
	return f
}

func Bool(name string, def bool, log *logger.Logger) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	switch v {
	case "":
		return def
	case "1", "true", "yes", "on", "y":
		return true
	case "0", "false", "no", "off", "n":
		return false
	default:
		if log != nil {
			log.Warn("invalid bool env, using default", "key", name, "value", v, "default", def)
		}
		return def
	}
}

// List splits a comma separated variable, dropping empty entries.
func List(name string, def []string, log *logger.Logger) []string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
