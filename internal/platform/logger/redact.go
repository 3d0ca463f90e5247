package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"
)

type keyClass int

const (
	keyPlain keyClass = iota
	keyRedact
	keyHash
)

var (
	redactFragments = []string{"token", "authorization", "password", "secret", "cookie", "api_key", "apikey", "email"}
	hashFragments   = []string{"user_id", "session_id"}
)

// redaction is read once from LOG_REDACTION_ENABLED (default on) and LOG_HASH_SALT.
var redaction = sync.OnceValues(func() (bool, string) {
	enabled := true
	switch strings.TrimSpace(strings.ToLower(os.Getenv("LOG_REDACTION_ENABLED"))) {
	case "0", "false", "no", "off":
		enabled = false
	}
	return enabled, strings.TrimSpace(os.Getenv("LOG_HASH_SALT"))
})

func classify(key string) keyClass {
	key = strings.TrimSpace(strings.ToLower(key))
	if key == "" {
		return keyPlain
	}
	for _, f := range redactFragments {
		if strings.Contains(key, f) {
			return keyRedact
		}
	}
	if key == "sid" {
		return keyHash
	}
	for _, f := range hashFragments {
		if strings.Contains(key, f) {
			return keyHash
		}
	}
	return keyPlain
}

func sanitizeKVs(kv []interface{}) []interface{} {
	if len(kv) == 0 {
		return kv
	}
	enabled, salt := redaction()
	if !enabled {
		return kv
	}
	out := make([]interface{}, 0, len(kv))
	for i := 0; i+1 < len(kv); i += 2 {
		key := toString(kv[i])
		out = append(out, key, sanitizeValue(key, kv[i+1], salt))
	}
	if len(kv)%2 == 1 {
		out = append(out, kv[len(kv)-1])
	}
	return out
}

func sanitizeValue(key string, val interface{}, salt string) interface{} {
	switch classify(key) {
	case keyRedact:
		return "[REDACTED]"
	case keyHash:
		return hashValue(val, salt)
	}
	switch v := val.(type) {
	case map[string]interface{}:
		if v == nil {
			return v
		}
		out := make(map[string]interface{}, len(v))
		for k, inner := range v {
			out[k] = sanitizeValue(k, inner, salt)
		}
		return out
	case string:
		if looksLikeJWT(v) {
			return "[REDACTED]"
		}
	}
	return val
}

func hashValue(val interface{}, salt string) string {
	raw := toString(val)
	if raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(salt + raw))
	return "hash:" + hex.EncodeToString(sum[:])[:12]
}

func looksLikeJWT(s string) bool {
	parts := strings.Split(s, ".")
	return len(parts) == 3 && len(parts[0]) > 10 && len(parts[1]) > 10
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
