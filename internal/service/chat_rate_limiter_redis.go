package service

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ChatRateDecision es la respuesta del limitador para un turno de chat.
// Remaining < 0 significa que no se pudo consultar el contador.
type ChatRateDecision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// ChatRateLimiter limita turnos de chat por ruta e IP del cliente.
type ChatRateLimiter interface {
	Allow(ctx context.Context, route, clientIP string) ChatRateDecision
}

// Ventana fija: el primer turno abre la ventana y PTTL indica cuando se libera.
const redisChatWindowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {current, ttl}
`

const (
	chatRateKeyPrefix  = "chat:rl:"
	chatRateEvalBudget = 250 * time.Millisecond
)

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

type redisChatRateLimiter struct {
	client redisEvaler
	window time.Duration
	max    int
}

// NewRedisChatRateLimiter devuelve nil si no hay cliente; el router lo trata como "sin limite".
func NewRedisChatRateLimiter(client *redis.Client, window time.Duration, max int) ChatRateLimiter {
	if client == nil {
		return nil
	}
	return newRedisChatRateLimiter(client, window, max)
}

func newRedisChatRateLimiter(client redisEvaler, window time.Duration, max int) *redisChatRateLimiter {
	if window < time.Second {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &redisChatRateLimiter{client: client, window: window, max: max}
}

// Allow falla abierto ante errores de Redis: el chat no debe caerse por el limitador.
func (l *redisChatRateLimiter) Allow(ctx context.Context, route, clientIP string) ChatRateDecision {
	open := ChatRateDecision{Allowed: true, Remaining: -1}
	if l == nil || l.client == nil {
		return open
	}

	ctx, cancel := context.WithTimeout(ctx, chatRateEvalBudget)
	defer cancel()

	key := chatRateKey(route, clientIP)
	res, err := l.client.Eval(ctx, redisChatWindowScript, []string{key}, l.window.Milliseconds()).Int64Slice()
	if err != nil || len(res) != 2 {
		return open
	}

	count, ttl := int(res[0]), time.Duration(res[1])*time.Millisecond
	if count > l.max {
		return ChatRateDecision{Allowed: false, Remaining: 0, RetryAfter: ttl}
	}
	return ChatRateDecision{Allowed: true, Remaining: l.max - count}
}

// chatRateKey arma "chat:rl:<ruta>:<ip>". Las IP se canonizan para que
// "2001:DB8::1" y "2001:db8:0::1" compartan contador.
func chatRateKey(route, clientIP string) string {
	route = strings.TrimSpace(route)
	if route == "" {
		route = "default"
	}
	ip := strings.TrimSpace(clientIP)
	if parsed := net.ParseIP(ip); parsed != nil {
		ip = parsed.String()
	} else if ip == "" {
		ip = "unknown"
	} else {
		ip = strings.ToLower(ip)
	}
	return chatRateKeyPrefix + route + ":" + ip
}
