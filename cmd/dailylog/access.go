package main

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/lixenwraith/dailylog"
	"github.com/lixenwraith/dailylog/formatter"
	"github.com/valyala/fasthttp"
)

// sensitiveParams are query keys whose values never reach the log
var sensitiveParams = map[string]bool{
	"password": true,
	"token":    true,
	"api_key":  true,
	"secret":   true,
}

// clientIP returns the remote host without port and IPv6 brackets
func clientIP(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	if strings.HasPrefix(addr, "[") && strings.HasSuffix(addr, "]") {
		return addr[1 : len(addr)-1]
	}
	return addr
}

// filteredURI renders path?query with sensitive values replaced
func filteredURI(path string, args *fasthttp.Args) string {
	if args.Len() == 0 {
		return path
	}
	var sb strings.Builder
	sb.WriteString(path)
	sb.WriteByte('?')
	first := true
	args.VisitAll(func(key, value []byte) {
		if !first {
			sb.WriteByte('&')
		}
		first = false
		sb.Write(key)
		sb.WriteByte('=')
		if sensitiveParams[string(key)] {
			sb.WriteString("[FILTERED]")
		} else {
			sb.Write(value)
		}
	})
	return sb.String()
}

// statusColor picks red for 5xx, yellow for 4xx and green otherwise
func statusColor(status int) string {
	switch {
	case status >= 500:
		return formatter.Red
	case status >= 400:
		return formatter.Yellow
	default:
		return formatter.Green
	}
}

// statusLevel maps a response status to the record level
func statusLevel(status int) int64 {
	switch {
	case status >= 500:
		return dailylog.LevelError
	case status >= 400:
		return dailylog.LevelWarn
	default:
		return dailylog.LevelInfo
	}
}

// requestLine builds `<ip> - "<METHOD> <uri>" <status> (<ms>ms) <body>`.
// Method and status carry colors; the file sink strips them.
func requestLine(ip, method, uri string, status int, elapsed time.Duration, body []byte) string {
	b := "{}"
	if len(body) > 0 {
		b = string(body)
	}
	return fmt.Sprintf("%s - \"%s %s\" %s (%dms) %s",
		ip,
		formatter.Colorize(method, formatter.Magenta),
		uri,
		formatter.Colorize(fmt.Sprint(status), statusColor(status)),
		elapsed.Milliseconds(),
		b,
	)
}

// accessLog wraps next and logs every request through producer
func accessLog(producer *dailylog.Producer, next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		next(ctx)

		status := ctx.Response.StatusCode()
		line := requestLine(
			clientIP(ctx.RemoteAddr().String()),
			string(ctx.Method()),
			filteredURI(string(ctx.Path()), ctx.QueryArgs()),
			status,
			time.Since(start),
			ctx.PostBody(),
		)
		_ = producer.Log(statusLevel(status), line)
	}
}
