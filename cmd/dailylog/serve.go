package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lixenwraith/dailylog"
	"github.com/lixenwraith/dailylog/compat"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run an HTTP server that logs every request",
	Long: `Run a fasthttp server whose request log goes through the pipeline.

Endpoints:
  /healthz   liveness
  /stats     pipeline statistics as JSON
  /metrics   prometheus metrics
  /echo      returns the request body

Requests are logged at error for 5xx, warn for 4xx and info otherwise.
Values of password, token, api_key and secret query parameters are filtered.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		p, err := startPipeline(cmd)
		if err != nil {
			return err
		}
		defer p.Shutdown()

		server := &fasthttp.Server{
			Handler:      accessLog(p.NewProducer("http"), newRouter(p)),
			Logger:       compat.NewFastHTTPAdapter(p),
			Name:         "dailylog",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			if err := server.ListenAndServe(addr); err != nil {
				errCh <- fmt.Errorf("HTTP server error: %w", err)
			}
		}()
		p.Info("HTTP server listening", "addr", addr)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case <-sigCh:
			p.Info("Shutdown signal received")
		case err := <-errCh:
			p.Error("HTTP server stopped", "error", err)
			return err
		}

		if err := server.ShutdownWithContext(cmd.Context()); err != nil {
			p.Warn("HTTP server shutdown incomplete", "error", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "127.0.0.1:8080", "Listen address")
}

// newRouter serves the built-in endpoints
func newRouter(p *dailylog.Pipeline) fasthttp.RequestHandler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		dailylog.NewCollector(p),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return func(ctx *fasthttp.RequestCtx) {
		switch string(ctx.Path()) {
		case "/healthz":
			ctx.SetContentType("text/plain")
			ctx.SetBodyString("ok\n")
		case "/stats":
			data, err := json.Marshal(p.Stats())
			if err != nil {
				ctx.Error(err.Error(), fasthttp.StatusInternalServerError)
				return
			}
			ctx.SetContentType("application/json")
			ctx.SetBody(data)
		case "/metrics":
			metrics(ctx)
		case "/echo":
			if !ctx.IsPost() {
				ctx.Error("method not allowed", fasthttp.StatusMethodNotAllowed)
				return
			}
			ctx.SetContentType(string(ctx.Request.Header.ContentType()))
			ctx.SetBody(ctx.PostBody())
		default:
			ctx.Error("not found", fasthttp.StatusNotFound)
		}
	}
}
