package compat

import (
	"fmt"

	"github.com/lixenwraith/dailylog"
	"github.com/rs/zerolog"
	"go.uber.org/zap"
)

// Builder creates adapters that feed third-party loggers and servers into a
// single pipeline. It uses an existing *dailylog.Pipeline or initializes one
// from a *dailylog.Config.
type Builder struct {
	pipe   *dailylog.Pipeline
	logCfg *dailylog.Config
	opts   []dailylog.Option
	err    error
}

// NewBuilder creates a new adapter builder
func NewBuilder() *Builder {
	return &Builder{}
}

// WithPipeline specifies an existing pipeline to use for the adapters.
// If this is set WithConfig is ignored.
func (b *Builder) WithPipeline(p *dailylog.Pipeline) *Builder {
	if p == nil {
		b.err = fmt.Errorf("dailylog/compat: provided pipeline cannot be nil")
		return b
	}
	b.pipe = p
	return b
}

// WithConfig provides a configuration for a new pipeline. It is used only
// if no pipeline was provided through WithPipeline. Without either, a
// pipeline with the default configuration is created.
func (b *Builder) WithConfig(cfg *dailylog.Config, opts ...dailylog.Option) *Builder {
	b.logCfg = cfg
	b.opts = opts
	return b
}

// getPipeline resolves the pipeline to be used, creating one if necessary
func (b *Builder) getPipeline() (*dailylog.Pipeline, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.pipe != nil {
		return b.pipe, nil
	}

	p, err := dailylog.Initialize(b.logCfg, b.opts...)
	if err != nil {
		return nil, err
	}

	// Cache the pipeline for subsequent builds with this builder
	b.pipe = p
	return p, nil
}

// BuildGnet creates a gnet adapter
func (b *Builder) BuildGnet(opts ...GnetOption) (*GnetAdapter, error) {
	p, err := b.getPipeline()
	if err != nil {
		return nil, err
	}
	return NewGnetAdapter(p, opts...), nil
}

// BuildFastHTTP creates a fasthttp adapter
func (b *Builder) BuildFastHTTP(opts ...FastHTTPOption) (*FastHTTPAdapter, error) {
	p, err := b.getPipeline()
	if err != nil {
		return nil, err
	}
	return NewFastHTTPAdapter(p, opts...), nil
}

// BuildZap creates a *zap.Logger backed by a ZapCore
func (b *Builder) BuildZap(opts ...zap.Option) (*zap.Logger, error) {
	p, err := b.getPipeline()
	if err != nil {
		return nil, err
	}
	return zap.New(NewZapCore(p), opts...), nil
}

// BuildZerolog creates a zerolog.Logger writing through a ZerologWriter
func (b *Builder) BuildZerolog() (zerolog.Logger, error) {
	p, err := b.getPipeline()
	if err != nil {
		return zerolog.Nop(), err
	}
	return zerolog.New(NewZerologWriter(p)), nil
}

// GetPipeline returns the underlying pipeline, initializing it if needed
func (b *Builder) GetPipeline() (*dailylog.Pipeline, error) {
	return b.getPipeline()
}

// --- Example Usage ---
//
//	p, err := dailylog.Initialize(nil)
//	if err != nil { /* handle error */ }
//	defer p.Shutdown()
//
//	builder := compat.NewBuilder().WithPipeline(p)
//
//	gnetLogger, _ := builder.BuildGnet()
//	go gnet.Run(events, "tcp://:9000", gnet.WithLogger(gnetLogger))
//
//	fasthttpLogger, _ := builder.BuildFastHTTP()
//	server := &fasthttp.Server{Handler: handler, Logger: fasthttpLogger}
//
//	zl, _ := builder.BuildZap()
//	zl.Info("ready", zap.Int("port", 8080))
