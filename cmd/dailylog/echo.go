package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lixenwraith/dailylog"
	"github.com/lixenwraith/dailylog/compat"
	"github.com/panjf2000/gnet/v2"
	"github.com/spf13/cobra"
)

// echoServer echoes every inbound frame and logs connection events
type echoServer struct {
	gnet.BuiltinEventEngine
	eng      gnet.Engine
	producer *dailylog.Producer
}

func (es *echoServer) OnBoot(eng gnet.Engine) gnet.Action {
	es.eng = eng
	es.producer.Info("Echo engine started")
	return gnet.None
}

func (es *echoServer) OnOpen(c gnet.Conn) ([]byte, gnet.Action) {
	es.producer.Debug("Connection opened", "remote", c.RemoteAddr().String())
	return nil, gnet.None
}

func (es *echoServer) OnClose(c gnet.Conn, err error) gnet.Action {
	if err != nil {
		es.producer.Warn("Connection closed", "remote", c.RemoteAddr().String(), "error", err)
		return gnet.None
	}
	es.producer.Debug("Connection closed", "remote", c.RemoteAddr().String())
	return gnet.None
}

func (es *echoServer) OnTraffic(c gnet.Conn) gnet.Action {
	buf, _ := c.Next(-1)
	es.producer.Trace("Echo", "remote", c.RemoteAddr().String(), "bytes", len(buf))
	c.Write(buf)
	return gnet.None
}

var echoCmd = &cobra.Command{
	Use:   "echo",
	Short: "Run a TCP echo server on gnet",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		multicore, _ := cmd.Flags().GetBool("multicore")

		p, err := startPipeline(cmd)
		if err != nil {
			return err
		}
		defer p.Shutdown()

		es := &echoServer{producer: p.NewProducer("echo")}
		errCh := make(chan error, 1)
		go func() {
			errCh <- gnet.Run(es, "tcp://"+addr,
				gnet.WithMulticore(multicore),
				gnet.WithLogger(compat.NewGnetAdapter(p)),
				gnet.WithReusePort(true),
			)
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case <-sigCh:
			p.Info("Shutdown signal received")
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("echo server error: %w", err)
			}
			return nil
		}

		if err := es.eng.Stop(cmd.Context()); err != nil {
			p.Warn("Echo engine stop incomplete", "error", err)
		}
		return <-errCh
	},
}

func init() {
	echoCmd.Flags().String("addr", "127.0.0.1:9000", "Listen address")
	echoCmd.Flags().Bool("multicore", true, "Run one event loop per CPU")
}
