package cli

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/juju/errors"
	"github.com/mirrorcast/mirrorcast/server"
	"github.com/mirrorcast/mirrorcast/server/command"
	"github.com/mirrorcast/mirrorcast/server/identifiers"
	"github.com/mirrorcast/mirrorcast/server/logger"
	"github.com/spf13/pflag"
)

type serverHandler struct {
	args struct {
		config string
	}

	log    logger.Logger
	config server.Config
	props  Props
	server *server.Server
	mux    *server.Mux
}

func (h *serverHandler) RegisterFlags(c *command.Command, flags *pflag.FlagSet) {
	flags.StringVarP(&h.args.config, "config", "c", "", "config file to use")
}

func (h *serverHandler) Handle(ctx context.Context, args []string) error {
	if err := h.configure(); err != nil {
		return errors.Trace(err)
	}

	listener, err := net.Listen("tcp", net.JoinHostPort(
		h.config.BindHost,
		strconv.Itoa(h.config.BindPort),
	))
	if err != nil {
		return errors.Annotate(err, "listen")
	}

	defer listener.Close()

	h.server = server.New(server.Params{
		TLSCertFile: h.config.TLS.Cert,
		TLSKeyFile:  h.config.TLS.Key,
	}, h.mux)

	addr, _ := listener.Addr().(*net.TCPAddr)
	h.log.Info("Listen", logger.Ctx{
		"local_addr": addr,
	})

	err = h.server.Start(ctx, listener)

	return errors.Trace(err)
}

func (h *serverHandler) configure() (err error) {
	log := h.log

	configFiles := []string{}
	if h.args.config != "" {
		configFiles = append(configFiles, h.args.config)
	}

	h.config, err = server.ReadConfig(configFiles)
	if err != nil {
		return errors.Annotate(err, "read config")
	}

	c := h.config

	log.Info(fmt.Sprintf("Using config: %+v", c), nil)

	rooms := server.NewRoomManager(log, func(room identifiers.RoomID) server.Adapter {
		return server.NewMemoryAdapter(log, room)
	})

	wss := server.NewWSS(log)
	relay := server.NewRelay(log, wss, rooms)

	h.mux = server.NewMux(log, relay, c.Prometheus)

	return nil
}

func newServerCmd(props Props) *command.Command {
	h := &serverHandler{
		log:   props.Log,
		props: props,
	}

	return command.New(command.Params{
		Name:         "server",
		Desc:         "Starts the signaling relay server (default)",
		FlagRegistry: h,
		Handler:      h,
	})
}
