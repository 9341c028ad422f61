package cli

import (
	"context"
	"fmt"

	"github.com/juju/errors"
	"github.com/mirrorcast/mirrorcast/server"
	"github.com/mirrorcast/mirrorcast/server/command"
	"github.com/mirrorcast/mirrorcast/server/identifiers"
	"github.com/mirrorcast/mirrorcast/server/logger"
	"github.com/mirrorcast/mirrorcast/server/receiver"
	"github.com/spf13/pflag"
)

type receiveHandler struct {
	args struct {
		config   string
		url      string
		room     string
		output   string
		insecure bool
	}

	log    logger.Logger
	config server.Config
}

func (h *receiveHandler) RegisterFlags(c *command.Command, flags *pflag.FlagSet) {
	flags.StringVarP(&h.args.config, "config", "c", "", "configuration to use")
	flags.StringVarP(&h.args.url, "url", "u", "http://localhost:8787/ws", "relay websocket URL")
	flags.StringVarP(&h.args.room, "room", "r", "", "room to join")
	flags.StringVarP(&h.args.output, "output", "o", "", "record received VP8 video to an IVF file")
	flags.BoolVarP(&h.args.insecure, "insecure", "k", false, "do not validate TLS certificates")
}

func (h *receiveHandler) configure() (err error) {
	configFiles := []string{}
	if h.args.config != "" {
		configFiles = append(configFiles, h.args.config)
	}

	h.config, err = server.ReadConfig(configFiles)
	if err != nil {
		return errors.Annotate(err, "read config")
	}

	if h.args.room == "" {
		return errors.Errorf("room must not be empty")
	}

	return nil
}

func (h *receiveHandler) Handle(ctx context.Context, args []string) error {
	if err := h.configure(); err != nil {
		return errors.Annotatef(err, "configure")
	}

	recv, err := receiver.New(receiver.Params{
		Log:        h.log,
		ICEServers: h.config.ICEServers,
		URL:        h.args.url,
		RoomID:     identifiers.RoomID(h.args.room),
		Insecure:   h.args.insecure,
		IVFPath:    h.args.output,
		OnStateChange: func(state receiver.State) {
			h.log.Info(fmt.Sprintf("Session state: %s", state), nil)
		},
	})
	if err != nil {
		return errors.Annotate(err, "create receiver")
	}

	session, err := recv.Start(ctx)
	if err != nil {
		return errors.Annotate(err, "start receiver")
	}

	defer recv.Stop()

	select {
	case <-ctx.Done():
	case <-session.Done():
	}

	return nil
}

func newReceiveCmd(props Props) *command.Command {
	h := &receiveHandler{
		log: props.Log,
	}

	return command.New(command.Params{
		Name:         "receive",
		Desc:         "Joins a room as a viewer and receives the mirrored screen",
		FlagRegistry: h,
		Handler:      h,
	})
}
