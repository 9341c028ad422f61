package receiver

import (
	"github.com/juju/errors"
	"github.com/mirrorcast/mirrorcast/server"
	"github.com/mirrorcast/mirrorcast/server/logger"
	"github.com/mirrorcast/mirrorcast/server/pionlogger"
	"github.com/pion/interceptor"
	"github.com/pion/webrtc/v3"
)

// NewAPI builds a webrtc API with the default codecs and interceptors, with
// pion internals logging through our logger.
func NewAPI(log logger.Logger) (*webrtc.API, error) {
	mediaEngine := &webrtc.MediaEngine{}

	if err := mediaEngine.RegisterDefaultCodecs(); err != nil {
		return nil, errors.Annotate(err, "register default codecs")
	}

	interceptorRegistry := &interceptor.Registry{}

	if err := webrtc.RegisterDefaultInterceptors(mediaEngine, interceptorRegistry); err != nil {
		return nil, errors.Annotate(err, "register default interceptors")
	}

	settingEngine := webrtc.SettingEngine{
		LoggerFactory: pionlogger.NewFactory(log),
	}

	api := webrtc.NewAPI(
		webrtc.WithMediaEngine(mediaEngine),
		webrtc.WithSettingEngine(settingEngine),
		webrtc.WithInterceptorRegistry(interceptorRegistry),
	)

	return api, nil
}

// webrtcICEServers converts configured ICE servers, resolving TURN
// credentials where a static auth secret is set.
func webrtcICEServers(iceServers []server.ICEServer) []webrtc.ICEServer {
	result := make([]webrtc.ICEServer, 0, len(iceServers))

	for _, iceServer := range server.GetICEAuthServers(iceServers) {
		var credentialType webrtc.ICECredentialType

		if iceServer.Username != "" && iceServer.Credential != "" {
			credentialType = webrtc.ICECredentialTypePassword
		}

		result = append(result, webrtc.ICEServer{
			URLs:           iceServer.URLs,
			CredentialType: credentialType,
			Username:       iceServer.Username,
			Credential:     iceServer.Credential,
		})
	}

	return result
}
