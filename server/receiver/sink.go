package receiver

import (
	"io"
	"strings"
	"sync"
	"time"

	"github.com/juju/errors"
	"github.com/mirrorcast/mirrorcast/server/logger"
	"github.com/mirrorcast/mirrorcast/server/multierr"
	"github.com/pion/rtcp"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v3"
	"github.com/pion/webrtc/v3/pkg/media/ivfwriter"
)

const defaultPLIInterval = 3 * time.Second

// rtcpWriter sends RTCP feedback back to the broadcaster.
type rtcpWriter interface {
	WriteRTCP(pkts []rtcp.Packet) error
}

// trackSink drains incoming video tracks. VP8 tracks can optionally be
// written to an IVF file; everything else is read and discarded so the
// interceptors keep doing their work. It also asks the broadcaster for a
// keyframe periodically so a late join does not stay on a stale picture.
type trackSink struct {
	log         logger.Logger
	rtcpWriter  rtcpWriter
	ivfPath     string
	pliInterval time.Duration
	done        <-chan struct{}
	wg          sync.WaitGroup
}

type trackSinkParams struct {
	Log        logger.Logger
	RTCPWriter rtcpWriter
	// IVFPath, when set, is the file VP8 tracks are recorded to.
	IVFPath string
	// Done stops the keyframe loop.
	Done <-chan struct{}
}

func newTrackSink(params trackSinkParams) *trackSink {
	return &trackSink{
		log:         params.Log.WithNamespaceAppended("sink"),
		rtcpWriter:  params.RTCPWriter,
		ivfPath:     params.IVFPath,
		pliInterval: defaultPLIInterval,
		done:        params.Done,
	}
}

// HandleTrack is meant to be wired into OnTrack. It returns once the pump
// goroutines are started.
func (s *trackSink) HandleTrack(track *webrtc.TrackRemote) {
	log := s.log.WithCtx(logger.Ctx{
		"track_id":  track.ID(),
		"mime_type": track.Codec().MimeType,
		"ssrc":      track.SSRC(),
	})

	log.Info("Remote track", nil)

	if track.Kind() == webrtc.RTPCodecTypeVideo {
		s.wg.Add(1)

		go func() {
			defer s.wg.Done()

			s.keyframeLoop(log, track.SSRC())
		}()
	}

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		s.pump(log, track)
	}()
}

// Wait blocks until all pump goroutines have finished.
func (s *trackSink) Wait() {
	s.wg.Wait()
}

func (s *trackSink) keyframeLoop(log logger.Logger, ssrc webrtc.SSRC) {
	ticker := time.NewTicker(s.pliInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			err := s.rtcpWriter.WriteRTCP([]rtcp.Packet{
				&rtcp.PictureLossIndication{
					MediaSSRC: uint32(ssrc),
				},
			})
			if err != nil {
				log.Error("Send PLI", errors.Trace(err), nil)

				return
			}
		}
	}
}

func (s *trackSink) pump(log logger.Logger, track *webrtc.TrackRemote) {
	writer, err := s.newWriter(track)
	if err != nil {
		log.Error("Create track writer", errors.Trace(err), nil)
	}

	if writer != nil {
		defer func() {
			if err := writer.Close(); err != nil {
				log.Error("Close track writer", errors.Trace(err), nil)
			}
		}()
	}

	var packets uint64

	for {
		pkt, _, err := track.ReadRTP()
		if err != nil {
			if !multierr.Is(err, io.EOF) {
				log.Error("Read RTP", errors.Trace(err), nil)
			}

			log.Info("Track ended", logger.Ctx{
				"packets": packets,
			})

			return
		}

		packets++

		s.handlePacket(log, writer, pkt)
	}
}

func (s *trackSink) handlePacket(log logger.Logger, writer *ivfwriter.IVFWriter, pkt *rtp.Packet) {
	if writer == nil {
		return
	}

	if err := writer.WriteRTP(pkt); err != nil {
		log.Error("Write RTP to file", errors.Trace(err), nil)
	}
}

// newWriter returns an IVF writer for VP8 video when recording is
// configured, nil otherwise.
func (s *trackSink) newWriter(track *webrtc.TrackRemote) (*ivfwriter.IVFWriter, error) {
	if s.ivfPath == "" || track.Kind() != webrtc.RTPCodecTypeVideo {
		return nil, nil
	}

	if !strings.EqualFold(track.Codec().MimeType, webrtc.MimeTypeVP8) {
		return nil, nil
	}

	writer, err := ivfwriter.New(s.ivfPath)

	return writer, errors.Annotatef(err, "open ivf file: %s", s.ivfPath)
}
