package playback

import (
	"io"
	"math"
	"sync"

	"github.com/sirupsen/logrus"
)

// DriftTolerance is the largest audio/video offset, in seconds, left
// uncorrected during continuous playback.
const DriftTolerance = 0.5

// Media is a controllable media stream.
type Media interface {
	CurrentTime() float64
	Seek(seconds float64)
	Play() error
	Pause()
	Paused() bool
	Muted() bool
	SetMuted(muted bool)
}

// SyncController keeps an optional voiceover stream locked to the primary
// video. The video is only ever read; corrections are applied to the
// voiceover.
type SyncController struct {
	clock  *Clock
	video  Media
	logger logrus.FieldLogger

	mu          sync.Mutex
	audio       Media
	unsubscribe func()
}

// NewSyncController subscribes to clock and follows video. A nil logger
// discards output.
func NewSyncController(clock *Clock, video Media, logger logrus.FieldLogger) *SyncController {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	s := &SyncController{clock: clock, video: video, logger: logger}
	s.unsubscribe = clock.Subscribe(s.handle)
	return s
}

// Attach sets the voiceover stream and mutes the video. A nil stream
// detaches.
func (s *SyncController) Attach(audio Media) {
	s.mu.Lock()
	s.audio = audio
	s.mu.Unlock()
	if audio == nil {
		return
	}
	s.video.SetMuted(true)
	audio.Seek(s.video.CurrentTime())
	if s.clock.Playing() {
		s.start(audio)
	}
}

// Detach removes the voiceover stream, pausing it. The video stays muted
// until the caller changes it.
func (s *SyncController) Detach() {
	s.mu.Lock()
	audio := s.audio
	s.audio = nil
	s.mu.Unlock()
	if audio != nil {
		audio.Pause()
	}
}

// Close stops following the clock.
func (s *SyncController) Close() {
	s.Detach()
	s.unsubscribe()
}

func (s *SyncController) current() Media {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.audio
}

func (s *SyncController) handle(ev Event) {
	audio := s.current()
	if audio == nil {
		return
	}
	vt := s.video.CurrentTime()

	switch ev.Type {
	case Play:
		s.keepVideoMuted()
		audio.Seek(vt)
		s.start(audio)
	case Pause:
		audio.Pause()
	case Seeked:
		audio.Seek(vt)
	case TimeUpdate:
		if audio.Paused() {
			if !ev.Playing {
				return
			}
			audio.Seek(vt)
			s.start(audio)
			return
		}
		if drift := math.Abs(audio.CurrentTime() - vt); drift > DriftTolerance {
			s.logger.WithField("drift", drift).Debug("resyncing voiceover")
			audio.Seek(vt)
		}
	case VolumeChange:
		s.keepVideoMuted()
	}
}

func (s *SyncController) keepVideoMuted() {
	if !s.video.Muted() {
		s.video.SetMuted(true)
	}
}

// start plays audio, swallowing rejections; the next event retries.
func (s *SyncController) start(audio Media) {
	if err := audio.Play(); err != nil {
		s.logger.WithError(err).Debug("voiceover play rejected")
	}
}
