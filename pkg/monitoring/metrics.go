package monitoring

import "github.com/prometheus/client_golang/prometheus"

const namespace = "liteview"

func counter(subsystem, name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Subsystem: subsystem, Name: name, Help: help})
}

var (
	FramesCaptured    = counter("capture", "frames_captured_total", "Frames read from the capture source.")
	FramesStale       = counter("capture", "frames_stale_total", "Queued frames skipped for a newer one.")
	FramesThrottled   = counter("capture", "frames_throttled_total", "Frames dropped by the fps limit.")
	FramesMalformed   = counter("capture", "frames_malformed_total", "Frames with unknown layout or bad size.")
	FramesDelivered   = counter("capture", "frames_delivered_total", "Frames put into the preview slot.")
	FramesOverwritten = counter("capture", "frames_overwritten_total", "Frames replaced before the preview took them.")
	CaptureErrors     = counter("capture", "errors_total", "Capture sessions ended with an error.")
	Sessions          = counter("capture", "sessions_total", "Started capture sessions.")

	FramesPresented = counter("preview", "frames_presented_total", "Frames shown by the preview.")
	PreviewFPS      = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: "preview", Name: "fps", Help: "Preview frames per second.",
	})
)

func init() {
	prometheus.MustRegister(
		FramesCaptured, FramesStale, FramesThrottled, FramesMalformed, FramesDelivered,
		FramesOverwritten, CaptureErrors, Sessions, FramesPresented, PreviewFPS,
	)
}
