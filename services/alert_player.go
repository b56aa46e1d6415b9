package services

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/Yo-Self/menu-mestre-facil-sub001/kds"
)

// AlertPlayer memutar suara notifikasi waiter call. Kegagalan hanya dilaporkan, tidak pernah panic.
type AlertPlayer interface {
	Play(ctx context.Context) error
}

// NoopAlertPlayer for headless deployments and tests.
type NoopAlertPlayer struct{}

func (NoopAlertPlayer) Play(context.Context) error { return nil }

// HubAlertPlayer asks the restaurant's connected dashboards to play their own sound.
type HubAlertPlayer struct {
	Hub          *kds.Hub
	RestaurantID string
}

func (h *HubAlertPlayer) Play(ctx context.Context) error {
	if h.Hub == nil {
		return ErrNoAudioOutput
	}
	if h.Hub.BroadcastSound(h.RestaurantID) == 0 {
		return fmt.Errorf("restaurant %s has no connected dashboard: %w", h.RestaurantID, ErrNoAudioOutput)
	}
	return nil
}

// ToneAlertPlayer writes a synthesized two-stage sweep as a WAV stream to Output.
type ToneAlertPlayer struct {
	Output     func() (io.WriteCloser, error)
	SampleRate int
}

// NewDeviceTonePlayer -> menulis ke file device audio (mis. ALERT_AUDIO_DEVICE); path kosong = tidak ada output
func NewDeviceTonePlayer(path string) *ToneAlertPlayer {
	p := &ToneAlertPlayer{SampleRate: 22050}
	if path != "" {
		p.Output = func() (io.WriteCloser, error) {
			return os.OpenFile(path, os.O_WRONLY, 0)
		}
	}
	return p
}

func (t *ToneAlertPlayer) Play(ctx context.Context) error {
	if t.Output == nil {
		return ErrNoAudioOutput
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	w, err := t.Output()
	if err != nil {
		return fmt.Errorf("open audio output: %w", err)
	}
	defer w.Close()

	if _, err := w.Write(SynthesizeSweepWAV(t.SampleRate)); err != nil {
		return fmt.Errorf("write alert tone: %w", err)
	}
	return nil
}

// FallbackAlertPlayer tries Primary, then Fallback when Primary is missing or fails.
type FallbackAlertPlayer struct {
	Primary  AlertPlayer
	Fallback AlertPlayer
}

func (f *FallbackAlertPlayer) Play(ctx context.Context) error {
	primaryErr := ErrNoAudioOutput
	if f.Primary != nil {
		if primaryErr = safePlay(ctx, f.Primary); primaryErr == nil {
			return nil
		}
	}
	if f.Fallback == nil {
		return primaryErr
	}
	if err := safePlay(ctx, f.Fallback); err != nil {
		return errors.Join(primaryErr, err)
	}
	return nil
}

func safePlay(ctx context.Context, p AlertPlayer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("alert player panic: %v", r)
		}
	}()
	return p.Play(ctx)
}

// sweep stages: 880->660 Hz lalu 660->990 Hz, masing-masing 150ms
var sweepStages = []struct {
	from, to float64
	seconds  float64
}{
	{880, 660, 0.15},
	{660, 990, 0.15},
}

// SynthesizeSweepWAV renders the alert cue as 16-bit mono PCM in a WAV container.
func SynthesizeSweepWAV(sampleRate int) []byte {
	if sampleRate <= 0 {
		sampleRate = 22050
	}

	var samples []int16
	phase := 0.0
	for _, st := range sweepStages {
		n := int(st.seconds * float64(sampleRate))
		fade := n / 10
		for i := 0; i < n; i++ {
			progress := float64(i) / float64(n)
			freq := st.from + (st.to-st.from)*progress
			phase += 2 * math.Pi * freq / float64(sampleRate)

			amp := 0.3
			if i < fade {
				amp *= float64(i) / float64(fade)
			} else if i > n-fade {
				amp *= float64(n-i) / float64(fade)
			}
			samples = append(samples, int16(amp*math.Sin(phase)*math.MaxInt16))
		}
	}

	dataSize := uint32(len(samples) * 2)
	buf := bytes.NewBuffer(make([]byte, 0, 44+int(dataSize)))
	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, 36+dataSize)
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))           // chunk size
	binary.Write(buf, binary.LittleEndian, uint16(1))            // PCM
	binary.Write(buf, binary.LittleEndian, uint16(1))            // mono
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))   // sample rate
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate*2)) // byte rate
	binary.Write(buf, binary.LittleEndian, uint16(2))            // block align
	binary.Write(buf, binary.LittleEndian, uint16(16))           // bits per sample
	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, dataSize)
	binary.Write(buf, binary.LittleEndian, samples)
	return buf.Bytes()
}
