package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/alkime/dictator/pkg/channels"
	"github.com/alkime/dictator/pkg/collections"
	"github.com/gen2brain/malgo"
)

var ErrNotAllocated = errors.New("device not allocated")

// DataPacket is one callback's worth of S16LE bytes.
type DataPacket = []byte

// Device owns one malgo device, either capturing or playing back.
type Device struct {
	conf DeviceConfig

	mu       sync.Mutex
	mgCtx    *malgo.AllocatedContext
	mgDevice *malgo.Device
	dropped  atomic.Int64
}

func NewDevice(conf DeviceConfig) *Device {
	return &Device{conf: conf}
}

// EnumerateDevices lists capture and playback devices.
func EnumerateDevices(ctx context.Context) ([]Info, error) {
	devCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}
	defer uninitializeContext(devCtx)

	var infos []Info
	for _, kind := range []malgo.DeviceType{malgo.Capture, malgo.Playback} {
		devices, err := devCtx.Devices(kind)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s devices: %w", kindName(kind), err)
		}

		infos = append(infos, collections.Apply(devices, func(mdi malgo.DeviceInfo) Info {
			return malgoDeviceInfoToDeviceInfo(kind, mdi)
		})...)
	}

	return infos, nil
}

// Capture allocates a capture device that writes copies of its sample
// packets to the returned channel once started. A full channel drops packets
// rather than stalling the audio thread.
func (d *Device) Capture(ctx context.Context) (<-chan DataPacket, error) {
	dataC := make(chan DataPacket, 64)

	cb := malgo.DeviceCallbacks{
		Data: func(_, samples []byte, _ uint32) {
			// samples is only valid for the duration of the callback
			if err := channels.SendNonBlock(dataC, append(DataPacket(nil), samples...)); err != nil {
				d.dropped.Add(1)
			}
		},
	}

	if err := d.alloc(malgo.Capture, cb); err != nil {
		return nil, err
	}

	return dataC, nil
}

// Playback allocates a playback device. fill is called on the audio thread
// and must write a full buffer of PCM into out.
func (d *Device) Playback(ctx context.Context, fill func(out []byte)) error {
	cb := malgo.DeviceCallbacks{
		Data: func(out, _ []byte, _ uint32) {
			fill(out)
		},
	}

	return d.alloc(malgo.Playback, cb)
}

func (d *Device) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.mgDevice == nil {
		return ErrNotAllocated
	}

	if d.mgDevice.IsStarted() {
		return nil
	}

	if err := d.mgDevice.Start(); err != nil {
		return fmt.Errorf("failed to start malgo device: %w", err)
	}

	return nil
}

// Stop stops the device. Stopping an unallocated device is a no-op.
func (d *Device) Stop(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.mgDevice == nil || !d.mgDevice.IsStarted() {
		return nil
	}

	if err := d.mgDevice.Stop(); err != nil {
		return fmt.Errorf("failed to stop malgo device: %w", err)
	}

	return nil
}

// Dropped returns how many capture packets were discarded.
func (d *Device) Dropped() int {
	return int(d.dropped.Load())
}

// Dealloc releases the device and its context. Safe to call repeatedly.
func (d *Device) Dealloc(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.mgDevice == nil {
		return
	}

	d.mgDevice.Uninit()
	uninitializeContext(d.mgCtx)
	d.mgDevice = nil
	d.mgCtx = nil
}

func (d *Device) alloc(kind malgo.DeviceType, cb malgo.DeviceCallbacks) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.mgDevice != nil {
		return fmt.Errorf("%s device already allocated", kindName(kind))
	}

	mgCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize malgo context: %w", err)
	}

	devCnf := malgo.DefaultDeviceConfig(kind)
	devCnf.SampleRate = uint32(d.conf.SampleRate)

	switch kind { //nolint:exhaustive // duplex and loopback are not used
	case malgo.Capture:
		devCnf.Capture.Format = d.conf.Format
		devCnf.Capture.Channels = uint32(d.conf.CaptureChannels)
	case malgo.Playback:
		devCnf.Playback.Format = d.conf.Format
		devCnf.Playback.Channels = uint32(d.conf.PlaybackChannels)
	default:
		uninitializeContext(mgCtx)
		return fmt.Errorf("unsupported device type: %v", kind)
	}

	mgDevice, err := malgo.InitDevice(mgCtx.Context, devCnf, cb)
	if err != nil {
		uninitializeContext(mgCtx)
		return fmt.Errorf("failed to initialize malgo %s device: %w", kindName(kind), err)
	}

	d.mgCtx = mgCtx
	d.mgDevice = mgDevice

	return nil
}

// Info describes an audio device for listing.
type Info struct {
	Kind      string
	Name      string
	IsDefault bool
	Formats   []Format
}

// Format is one native format a device reports. Zero fields mean the
// device accepts any value.
type Format struct {
	BytesPerSample int
	Channels       int
	SampleRate     int
}

func (f Format) String() string {
	return fmt.Sprintf("%dHz/%dch/%dB", f.SampleRate, f.Channels, f.BytesPerSample)
}

func malgoDeviceInfoToDeviceInfo(kind malgo.DeviceType, mdi malgo.DeviceInfo) Info {
	n := min(int(mdi.FormatCount), len(mdi.Formats))
	formats := make([]Format, n)
	for i, mf := range mdi.Formats[:n] {
		formats[i] = Format{
			BytesPerSample: malgo.SampleSizeInBytes(mf.Format),
			Channels:       int(mf.Channels),
			SampleRate:     int(mf.SampleRate),
		}
	}

	return Info{
		Kind:      kindName(kind),
		Name:      mdi.Name(),
		IsDefault: mdi.IsDefault != 0,
		Formats:   formats,
	}
}

func kindName(kind malgo.DeviceType) string {
	switch kind { //nolint:exhaustive // only the kinds this package allocates
	case malgo.Capture:
		return "capture"
	case malgo.Playback:
		return "playback"
	default:
		return "unknown"
	}
}

func uninitializeContext(deviceCtx *malgo.AllocatedContext) {
	if deviceCtx == nil {
		return
	}

	if err := deviceCtx.Uninit(); err != nil {
		slog.Error("failed to uninitialize malgo context", "error", err)
	}
	deviceCtx.Free()
}
