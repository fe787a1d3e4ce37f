// SPDX-License-Identifier: MIT
package source

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// DefaultDevice selects the system default input device.
const DefaultDevice = -1

// Initialize sets up the PortAudio subsystem. Pair with Terminate.
func Initialize() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("source: initialize PortAudio: %w", err)
	}
	return nil
}

// Terminate shuts down the PortAudio subsystem.
func Terminate() error {
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("source: terminate PortAudio: %w", err)
	}
	return nil
}

// inputDevice resolves a device index to a PortAudio device.
// DefaultDevice picks the system default input.
func inputDevice(deviceID int) (*portaudio.DeviceInfo, error) {
	if deviceID == DefaultDevice {
		device, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, fmt.Errorf("source: default input device: %w", err)
		}
		return device, nil
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("source: enumerate devices: %w", err)
	}
	if deviceID < 0 || deviceID >= len(devices) {
		return nil, fmt.Errorf("source: invalid device ID: %d", deviceID)
	}
	return devices[deviceID], nil
}

// Devices returns every PortAudio device with input channels, in
// enumeration order. Used by the device listing command and the TUI.
func Devices() ([]*portaudio.DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("source: enumerate devices: %w", err)
	}
	return devices, nil
}

// ListDevices prints every available audio device with its channel
// counts, sample rate and latency range.
func ListDevices() error {
	devices, err := Devices()
	if err != nil {
		return err
	}

	fmt.Printf("\nAvailable Audio Devices\n\n")
	for i, device := range devices {
		deviceType := ""
		switch {
		case device.MaxInputChannels > 0 && device.MaxOutputChannels > 0:
			deviceType = "Input/Output"
		case device.MaxInputChannels > 0:
			deviceType = "Input"
		case device.MaxOutputChannels > 0:
			deviceType = "Output"
		}

		fmt.Printf("[%d] %s (%s)\n", i, device.Name, deviceType)
		fmt.Printf("    Input channels: %d, Output channels: %d\n",
			device.MaxInputChannels, device.MaxOutputChannels)
		fmt.Printf("    Default sample rate: %.0f Hz\n", device.DefaultSampleRate)
		fmt.Printf("    Latency: Low=%.2fms, High=%.2fms\n\n",
			device.DefaultLowInputLatency.Seconds()*1000,
			device.DefaultHighInputLatency.Seconds()*1000)
	}
	return nil
}
