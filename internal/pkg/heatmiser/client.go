// Package heatmiser implements the binary TCP protocol spoken by Heatmiser
// Wi-Fi thermostats: frame construction and parsing, the device's internal
// configuration block (DCB) decoder and encoder, and the weekly schedule
// predictor.
package heatmiser

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Client reads and writes one thermostat. Every exchange opens a fresh
// connection and closes it before returning, since the device accepts very
// few concurrent connections.
type Client struct {
	transport *Transport
	pin       uint16
	logger    *zap.Logger
}

func NewClient(host string, port int, pin uint16, timeout time.Duration) *Client {
	return &Client{
		transport: NewTransport(host, port, timeout),
		pin:       pin,
		logger:    zap.L().With(zap.String("device_host", host)),
	}
}

// ReadStatus reads the whole DCB and decodes it into a fresh Status.
func (c *Client) ReadStatus(ctx context.Context) (*Status, error) {
	raw, err := c.transport.RoundTrip(ctx, buildReadCommand(c.pin, 0x0000, 0xFFFF))
	if err != nil {
		return nil, err
	}
	dcb, err := parseReadReply(raw)
	if err != nil {
		c.logger.Debug("rejected read reply", zap.Binary("frame", raw), zap.Error(err))
		return nil, err
	}
	return DecodeDCB(dcb)
}

// WriteFields encodes the named field updates against the reference Status
// and sends them in a single write command. Validation failures surface
// before anything touches the wire.
func (c *Client) WriteFields(ctx context.Context, ref *Status, fields map[string]any) error {
	items, err := EncodeWrites(ref, fields)
	if err != nil {
		return err
	}
	frame, err := buildWriteCommand(c.pin, items)
	if err != nil {
		return err
	}
	raw, err := c.transport.RoundTrip(ctx, frame)
	if err != nil {
		return err
	}
	if err := parseWriteReply(raw); err != nil {
		c.logger.Debug("rejected write reply", zap.Binary("frame", raw), zap.Error(err))
		return err
	}
	return nil
}

// Close releases the underlying connection if an exchange left one open.
func (c *Client) Close() error {
	return c.transport.Close()
}
