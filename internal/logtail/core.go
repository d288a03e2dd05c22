package logtail

import (
	"github.com/tech-arch1tect/loggate/internal/logging"

	"go.uber.org/zap/zapcore"
)

// Core is a zapcore.Core that encodes each record with the same Cloud
// Logging encoder as the primary output and hands it to the hub.
type Core struct {
	zapcore.LevelEnabler
	enc zapcore.Encoder
	hub *Hub
}

func NewCore(hub *Hub, enab zapcore.LevelEnabler) *Core {
	return &Core{
		LevelEnabler: enab,
		enc:          logging.NewGoogleEncoder(),
		hub:          hub,
	}
}

func (c *Core) With(fields []zapcore.Field) zapcore.Core {
	clone := &Core{
		LevelEnabler: c.LevelEnabler,
		enc:          c.enc.Clone(),
		hub:          c.hub,
	}
	for _, f := range fields {
		f.AddTo(clone.enc)
	}
	return clone
}

func (c *Core) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *Core) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	buf, err := c.enc.EncodeEntry(entry, fields)
	if err != nil {
		return err
	}
	// the buffer is pooled, hand the hub its own copy
	message := append([]byte(nil), buf.Bytes()...)
	buf.Free()
	c.hub.Broadcast(message)
	return nil
}

func (c *Core) Sync() error {
	return nil
}
