package tokenizer

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const fallbackEncoding = "cl100k_base"

// Counter estimates token counts with tiktoken. Models tiktoken does not know use cl100k_base.
// When no encoding can be loaded it degrades to a whitespace word count.
type Counter struct {
	mu       sync.Mutex
	encoders map[string]*encoderSlot
	load     func(model string) (*tiktoken.Tiktoken, error)
	logger   *slog.Logger
}

// encoderSlot loads one model's encoding at most once. A failed load leaves enc nil for good.
type encoderSlot struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
}

// NewCounter constructs a Counter.
func NewCounter(logger *slog.Logger) *Counter {
	return &Counter{
		encoders: make(map[string]*encoderSlot),
		load:     loadEncoding,
		logger:   logger.With("component", "tokenizer"),
	}
}

// Count returns the number of tokens text encodes to for model.
func (c *Counter) Count(model, text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	enc := c.encoder(model)
	if enc == nil {
		return len(strings.Fields(text))
	}
	return len(enc.Encode(text, nil, nil))
}

// encoder returns the cached encoding for model. Only callers for the same model
// wait on a pending load; the map lock is never held across it.
func (c *Counter) encoder(model string) *tiktoken.Tiktoken {
	c.mu.Lock()
	slot, ok := c.encoders[model]
	if !ok {
		slot = &encoderSlot{}
		c.encoders[model] = slot
	}
	c.mu.Unlock()

	slot.once.Do(func() {
		enc, err := c.load(model)
		if err != nil {
			c.logger.Warn("tiktoken encoding unavailable, using word count", "model", model, "error", err)
			return
		}
		slot.enc = enc
	})
	return slot.enc
}

func loadEncoding(model string) (*tiktoken.Tiktoken, error) {
	if enc, err := tiktoken.EncodingForModel(model); err == nil {
		return enc, nil
	}
	return tiktoken.GetEncoding(fallbackEncoding)
}
