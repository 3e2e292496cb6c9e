package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
	"github.com/zombor/card-scanner/internal/ocr"
)

// DefaultWhitelist limits recognition to what is printed on the front of a card
const DefaultWhitelist = "0123456789/ ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Config holds recognizer settings
type Config struct {
	Languages []string
	// PageSegMode is tesseract's --psm value; 0 leaves the engine default.
	PageSegMode int
	Whitelist   string
}

// client is the subset of *gosseract.Client the engine drives
type client interface {
	SetImageFromBytes(data []byte) error
	SetLanguage(langs ...string) error
	SetPageSegMode(mode gosseract.PageSegMode) error
	SetWhitelist(whitelist string) error
	Text() (string, error)
	Close() error
}

func newClient() client {
	return gosseract.NewClient()
}

// Engine implements ocr.Engine using the gosseract client
type Engine struct {
	config        Config
	clientFactory func() client
}

// New creates a new Tesseract engine
func New(config Config) *Engine {
	if len(config.Languages) == 0 {
		config.Languages = []string{"eng"}
	}
	return &Engine{
		config:        config,
		clientFactory: newClient,
	}
}

// Recognize runs tesseract over img and splits its output into blocks and lines
func (e *Engine) Recognize(ctx context.Context, img image.Image) (*ocr.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("setting image: %w", err)
	}
	if err := c.SetLanguage(e.config.Languages...); err != nil {
		return nil, fmt.Errorf("setting languages: %w", err)
	}
	if e.config.PageSegMode > 0 {
		if err := c.SetPageSegMode(gosseract.PageSegMode(e.config.PageSegMode)); err != nil {
			return nil, fmt.Errorf("setting page segmentation mode: %w", err)
		}
	}
	if e.config.Whitelist != "" {
		if err := c.SetWhitelist(e.config.Whitelist); err != nil {
			return nil, fmt.Errorf("setting whitelist: %w", err)
		}
	}

	text, err := c.Text()
	if err != nil {
		return nil, fmt.Errorf("recognizing text: %w", err)
	}
	return ocr.ParseText(text), nil
}

// Close is a no-op; a client is created per call
func (e *Engine) Close() error {
	return nil
}
