package scanning

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/zombor/card-scanner/internal/cardscan"
	"github.com/zombor/card-scanner/internal/imageprep"
	"github.com/zombor/card-scanner/internal/ocr"
)

var (
	// ErrNoCardFound is returned by ScanFrames when no frame produced a complete card
	ErrNoCardFound = errors.New("no card found")
	// ErrNoImage is returned when there is no image to scan
	ErrNoImage = errors.New("no image")
)

// Config controls the image pipeline in front of the OCR engine
type Config struct {
	// MaxDimension bounds the longest side of the image handed to the engine
	MaxDimension int
	// Preprocess enables grayscale and contrast boosting before recognition
	Preprocess bool
}

// Frame is one captured image
type Frame struct {
	Name        string
	Data        []byte
	ContentType string
}

// Scanner runs captured frames through preprocessing, OCR and field extraction
type Scanner struct {
	engine ocr.Engine
	config Config
}

// NewScanner creates a new Scanner
func NewScanner(engine ocr.Engine, config Config) *Scanner {
	if config.MaxDimension <= 0 {
		config.MaxDimension = imageprep.DefaultMaxDimension
	}
	return &Scanner{
		engine: engine,
		config: config,
	}
}

// recognize scales and optionally preprocesses img before handing it to the engine
func (s *Scanner) recognize(ctx context.Context, img image.Image) (*ocr.Result, error) {
	if img == nil {
		return nil, ErrNoImage
	}

	prepared := imageprep.ScaleImage(img, s.config.MaxDimension)
	if s.config.Preprocess {
		prepared = imageprep.PreprocessForOCR(prepared)
	}

	result, err := s.engine.Recognize(ctx, prepared)
	if err != nil {
		return nil, fmt.Errorf("recognizing text: %w", err)
	}
	return result, nil
}

// ScanImage extracts a card from a decoded image. ok is false when the frame
// was inconclusive; err is set when img is nil or the engine failed.
func (s *Scanner) ScanImage(ctx context.Context, img image.Image) (card cardscan.Card, ok bool, err error) {
	result, err := s.recognize(ctx, img)
	if err != nil {
		return cardscan.Card{}, false, err
	}
	card, ok = cardscan.Extract(result)
	return card, ok, nil
}

// ScanFrame decodes data and extracts a card from it
func (s *Scanner) ScanFrame(ctx context.Context, data []byte, contentType string) (cardscan.Card, bool, error) {
	img, err := DecodeImage(data, contentType)
	if err != nil {
		return cardscan.Card{}, false, fmt.Errorf("decoding frame: %w", err)
	}
	return s.ScanImage(ctx, img)
}

// ScanFrames scans frames in order until one yields a complete card, which is
// delivered to onCard. Frames that fail to decode are skipped. It returns
// ErrNoCardFound when every frame was inconclusive.
func (s *Scanner) ScanFrames(ctx context.Context, frames []Frame, onCard cardscan.DetailsFunc) error {
	for _, frame := range frames {
		if err := ctx.Err(); err != nil {
			return err
		}

		img, err := DecodeImage(frame.Data, frame.ContentType)
		if err != nil {
			slog.Warn("Skipping undecodable frame", "frame", frame.Name, "content_type", frame.ContentType, "error", err)
			continue
		}

		result, err := s.recognize(ctx, img)
		if err != nil {
			return fmt.Errorf("scanning frame %s: %w", frame.Name, err)
		}

		var found *cardscan.Card
		cardscan.ExtractCardDetails(result, func(cardNumber, expiryDate, cardType string, cardIcon cardscan.Icon) {
			found = &cardscan.Card{Number: cardNumber, Expiry: expiryDate, Network: cardscan.Network{Name: cardType, Icon: cardIcon}}
			onCard(cardNumber, expiryDate, cardType, cardIcon)
		})
		if found != nil {
			slog.Info("Card found", "frame", frame.Name, "number", found.Masked(), "network", found.Network.Name)
			return nil
		}
		slog.Debug("Frame inconclusive", "frame", frame.Name, "lines", len(result.Lines()))
	}
	return ErrNoCardFound
}
