package tesseract

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os/exec"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/otiai10/gosseract/v2"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/zombor/card-scanner/internal/cardscan"
)

// fakeClient records how the engine configured it and returns canned text
type fakeClient struct {
	image     []byte
	languages []string
	psm       *gosseract.PageSegMode
	whitelist *string
	text      string
	textErr   error
	imageErr  error
	closed    bool
}

func (f *fakeClient) SetImageFromBytes(data []byte) error {
	f.image = data
	return f.imageErr
}

func (f *fakeClient) SetLanguage(langs ...string) error {
	f.languages = langs
	return nil
}

func (f *fakeClient) SetPageSegMode(mode gosseract.PageSegMode) error {
	f.psm = &mode
	return nil
}

func (f *fakeClient) SetWhitelist(whitelist string) error {
	f.whitelist = &whitelist
	return nil
}

func (f *fakeClient) Text() (string, error) {
	return f.text, f.textErr
}

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

var _ = Describe("Engine", func() {
	var (
		config Config
		fake   *fakeClient
		ctx    context.Context
		img    image.Image
	)

	BeforeEach(func() {
		config = Config{}
		fake = &fakeClient{text: "JOHN DOE\n4532 0151 1283 0366\n\nVALID THRU\n08/25\n"}
		ctx = context.Background()
		img = image.NewRGBA(image.Rect(0, 0, 40, 20))
	})

	newEngine := func() *Engine {
		e := New(config)
		e.clientFactory = func() client { return fake }
		return e
	}

	Describe("Recognize", func() {
		When("the client reads text", func() {
			It("splits the output into blocks and lines", func() {
				result, err := newEngine().Recognize(ctx, img)
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Blocks).To(HaveLen(2))
				Expect(result.Lines()).To(Equal([]string{"JOHN DOE", "4532 0151 1283 0366", "VALID THRU", "08/25"}))
			})

			It("hands the client a PNG and closes it", func() {
				_, err := newEngine().Recognize(ctx, img)
				Expect(err).NotTo(HaveOccurred())
				Expect(fake.image).To(HavePrefix("\x89PNG"))
				Expect(fake.closed).To(BeTrue())
			})

			It("defaults to English", func() {
				_, err := newEngine().Recognize(ctx, img)
				Expect(err).NotTo(HaveOccurred())
				Expect(fake.languages).To(Equal([]string{"eng"}))
			})
		})

		When("page segmentation mode and whitelist are unset", func() {
			It("leaves the engine defaults alone", func() {
				_, err := newEngine().Recognize(ctx, img)
				Expect(err).NotTo(HaveOccurred())
				Expect(fake.psm).To(BeNil())
				Expect(fake.whitelist).To(BeNil())
			})
		})

		When("page segmentation mode and whitelist are set", func() {
			BeforeEach(func() {
				config = Config{Languages: []string{"eng", "deu"}, PageSegMode: 6, Whitelist: DefaultWhitelist}
			})

			It("applies them to the client", func() {
				_, err := newEngine().Recognize(ctx, img)
				Expect(err).NotTo(HaveOccurred())
				Expect(fake.languages).To(Equal([]string{"eng", "deu"}))
				Expect(fake.psm).NotTo(BeNil())
				Expect(*fake.psm).To(Equal(gosseract.PSM_SINGLE_BLOCK))
				Expect(fake.whitelist).NotTo(BeNil())
				Expect(*fake.whitelist).To(Equal(DefaultWhitelist))
			})
		})

		When("the client fails to read text", func() {
			BeforeEach(func() {
				fake.textErr = errors.New("tesseract failed")
			})

			It("returns the error", func() {
				_, err := newEngine().Recognize(ctx, img)
				Expect(err).To(MatchError(ContainSubstring("recognizing text: tesseract failed")))
				Expect(fake.closed).To(BeTrue())
			})
		})

		When("the client rejects the image", func() {
			BeforeEach(func() {
				fake.imageErr = errors.New("bad image")
			})

			It("returns the error", func() {
				_, err := newEngine().Recognize(ctx, img)
				Expect(err).To(MatchError(ContainSubstring("setting image: bad image")))
			})
		})

		When("the context is already cancelled", func() {
			It("returns the context error without creating a client", func() {
				cancelled, cancel := context.WithCancel(ctx)
				cancel()
				_, err := newEngine().Recognize(cancelled, img)
				Expect(err).To(MatchError(context.Canceled))
				Expect(fake.image).To(BeNil())
			})
		})
	})
})

// renderCard draws the card lines with a bitmap font and enlarges the result
// so the glyphs are big enough for tesseract
func renderCard(lines ...string) image.Image {
	small := image.NewRGBA(image.Rect(0, 0, 180, 20+16*len(lines)))
	xdraw.Draw(small, small.Bounds(), &image.Uniform{C: color.White}, image.Point{}, xdraw.Src)
	d := &font.Drawer{
		Dst:  small,
		Src:  image.Black,
		Face: basicfont.Face7x13,
	}
	for i, line := range lines {
		d.Dot = fixed.P(10, 20+16*i)
		d.DrawString(line)
	}

	const factor = 4
	big := image.NewRGBA(image.Rect(0, 0, small.Bounds().Dx()*factor, small.Bounds().Dy()*factor))
	xdraw.NearestNeighbor.Scale(big, big.Bounds(), small, small.Bounds(), xdraw.Src, nil)
	return big
}

var _ = Describe("Engine with tesseract installed", func() {
	BeforeEach(func() {
		if _, err := exec.LookPath("tesseract"); err != nil {
			Skip("tesseract not installed in PATH")
		}
	})

	It("reads a card number and expiry that cardscan can extract", func() {
		engine := New(Config{Languages: []string{"eng"}, PageSegMode: 6, Whitelist: DefaultWhitelist})
		defer engine.Close()

		result, err := engine.Recognize(context.Background(), renderCard("4532 0151 1283 0366", "08/25"))
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Blocks).NotTo(BeEmpty())

		card, ok := cardscan.Extract(result)
		Expect(ok).To(BeTrue(), "lines read: %q", result.Lines())
		Expect(card.Number).To(Equal("4532015112830366"))
		Expect(card.Expiry).To(Equal("08/25"))
		Expect(card.Network.Name).To(Equal("Visa"))
	})
})
